package realtime

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one live socket. Its room set is guarded by the hub lock.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	identity types.Identity
	send     chan []byte
	quit     chan struct{}
	rooms    map[string]struct{}
	done     sync.Once
}

func (c *Client) Identity() types.Identity { return c.identity }

// Hub tracks live clients and the rooms they joined. Membership is not
// persisted; clients rejoin on every connect.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
		log:     log,
	}
}

// CanJoin is the room access rule. Users only ever see their own user room;
// supervisors may join every role room.
func CanJoin(id types.Identity, room string) bool {
	role := id.Role
	switch {
	case room == UserRoom(id.ID):
		return true
	case strings.HasPrefix(room, "user:"):
		return false
	case room == RoomManager:
		return role.Supervisor()
	case room == RoomWaiter:
		return role == types.RoleWaiter || role.Supervisor()
	case room == types.KitchenRestaurant.Room():
		return role == types.RoleChef || role.Supervisor()
	case room == types.KitchenBar.Room():
		return role == types.RoleBartender || role.Supervisor()
	case strings.HasPrefix(room, "table:"):
		return types.Can(role, types.CapViewTables)
	}
	return false
}

// AccessibleRooms lists the identity rooms a join-all request resolves to.
// Table rooms are per table and must be joined one by one.
func AccessibleRooms(id types.Identity) []string {
	rooms := []string{UserRoom(id.ID)}
	for _, room := range []string{types.KitchenRestaurant.Room(), types.KitchenBar.Room(), RoomWaiter, RoomManager} {
		if CanJoin(id, room) {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

func (h *Hub) register(conn *websocket.Conn, id types.Identity) *Client {
	c := &Client{
		hub:      h,
		conn:     conn,
		identity: id,
		send:     make(chan []byte, sendBuffer),
		quit:     make(chan struct{}),
		rooms:    make(map[string]struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.Join(c, UserRoom(id.ID))
	return c
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		for room := range c.rooms {
			h.removeLocked(c, room)
		}
	}
	h.mu.Unlock()

	c.done.Do(func() { close(c.quit) })
}

func (h *Hub) removeLocked(c *Client, room string) {
	delete(c.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Join adds the client to room when the access rule allows it.
func (h *Hub) Join(c *Client, room string) bool {
	if !CanJoin(c.identity, room) {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return false
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	c.rooms[room] = struct{}{}
	return true
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	h.removeLocked(c, room)
	h.mu.Unlock()
}

// Deliver writes the envelope to every member of its rooms, each client at
// most once, or to every client for a broadcast. Clients whose user is in
// NoticeFor get the frame with the notice. Slow clients whose buffer is full
// are dropped.
func (h *Hub) Deliver(env Envelope) {
	payload, err := json.Marshal(env.Message())
	if err != nil {
		h.log.Error("failed to encode event", slog.String("event", env.Event), slog.Any("error", err))
		return
	}
	noticed := map[uint][]byte{}
	if env.Notice != nil {
		for _, id := range env.NoticeFor {
			if noticed[id], err = json.Marshal(env.MessageFor(id)); err != nil {
				h.log.Error("failed to encode event", slog.String("event", env.Event), slog.Any("error", err))
				return
			}
		}
	}

	h.mu.RLock()
	targets := make(map[*Client]struct{})
	if env.Broadcast {
		for c := range h.clients {
			targets[c] = struct{}{}
		}
	} else {
		for _, room := range env.Rooms {
			for c := range h.rooms[room] {
				targets[c] = struct{}{}
			}
		}
	}
	h.mu.RUnlock()

	var slow []*Client
	for c := range targets {
		frame := payload
		if p, ok := noticed[c.identity.ID]; ok {
			frame = p
		}
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}

	for _, c := range slow {
		h.log.Warn("dropping slow socket client", slog.Uint64("user_id", uint64(c.identity.ID)))
		h.unregister(c)
	}
}

// RoomSize reports the number of live clients in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ClientCount reports the number of live clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

// Serve runs an upgraded connection until it closes.
func (h *Hub) Serve(conn *websocket.Conn, id types.Identity) {
	c := h.register(conn, id)
	log := h.log.With(slog.Uint64("user_id", uint64(id.ID)), slog.String("role", string(id.Role)))

	defer func() {
		h.unregister(c)
		log.Debug("websocket connection closed")
	}()

	go c.writePump(log)

	c.reply(MsgConnected, map[string]any{
		"message": "WebSocket connection established",
		"userId":  id.ID,
		"role":    id.Role,
	})

	c.readPump(log)
}

func (c *Client) reply(event string, data any) {
	payload, err := json.Marshal(Message{Event: event, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	_, live := c.hub.clients[c]
	c.hub.mu.RUnlock()
	if !live {
		return
	}

	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) writePump(log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.quit:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Warn("failed to set write deadline", slog.Any("error", err))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Warn("failed to write event", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("ping failed", slog.Any("error", err))
				return
			}
		}
	}
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinData struct {
	UserID      uint   `json:"userId"`
	KitchenType string `json:"kitchenType"`
	TableID     uint   `json:"tableId"`
	Room        string `json:"room"`
}

func (c *Client) readPump(log *slog.Logger) {
	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Warn("failed to set initial read deadline", slog.Any("error", err))
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("websocket read error", slog.Any("error", err))
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Event == "" {
			log.Warn("dropping malformed socket message", slog.Int("size", len(raw)))
			continue
		}
		c.handle(msg, log)
	}
}

func (c *Client) handle(msg inbound, log *slog.Logger) {
	var data joinData
	if len(msg.Data) > 0 && string(msg.Data) != "null" {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			log.Warn("dropping socket message with bad payload", slog.String("event", msg.Event))
			return
		}
	}

	switch msg.Event {
	case MsgJoinUserRoom:
		if data.UserID != 0 && data.UserID != c.identity.ID {
			c.reply(MsgRoomDenied, map[string]any{"room": UserRoom(data.UserID)})
			return
		}
		c.join(UserRoom(c.identity.ID))
	case MsgJoinKitchenRoom:
		kind, err := types.ParseKitchenType(data.KitchenType)
		if err != nil {
			log.Warn("dropping join with unknown kitchen type", slog.String("kitchen_type", data.KitchenType))
			return
		}
		c.join(kind.Room())
	case MsgJoinWaiterRoom:
		c.join(RoomWaiter)
	case MsgJoinTableRoom:
		if data.TableID == 0 {
			log.Warn("dropping table join without table id")
			return
		}
		c.join(TableRoom(data.TableID))
	case MsgJoinAll:
		for _, room := range AccessibleRooms(c.identity) {
			c.join(room)
		}
	case MsgLeaveRoom:
		if data.Room == "" || data.Room == UserRoom(c.identity.ID) {
			return
		}
		c.hub.Leave(c, data.Room)
		c.reply(MsgRoomLeft, map[string]any{"room": data.Room})
	default:
		log.Warn("dropping unknown socket event", slog.String("event", msg.Event))
	}
}

func (c *Client) join(room string) {
	if c.hub.Join(c, room) {
		c.reply(MsgRoomJoined, map[string]any{"room": room})
		return
	}
	c.reply(MsgRoomDenied, map[string]any{"room": room})
}
