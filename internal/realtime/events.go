package realtime

import (
	"fmt"
	"slices"
	"time"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
)

// Event names are the socket contract.
const (
	EventNewKitchenOrder      = "new-kitchen-order"
	EventOrderItemsAdded      = "order-items-added"
	EventItemStatusUpdated    = "order-item-status-updated"
	EventOrderStatusUpdated   = "order-status-updated"
	EventKitchenOrderAccepted = "kitchen-order-accepted"
	EventKitchenOrderRejected = "kitchen-order-rejected"
	EventOrderTransferred     = "order-transferred"
	EventTableStatusUpdated   = "table_status_updated"
)

// Client-initiated messages and the server replies to them.
const (
	MsgJoinUserRoom    = "join-user-room"
	MsgJoinKitchenRoom = "join-kitchen-room"
	MsgJoinWaiterRoom  = "join-waiter-room"
	MsgJoinTableRoom   = "join-table-room"
	MsgJoinAll         = "join-all-accessible-rooms"
	MsgLeaveRoom       = "leave-room"

	MsgConnected  = "connected"
	MsgRoomJoined = "room-joined"
	MsgRoomLeft   = "room-left"
	MsgRoomDenied = "room-denied"
)

const (
	RoomWaiter  = "waiter"
	RoomManager = "manager"
)

func UserRoom(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func TableRoom(tableID uint) string {
	return fmt.Sprintf("table:%d", tableID)
}

// Notice mirrors the durable notification written for the recipients of an
// event. Clients use it to show a toast before their next sync pass.
type Notice struct {
	Type    types.NotificationType `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
}

// Envelope is what publishers carry: the event plus where it goes. Notice
// is only attached for the users in NoticeFor, the ones that got a stored
// notification; every other room member receives the bare event.
type Envelope struct {
	Rooms     []string  `json:"rooms,omitempty"`
	Broadcast bool      `json:"broadcast,omitempty"`
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Notice    *Notice   `json:"notice,omitempty"`
	NoticeFor []uint    `json:"noticeFor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is the frame a socket client receives.
type Message struct {
	Event     string    `json:"event"`
	Data      any       `json:"data,omitempty"`
	Notice    *Notice   `json:"notice,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is the frame without a notice.
func (e Envelope) Message() Message {
	return Message{Event: e.Event, Data: e.Data, Timestamp: e.Timestamp}
}

// MessageFor is the frame userID receives.
func (e Envelope) MessageFor(userID uint) Message {
	m := e.Message()
	if e.Notice != nil && slices.Contains(e.NoticeFor, userID) {
		m.Notice = e.Notice
	}
	return m
}

type KitchenOrderItem struct {
	ItemID              uint   `json:"itemId"`
	MenuItemID          uint   `json:"menuItemId"`
	Name                string `json:"name"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// KitchenOrder is the payload of new-kitchen-order and order-items-added.
type KitchenOrder struct {
	OrderID             uint               `json:"orderId"`
	TableID             *uint              `json:"tableId,omitempty"`
	TableNumber         string             `json:"tableNumber,omitempty"`
	OrderType           types.OrderType    `json:"orderType"`
	KitchenID           uint               `json:"kitchenId"`
	KitchenType         types.KitchenType  `json:"kitchenType"`
	Round               int                `json:"round"`
	WaiterID            uint               `json:"waiterId"`
	WaiterName          string             `json:"waiterName"`
	SpecialInstructions string             `json:"specialInstructions,omitempty"`
	Items               []KitchenOrderItem `json:"items"`
	PlacedAt            time.Time          `json:"placedAt"`
}

type ItemStatusChange struct {
	OrderID        uint              `json:"orderId"`
	ItemID         uint              `json:"itemId"`
	TableID        *uint             `json:"tableId,omitempty"`
	KitchenID      uint              `json:"kitchenId"`
	KitchenType    types.KitchenType `json:"kitchenType"`
	Status         types.ItemStatus  `json:"status"`
	PreviousStatus types.ItemStatus  `json:"previousStatus"`
	ChefNotes      string            `json:"chefNotes,omitempty"`
	Reason         string            `json:"reason,omitempty"`
	ActorID        uint              `json:"actorId"`
}

type OrderStatusChange struct {
	OrderID        uint              `json:"orderId"`
	TableID        *uint             `json:"tableId,omitempty"`
	Status         types.OrderStatus `json:"status"`
	PreviousStatus types.OrderStatus `json:"previousStatus"`
	TotalAmount    string            `json:"totalAmount"`
	TaxAmount      string            `json:"taxAmount"`
	ActorID        uint              `json:"actorId,omitempty"`
}

// KitchenAck is the payload of kitchen-order-accepted and
// kitchen-order-rejected.
type KitchenAck struct {
	OrderID          uint              `json:"orderId"`
	KitchenID        uint              `json:"kitchenId"`
	KitchenType      types.KitchenType `json:"kitchenType"`
	Status           string            `json:"status"`
	ItemIDs          []uint            `json:"itemIds"`
	EstimatedMinutes *int              `json:"estimatedMinutes,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Reason           string            `json:"reason,omitempty"`
	ActorID          uint              `json:"actorId"`
}

type Transfer struct {
	OrderID       uint              `json:"orderId"`
	ItemID        uint              `json:"itemId"`
	FromKitchenID uint              `json:"fromKitchenId"`
	ToKitchenID   uint              `json:"toKitchenId"`
	KitchenType   types.KitchenType `json:"kitchenType"`
	ActorID       uint              `json:"actorId"`
}

type TableStatusChange struct {
	TableID        uint              `json:"tableId"`
	RestaurantID   uint              `json:"restaurantId"`
	TableNumber    string            `json:"tableNumber"`
	Status         types.TableStatus `json:"status"`
	PreviousStatus types.TableStatus `json:"previousStatus,omitempty"`
}
