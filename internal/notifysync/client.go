package notifysync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/notifications"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/realtime"
)

// Source is the durable notification store as the client reaches it.
type Source interface {
	List(ctx context.Context) ([]Notification, error)
	MarkRead(ctx context.Context, id uint) (Notification, error)
	Delete(ctx context.Context, id uint) error
	ClearAll(ctx context.Context) error
}

// Client applies every change through Reduce. Mark-read, delete and clear
// update local state first and roll back if the server refuses.
type Client struct {
	source Source
	log    *slog.Logger

	mu       sync.Mutex
	state    State
	deleting map[uint]bool
	onChange func(State)
}

func NewClient(source Source, log *slog.Logger) *Client {
	return &Client{source: source, log: log, deleting: map[uint]bool{}}
}

// OnChange registers fn to be called with every new state. fn runs with the
// client's lock held and must not call back into the client.
func (c *Client) OnChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Items: append([]Notification(nil), c.state.Items...)}
}

func (c *Client) dispatch(ev Event) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, ev)
	if c.onChange != nil {
		c.onChange(c.state)
	}
	return c.state
}

// Sync runs one reconciliation pass. A failure leaves local state untouched
// and is retried by the next pass.
func (c *Client) Sync(ctx context.Context) error {
	server, err := c.source.List(ctx)
	if err != nil {
		c.log.Warn("notification sync failed", slog.Any("error", err))
		return fmt.Errorf("sync notifications: %w", err)
	}

	c.mu.Lock()
	pending := make(map[uint]bool, len(c.deleting))
	for id := range c.deleting {
		pending[id] = true
	}
	c.mu.Unlock()

	if len(pending) > 0 {
		kept := server[:0:0]
		for _, n := range server {
			if !pending[n.ID] {
				kept = append(kept, n)
			}
		}
		server = kept
	}

	c.dispatch(Synced{Server: server})
	return nil
}

// HandleLive turns a socket frame into a local notification. Frames without
// a notice are state updates only and are ignored here.
func (c *Client) HandleLive(msg realtime.Message) {
	if msg.Notice == nil {
		return
	}
	created := msg.Timestamp
	if created.IsZero() {
		created = time.Now().UTC()
	}

	n := Notification{
		LocalID:   uuid.NewString(),
		Type:      msg.Notice.Type,
		Title:     msg.Notice.Title,
		Message:   msg.Notice.Message,
		Priority:  notifications.DefaultPriority(msg.Notice.Type),
		CreatedAt: created,
	}
	if msg.Data != nil {
		if raw, err := json.Marshal(msg.Data); err == nil {
			n.Data = raw
		}
	}
	c.dispatch(LiveReceived{Notification: n})
}

// MarkRead marks the item read locally and then on the server. Socket-only
// items have no server record yet and stay local.
func (c *Client) MarkRead(ctx context.Context, key string) error {
	prev, ok := c.State().Find(key)
	if !ok || prev.Read {
		return nil
	}
	c.dispatch(ReadOptimistic{Key: key})
	if prev.ID == 0 {
		return nil
	}

	confirmed, err := c.source.MarkRead(ctx, prev.ID)
	if err != nil {
		c.dispatch(ReadReverted{Previous: prev})
		return fmt.Errorf("mark notification %d read: %w", prev.ID, err)
	}
	c.dispatch(ReadConfirmed{Notification: confirmed})
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	prev, ok := c.State().Find(key)
	if !ok {
		return nil
	}
	c.dispatch(Removed{Key: key})
	if prev.ID == 0 {
		return nil
	}

	c.mu.Lock()
	c.deleting[prev.ID] = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.deleting, prev.ID)
		c.mu.Unlock()
	}()

	if err := c.source.Delete(ctx, prev.ID); err != nil {
		c.dispatch(RemoveReverted{Items: []Notification{prev}})
		return fmt.Errorf("delete notification %d: %w", prev.ID, err)
	}
	return nil
}

func (c *Client) ClearAll(ctx context.Context) error {
	snapshot := c.State().Items
	c.dispatch(Cleared{})
	if err := c.source.ClearAll(ctx); err != nil {
		c.dispatch(RemoveReverted{Items: snapshot})
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

func (c *Client) DismissToast(key string) {
	c.dispatch(ToastDismissed{Key: key})
}

func (c *Client) Tick(now time.Time) {
	c.dispatch(Tick{Now: now})
}
