// Package notifysync keeps a client's in-memory notification list in step
// with the durable store and the live socket.
package notifysync

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
)

// DuplicateWindow is how far apart a live event and its durable twin may be
// stamped and still count as the same notification.
const DuplicateWindow = time.Second

// View is where a notification sits in the toast lifecycle.
type View string

const (
	ViewUnseen    View = "unseen"
	ViewDisplayed View = "displayed"
	ViewRead      View = "read"
	ViewDismissed View = "dismissed"
)

// Notification is the client-side mirror of a stored notification. Items
// that only arrived over the socket have ID 0 and a LocalID.
type Notification struct {
	ID        uint                   `json:"id,omitempty"`
	LocalID   string                 `json:"localId,omitempty"`
	Type      types.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      json.RawMessage        `json:"data,omitempty"`
	Priority  types.Priority         `json:"priority,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"createdAt"`

	View    View      `json:"view"`
	ShownAt time.Time `json:"shownAt,omitempty"`
}

// Key identifies the notification in the local list.
func (n Notification) Key() string {
	if n.ID != 0 {
		return fmt.Sprintf("n:%d", n.ID)
	}
	return "l:" + n.LocalID
}

// Twin reports whether a and b describe the same notification: the same
// server id, or the same type and message stamped within window of each
// other when at least one side has no server id yet.
func Twin(a, b Notification, window time.Duration) bool {
	if a.ID != 0 && b.ID != 0 {
		return a.ID == b.ID
	}
	if a.Type != b.Type || a.Message != b.Message {
		return false
	}
	d := a.CreatedAt.Sub(b.CreatedAt)
	if d < 0 {
		d = -d
	}
	return d <= window
}

// Merge reconciles the local list with a fresh server page. Every server
// record appears exactly once. The server decides read state; the local
// side only contributes toast progress. Local items with a server id the
// server no longer returns are dropped. Socket-only items without a twin
// are kept.
func Merge(local, server []Notification, window time.Duration) []Notification {
	used := make([]bool, len(local))
	byID := make(map[uint]int, len(local))
	for i, n := range local {
		if n.ID != 0 {
			byID[n.ID] = i
		}
	}

	out := make([]Notification, 0, len(server)+len(local))
	for _, s := range server {
		match := -1
		if i, ok := byID[s.ID]; ok && !used[i] {
			match = i
		} else {
			for i, l := range local {
				if !used[i] && l.ID == 0 && Twin(l, s, window) {
					match = i
					break
				}
			}
		}

		merged := s
		merged.LocalID = ""
		merged.View = ViewDismissed
		if match >= 0 {
			used[match] = true
			merged.View = local[match].View
			merged.ShownAt = local[match].ShownAt
			if merged.Data == nil {
				merged.Data = local[match].Data
			}
		}
		merged.View = reconcileView(merged.View, merged.Read)
		out = append(out, merged)
	}

	for i, l := range local {
		if !used[i] && l.ID == 0 {
			out = append(out, l)
		}
	}

	sortNewestFirst(out)
	return out
}

// reconcileView keeps the toast lifecycle consistent with the read flag.
func reconcileView(v View, read bool) View {
	switch {
	case read:
		return ViewRead
	case v == ViewRead, v == "":
		return ViewDismissed
	}
	return v
}

func sortNewestFirst(list []Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}
