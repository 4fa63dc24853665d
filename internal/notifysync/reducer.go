package notifysync

import "time"

// ToastDuration is how long a toast stays on screen before it dismisses
// itself. Dismissal never marks the notification read.
const ToastDuration = 5 * time.Second

// State is everything the rendering layer draws from.
type State struct {
	Items []Notification
}

// Unread counts unread items, including socket-only ones.
func (s State) Unread() int {
	n := 0
	for _, it := range s.Items {
		if !it.Read {
			n++
		}
	}
	return n
}

// Toasts returns the items currently queued or shown as toasts.
func (s State) Toasts() []Notification {
	var out []Notification
	for _, it := range s.Items {
		if it.View == ViewUnseen || it.View == ViewDisplayed {
			out = append(out, it)
		}
	}
	return out
}

func (s State) Find(key string) (Notification, bool) {
	for _, it := range s.Items {
		if it.Key() == key {
			return it, true
		}
	}
	return Notification{}, false
}

// Event is the closed set of things that change State.
type Event interface {
	event()
}

// Synced carries a fresh server page.
type Synced struct{ Server []Notification }

// LiveReceived carries a notification that arrived over the socket.
type LiveReceived struct{ Notification Notification }

type ReadOptimistic struct{ Key string }

// ReadReverted puts back the item as it was before a failed mark-read.
type ReadReverted struct{ Previous Notification }

// ReadConfirmed applies the server's copy after a successful mark-read.
type ReadConfirmed struct{ Notification Notification }

type Removed struct{ Key string }

// RemoveReverted restores items whose deletion the server refused.
type RemoveReverted struct{ Items []Notification }

type ToastDismissed struct{ Key string }

// Tick advances toasts: unseen ones are shown, shown ones expire after
// ToastDuration.
type Tick struct{ Now time.Time }

type Cleared struct{}

func (Synced) event()         {}
func (LiveReceived) event()   {}
func (ReadOptimistic) event() {}
func (ReadReverted) event()   {}
func (ReadConfirmed) event()  {}
func (Removed) event()        {}
func (RemoveReverted) event() {}
func (ToastDismissed) event() {}
func (Tick) event()           {}
func (Cleared) event()        {}

// Reduce returns the state after ev. It never mutates s.
func Reduce(s State, ev Event) State {
	items := append([]Notification(nil), s.Items...)

	switch e := ev.(type) {
	case Synced:
		return State{Items: Merge(items, e.Server, DuplicateWindow)}

	case LiveReceived:
		n := e.Notification
		for i, it := range items {
			if Twin(it, n, DuplicateWindow) {
				// Already known: adopt the server id if the live copy has one.
				if it.ID == 0 && n.ID != 0 {
					items[i].ID = n.ID
					items[i].LocalID = ""
				}
				return State{Items: items}
			}
		}
		if n.Read {
			n.View = ViewRead
		} else {
			n.View = ViewUnseen
		}
		items = append([]Notification{n}, items...)
		sortNewestFirst(items)

	case ReadOptimistic:
		for i := range items {
			if items[i].Key() == e.Key {
				items[i].Read = true
				items[i].View = ViewRead
			}
		}

	case ReadReverted:
		for i := range items {
			if items[i].Key() == e.Previous.Key() {
				items[i].Read = e.Previous.Read
				items[i].View = e.Previous.View
			}
		}

	case ReadConfirmed:
		for i := range items {
			if items[i].Key() == e.Notification.Key() {
				items[i].Read = e.Notification.Read
				items[i].View = reconcileView(items[i].View, e.Notification.Read)
			}
		}

	case Removed:
		kept := items[:0]
		for _, it := range items {
			if it.Key() != e.Key {
				kept = append(kept, it)
			}
		}
		items = kept

	case RemoveReverted:
		for _, back := range e.Items {
			if _, ok := (State{Items: items}).Find(back.Key()); !ok {
				items = append(items, back)
			}
		}
		sortNewestFirst(items)

	case ToastDismissed:
		for i := range items {
			if items[i].Key() == e.Key && (items[i].View == ViewUnseen || items[i].View == ViewDisplayed) {
				items[i].View = ViewDismissed
			}
		}

	case Tick:
		for i := range items {
			switch items[i].View {
			case ViewUnseen:
				items[i].View = ViewDisplayed
				items[i].ShownAt = e.Now
			case ViewDisplayed:
				if e.Now.Sub(items[i].ShownAt) >= ToastDuration {
					items[i].View = ViewDismissed
				}
			}
		}

	case Cleared:
		items = nil
	}

	return State{Items: items}
}
