package notifysync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastLifecycle(t *testing.T) {
	n := live("a", "Order #1", 0)
	n.View = ""

	s := Reduce(State{}, LiveReceived{Notification: n})
	require.Len(t, s.Items, 1)
	assert.Equal(t, ViewUnseen, s.Items[0].View)
	assert.Len(t, s.Toasts(), 1)
	assert.Equal(t, 1, s.Unread())

	s = Reduce(s, Tick{Now: base})
	assert.Equal(t, ViewDisplayed, s.Items[0].View)
	assert.Equal(t, base, s.Items[0].ShownAt)

	s = Reduce(s, Tick{Now: base.Add(4 * time.Second)})
	assert.Equal(t, ViewDisplayed, s.Items[0].View)

	s = Reduce(s, Tick{Now: base.Add(ToastDuration)})
	assert.Equal(t, ViewDismissed, s.Items[0].View)
	assert.Empty(t, s.Toasts())
	assert.Equal(t, 1, s.Unread(), "auto-dismiss does not mark read")
}

func TestDismissAndRead(t *testing.T) {
	s := Reduce(State{}, LiveReceived{Notification: live("a", "Order #1", 0)})
	key := s.Items[0].Key()

	dismissed := Reduce(s, ToastDismissed{Key: key})
	assert.Equal(t, ViewDismissed, dismissed.Items[0].View)
	assert.False(t, dismissed.Items[0].Read)

	read := Reduce(dismissed, ReadOptimistic{Key: key})
	assert.True(t, read.Items[0].Read)
	assert.Equal(t, ViewRead, read.Items[0].View)
	assert.Equal(t, 0, read.Unread())

	reverted := Reduce(read, ReadReverted{Previous: dismissed.Items[0]})
	assert.Equal(t, dismissed.Items, reverted.Items)

	// Dismissing an already-read item leaves it read.
	again := Reduce(read, ToastDismissed{Key: key})
	assert.Equal(t, ViewRead, again.Items[0].View)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := Reduce(State{}, LiveReceived{Notification: live("a", "Order #1", 0)})
	before := append([]Notification(nil), s.Items...)

	_ = Reduce(s, ReadOptimistic{Key: s.Items[0].Key()})
	_ = Reduce(s, Removed{Key: s.Items[0].Key()})
	_ = Reduce(s, Tick{Now: base.Add(time.Minute)})
	assert.Equal(t, before, s.Items)
}

func TestLiveDuplicateIsAbsorbed(t *testing.T) {
	s := Reduce(State{}, Synced{Server: []Notification{stored(4, "Order #4", 0, false)}})
	require.Len(t, s.Items, 1)
	assert.Equal(t, ViewDismissed, s.Items[0].View, "synced items do not pop toasts")

	s = Reduce(s, LiveReceived{Notification: live("x", "Order #4", 500*time.Millisecond)})
	require.Len(t, s.Items, 1)
	assert.Equal(t, uint(4), s.Items[0].ID)

	s = Reduce(s, LiveReceived{Notification: live("y", "Order #4", 3*time.Second)})
	assert.Len(t, s.Items, 2, "outside the window it is a new notification")
}

func TestRemoveAndRestore(t *testing.T) {
	s := Reduce(State{}, Synced{Server: []Notification{
		stored(2, "Order #2", time.Second, false),
		stored(1, "Order #1", 0, false),
	}})
	gone := s.Items[0]

	s2 := Reduce(s, Removed{Key: gone.Key()})
	assert.Equal(t, []string{"n:1"}, keys(s2.Items))

	s3 := Reduce(s2, RemoveReverted{Items: []Notification{gone}})
	assert.Equal(t, []string{"n:2", "n:1"}, keys(s3.Items))

	s4 := Reduce(s3, Cleared{})
	assert.Empty(t, s4.Items)

	s5 := Reduce(s4, RemoveReverted{Items: s3.Items})
	assert.Equal(t, s3.Items, s5.Items)
}
