package notifysync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
)

var base = time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)

func stored(id uint, msg string, at time.Duration, read bool) Notification {
	return Notification{
		ID:        id,
		Type:      types.NotificationNewOrder,
		Title:     "New order",
		Message:   msg,
		Read:      read,
		CreatedAt: base.Add(at),
	}
}

func live(localID, msg string, at time.Duration) Notification {
	return Notification{
		LocalID:   localID,
		Type:      types.NotificationNewOrder,
		Title:     "New order",
		Message:   msg,
		CreatedAt: base.Add(at),
		View:      ViewDisplayed,
		ShownAt:   base.Add(at),
	}
}

func keys(list []Notification) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.Key()
	}
	return out
}

func TestTwin(t *testing.T) {
	a := stored(1, "Order #1", 0, false)
	assert.True(t, Twin(a, stored(1, "other text", time.Hour, false), DuplicateWindow))
	assert.False(t, Twin(a, stored(2, "Order #1", 0, false), DuplicateWindow))

	l := live("x", "Order #1", 900*time.Millisecond)
	assert.True(t, Twin(a, l, DuplicateWindow))
	assert.True(t, Twin(l, a, DuplicateWindow))
	assert.False(t, Twin(a, live("y", "Order #1", 1500*time.Millisecond), DuplicateWindow))
	assert.False(t, Twin(a, live("z", "Order #2", 0), DuplicateWindow))

	other := l
	other.Type = types.NotificationItemsAdded
	assert.False(t, Twin(a, other, DuplicateWindow))
}

// A stale client missing three unread items syncs: each new item appears
// once, and the server's read flag wins over an unconfirmed local read.
func TestMergeStaleListTakesServerState(t *testing.T) {
	optimistic := stored(2, "Order #2", 2*time.Second, true)
	optimistic.View = ViewRead
	local := []Notification{
		optimistic,
		stored(1, "Order #1", time.Second, false),
	}
	server := []Notification{
		stored(5, "Order #5", 5*time.Second, false),
		stored(4, "Order #4", 4*time.Second, false),
		stored(3, "Order #3", 3*time.Second, false),
		stored(2, "Order #2", 2*time.Second, false),
		stored(1, "Order #1", time.Second, false),
	}

	merged := Merge(local, server, DuplicateWindow)
	assert.Equal(t, []string{"n:5", "n:4", "n:3", "n:2", "n:1"}, keys(merged))

	for _, n := range merged {
		assert.False(t, n.Read, n.Key())
		assert.NotEqual(t, ViewRead, n.View, n.Key())
	}

	again := Merge(merged, server, DuplicateWindow)
	assert.Equal(t, merged, again)
}

func TestMergeAbsorbsLiveTwin(t *testing.T) {
	local := []Notification{
		live("a", "Order #7 for Table T5: 2 items", 0),
		live("b", "Drinks for the pool", 0),
	}
	server := []Notification{
		stored(7, "Order #7 for Table T5: 2 items", 400*time.Millisecond, false),
	}

	merged := Merge(local, server, DuplicateWindow)
	require.Len(t, merged, 2)

	byKey := map[string]Notification{}
	for _, n := range merged {
		byKey[n.Key()] = n
	}
	require.Contains(t, byKey, "n:7")
	assert.Equal(t, ViewDisplayed, byKey["n:7"].View, "toast progress survives the merge")
	assert.Empty(t, byKey["n:7"].LocalID)
	assert.Contains(t, byKey, "l:b")
}

func TestMergeDropsRecordsGoneFromServer(t *testing.T) {
	local := []Notification{stored(1, "Order #1", 0, false), stored(2, "Order #2", 0, false)}
	server := []Notification{stored(2, "Order #2", 0, true)}

	merged := Merge(local, server, DuplicateWindow)
	require.Len(t, merged, 1)
	assert.Equal(t, uint(2), merged[0].ID)
	assert.True(t, merged[0].Read)
	assert.Equal(t, ViewRead, merged[0].View)
}

func TestMergeTwinMatchesOnce(t *testing.T) {
	local := []Notification{live("a", "Same", 0)}
	server := []Notification{
		stored(8, "Same", 200*time.Millisecond, false),
		stored(9, "Same", 300*time.Millisecond, false),
	}

	merged := Merge(local, server, DuplicateWindow)
	assert.ElementsMatch(t, []string{"n:8", "n:9"}, keys(merged))
}
