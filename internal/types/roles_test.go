package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Chef ")
	require.NoError(t, err)
	assert.Equal(t, RoleChef, r)

	_, err = ParseRole("sous-chef")
	assert.Error(t, err)
}

func TestCan(t *testing.T) {
	cases := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleWaiter, CapSubmitOrder, true},
		{RoleChef, CapSubmitOrder, false},
		{RoleChef, CapUpdateItemStatus, true},
		{RoleBartender, CapAcknowledgeOrder, true},
		{RoleWaiter, CapUpdateItemStatus, false},
		{RoleWaiter, CapServeItem, true},
		{RoleChef, CapServeItem, false},
		{RoleWaiter, CapTransferItem, false},
		{RoleManager, CapTransferItem, true},
		{RoleAdmin, CapManageTables, true},
		{RoleCustomer, CapViewOrders, false},
		{RoleReceptionist, CapViewTables, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Can(tc.role, tc.cap), "%s/%s", tc.role, tc.cap)
	}
}

func TestKitchenTypeRouting(t *testing.T) {
	assert.Equal(t, "kitchen:chef", KitchenRestaurant.Room())
	assert.Equal(t, "kitchen:bartender", KitchenBar.Room())
	assert.Equal(t, RoleBartender, KitchenBar.StaffRole())

	k, ok := RoleChef.KitchenType()
	assert.True(t, ok)
	assert.Equal(t, KitchenRestaurant, k)

	_, ok = RoleWaiter.KitchenType()
	assert.False(t, ok)

	_, err := ParseKitchenType("pastry")
	assert.Error(t, err)
}

func TestParseItemStatusAlias(t *testing.T) {
	s, err := ParseItemStatus("ready_to_serve")
	require.NoError(t, err)
	assert.Equal(t, ItemReady, s)

	_, err = ParseItemStatus("burnt")
	assert.Error(t, err)

	assert.False(t, ItemRejected.Active())
	assert.True(t, ItemServed.Terminal())
}

func TestOrderStatusPhases(t *testing.T) {
	assert.True(t, OrderServed.Open())
	assert.False(t, OrderCancelled.Open())
	assert.False(t, OrderPaid.Open())
	assert.Len(t, OpenOrderStatuses(), 4)
}
