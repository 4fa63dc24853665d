package types

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleWaiter       Role = "waiter"
	RoleChef         Role = "chef"
	RoleBartender    Role = "bartender"
	RoleReceptionist Role = "receptionist"
	RoleCustomer     Role = "customer"
)

var allRoles = []Role{RoleAdmin, RoleManager, RoleWaiter, RoleChef, RoleBartender, RoleReceptionist, RoleCustomer}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allRoles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Supervisor roles see every room and may act on any kitchen.
func (r Role) Supervisor() bool {
	return r == RoleAdmin || r == RoleManager
}

// KitchenType returns the kitchen a kitchen-staff role works in.
func (r Role) KitchenType() (KitchenType, bool) {
	switch r {
	case RoleChef:
		return KitchenRestaurant, true
	case RoleBartender:
		return KitchenBar, true
	}
	return "", false
}

type Capability string

const (
	CapSubmitOrder      Capability = "submit_order"
	CapUpdateItemStatus Capability = "update_item_status"
	CapServeItem        Capability = "serve_item"
	CapAcknowledgeOrder Capability = "acknowledge_kitchen"
	CapCancelItem       Capability = "cancel_item"
	CapTransferItem     Capability = "transfer_item"
	CapCloseOrder       Capability = "close_order"
	CapManageTables     Capability = "manage_tables"
	CapViewKitchenQueue Capability = "view_kitchen_queue"
	CapViewOrders       Capability = "view_orders"
	CapViewTables       Capability = "view_tables"
)

var capabilities = map[Capability][]Role{
	CapSubmitOrder:      {RoleWaiter},
	CapUpdateItemStatus: {RoleChef, RoleBartender},
	CapServeItem:        {RoleWaiter},
	CapAcknowledgeOrder: {RoleChef, RoleBartender},
	CapCancelItem:       {RoleWaiter},
	CapTransferItem:     {},
	CapCloseOrder:       {RoleWaiter},
	CapManageTables:     {},
	CapViewKitchenQueue: {RoleChef, RoleBartender},
	CapViewOrders:       {RoleWaiter, RoleChef, RoleBartender},
	CapViewTables:       {RoleWaiter, RoleReceptionist},
}

// Can is the one capability check every endpoint goes through. Supervisors
// hold every capability.
func Can(r Role, c Capability) bool {
	if r.Supervisor() {
		return true
	}
	for _, allowed := range capabilities[c] {
		if allowed == r {
			return true
		}
	}
	return false
}

type KitchenType string

const (
	KitchenRestaurant KitchenType = "restaurant"
	KitchenBar        KitchenType = "bar"
)

func ParseKitchenType(s string) (KitchenType, error) {
	switch k := KitchenType(strings.ToLower(strings.TrimSpace(s))); k {
	case KitchenRestaurant, KitchenBar:
		return k, nil
	}
	return "", fmt.Errorf("unknown kitchen type %q", s)
}

// StaffRole is the role that prepares items in this kitchen.
func (k KitchenType) StaffRole() Role {
	if k == KitchenBar {
		return RoleBartender
	}
	return RoleChef
}

// Room is the pub/sub room for this kitchen's staff.
func (k KitchenType) Room() string {
	return "kitchen:" + string(k.StaffRole())
}
