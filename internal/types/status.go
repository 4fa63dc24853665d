package types

import (
	"fmt"
	"strings"
)

type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemAccepted  ItemStatus = "accepted"
	ItemPreparing ItemStatus = "preparing"
	ItemReady     ItemStatus = "ready"
	ItemServed    ItemStatus = "served"
	ItemCancelled ItemStatus = "cancelled"
	ItemRejected  ItemStatus = "rejected"
)

// ParseItemStatus accepts ready_to_serve as an alias of ready.
func ParseItemStatus(s string) (ItemStatus, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "ready_to_serve" {
		return ItemReady, nil
	}
	switch st := ItemStatus(v); st {
	case ItemPending, ItemAccepted, ItemPreparing, ItemReady, ItemServed, ItemCancelled, ItemRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown item status %q", s)
}

// Active items count toward the order total and its derived status.
func (s ItemStatus) Active() bool {
	return s != ItemCancelled && s != ItemRejected
}

func (s ItemStatus) Terminal() bool {
	return s == ItemServed || s == ItemCancelled || s == ItemRejected
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderPending, OrderPreparing, OrderReady, OrderServed, OrderPaid, OrderCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Open orders keep their table occupied and accept new rounds. The bill
// closes with paid.
func (s OrderStatus) Open() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderServed:
		return true
	}
	return false
}

var openOrderStatuses = []OrderStatus{OrderPending, OrderPreparing, OrderReady, OrderServed}

func OpenOrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(openOrderStatuses))
	copy(out, openOrderStatuses)
	return out
}
