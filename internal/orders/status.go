package orders

import (
	"github.com/shopspring/decimal"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
)

var itemRank = map[types.ItemStatus]int{
	types.ItemPending:   0,
	types.ItemAccepted:  1,
	types.ItemPreparing: 2,
	types.ItemReady:     3,
	types.ItemServed:    4,
}

// ValidateItemTransition allows forward moves along
// pending → accepted → preparing → ready → served, skipping steps if needed,
// and cancellation from any non-terminal state. Rejection is reserved for
// the kitchen acknowledgement flow.
func ValidateItemTransition(from, to types.ItemStatus) error {
	if from.Terminal() {
		return apperrors.Conflict(apperrors.CodeInvalidTransition, "Item is already %s", from)
	}
	if to == types.ItemCancelled {
		return nil
	}

	fromRank, okFrom := itemRank[from]
	toRank, okTo := itemRank[to]
	if !okFrom || !okTo || toRank <= fromRank {
		return apperrors.Conflict(apperrors.CodeInvalidTransition, "Cannot move item from %s to %s", from, to)
	}
	return nil
}

var orderRank = map[types.OrderStatus]int{
	types.OrderPending:   0,
	types.OrderPreparing: 1,
	types.OrderReady:     2,
	types.OrderServed:    3,
	types.OrderPaid:      4,
}

// ValidateOrderTransition covers the explicit staff transitions. served
// needs a ready order, paid a served one; cancelling is allowed until the
// food has been served.
func ValidateOrderTransition(from, to types.OrderStatus) error {
	switch to {
	case types.OrderServed:
		if from == types.OrderReady {
			return nil
		}
	case types.OrderPaid:
		if from == types.OrderServed {
			return nil
		}
	case types.OrderCancelled:
		switch from {
		case types.OrderPending, types.OrderPreparing, types.OrderReady:
			return nil
		}
	default:
		return apperrors.Validation("", "Order status %s is derived from its items", to)
	}
	return apperrors.Conflict(apperrors.CodeInvalidTransition, "Cannot move order from %s to %s", from, to)
}

// DeriveOrderStatus computes the kitchen-driven status from item states.
// ok is false when no active item remains.
func DeriveOrderStatus(items []models.OrderItem) (status types.OrderStatus, ok bool) {
	active := 0
	allReady := true
	for _, it := range items {
		if !it.Status.Active() {
			continue
		}
		active++
		if it.Status == types.ItemPending {
			return types.OrderPending, true
		}
		if itemRank[it.Status] < itemRank[types.ItemReady] {
			allReady = false
		}
	}

	switch {
	case active == 0:
		return "", false
	case allReady:
		return types.OrderReady, true
	}
	return types.OrderPreparing, true
}

// NextOrderStatus applies the derived status without ever moving the order
// backwards. served, paid and cancelled orders are left alone.
func NextOrderStatus(current types.OrderStatus, items []models.OrderItem) types.OrderStatus {
	if current != types.OrderPending && current != types.OrderPreparing && current != types.OrderReady {
		return current
	}
	derived, ok := DeriveOrderStatus(items)
	if !ok || orderRank[derived] <= orderRank[current] {
		return current
	}
	return derived
}

// ReopenedOrderStatus is the status after a round adds items: a ready or
// served order goes back to whatever its items now say, so it cannot be
// served or paid while the new round is still in the kitchen.
func ReopenedOrderStatus(current types.OrderStatus, items []models.OrderItem) types.OrderStatus {
	if current != types.OrderReady && current != types.OrderServed {
		return NextOrderStatus(current, items)
	}
	derived, ok := DeriveOrderStatus(items)
	if !ok || derived == types.OrderReady {
		return current
	}
	return derived
}

// RequireKitchenDone fails with INVALID_TRANSITION while an active item has
// not reached ready.
func RequireKitchenDone(to types.OrderStatus, items []models.OrderItem) error {
	for _, it := range items {
		if it.Status.Active() && itemRank[it.Status] < itemRank[types.ItemReady] {
			return apperrors.Conflict(apperrors.CodeInvalidTransition,
				"Cannot mark order %s while item %d is %s", to, it.ID, it.Status)
		}
	}
	return nil
}

// Totals sums the active items and applies the tax rate, both rounded to
// cents.
func Totals(items []models.OrderItem, taxRate decimal.Decimal) (total, tax decimal.Decimal) {
	total = decimal.Zero
	for _, it := range items {
		if it.Status.Active() {
			total = total.Add(it.TotalPrice)
		}
	}
	total = total.Round(2)
	tax = total.Mul(taxRate).Round(2)
	return total, tax
}

func lineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}
