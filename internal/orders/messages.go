package orders

import (
	"fmt"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/notifications"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/realtime"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
)

func location(order *models.Order) string {
	switch {
	case order.Table != nil:
		return "Table " + order.Table.TableNumber
	case order.OrderType == types.OrderTypeRoomService && order.RoomID != nil:
		return fmt.Sprintf("Room %d", *order.RoomID)
	case order.OrderType == types.OrderTypeTakeaway:
		return "Takeaway"
	case order.OrderType == types.OrderTypeBar:
		return "Bar counter"
	}
	return "Walk-in"
}

func itemCount(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

func itemName(item models.OrderItem) string {
	if item.MenuItem != nil && item.MenuItem.Name != "" {
		return item.MenuItem.Name
	}
	return fmt.Sprintf("Item %d", item.ID)
}

func notice(d notifications.Draft) *realtime.Notice {
	return &realtime.Notice{Type: d.Type, Title: d.Title, Message: d.Message}
}

func roundDraft(order *models.Order, payload realtime.KitchenOrder) notifications.Draft {
	data := map[string]any{
		"orderId":     order.ID,
		"kitchenId":   payload.KitchenID,
		"kitchenType": payload.KitchenType,
		"round":       payload.Round,
		"tableId":     order.TableID,
	}
	if payload.Round == 1 {
		return notifications.Draft{
			Type:    types.NotificationNewOrder,
			Title:   "New order",
			Message: fmt.Sprintf("Order #%d for %s: %s", order.ID, location(order), itemCount(len(payload.Items))),
			Data:    data,
		}
	}
	return notifications.Draft{
		Type:    types.NotificationItemsAdded,
		Title:   "Items added",
		Message: fmt.Sprintf("Order #%d for %s: %s added in round %d", order.ID, location(order), itemCount(len(payload.Items)), payload.Round),
		Data:    data,
	}
}

func orderReadyDraft(order *models.Order) notifications.Draft {
	return notifications.Draft{
		Type:    types.NotificationOrderUpdate,
		Title:   "Order ready",
		Message: fmt.Sprintf("Order #%d for %s is ready to serve", order.ID, location(order)),
		Data:    map[string]any{"orderId": order.ID, "tableId": order.TableID, "status": order.Status},
	}
}

func acceptedDraft(order *models.Order, k models.Restaurant, ack realtime.KitchenAck) notifications.Draft {
	msg := fmt.Sprintf("%s accepted order #%d for %s", k.Name, order.ID, location(order))
	if ack.EstimatedMinutes != nil {
		msg += fmt.Sprintf(" (about %d min)", *ack.EstimatedMinutes)
	}
	return notifications.Draft{
		Type:    types.NotificationOrderAccepted,
		Title:   "Order accepted",
		Message: msg,
		Data:    map[string]any{"orderId": order.ID, "kitchenId": k.ID, "estimatedMinutes": ack.EstimatedMinutes, "notes": ack.Notes},
	}
}

func rejectedDraft(order *models.Order, k models.Restaurant, reason string, n int) notifications.Draft {
	return notifications.Draft{
		Type:    types.NotificationOrderRejected,
		Title:   "Order rejected",
		Message: fmt.Sprintf("%s rejected %s on order #%d for %s: %s", k.Name, itemCount(n), order.ID, location(order), reason),
		Data:    map[string]any{"orderId": order.ID, "kitchenId": k.ID, "reason": reason},
	}
}

func transferDraft(order *models.Order, item models.OrderItem, from, to models.Restaurant) notifications.Draft {
	return notifications.Draft{
		Type:    types.NotificationOrderTransfer,
		Title:   "Item transferred",
		Message: fmt.Sprintf("%s on order #%d was moved from %s to %s", itemName(item), order.ID, from.Name, to.Name),
		Data:    map[string]any{"orderId": order.ID, "itemId": item.ID, "fromKitchenId": from.ID, "toKitchenId": to.ID},
	}
}

func cancelledItemDraft(order *models.Order, item models.OrderItem, reason string) notifications.Draft {
	return notifications.Draft{
		Type:    types.NotificationOrderUpdate,
		Title:   "Item cancelled",
		Message: fmt.Sprintf("%s on order #%d for %s was cancelled: %s", itemName(item), order.ID, location(order), reason),
		Data:    map[string]any{"orderId": order.ID, "itemId": item.ID, "reason": reason},
	}
}

func cancelledOrderDraft(order *models.Order) notifications.Draft {
	return notifications.Draft{
		Type:    types.NotificationOrderUpdate,
		Title:   "Order cancelled",
		Message: fmt.Sprintf("Order #%d for %s was cancelled", order.ID, location(order)),
		Data:    map[string]any{"orderId": order.ID, "status": types.OrderCancelled},
	}
}
