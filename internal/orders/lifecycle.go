package orders

import (
	"context"
	"fmt"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/realtime"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/gorm"
)

const orderCancelledReason = "Order cancelled"

// UpdateOrderStatus applies an explicit staff transition: served, paid or
// cancelled. The kitchen-driven statuses are only ever derived.
func (s *Service) UpdateOrderStatus(ctx context.Context, actor types.Identity, orderID uint, status string) (models.Order, error) {
	if !types.Can(actor.Role, types.CapCloseOrder) {
		return models.Order{}, apperrors.Forbidden("Not allowed to change order status")
	}
	next, err := types.ParseOrderStatus(status)
	if err != nil {
		return models.Order{}, apperrors.Validation("", "Unknown order status %q", status)
	}

	err = s.run(ctx, orderKey(orderID), func(tx *gorm.DB, out *outbox) error {
		order, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		previous := order.Status
		if err := ValidateOrderTransition(previous, next); err != nil {
			return err
		}
		if next == types.OrderServed || next == types.OrderPaid {
			items, err := s.loadItems(ctx, tx, order.ID)
			if err != nil {
				return err
			}
			if err := RequireKitchenDone(next, items); err != nil {
				return err
			}
		}

		var tableBefore types.TableStatus
		if order.Table != nil {
			if tableBefore, err = s.deriver.Status(ctx, tx, order.Table.ID, s.now()); err != nil {
				return err
			}
		}

		now := s.now()
		switch next {
		case types.OrderServed:
			err = tx.Model(&models.OrderItem{}).
				Where("order_id = ? AND status = ?", order.ID, types.ItemReady).
				Updates(map[string]any{"status": types.ItemServed, "served_at": now}).Error
			if err != nil {
				return fmt.Errorf("serve items: %w", err)
			}
		case types.OrderCancelled:
			if err := s.cancelRemaining(ctx, tx, &order, actor, out); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", next).Error; err != nil {
			return fmt.Errorf("update order %d: %w", order.ID, err)
		}
		order.Status = next

		// Totals drop cancelled items; the status is already final here so
		// refresh only rewrites amounts.
		if _, err := s.refresh(ctx, tx, &order, actor.ID, out); err != nil {
			return err
		}
		if err := s.orderStatusChanged(ctx, tx, &order, previous, actor.ID, out); err != nil {
			return err
		}

		if next == types.OrderPaid || next == types.OrderCancelled {
			return s.tableTransition(ctx, tx, order.Table, tableBefore, out)
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.log.Info("order status changed",
		"order_id", orderID,
		"status", next,
		"actor_id", actor.ID)
	return s.GetOrder(ctx, actor, orderID)
}

// cancelRemaining cancels every non-terminal item and tells each affected
// kitchen once.
func (s *Service) cancelRemaining(ctx context.Context, tx *gorm.DB, order *models.Order, actor types.Identity, out *outbox) error {
	items, err := s.loadItems(ctx, tx, order.ID)
	if err != nil {
		return err
	}

	var ids []uint
	type target struct {
		id   uint
		kind types.KitchenType
	}
	var kitchens []target
	seen := map[uint]bool{}
	for _, it := range items {
		if it.Status.Terminal() {
			continue
		}
		ids = append(ids, it.ID)
		if !seen[it.TargetKitchenID] {
			seen[it.TargetKitchenID] = true
			kitchens = append(kitchens, target{it.TargetKitchenID, it.KitchenType})
		}
	}
	if len(ids) == 0 {
		return nil
	}

	err = tx.Model(&models.OrderItem{}).Where("id IN ?", ids).Updates(map[string]any{
		"status":              types.ItemCancelled,
		"cancelled_at":        s.now(),
		"cancelled_by":        actor.ID,
		"cancellation_reason": orderCancelledReason,
	}).Error
	if err != nil {
		return fmt.Errorf("cancel items: %w", err)
	}

	draft := cancelledOrderDraft(order)
	for _, k := range kitchens {
		recipients, err := s.staffIDs(ctx, tx, k.id, k.kind)
		if err != nil {
			return err
		}
		if _, err := s.notes.CreateForUsers(ctx, tx, recipients, draft); err != nil {
			return err
		}
		out.emit(realtime.Envelope{
			Rooms: []string{k.kind.Room()},
			Event: realtime.EventOrderStatusUpdated,
			Data: realtime.OrderStatusChange{
				OrderID:        order.ID,
				TableID:        order.TableID,
				Status:         types.OrderCancelled,
				PreviousStatus: order.Status,
				TotalAmount:    order.TotalAmount.StringFixed(2),
				TaxAmount:      order.TaxAmount.StringFixed(2),
				ActorID:        actor.ID,
			},
			Notice:    notice(draft),
			NoticeFor: recipients,
		})
	}
	return nil
}
