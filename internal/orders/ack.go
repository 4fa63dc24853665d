package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/realtime"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/gorm"
)

type AcceptInput struct {
	EstimatedMinutes *int
	Notes            string
}

// kitchenItems returns the order's items routed to kitchenID whose status is
// in statuses. An order with no items at all for the kitchen is not found
// from that kitchen's point of view.
func (s *Service) kitchenItems(ctx context.Context, tx *gorm.DB, orderID, kitchenID uint, statuses ...types.ItemStatus) ([]models.OrderItem, error) {
	var total int64
	if err := tx.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ? AND target_kitchen_id = ?", orderID, kitchenID).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count kitchen items: %w", err)
	}
	if total == 0 {
		return nil, apperrors.NotFound(apperrors.CodeOrderNotFound, "Order %d has no items for kitchen %d", orderID, kitchenID)
	}

	var items []models.OrderItem
	err := tx.WithContext(ctx).
		Where("order_id = ? AND target_kitchen_id = ? AND status IN ?", orderID, kitchenID, statuses).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load kitchen items: %w", err)
	}
	return items, nil
}

func (s *Service) acknowledge(ctx context.Context, tx *gorm.DB, actor types.Identity, kitchenID uint) (models.Restaurant, error) {
	if !types.Can(actor.Role, types.CapAcknowledgeOrder) {
		return models.Restaurant{}, apperrors.Forbidden("Not allowed to acknowledge kitchen orders")
	}
	k, err := s.directory.Kitchen(ctx, tx, kitchenID)
	if err != nil {
		return k, err
	}
	return k, s.requireKitchenStaff(ctx, tx, actor, kitchenID)
}

// AcceptOrder acknowledges a kitchen's share of an order: its pending items
// move to accepted and the submitting waiter is told.
func (s *Service) AcceptOrder(ctx context.Context, actor types.Identity, kitchenID, orderID uint, in AcceptInput) (models.KitchenAcknowledgement, error) {
	if in.EstimatedMinutes != nil && *in.EstimatedMinutes < 0 {
		return models.KitchenAcknowledgement{}, apperrors.Validation("", "estimatedMinutes must not be negative")
	}

	var ack models.KitchenAcknowledgement
	err := s.run(ctx, orderKey(orderID), func(tx *gorm.DB, out *outbox) error {
		k, err := s.acknowledge(ctx, tx, actor, kitchenID)
		if err != nil {
			return err
		}
		order, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		pending, err := s.kitchenItems(ctx, tx, order.ID, k.ID, types.ItemPending)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return apperrors.Conflict(apperrors.CodeInvalidTransition, "Order %d has no pending items for %s", order.ID, k.Name)
		}

		ids := make([]uint, len(pending))
		for i, it := range pending {
			ids[i] = it.ID
		}
		err = tx.Model(&models.OrderItem{}).Where("id IN ?", ids).Updates(map[string]any{
			"status":      types.ItemAccepted,
			"accepted_at": s.now(),
		}).Error
		if err != nil {
			return fmt.Errorf("accept items: %w", err)
		}

		ack = models.KitchenAcknowledgement{
			OrderID:          order.ID,
			KitchenID:        k.ID,
			Status:           models.AckAccepted,
			EstimatedMinutes: in.EstimatedMinutes,
			Notes:            strings.TrimSpace(in.Notes),
			ActorID:          actor.ID,
			ItemCount:        len(ids),
		}
		if err := tx.Create(&ack).Error; err != nil {
			return fmt.Errorf("record acknowledgement: %w", err)
		}

		payload := realtime.KitchenAck{
			OrderID:          order.ID,
			KitchenID:        k.ID,
			KitchenType:      k.RestaurantType,
			Status:           models.AckAccepted,
			ItemIDs:          ids,
			EstimatedMinutes: ack.EstimatedMinutes,
			Notes:            ack.Notes,
			ActorID:          actor.ID,
		}
		draft := acceptedDraft(&order, k, payload)
		if _, err := s.notes.Create(ctx, tx, order.UserID, draft); err != nil {
			return err
		}
		out.emit(realtime.Envelope{
			Rooms:  []string{realtime.UserRoom(order.UserID)},
			Event:  realtime.EventKitchenOrderAccepted,
			Data:      payload,
			Notice:    notice(draft),
			NoticeFor: []uint{order.UserID},
		})

		_, err = s.refresh(ctx, tx, &order, actor.ID, out)
		return err
	})
	if err != nil {
		return models.KitchenAcknowledgement{}, err
	}
	return ack, nil
}

// RejectOrder rejects a kitchen's unfinished share of an order. Those items
// become rejected, which is terminal; other kitchens' items are untouched.
func (s *Service) RejectOrder(ctx context.Context, actor types.Identity, kitchenID, orderID uint, reason string) (models.KitchenAcknowledgement, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.KitchenAcknowledgement{}, apperrors.Validation("", "A rejection reason is required")
	}

	var ack models.KitchenAcknowledgement
	err := s.run(ctx, orderKey(orderID), func(tx *gorm.DB, out *outbox) error {
		k, err := s.acknowledge(ctx, tx, actor, kitchenID)
		if err != nil {
			return err
		}
		order, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		open, err := s.kitchenItems(ctx, tx, order.ID, k.ID, types.ItemPending, types.ItemAccepted, types.ItemPreparing)
		if err != nil {
			return err
		}
		if len(open) == 0 {
			return apperrors.Conflict(apperrors.CodeInvalidTransition, "Order %d has no unfinished items for %s", order.ID, k.Name)
		}

		ids := make([]uint, len(open))
		for i, it := range open {
			ids[i] = it.ID
		}
		err = tx.Model(&models.OrderItem{}).Where("id IN ?", ids).Updates(map[string]any{
			"status":              types.ItemRejected,
			"cancelled_at":        s.now(),
			"cancelled_by":        actor.ID,
			"cancellation_reason": reason,
		}).Error
		if err != nil {
			return fmt.Errorf("reject items: %w", err)
		}

		ack = models.KitchenAcknowledgement{
			OrderID:   order.ID,
			KitchenID: k.ID,
			Status:    models.AckRejected,
			Reason:    reason,
			ActorID:   actor.ID,
			ItemCount: len(ids),
		}
		if err := tx.Create(&ack).Error; err != nil {
			return fmt.Errorf("record acknowledgement: %w", err)
		}

		draft := rejectedDraft(&order, k, reason, len(ids))
		if _, err := s.notes.Create(ctx, tx, order.UserID, draft); err != nil {
			return err
		}
		out.emit(realtime.Envelope{
			Rooms: []string{realtime.UserRoom(order.UserID)},
			Event: realtime.EventKitchenOrderRejected,
			Data: realtime.KitchenAck{
				OrderID:     order.ID,
				KitchenID:   k.ID,
				KitchenType: k.RestaurantType,
				Status:      models.AckRejected,
				ItemIDs:     ids,
				Reason:      reason,
				ActorID:     actor.ID,
			},
			Notice:    notice(draft),
			NoticeFor: []uint{order.UserID},
		})

		if s.alerts != nil {
			alertOrder, count := order, len(ids)
			out.then(func(ctx context.Context) { s.alerts.OrderRejected(ctx, k, alertOrder, reason, count) })
		}

		_, err = s.refresh(ctx, tx, &order, actor.ID, out)
		return err
	})
	if err != nil {
		return models.KitchenAcknowledgement{}, err
	}

	s.log.Warn("kitchen rejected order",
		"order_id", orderID,
		"kitchen_id", kitchenID,
		"actor_id", actor.ID,
		"reason", reason)
	return ack, nil
}
