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

type ItemStatusInput struct {
	Status    string
	ChefNotes *string
}

// UpdateItemStatus moves one item forward. Kitchen staff drive
// accepted/preparing/ready on their own kitchen's items; waiters mark items
// served.
func (s *Service) UpdateItemStatus(ctx context.Context, actor types.Identity, orderID, itemID uint, in ItemStatusInput) (models.OrderItem, error) {
	next, err := types.ParseItemStatus(in.Status)
	if err != nil {
		return models.OrderItem{}, apperrors.Validation("", "Unknown item status %q", in.Status)
	}
	switch next {
	case types.ItemCancelled:
		return models.OrderItem{}, apperrors.Validation("", "Cancel items through the cancel action with a reason")
	case types.ItemRejected:
		return models.OrderItem{}, apperrors.Validation("", "Reject items through the kitchen reject action")
	case types.ItemServed:
		if !types.Can(actor.Role, types.CapServeItem) {
			return models.OrderItem{}, apperrors.Forbidden("Not allowed to serve items")
		}
	default:
		if !types.Can(actor.Role, types.CapUpdateItemStatus) {
			return models.OrderItem{}, apperrors.Forbidden("Not allowed to update item status")
		}
	}

	var item models.OrderItem
	err = s.run(ctx, orderKey(orderID), func(tx *gorm.DB, out *outbox) error {
		order, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		item, err = s.loadItem(ctx, tx, orderID, itemID)
		if err != nil {
			return err
		}
		if next != types.ItemServed {
			if err := s.requireKitchenStaff(ctx, tx, actor, item.TargetKitchenID); err != nil {
				return err
			}
		}

		previous := item.Status
		if err := ValidateItemTransition(previous, next); err != nil {
			return err
		}

		now := s.now()
		updates := map[string]any{"status": next}
		if in.ChefNotes != nil {
			updates["chef_notes"] = strings.TrimSpace(*in.ChefNotes)
			item.ChefNotes = strings.TrimSpace(*in.ChefNotes)
		}
		if item.AcceptedAt == nil {
			updates["accepted_at"] = now
			item.AcceptedAt = stamp(now)
		}
		if itemRank[next] >= itemRank[types.ItemReady] && item.ReadyAt == nil {
			updates["ready_at"] = now
			item.ReadyAt = stamp(now)
		}
		if next == types.ItemServed {
			updates["served_at"] = now
			item.ServedAt = stamp(now)
		}
		if err := tx.Model(&models.OrderItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update item %d: %w", item.ID, err)
		}
		item.Status = next

		out.emit(realtime.Envelope{
			Rooms: orderWatchRooms(&order),
			Event: realtime.EventItemStatusUpdated,
			Data: realtime.ItemStatusChange{
				OrderID:        order.ID,
				ItemID:         item.ID,
				TableID:        order.TableID,
				KitchenID:      item.TargetKitchenID,
				KitchenType:    item.KitchenType,
				Status:         next,
				PreviousStatus: previous,
				ChefNotes:      item.ChefNotes,
				ActorID:        actor.ID,
			},
		})

		_, err = s.refresh(ctx, tx, &order, actor.ID, out)
		return err
	})
	if err != nil {
		return models.OrderItem{}, err
	}
	return item, nil
}

// CancelItem cancels an item that has not been served and records who did
// it and why.
func (s *Service) CancelItem(ctx context.Context, actor types.Identity, orderID, itemID uint, reason string) (models.OrderItem, error) {
	if !types.Can(actor.Role, types.CapCancelItem) {
		return models.OrderItem{}, apperrors.Forbidden("Not allowed to cancel items")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.OrderItem{}, apperrors.Validation("", "A cancellation reason is required")
	}

	var item models.OrderItem
	err := s.run(ctx, orderKey(orderID), func(tx *gorm.DB, out *outbox) error {
		order, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		item, err = s.loadItem(ctx, tx, orderID, itemID)
		if err != nil {
			return err
		}

		previous := item.Status
		if err := ValidateItemTransition(previous, types.ItemCancelled); err != nil {
			return err
		}

		now := s.now()
		err = tx.Model(&models.OrderItem{}).Where("id = ?", item.ID).Updates(map[string]any{
			"status":              types.ItemCancelled,
			"cancelled_at":        now,
			"cancelled_by":        actor.ID,
			"cancellation_reason": reason,
		}).Error
		if err != nil {
			return fmt.Errorf("cancel item %d: %w", item.ID, err)
		}
		item.Status = types.ItemCancelled
		item.CancelledAt = stamp(now)
		item.CancelledBy = &actor.ID
		item.CancellationReason = reason

		change := realtime.ItemStatusChange{
			OrderID:        order.ID,
			ItemID:         item.ID,
			TableID:        order.TableID,
			KitchenID:      item.TargetKitchenID,
			KitchenType:    item.KitchenType,
			Status:         types.ItemCancelled,
			PreviousStatus: previous,
			Reason:         reason,
			ActorID:        actor.ID,
		}
		out.emit(realtime.Envelope{Rooms: orderWatchRooms(&order), Event: realtime.EventItemStatusUpdated, Data: change})

		draft := cancelledItemDraft(&order, item, reason)
		recipients, err := s.staffIDs(ctx, tx, item.TargetKitchenID, item.KitchenType)
		if err != nil {
			return err
		}
		if _, err := s.notes.CreateForUsers(ctx, tx, recipients, draft); err != nil {
			return err
		}
		out.emit(realtime.Envelope{
			Rooms:     []string{item.KitchenType.Room()},
			Event:     realtime.EventItemStatusUpdated,
			Data:      change,
			Notice:    notice(draft),
			NoticeFor: recipients,
		})

		_, err = s.refresh(ctx, tx, &order, actor.ID, out)
		return err
	})
	if err != nil {
		return models.OrderItem{}, err
	}
	return item, nil
}

// TransferItem moves a not-yet-started item to another active kitchen of
// the same type. The item goes back to pending there.
func (s *Service) TransferItem(ctx context.Context, actor types.Identity, orderID, itemID, toKitchenID uint) (models.OrderItem, error) {
	if !types.Can(actor.Role, types.CapTransferItem) {
		return models.OrderItem{}, apperrors.Forbidden("Not allowed to transfer items")
	}

	var item models.OrderItem
	err := s.run(ctx, orderKey(orderID), func(tx *gorm.DB, out *outbox) error {
		order, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		item, err = s.loadItem(ctx, tx, orderID, itemID)
		if err != nil {
			return err
		}
		if item.Status != types.ItemPending && item.Status != types.ItemAccepted {
			return apperrors.Conflict(apperrors.CodeInvalidTransition, "Only pending or accepted items can be transferred, item is %s", item.Status)
		}
		if item.TargetKitchenID == toKitchenID {
			return apperrors.Validation("", "Item is already routed to kitchen %d", toKitchenID)
		}

		to, err := s.directory.Kitchen(ctx, tx, toKitchenID)
		if err != nil {
			return err
		}
		if !to.IsActive {
			return apperrors.Validation("", "Kitchen %s is not active", to.Name)
		}
		if to.RestaurantType != item.KitchenType {
			return apperrors.Validation(apperrors.CodeInvalidKitchenType, "Kitchen %s prepares %s items, not %s", to.Name, to.RestaurantType, item.KitchenType)
		}
		from, err := s.directory.Kitchen(ctx, tx, item.TargetKitchenID)
		if err != nil {
			return err
		}

		err = tx.Model(&models.OrderItem{}).Where("id = ?", item.ID).Updates(map[string]any{
			"target_kitchen_id": to.ID,
			"status":            types.ItemPending,
			"accepted_at":       nil,
		}).Error
		if err != nil {
			return fmt.Errorf("transfer item %d: %w", item.ID, err)
		}
		item.TargetKitchenID = to.ID
		item.Status = types.ItemPending
		item.AcceptedAt = nil

		draft := transferDraft(&order, item, from, to)
		recipients, err := s.staffIDs(ctx, tx, to.ID, to.RestaurantType)
		if err != nil {
			return err
		}
		if _, err := s.notes.CreateForUsers(ctx, tx, recipients, draft); err != nil {
			return err
		}
		transfer := realtime.Transfer{
			OrderID:       order.ID,
			ItemID:        item.ID,
			FromKitchenID: from.ID,
			ToKitchenID:   to.ID,
			KitchenType:   to.RestaurantType,
			ActorID:       actor.ID,
		}
		out.emit(realtime.Envelope{
			Rooms:     []string{to.RestaurantType.Room()},
			Event:     realtime.EventOrderTransferred,
			Data:      transfer,
			Notice:    notice(draft),
			NoticeFor: recipients,
		})
		out.emit(realtime.Envelope{
			Rooms: []string{realtime.UserRoom(order.UserID), realtime.RoomManager},
			Event: realtime.EventOrderTransferred,
			Data:  transfer,
		})

		if s.alerts != nil {
			alertOrder, alertItem := order, item
			out.then(func(ctx context.Context) { s.alerts.ItemTransferred(ctx, from, to, alertOrder, alertItem) })
		}

		_, err = s.refresh(ctx, tx, &order, actor.ID, out)
		return err
	})
	if err != nil {
		return models.OrderItem{}, err
	}
	return item, nil
}
