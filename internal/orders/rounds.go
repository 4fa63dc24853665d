package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/kitchen"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/realtime"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemInput struct {
	MenuItemID          uint
	Quantity            int
	SpecialInstructions string
}

type CreateOrderInput struct {
	RestaurantID        uint
	TableID             *uint
	RoomID              *uint
	OrderType           types.OrderType
	CustomerName        string
	CustomerPhone       string
	SpecialInstructions string
	Items               []ItemInput
}

// CreateOrder opens an order and places its first round.
func (s *Service) CreateOrder(ctx context.Context, actor types.Identity, in CreateOrderInput) (models.Order, error) {
	if !types.Can(actor.Role, types.CapSubmitOrder) {
		return models.Order{}, apperrors.Forbidden("Not allowed to submit orders")
	}
	if in.OrderType == "" {
		in.OrderType = types.OrderTypeDineIn
	}
	if !in.OrderType.Valid() {
		return models.Order{}, apperrors.Validation("", "Unknown order type %q", in.OrderType)
	}
	if in.RestaurantID == 0 {
		return models.Order{}, apperrors.Validation("", "restaurantId is required")
	}
	if in.OrderType.RequiresTable() && in.TableID == nil {
		return models.Order{}, apperrors.Validation("", "Dine-in orders need a table")
	}
	if in.OrderType == types.OrderTypeRoomService && in.RoomID == nil {
		return models.Order{}, apperrors.Validation("", "Room service orders need a room")
	}
	if len(in.Items) == 0 {
		return models.Order{}, apperrors.Validation(apperrors.CodeEmptySubmission, "At least one item is required")
	}

	key := ""
	if in.TableID != nil {
		key = tableKey(*in.TableID)
	}

	var order models.Order
	err := s.run(ctx, key, func(tx *gorm.DB, out *outbox) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, in.RestaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("", "Restaurant %d not found", in.RestaurantID)
			}
			return err
		}

		var table *models.Table
		var tableBefore types.TableStatus
		if in.TableID != nil {
			t, err := s.lockTable(ctx, tx, in.RestaurantID, *in.TableID)
			if err != nil {
				return err
			}
			table = &t

			var open []models.Order
			err = tx.Where("table_id = ? AND status IN ?", t.ID, types.OpenOrderStatuses()).Limit(1).Find(&open).Error
			if err != nil {
				return fmt.Errorf("check open orders: %w", err)
			}
			if len(open) > 0 {
				return apperrors.Conflict(apperrors.CodeTableUnavailable,
					"Table %s already has open order #%d; add a round to it instead", t.TableNumber, open[0].ID)
			}

			if tableBefore, err = s.deriver.Status(ctx, tx, t.ID, s.now()); err != nil {
				return err
			}
		}

		lines, menu, err := s.resolveLines(ctx, tx, in.Items)
		if err != nil {
			return err
		}
		groups, err := s.router.Route(ctx, tx, in.RestaurantID, lines)
		if err != nil {
			return err
		}

		order = models.Order{
			RestaurantID:        in.RestaurantID,
			TableID:             in.TableID,
			RoomID:              in.RoomID,
			UserID:              actor.ID,
			CustomerName:        strings.TrimSpace(in.CustomerName),
			CustomerPhone:       strings.TrimSpace(in.CustomerPhone),
			OrderType:           in.OrderType,
			Status:              types.OrderPending,
			SpecialInstructions: in.SpecialInstructions,
			PlacedAt:            s.now(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.Table = table

		if err := s.placeRound(ctx, tx, &order, actor, groups, menu, out); err != nil {
			return err
		}
		if _, err := s.refresh(ctx, tx, &order, actor.ID, out); err != nil {
			return err
		}
		return s.tableTransition(ctx, tx, table, tableBefore, out)
	})
	if err != nil {
		return models.Order{}, err
	}

	s.log.Info("order created",
		"order_id", order.ID,
		"waiter_id", actor.ID,
		"restaurant_id", order.RestaurantID,
		"total", order.TotalAmount.StringFixed(2))
	return s.GetOrder(ctx, actor, order.ID)
}

// SubmitRound appends a round to an open order.
func (s *Service) SubmitRound(ctx context.Context, actor types.Identity, orderID uint, in []ItemInput) (models.Order, error) {
	if !types.Can(actor.Role, types.CapSubmitOrder) {
		return models.Order{}, apperrors.Forbidden("Not allowed to submit orders")
	}
	if len(in) == 0 {
		return models.Order{}, apperrors.Validation(apperrors.CodeEmptySubmission, "At least one item is required")
	}

	err := s.run(ctx, orderKey(orderID), func(tx *gorm.DB, out *outbox) error {
		order, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.Open() {
			return apperrors.Conflict(apperrors.CodeTableConflict,
				"Order %d was closed (%s) and no longer accepts items", order.ID, order.Status)
		}

		lines, menu, err := s.resolveLines(ctx, tx, in)
		if err != nil {
			return err
		}
		groups, err := s.router.Route(ctx, tx, order.RestaurantID, lines)
		if err != nil {
			return err
		}

		if err := s.placeRound(ctx, tx, &order, actor, groups, menu, out); err != nil {
			return err
		}
		_, err = s.refreshWith(ctx, tx, &order, actor.ID, out, ReopenedOrderStatus)
		return err
	})
	if err != nil {
		return models.Order{}, err
	}

	return s.GetOrder(ctx, actor, orderID)
}

func (s *Service) lockTable(ctx context.Context, tx *gorm.DB, restaurantID, tableID uint) (models.Table, error) {
	var t models.Table
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND restaurant_id = ?", tableID, restaurantID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, apperrors.NotFound(apperrors.CodeTableNotFound, "Table %d not found", tableID)
	}
	return t, err
}

// resolveLines loads the menu items and tags each line with its category's
// kitchen type.
func (s *Service) resolveLines(ctx context.Context, tx *gorm.DB, in []ItemInput) ([]kitchen.Line, map[uint]models.MenuItem, error) {
	ids := make([]uint, 0, len(in))
	for _, it := range in {
		ids = append(ids, it.MenuItemID)
	}

	var rows []models.MenuItem
	if err := tx.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("load menu items: %w", err)
	}
	menu := make(map[uint]models.MenuItem, len(rows))
	for _, m := range rows {
		menu[m.ID] = m
	}

	lines := make([]kitchen.Line, 0, len(in))
	for _, it := range in {
		m, ok := menu[it.MenuItemID]
		if !ok {
			return nil, nil, apperrors.NotFound(apperrors.CodeMenuItemNotFound, "Menu item %d not found", it.MenuItemID)
		}
		if m.Category == nil {
			return nil, nil, apperrors.NotFound(apperrors.CodeCategoryNotFound, "Menu item %d has no category", m.ID)
		}
		if !m.IsAvailable {
			return nil, nil, apperrors.Validation("", "%s is not available", m.Name)
		}
		lines = append(lines, kitchen.Line{
			MenuItemID:          m.ID,
			Quantity:            it.Quantity,
			SpecialInstructions: strings.TrimSpace(it.SpecialInstructions),
			KitchenType:         m.Category.KitchenType,
		})
	}
	return lines, menu, nil
}

// placeRound persists one round and fans it out: one event per destination
// kitchen room and one notification per assigned staff member.
func (s *Service) placeRound(ctx context.Context, tx *gorm.DB, order *models.Order, actor types.Identity, groups []kitchen.Group, menu map[uint]models.MenuItem, out *outbox) error {
	round := order.Rounds + 1

	for _, g := range groups {
		rows := make([]models.OrderItem, 0, len(g.Lines))
		for _, line := range g.Lines {
			m := menu[line.MenuItemID]
			rows = append(rows, models.OrderItem{
				OrderID:             order.ID,
				MenuItemID:          m.ID,
				Round:               round,
				Quantity:            line.Quantity,
				UnitPrice:           m.Price,
				TotalPrice:          lineTotal(m.Price, line.Quantity),
				Status:              types.ItemPending,
				TargetKitchenID:     g.Kitchen.ID,
				KitchenType:         g.KitchenType,
				SpecialInstructions: line.SpecialInstructions,
			})
		}
		if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
			return fmt.Errorf("create items: %w", err)
		}

		payload := realtime.KitchenOrder{
			OrderID:             order.ID,
			TableID:             order.TableID,
			OrderType:           order.OrderType,
			KitchenID:           g.Kitchen.ID,
			KitchenType:         g.KitchenType,
			Round:               round,
			WaiterID:            actor.ID,
			WaiterName:          actor.Name,
			SpecialInstructions: order.SpecialInstructions,
			PlacedAt:            s.now(),
		}
		if order.Table != nil {
			payload.TableNumber = order.Table.TableNumber
		}
		for _, row := range rows {
			payload.Items = append(payload.Items, realtime.KitchenOrderItem{
				ItemID:              row.ID,
				MenuItemID:          row.MenuItemID,
				Name:                menu[row.MenuItemID].Name,
				Quantity:            row.Quantity,
				SpecialInstructions: row.SpecialInstructions,
			})
		}

		draft := roundDraft(order, payload)
		recipients, err := s.staffIDs(ctx, tx, g.Kitchen.ID, g.KitchenType)
		if err != nil {
			return err
		}
		if _, err := s.notes.CreateForUsers(ctx, tx, recipients, draft); err != nil {
			return err
		}

		event := realtime.EventNewKitchenOrder
		if round > 1 {
			event = realtime.EventOrderItemsAdded
		}
		out.emit(realtime.Envelope{
			Rooms:     []string{g.KitchenType.Room()},
			Event:     event,
			Data:      payload,
			Notice:    notice(draft),
			NoticeFor: recipients,
		})
	}

	if err := tx.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Update("rounds", round).Error; err != nil {
		return fmt.Errorf("update rounds: %w", err)
	}
	order.Rounds = round
	return nil
}
