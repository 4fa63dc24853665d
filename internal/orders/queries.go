package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// GetOrder loads an order with its items and table. Customers only see
// their own orders; anyone else without CapViewOrders is refused.
func (s *Service) GetOrder(ctx context.Context, actor types.Identity, id uint) (models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.MenuItem").
		Preload("Table").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, apperrors.NotFound(apperrors.CodeOrderNotFound, "Order %d not found", id)
	}
	if err != nil {
		return order, fmt.Errorf("get order %d: %w", id, err)
	}

	if actor.Role == types.RoleCustomer {
		if order.UserID != actor.ID {
			return models.Order{}, apperrors.NotFound(apperrors.CodeOrderNotFound, "Order %d not found", id)
		}
		return order, nil
	}
	if !types.Can(actor.Role, types.CapViewOrders) {
		return models.Order{}, apperrors.Forbidden("Not allowed to view orders")
	}
	return order, nil
}

type ListFilter struct {
	RestaurantID uint
	Status       types.OrderStatus
	TableID      uint
	Page         int
	Limit        int
}

// ListOrders pages through orders, newest first.
func (s *Service) ListOrders(ctx context.Context, actor types.Identity, f ListFilter) ([]models.Order, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	switch {
	case actor.Role == types.RoleCustomer:
		q = q.Where("user_id = ?", actor.ID)
	case !types.Can(actor.Role, types.CapViewOrders):
		return nil, 0, apperrors.Forbidden("Not allowed to view orders")
	}

	if f.RestaurantID != 0 {
		q = q.Where("restaurant_id = ?", f.RestaurantID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.TableID != 0 {
		q = q.Where("table_id = ?", f.TableID)
	}

	page, limit := pageBounds(f.Page, f.Limit)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	var list []models.Order
	err := q.Session(&gorm.Session{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Table").
		Order("placed_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return list, total, nil
}

func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// Ticket is one order as a kitchen sees it: only the items routed there.
type Ticket struct {
	OrderID             uint               `json:"orderId"`
	TableID             *uint              `json:"tableId"`
	TableNumber         string             `json:"tableNumber,omitempty"`
	OrderType           types.OrderType    `json:"orderType"`
	WaiterID            uint               `json:"waiterId"`
	SpecialInstructions string             `json:"specialInstructions,omitempty"`
	PlacedAt            time.Time          `json:"placedAt"`
	Items               []models.OrderItem `json:"items"`
}

var queueStatuses = []types.ItemStatus{types.ItemPending, types.ItemAccepted, types.ItemPreparing, types.ItemReady}

// KitchenQueue lists the kitchen's outstanding work, oldest order first.
func (s *Service) KitchenQueue(ctx context.Context, actor types.Identity, kitchenID uint) ([]Ticket, error) {
	if !types.Can(actor.Role, types.CapViewKitchenQueue) {
		return nil, apperrors.Forbidden("Not allowed to view kitchen queues")
	}
	db := s.db.WithContext(ctx)
	if _, err := s.directory.Kitchen(ctx, db, kitchenID); err != nil {
		return nil, err
	}
	if err := s.requireKitchenStaff(ctx, db, actor, kitchenID); err != nil {
		return nil, err
	}

	var items []models.OrderItem
	err := db.Preload("MenuItem").
		Where("target_kitchen_id = ? AND status IN ?", kitchenID, queueStatuses).
		Order("order_id, id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load kitchen queue: %w", err)
	}
	if len(items) == 0 {
		return []Ticket{}, nil
	}

	var orderIDs []uint
	byOrder := map[uint][]models.OrderItem{}
	for _, it := range items {
		if _, ok := byOrder[it.OrderID]; !ok {
			orderIDs = append(orderIDs, it.OrderID)
		}
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	var list []models.Order
	if err := db.Preload("Table").Where("id IN ?", orderIDs).Order("placed_at, id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("load queued orders: %w", err)
	}

	tickets := make([]Ticket, 0, len(list))
	for _, o := range list {
		t := Ticket{
			OrderID:             o.ID,
			TableID:             o.TableID,
			OrderType:           o.OrderType,
			WaiterID:            o.UserID,
			SpecialInstructions: o.SpecialInstructions,
			PlacedAt:            o.PlacedAt,
			Items:               byOrder[o.ID],
		}
		if o.Table != nil {
			t.TableNumber = o.Table.TableNumber
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}
