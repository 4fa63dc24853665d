package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/kitchen"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/notifications"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/realtime"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/tables"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Alerter receives manager-facing alerts after commit.
type Alerter interface {
	OrderRejected(ctx context.Context, kitchen models.Restaurant, order models.Order, reason string, itemCount int)
	ItemTransferred(ctx context.Context, from, to models.Restaurant, order models.Order, item models.OrderItem)
}

// TableObserver is told about table status changes this service announced.
type TableObserver interface {
	Observe(tableID uint, status types.TableStatus)
}

// Service is the order aggregate. Every command runs in one transaction with
// the order row locked, and publishes its events after commit while still
// holding the per-order lock, so events for one order leave in commit order.
type Service struct {
	db        *gorm.DB
	directory *kitchen.Directory
	router    *kitchen.Router
	notes     *notifications.Store
	publisher realtime.Publisher
	deriver   tables.Deriver
	taxRate   decimal.Decimal
	locks     *keyedMutex
	log       *slog.Logger
	now       func() time.Time

	alerts   Alerter
	observer TableObserver
}

func NewService(
	db *gorm.DB,
	directory *kitchen.Directory,
	notes *notifications.Store,
	publisher realtime.Publisher,
	deriver tables.Deriver,
	taxRate decimal.Decimal,
	log *slog.Logger,
) *Service {
	return &Service{
		db:        db,
		directory: directory,
		router:    kitchen.NewRouter(directory),
		notes:     notes,
		publisher: publisher,
		deriver:   deriver,
		taxRate:   taxRate,
		locks:     newKeyedMutex(),
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithAlerts(a Alerter) *Service {
	s.alerts = a
	return s
}

func (s *Service) WithTableObserver(o TableObserver) *Service {
	s.observer = o
	return s
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = func() time.Time { return now().UTC() }
	return s
}

// outbox collects what a command announces once its transaction commits.
type outbox struct {
	events []realtime.Envelope
	after  []func(ctx context.Context)
}

func (o *outbox) emit(env realtime.Envelope) {
	o.events = append(o.events, env)
}

func (o *outbox) then(fn func(ctx context.Context)) {
	o.after = append(o.after, fn)
}

// run executes fn in a transaction under the in-process lock for key, then
// flushes the outbox. Nothing is published when fn fails.
func (s *Service) run(ctx context.Context, key string, fn func(tx *gorm.DB, out *outbox) error) error {
	if key != "" {
		unlock := s.locks.Lock(key)
		defer unlock()
	}

	var out outbox
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, &out)
	})
	if err != nil {
		return err
	}

	pubCtx := context.WithoutCancel(ctx)
	for _, env := range out.events {
		if env.Timestamp.IsZero() {
			env.Timestamp = s.now()
		}
		if err := s.publisher.Publish(pubCtx, env); err != nil {
			s.log.Warn("failed to publish event", slog.String("event", env.Event), slog.Any("error", err))
		}
	}
	for _, fn := range out.after {
		fn(pubCtx)
	}
	return nil
}

func (s *Service) lockOrder(ctx context.Context, tx *gorm.DB, id uint) (models.Order, error) {
	var order models.Order
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, apperrors.NotFound(apperrors.CodeOrderNotFound, "Order %d not found", id)
	}
	if err != nil {
		return order, fmt.Errorf("lock order %d: %w", id, err)
	}

	if order.TableID != nil {
		var table models.Table
		if err := tx.WithContext(ctx).First(&table, *order.TableID).Error; err == nil {
			order.Table = &table
		}
	}
	return order, nil
}

func (s *Service) loadItems(ctx context.Context, tx *gorm.DB, orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := tx.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load items for order %d: %w", orderID, err)
	}
	return items, nil
}

func (s *Service) loadItem(ctx context.Context, tx *gorm.DB, orderID, itemID uint) (models.OrderItem, error) {
	var item models.OrderItem
	err := tx.WithContext(ctx).Preload("MenuItem").Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, apperrors.NotFound(apperrors.CodeOrderItemNotFound, "Item %d not found on order %d", itemID, orderID)
	}
	if err != nil {
		return item, fmt.Errorf("load item %d: %w", itemID, err)
	}
	return item, nil
}

// refresh recomputes totals and the derived status and writes only the
// fields that changed. An order status change is announced to the waiter,
// managers and the table's watchers.
func (s *Service) refresh(ctx context.Context, tx *gorm.DB, order *models.Order, actorID uint, out *outbox) ([]models.OrderItem, error) {
	return s.refreshWith(ctx, tx, order, actorID, out, NextOrderStatus)
}

func (s *Service) refreshWith(ctx context.Context, tx *gorm.DB, order *models.Order, actorID uint, out *outbox,
	derive func(types.OrderStatus, []models.OrderItem) types.OrderStatus,
) ([]models.OrderItem, error) {
	items, err := s.loadItems(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	total, tax := Totals(items, s.taxRate)
	next := derive(order.Status, items)

	updates := map[string]any{}
	if !total.Equal(order.TotalAmount) || !tax.Equal(order.TaxAmount) {
		updates["total_amount"] = total
		updates["tax_amount"] = tax
	}
	if next != order.Status {
		updates["status"] = next
	}
	if len(updates) == 0 {
		return items, nil
	}

	if err := tx.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update order %d: %w", order.ID, err)
	}

	previous := order.Status
	order.TotalAmount, order.TaxAmount, order.Status = total, tax, next

	if next != previous {
		if err := s.orderStatusChanged(ctx, tx, order, previous, actorID, out); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *Service) orderStatusChanged(ctx context.Context, tx *gorm.DB, order *models.Order, previous types.OrderStatus, actorID uint, out *outbox) error {
	env := realtime.Envelope{
		Rooms: orderWatchRooms(order),
		Event: realtime.EventOrderStatusUpdated,
		Data: realtime.OrderStatusChange{
			OrderID:        order.ID,
			TableID:        order.TableID,
			Status:         order.Status,
			PreviousStatus: previous,
			TotalAmount:    order.TotalAmount.StringFixed(2),
			TaxAmount:      order.TaxAmount.StringFixed(2),
			ActorID:        actorID,
		},
	}

	if order.Status == types.OrderReady {
		draft := orderReadyDraft(order)
		if _, err := s.notes.Create(ctx, tx, order.UserID, draft); err != nil {
			return err
		}
		env.Notice = notice(draft)
		env.NoticeFor = []uint{order.UserID}
	}

	out.emit(env)
	return nil
}

// tableTransition announces the table's new status when the command changed
// it.
func (s *Service) tableTransition(ctx context.Context, tx *gorm.DB, table *models.Table, before types.TableStatus, out *outbox) error {
	if table == nil {
		return nil
	}
	after, err := s.deriver.Status(ctx, tx, table.ID, s.now())
	if err != nil {
		return err
	}
	if after == before {
		return nil
	}

	change := realtime.TableStatusChange{
		TableID:        table.ID,
		RestaurantID:   table.RestaurantID,
		TableNumber:    table.TableNumber,
		Status:         after,
		PreviousStatus: before,
	}
	out.emit(realtime.Envelope{Broadcast: true, Event: realtime.EventTableStatusUpdated, Data: change})
	if s.observer != nil {
		out.then(func(context.Context) { s.observer.Observe(change.TableID, change.Status) })
	}
	return nil
}

func orderWatchRooms(order *models.Order) []string {
	rooms := []string{realtime.UserRoom(order.UserID), realtime.RoomManager}
	if order.TableID != nil {
		rooms = append(rooms, realtime.TableRoom(*order.TableID))
	}
	return rooms
}

func (s *Service) staffIDs(ctx context.Context, tx *gorm.DB, kitchenID uint, kind types.KitchenType) ([]uint, error) {
	staff, err := s.directory.Staff(ctx, tx, kitchenID, kind.StaffRole())
	if err != nil {
		return nil, fmt.Errorf("kitchen %d staff: %w", kitchenID, err)
	}
	ids := make([]uint, len(staff))
	for i, u := range staff {
		ids[i] = u.ID
	}
	return ids, nil
}

// requireKitchenStaff passes supervisors and users assigned to the kitchen.
func (s *Service) requireKitchenStaff(ctx context.Context, tx *gorm.DB, actor types.Identity, kitchenID uint) error {
	if actor.Role.Supervisor() {
		return nil
	}
	ok, err := s.directory.IsStaff(ctx, tx, kitchenID, actor.ID)
	if err != nil {
		return fmt.Errorf("check kitchen staff: %w", err)
	}
	if !ok {
		return apperrors.Forbidden("You are not assigned to kitchen %d", kitchenID)
	}
	return nil
}

func stamp(t time.Time) *time.Time {
	return &t
}
