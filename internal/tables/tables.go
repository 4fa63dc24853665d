package tables

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/realtime"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/gorm"
)

// Deriver computes table status from open orders and confirmed
// reservations. It is the only place that derivation lives.
type Deriver struct {
	Lead time.Duration
}

// Statuses derives the status of each table in ids at now. A table with an
// open order is occupied; otherwise one with a confirmed reservation that
// has not ended and starts within the lead window is reserved.
func (d Deriver) Statuses(ctx context.Context, tx *gorm.DB, ids []uint, now time.Time) (map[uint]types.TableStatus, error) {
	out := make(map[uint]types.TableStatus, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	for _, id := range ids {
		out[id] = types.TableAvailable
	}

	var occupied []uint
	err := tx.WithContext(ctx).Model(&models.Order{}).
		Where("table_id IN ? AND status IN ?", ids, types.OpenOrderStatuses()).
		Distinct().
		Pluck("table_id", &occupied).Error
	if err != nil {
		return nil, fmt.Errorf("open orders by table: %w", err)
	}

	var reserved []uint
	err = tx.WithContext(ctx).Model(&models.Reservation{}).
		Where("table_id IN ? AND status = ? AND ends_at > ? AND starts_at <= ?",
			ids, models.ReservationConfirmed, now.UTC(), now.UTC().Add(d.Lead)).
		Distinct().
		Pluck("table_id", &reserved).Error
	if err != nil {
		return nil, fmt.Errorf("reservations by table: %w", err)
	}

	for _, id := range reserved {
		out[id] = types.TableReserved
	}
	for _, id := range occupied {
		out[id] = types.TableOccupied
	}
	return out, nil
}

func (d Deriver) Status(ctx context.Context, tx *gorm.DB, id uint, now time.Time) (types.TableStatus, error) {
	statuses, err := d.Statuses(ctx, tx, []uint{id}, now)
	if err != nil {
		return "", err
	}
	return statuses[id], nil
}

type View struct {
	models.Table
	Status types.TableStatus `json:"status"`
}

type CreateInput struct {
	TableNumber string
	Capacity    int
}

// Service serves table listings and the status watcher.
type Service struct {
	db        *gorm.DB
	deriver   Deriver
	publisher realtime.Publisher
	log       *slog.Logger
	now       func() time.Time

	mu   sync.Mutex
	last map[uint]types.TableStatus
}

func NewService(db *gorm.DB, deriver Deriver, publisher realtime.Publisher, log *slog.Logger) *Service {
	return &Service{
		db:        db,
		deriver:   deriver,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		last:      make(map[uint]types.TableStatus),
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Deriver() Deriver { return s.deriver }

func (s *Service) List(ctx context.Context, actor types.Identity, restaurantID uint) ([]View, error) {
	if !types.Can(actor.Role, types.CapViewTables) {
		return nil, apperrors.Forbidden("Not allowed to view tables")
	}

	var rows []models.Table
	if err := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID).Order("table_number").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	ids := make([]uint, len(rows))
	for i, t := range rows {
		ids[i] = t.ID
	}
	statuses, err := s.deriver.Statuses(ctx, s.db, ids, s.now())
	if err != nil {
		return nil, err
	}

	views := make([]View, len(rows))
	for i, t := range rows {
		views[i] = View{Table: t, Status: statuses[t.ID]}
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, tableID uint) (View, error) {
	var t models.Table
	err := s.db.WithContext(ctx).First(&t, tableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return View{}, apperrors.NotFound(apperrors.CodeTableNotFound, "Table %d not found", tableID)
	}
	if err != nil {
		return View{}, err
	}

	status, err := s.deriver.Status(ctx, s.db, tableID, s.now())
	if err != nil {
		return View{}, err
	}
	return View{Table: t, Status: status}, nil
}

// CreateTable relies on the (restaurant_id, table_number) unique index;
// the losing insert of a race maps to DUPLICATE_TABLE.
func (s *Service) CreateTable(ctx context.Context, actor types.Identity, restaurantID uint, in CreateInput) (models.Table, error) {
	if !types.Can(actor.Role, types.CapManageTables) {
		return models.Table{}, apperrors.Forbidden("Not allowed to manage tables")
	}

	number := strings.TrimSpace(in.TableNumber)
	if number == "" {
		return models.Table{}, apperrors.Validation("", "Table number is required")
	}
	if in.Capacity < 0 {
		return models.Table{}, apperrors.Validation("", "Capacity must be positive")
	}
	if in.Capacity == 0 {
		in.Capacity = 2
	}

	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Table{}, apperrors.NotFound("", "Restaurant %d not found", restaurantID)
		}
		return models.Table{}, err
	}

	table := models.Table{RestaurantID: restaurantID, TableNumber: number, Capacity: in.Capacity}
	if err := s.db.WithContext(ctx).Create(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Table{}, apperrors.Conflict(apperrors.CodeDuplicateTable,
				"Table %s already exists in restaurant %d", number, restaurantID)
		}
		return models.Table{}, fmt.Errorf("create table: %w", err)
	}

	s.Observe(table.ID, types.TableAvailable)
	return table, nil
}

// Observe records a status already announced by someone else so the watcher
// does not announce it again.
func (s *Service) Observe(tableID uint, status types.TableStatus) {
	s.mu.Lock()
	s.last[tableID] = status
	s.mu.Unlock()
}

// Watch recomputes every table and broadcasts the ones whose status changed
// since the last pass or the last observed order change. The first pass only
// seeds the baseline.
func (s *Service) Watch(ctx context.Context) error {
	var rows []models.Table
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return fmt.Errorf("load tables: %w", err)
	}

	ids := make([]uint, len(rows))
	for i, t := range rows {
		ids[i] = t.ID
	}
	statuses, err := s.deriver.Statuses(ctx, s.db, ids, s.now())
	if err != nil {
		return err
	}

	var changes []realtime.TableStatusChange
	s.mu.Lock()
	for _, t := range rows {
		current := statuses[t.ID]
		previous, seen := s.last[t.ID]
		s.last[t.ID] = current
		if seen && previous != current {
			changes = append(changes, realtime.TableStatusChange{
				TableID:        t.ID,
				RestaurantID:   t.RestaurantID,
				TableNumber:    t.TableNumber,
				Status:         current,
				PreviousStatus: previous,
			})
		}
	}
	s.mu.Unlock()

	for _, change := range changes {
		err := s.publisher.Publish(ctx, realtime.Envelope{
			Broadcast: true,
			Event:     realtime.EventTableStatusUpdated,
			Data:      change,
		})
		if err != nil {
			s.log.Warn("failed to publish table status", slog.Uint64("table_id", uint64(change.TableID)), slog.Any("error", err))
		}
	}
	if len(changes) > 0 {
		s.log.Info("table statuses changed", slog.Int("count", len(changes)))
	}
	return nil
}
