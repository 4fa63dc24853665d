package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Draft is a notification before it has a recipient.
type Draft struct {
	Type     types.NotificationType
	Title    string
	Message  string
	Data     any
	Priority types.Priority
}

// DefaultPriority is used when a draft does not set one.
func DefaultPriority(t types.NotificationType) types.Priority {
	switch t {
	case types.NotificationNewOrder, types.NotificationItemsAdded,
		types.NotificationOrderRejected, types.NotificationOrderTransfer:
		return types.PriorityHigh
	case types.NotificationOrderAccepted, types.NotificationOrderUpdate:
		return types.PriorityMedium
	}
	return types.PriorityLow
}

// Store is the durable per-user notification record. Every query is scoped
// by user id.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewStore(db *gorm.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = func() time.Time { return now().UTC() }
	return s
}

func (s *Store) handle(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = s.db
	}
	return tx.WithContext(ctx)
}

func (s *Store) build(userID uint, d Draft, now time.Time) (models.Notification, error) {
	if !d.Type.Valid() {
		return models.Notification{}, apperrors.Validation("", "Unknown notification type %q", d.Type)
	}
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Message) == "" {
		return models.Notification{}, apperrors.Validation("", "Notification title and message are required")
	}

	n := models.Notification{
		UserID:    userID,
		Type:      d.Type,
		Title:     d.Title,
		Message:   d.Message,
		Priority:  d.Priority,
		CreatedAt: now,
	}
	if n.Priority == "" {
		n.Priority = DefaultPriority(d.Type)
	}
	if s.ttl > 0 {
		expires := now.Add(s.ttl)
		n.ExpiresAt = &expires
	}
	if d.Data != nil {
		raw, err := json.Marshal(d.Data)
		if err != nil {
			return models.Notification{}, fmt.Errorf("encode notification data: %w", err)
		}
		n.Data = datatypes.JSON(raw)
	}
	return n, nil
}

// Create writes one notification. Pass the caller's transaction so the row
// commits with the state change it describes.
func (s *Store) Create(ctx context.Context, tx *gorm.DB, userID uint, d Draft) (models.Notification, error) {
	n, err := s.build(userID, d, s.now())
	if err != nil {
		return n, err
	}
	if err := s.handle(ctx, tx).Create(&n).Error; err != nil {
		return n, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

// CreateForUsers writes one row per distinct recipient.
func (s *Store) CreateForUsers(ctx context.Context, tx *gorm.DB, userIDs []uint, d Draft) ([]models.Notification, error) {
	now := s.now()
	seen := make(map[uint]struct{}, len(userIDs))
	rows := make([]models.Notification, 0, len(userIDs))

	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		n, err := s.build(id, d, now)
		if err != nil {
			return nil, err
		}
		rows = append(rows, n)
	}

	if len(rows) == 0 {
		return rows, nil
	}
	if err := s.handle(ctx, tx).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create notifications: %w", err)
	}
	return rows, nil
}

type ListFilter struct {
	Read  *bool
	Type  types.NotificationType
	Page  int
	Limit int
}

type Page struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	UnreadCount   int64                 `json:"unreadCount"`
}

// live restricts q to the user's unexpired rows.
func (s *Store) live(q *gorm.DB, userID uint) *gorm.DB {
	return q.Where("user_id = ? AND (expires_at IS NULL OR expires_at > ?)", userID, s.now())
}

// List returns a page of unexpired notifications, newest first.
func (s *Store) List(ctx context.Context, userID uint, f ListFilter) (Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Type != "" && !f.Type.Valid() {
		return Page{}, apperrors.Validation("", "Unknown notification type %q", f.Type)
	}

	q := s.live(s.db.WithContext(ctx).Model(&models.Notification{}), userID)
	if f.Read != nil {
		q = q.Where("read = ?", *f.Read)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}

	page := Page{Page: f.Page, Limit: f.Limit, Notifications: []models.Notification{}}
	if err := q.Session(&gorm.Session{}).Count(&page.Total).Error; err != nil {
		return Page{}, fmt.Errorf("count notifications: %w", err)
	}
	if err := q.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&page.Notifications).Error; err != nil {
		return Page{}, fmt.Errorf("list notifications: %w", err)
	}

	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return Page{}, err
	}
	page.UnreadCount = unread
	return page, nil
}

func (s *Store) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.live(s.db.WithContext(ctx).Model(&models.Notification{}), userID).
		Where("read = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *Store) get(ctx context.Context, userID, id uint) (models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return n, apperrors.NotFound(apperrors.CodeNotificationNotFound, "Notification not found")
	}
	return n, err
}

// MarkRead is idempotent: read_at keeps the time of the first call.
func (s *Store) MarkRead(ctx context.Context, userID, id uint) (models.Notification, error) {
	n, err := s.get(ctx, userID, id)
	if err != nil || n.Read {
		return n, err
	}

	now := s.now()
	err = s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read = ?", id, userID, false).
		Updates(map[string]any{"read": true, "read_at": now}).Error
	if err != nil {
		return n, fmt.Errorf("mark read: %w", err)
	}
	return s.get(ctx, userID, id)
}

func (s *Store) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]any{"read": true, "read_at": s.now()})
	if res.Error != nil {
		return 0, fmt.Errorf("mark all read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return fmt.Errorf("delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(apperrors.CodeNotificationNotFound, "Notification not found")
	}
	return nil
}

// ClearAll deletes every notification the user owns.
func (s *Store) ClearAll(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear notifications: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PurgeExpired removes rows whose expires_at has passed. Listings already
// hide them; this only reclaims space.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge notifications: %w", res.Error)
	}
	return res.RowsAffected, nil
}
