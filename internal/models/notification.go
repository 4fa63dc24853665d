package models

import (
	"time"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/datatypes"
)

type Notification struct {
	ID        uint                   `gorm:"primaryKey" json:"id"`
	UserID    uint                   `gorm:"not null;index:idx_notifications_user_read" json:"user_id"`
	Type      types.NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title     string                 `gorm:"not null" json:"title"`
	Message   string                 `gorm:"type:text;not null" json:"message"`
	Data      datatypes.JSON         `json:"data,omitempty"`
	Read      bool                   `gorm:"not null;index:idx_notifications_user_read" json:"read"`
	Priority  types.Priority         `gorm:"type:varchar(16);not null" json:"priority"`
	CreatedAt time.Time              `gorm:"not null;index" json:"created_at"`
	ReadAt    *time.Time             `json:"read_at"`
	ExpiresAt *time.Time             `gorm:"index" json:"expires_at,omitempty"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
