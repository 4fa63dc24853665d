package models

import "github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"

type User struct {
	BaseModel

	Name     string     `gorm:"not null" json:"name"`
	Email    string     `gorm:"uniqueIndex;not null" json:"email"`
	Role     types.Role `gorm:"type:varchar(32);not null;index" json:"role"`
	IsActive bool       `gorm:"not null" json:"is_active"`

	// Relationships
	KitchenAssignments []KitchenStaff `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Notifications      []Notification `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
