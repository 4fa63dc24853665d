package models

import "github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"

// Restaurant is an outlet. With HasKitchen set it is also a routing
// destination for order items of its RestaurantType.
type Restaurant struct {
	BaseModel

	Name           string            `gorm:"not null" json:"name"`
	RestaurantType types.KitchenType `gorm:"type:varchar(32);not null;index" json:"restaurant_type"`
	HasKitchen     bool              `gorm:"not null" json:"has_kitchen"`
	IsActive       bool              `gorm:"not null" json:"is_active"`
	DiscordWebhook string            `json:"-"`
	SlackWebhook   string            `json:"-"`

	// Relationships
	Staff  []KitchenStaff `gorm:"foreignKey:KitchenID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Tables []Table        `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// KitchenStaff assigns a user to a kitchen in a given role.
type KitchenStaff struct {
	BaseModel

	KitchenID uint       `gorm:"not null;uniqueIndex:idx_kitchen_staff" json:"kitchen_id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_kitchen_staff;index" json:"user_id"`
	Role      types.Role `gorm:"type:varchar(32);not null;uniqueIndex:idx_kitchen_staff" json:"role"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// RestaurantKitchen is the explicit binding used to break ties when several
// active kitchens of the same type exist.
type RestaurantKitchen struct {
	BaseModel

	RestaurantID uint              `gorm:"not null;uniqueIndex:idx_restaurant_kitchen" json:"restaurant_id"`
	KitchenID    uint              `gorm:"not null;uniqueIndex:idx_restaurant_kitchen" json:"kitchen_id"`
	KitchenType  types.KitchenType `gorm:"type:varchar(32);not null" json:"kitchen_type"`

	Kitchen Restaurant `gorm:"foreignKey:KitchenID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (KitchenStaff) TableName() string { return "kitchen_staff" }
