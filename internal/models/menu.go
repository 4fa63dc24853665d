package models

import (
	"github.com/shopspring/decimal"
)

// MenuCategory carries the kitchen type its items are routed by. The value
// is stored as text so a bad seed row surfaces as INVALID_KITCHEN_TYPE.
type MenuCategory struct {
	BaseModel

	RestaurantID uint   `gorm:"not null;index" json:"restaurant_id"`
	Name         string `gorm:"not null" json:"name"`
	KitchenType  string `gorm:"type:varchar(32);not null" json:"kitchen_type"`
}

type MenuItem struct {
	BaseModel

	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Name        string          `gorm:"not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	IsAvailable bool            `gorm:"not null" json:"is_available"`

	Category *MenuCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
