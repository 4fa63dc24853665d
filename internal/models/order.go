package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
)

type Order struct {
	BaseModel

	RestaurantID        uint              `gorm:"not null;index" json:"restaurant_id"`
	TableID             *uint             `gorm:"index" json:"table_id"`
	RoomID              *uint             `json:"room_id,omitempty"`
	UserID              uint              `gorm:"not null;index" json:"user_id"`
	CustomerName        string            `json:"customer_name"`
	CustomerPhone       string            `json:"customer_phone,omitempty"`
	OrderType           types.OrderType   `gorm:"type:varchar(32);not null" json:"order_type"`
	Status              types.OrderStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	TotalAmount         decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	TaxAmount           decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"tax_amount"`
	SpecialInstructions string            `gorm:"type:text" json:"special_instructions,omitempty"`
	Rounds              int               `gorm:"not null" json:"rounds"`
	PlacedAt            time.Time         `gorm:"not null" json:"placed_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items,omitempty"`
	Table *Table      `gorm:"foreignKey:TableID" json:"table,omitempty"`
}

type OrderItem struct {
	BaseModel

	OrderID             uint              `gorm:"not null;index" json:"order_id"`
	MenuItemID          uint              `gorm:"not null" json:"menu_item_id"`
	Round               int               `gorm:"not null" json:"round"`
	Quantity            int               `gorm:"not null" json:"quantity"`
	UnitPrice           decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice          decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Status              types.ItemStatus  `gorm:"type:varchar(32);not null;index" json:"status"`
	TargetKitchenID     uint              `gorm:"not null;index" json:"target_kitchen_id"`
	KitchenType         types.KitchenType `gorm:"type:varchar(32);not null" json:"kitchen_type"`
	SpecialInstructions string            `gorm:"type:text" json:"special_instructions,omitempty"`
	ChefNotes           string            `gorm:"type:text" json:"chef_notes,omitempty"`
	AcceptedAt          *time.Time        `json:"accepted_at,omitempty"`
	ReadyAt             *time.Time        `json:"ready_at,omitempty"`
	ServedAt            *time.Time        `json:"served_at,omitempty"`
	CancelledAt         *time.Time        `json:"cancelled_at,omitempty"`
	CancelledBy         *uint             `json:"cancelled_by,omitempty"`
	CancellationReason  string            `gorm:"type:text" json:"cancellation_reason,omitempty"`

	MenuItem *MenuItem `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
}

const (
	AckAccepted = "accepted"
	AckRejected = "rejected"
)

// KitchenAcknowledgement records a kitchen accepting or rejecting its share
// of an order, separately from per-item status.
type KitchenAcknowledgement struct {
	BaseModel

	OrderID          uint   `gorm:"not null;index" json:"order_id"`
	KitchenID        uint   `gorm:"not null;index" json:"kitchen_id"`
	Status           string `gorm:"type:varchar(32);not null" json:"status"`
	EstimatedMinutes *int   `json:"estimated_minutes,omitempty"`
	Notes            string `gorm:"type:text" json:"notes,omitempty"`
	Reason           string `gorm:"type:text" json:"reason,omitempty"`
	ActorID          uint   `gorm:"not null" json:"actor_id"`
	ItemCount        int    `gorm:"not null" json:"item_count"`
}
