package models

import "time"

type Table struct {
	BaseModel

	RestaurantID uint   `gorm:"not null;uniqueIndex:idx_restaurant_table" json:"restaurant_id"`
	TableNumber  string `gorm:"not null;uniqueIndex:idx_restaurant_table" json:"table_number"`
	Capacity     int    `gorm:"not null;default:2" json:"capacity"`
}

const (
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
)

type Reservation struct {
	BaseModel

	TableID      uint      `gorm:"not null;index" json:"table_id"`
	CustomerName string    `gorm:"not null" json:"customer_name"`
	PartySize    int       `gorm:"not null;default:1" json:"party_size"`
	StartsAt     time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt       time.Time `gorm:"not null" json:"ends_at"`
	Status       string    `gorm:"type:varchar(32);not null;default:'confirmed'" json:"status"`

	Table Table `gorm:"foreignKey:TableID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
