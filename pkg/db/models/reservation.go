package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kerbside-app/kerbside-backend/pkg/enums"
)

// Reservation records a booking of an item by a user. Rental reservations
// carry a [StartAt, EndAt) window; stock reservations carry a quantity.
type Reservation struct {
	ID          uuid.UUID               `gorm:"type:uuid;primaryKey"`
	ItemID      uuid.UUID               `gorm:"column:item_id;type:uuid;not null;index"`
	UserID      uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	Status      enums.ReservationStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Quantity    int                     `gorm:"column:quantity;not null;default:1"`
	StartAt     *time.Time              `gorm:"column:start_at"`
	EndAt       *time.Time              `gorm:"column:end_at"`
	TotalPrice  decimal.Decimal         `gorm:"column:total_price;type:numeric(12,2);not null"`
	Notes       *string                 `gorm:"column:notes"`
	CancelledAt *time.Time              `gorm:"column:cancelled_at"`
	Item        *Item                   `gorm:"foreignKey:ItemID"`
	User        *User                   `gorm:"foreignKey:UserID"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Reservation) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
