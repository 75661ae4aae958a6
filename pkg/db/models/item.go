package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kerbside-app/kerbside-backend/pkg/enums"
)

// Item is a bookable inventory entry. Rental items are reserved by time
// window; stock items are reserved by quantity.
type Item struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name         string            `gorm:"type:text;not null"`
	Description  *string           `gorm:"column:description"`
	Mode         enums.BookingMode `gorm:"column:mode;type:text;not null"`
	PlateNumber  *string           `gorm:"column:plate_number;uniqueIndex"`
	Stock        int               `gorm:"column:stock;not null;default:0"`
	InitialStock int               `gorm:"column:initial_stock;not null;default:0"`
	UnitPrice    decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Item) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
