package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	"github.com/kerbside-app/kerbside-backend/pkg/enums"
)

// ItemDTO is the transport shape for inventory items.
type ItemDTO struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Description  *string           `json:"description,omitempty"`
	Mode         enums.BookingMode `json:"mode"`
	PlateNumber  *string           `json:"plate_number,omitempty"`
	Stock        int               `json:"stock"`
	InitialStock int               `json:"initial_stock"`
	UnitPrice    decimal.Decimal   `json:"unit_price"`
	IsActive     bool              `json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// CreateItemDTO holds the fields needed to persist a new item.
type CreateItemDTO struct {
	Name         string            `json:"name" validate:"required"`
	Description  *string           `json:"description,omitempty"`
	Mode         enums.BookingMode `json:"mode" validate:"required"`
	PlateNumber  *string           `json:"plate_number,omitempty"`
	InitialStock int               `json:"initial_stock" validate:"gte=0"`
	UnitPrice    decimal.Decimal   `json:"unit_price"`
	IsActive     *bool             `json:"is_active,omitempty"`
}

// UpdateItemDTO carries optional fields for partial item updates.
type UpdateItemDTO struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	PlateNumber *string          `json:"plate_number,omitempty"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// ListItemsParams filters item listings.
type ListItemsParams struct {
	Mode       *enums.BookingMode
	ActiveOnly bool
	Limit      int
	Cursor     string
}

// ItemList is a cursor-paginated item collection.
type ItemList struct {
	Items      []ItemDTO `json:"items"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}

func FromModel(m *models.Item) *ItemDTO {
	if m == nil {
		return nil
	}
	return &ItemDTO{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Mode:         m.Mode,
		PlateNumber:  m.PlateNumber,
		Stock:        m.Stock,
		InitialStock: m.InitialStock,
		UnitPrice:    m.UnitPrice,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (c CreateItemDTO) ToModel() *models.Item {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}
	return &models.Item{
		Name:         c.Name,
		Description:  c.Description,
		Mode:         c.Mode,
		PlateNumber:  c.PlateNumber,
		Stock:        c.InitialStock,
		InitialStock: c.InitialStock,
		UnitPrice:    c.UnitPrice,
		IsActive:     isActive,
	}
}
