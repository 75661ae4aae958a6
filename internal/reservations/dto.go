package reservations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kerbside-app/kerbside-backend/internal/inventory"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	"github.com/kerbside-app/kerbside-backend/pkg/enums"
)

// ReservationDTO is the transport shape for reservations.
type ReservationDTO struct {
	ID          uuid.UUID               `json:"id"`
	ItemID      uuid.UUID               `json:"item_id"`
	UserID      uuid.UUID               `json:"user_id"`
	Status      enums.ReservationStatus `json:"status"`
	Quantity    int                     `json:"quantity"`
	StartAt     *time.Time              `json:"start_at,omitempty"`
	EndAt       *time.Time              `json:"end_at,omitempty"`
	TotalPrice  decimal.Decimal         `json:"total_price"`
	Notes       *string                 `json:"notes,omitempty"`
	CancelledAt *time.Time              `json:"cancelled_at,omitempty"`
	Item        *inventory.ItemDTO      `json:"item,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// ListParams filters reservation listings.
type ListParams struct {
	UserID *uuid.UUID
	ItemID *uuid.UUID
	Status *enums.ReservationStatus
	Limit  int
	Cursor string
}

// ReservationList is a cursor-paginated reservation collection.
type ReservationList struct {
	Reservations []ReservationDTO `json:"reservations"`
	NextCursor   *string          `json:"next_cursor,omitempty"`
}

func FromModel(m *models.Reservation) *ReservationDTO {
	if m == nil {
		return nil
	}
	return &ReservationDTO{
		ID:          m.ID,
		ItemID:      m.ItemID,
		UserID:      m.UserID,
		Status:      m.Status,
		Quantity:    m.Quantity,
		StartAt:     m.StartAt,
		EndAt:       m.EndAt,
		TotalPrice:  m.TotalPrice,
		Notes:       m.Notes,
		CancelledAt: m.CancelledAt,
		Item:        inventory.FromModel(m.Item),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
