package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/kerbside-app/kerbside-backend/pkg/enums"
)

// BookRequest is the payload accepted by the booking endpoint.
type BookRequest struct {
	ItemID   uuid.UUID  `json:"item_id" validate:"required"`
	Quantity int        `json:"quantity,omitempty" validate:"omitempty,gte=1"`
	StartAt  *time.Time `json:"start_at,omitempty"`
	EndAt    *time.Time `json:"end_at,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
}

// BookInput carries the booking request plus the acting user.
type BookInput struct {
	UserID  uuid.UUID
	Request BookRequest
}

// CancelInput identifies the reservation to cancel and who is asking.
type CancelInput struct {
	ReservationID uuid.UUID
	ActorID       uuid.UUID
	ActorRole     enums.UserRole
}

// SetStatusInput carries an admin-driven status change.
type SetStatusInput struct {
	ReservationID uuid.UUID
	Status        enums.ReservationStatus
}
