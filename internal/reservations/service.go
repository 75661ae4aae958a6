package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kerbside-app/kerbside-backend/pkg/enums"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
	"github.com/kerbside-app/kerbside-backend/pkg/pagination"
)

// Service exposes reservation reads used by controllers.
type Service interface {
	GetReservation(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*ReservationDTO, error)
	ListReservations(ctx context.Context, params ListParams) (*ReservationList, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a reservations read service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservations repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetReservation(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*ReservationDTO, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	if actorRole != enums.UserRoleAdmin && reservation.UserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "reservation belongs to another user")
	}
	return FromModel(reservation), nil
}

func (s *service) ListReservations(ctx context.Context, params ListParams) (*ReservationList, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid reservation status filter")
	}

	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &ReservationList{Reservations: make([]ReservationDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			break
		}
		list.Reservations = append(list.Reservations, *FromModel(&rows[i]))
	}
	if len(rows) > limit {
		last := list.Reservations[len(list.Reservations)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &cursor
	}
	return list, nil
}
