package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kerbside-app/kerbside-backend/pkg/db"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
	"github.com/kerbside-app/kerbside-backend/pkg/pagination"
)

// Service defines item catalog operations used by controllers.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemDTO) (*ItemDTO, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	ListItems(ctx context.Context, params ListItemsParams) (*ItemList, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemDTO) (*ItemDTO, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// OpenReservationCounter reports how many non-cancelled reservations reference an item.
type OpenReservationCounter interface {
	CountOpenByItem(ctx context.Context, itemID uuid.UUID) (int64, error)
}

type service struct {
	repo         *Repository
	reservations OpenReservationCounter
}

// ServiceParams bundles the dependencies for the inventory service.
type ServiceParams struct {
	Repo         *Repository
	Reservations OpenReservationCounter
}

// NewService constructs an inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if params.Reservations == nil {
		return nil, fmt.Errorf("reservation counter is required")
	}
	return &service{
		repo:         params.Repo,
		reservations: params.Reservations,
	}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemDTO) (*ItemDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking mode")
	}
	if input.InitialStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial_stock must be non-negative")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be non-negative")
	}
	if input.PlateNumber != nil && strings.TrimSpace(*input.PlateNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plate_number cannot be blank")
	}

	item, err := s.repo.Create(ctx, input.ToModel())
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicate, "plate number already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	return FromModel(item), nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return FromModel(item), nil
}

func (s *service) ListItems(ctx context.Context, params ListItemsParams) (*ItemList, error) {
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &ItemList{Items: make([]ItemDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			break
		}
		list.Items = append(list.Items, *FromModel(&rows[i]))
	}
	if len(rows) > limit {
		last := list.Items[len(list.Items)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &cursor
	}
	return list, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemDTO) (*ItemDTO, error) {
	if _, err := s.GetItem(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PlateNumber != nil {
		if strings.TrimSpace(*input.PlateNumber) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "plate_number cannot be blank")
		}
		updates["plate_number"] = strings.TrimSpace(*input.PlateNumber)
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
		}
		updates["stock"] = *input.Stock
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be non-negative")
		}
		updates["unit_price"] = *input.UnitPrice
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return s.GetItem(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicate, "plate number already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	return s.GetItem(ctx, id)
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetItem(ctx, id); err != nil {
		return err
	}

	open, err := s.reservations.CountOpenByItem(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open reservations")
	}
	if open > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "item has reservations that are not cancelled")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	return nil
}
