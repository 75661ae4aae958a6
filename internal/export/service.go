package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kerbside-app/kerbside-backend/internal/inventory"
	"github.com/kerbside-app/kerbside-backend/internal/reservations"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
)

const (
	itemsSheet        = "Items"
	reservationsSheet = "Reservations"
)

// Service builds xlsx workbooks of the current inventory and ledger.
type Service interface {
	BuildWorkbook(ctx context.Context) (*excelize.File, error)
}

type service struct {
	items        *inventory.Repository
	reservations *reservations.Repository
}

// NewService constructs an export service.
func NewService(items *inventory.Repository, res *reservations.Repository) (Service, error) {
	if items == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if res == nil {
		return nil, fmt.Errorf("reservations repository is required")
	}
	return &service{items: items, reservations: res}, nil
}

func (s *service) BuildWorkbook(ctx context.Context) (*excelize.File, error) {
	items, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}
	rows, err := s.reservations.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservations")
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", itemsSheet)
	if _, err := f.NewSheet(reservationsSheet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reservations sheet")
	}

	if err := writeItemsSheet(f, items); err != nil {
		return nil, err
	}
	if err := writeReservationsSheet(f, rows); err != nil {
		return nil, err
	}
	return f, nil
}

func writeItemsSheet(f *excelize.File, items []models.Item) error {
	header := []any{"ID", "Name", "Mode", "Plate Number", "Stock", "Initial Stock", "Unit Price", "Active", "Created"}
	if err := writeRow(f, itemsSheet, 1, header); err != nil {
		return err
	}
	for i, item := range items {
		plate := ""
		if item.PlateNumber != nil {
			plate = *item.PlateNumber
		}
		row := []any{
			item.ID.String(),
			item.Name,
			item.Mode.String(),
			plate,
			item.Stock,
			item.InitialStock,
			item.UnitPrice.String(),
			item.IsActive,
			item.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writeRow(f, itemsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeReservationsSheet(f *excelize.File, rows []models.Reservation) error {
	header := []any{"ID", "Item", "User", "Status", "Quantity", "Start", "End", "Total", "Created"}
	if err := writeRow(f, reservationsSheet, 1, header); err != nil {
		return err
	}
	for i, r := range rows {
		itemName := ""
		if r.Item != nil {
			itemName = r.Item.Name
		}
		userEmail := r.UserID.String()
		if r.User != nil {
			userEmail = r.User.Email
		}
		row := []any{
			r.ID.String(),
			itemName,
			userEmail,
			r.Status.String(),
			r.Quantity,
			formatTimePtr(r.StartAt),
			formatTimePtr(r.EndAt),
			r.TotalPrice.String(),
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writeRow(f, reservationsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNumber int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve cell")
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write sheet row")
	}
	return nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
