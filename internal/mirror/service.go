package mirror

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/kerbside-app/kerbside-backend/internal/reservations"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	"github.com/kerbside-app/kerbside-backend/pkg/logger"
)

const (
	reservationsSheet = "Reservations"
	itemsSheet        = "Items"
	usersSheet        = "Users"
)

// Sink is the spreadsheet surface the mirror writes to.
type Sink interface {
	Append(ctx context.Context, sheetName string, rows [][]any) error
	Overwrite(ctx context.Context, sheetName string, rows [][]any) error
}

type snapshotSource interface {
	ListAllReservations(ctx context.Context) ([]models.Reservation, error)
	ListAllItems(ctx context.Context) ([]models.Item, error)
	ListAllUsers(ctx context.Context) ([]models.User, error)
}

// Service mirrors reservation data into a spreadsheet. A nil Service is a
// valid no-op, matching the optional nature of the integration.
type Service struct {
	sink   Sink
	source snapshotSource
	logg   *logger.Logger
}

// NewService constructs a mirror service. Returns nil when sink is nil so
// callers can wire the result directly as an optional dependency.
func NewService(sink Sink, source snapshotSource, logg *logger.Logger) *Service {
	if sink == nil {
		return nil
	}
	return &Service{sink: sink, source: source, logg: logg}
}

// RecordReservation appends a single reservation row.
func (s *Service) RecordReservation(ctx context.Context, reservation *reservations.ReservationDTO) error {
	if s == nil {
		return nil
	}
	if reservation == nil {
		return fmt.Errorf("reservation is required")
	}
	return s.sink.Append(ctx, reservationsSheet, [][]any{reservationRow(reservation)})
}

// Snapshot rewrites every tab from the database. Per-table failures are
// combined so one broken tab does not hide the others.
func (s *Service) Snapshot(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if s.source == nil {
		return fmt.Errorf("snapshot source is required")
	}

	var errs error

	if rows, err := s.source.ListAllReservations(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("load reservations: %w", err))
	} else if err := s.sink.Overwrite(ctx, reservationsSheet, reservationRows(rows)); err != nil {
		errs = multierr.Append(errs, err)
	}

	if rows, err := s.source.ListAllItems(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("load items: %w", err))
	} else if err := s.sink.Overwrite(ctx, itemsSheet, itemRows(rows)); err != nil {
		errs = multierr.Append(errs, err)
	}

	if rows, err := s.source.ListAllUsers(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("load users: %w", err))
	} else if err := s.sink.Overwrite(ctx, usersSheet, userRows(rows)); err != nil {
		errs = multierr.Append(errs, err)
	}

	return errs
}

func reservationRow(r *reservations.ReservationDTO) []any {
	itemName := ""
	if r.Item != nil {
		itemName = r.Item.Name
	}
	return []any{
		r.ID.String(),
		itemName,
		r.UserID.String(),
		r.Status.String(),
		r.Quantity,
		formatTimePtr(r.StartAt),
		formatTimePtr(r.EndAt),
		r.TotalPrice.String(),
		r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func reservationRows(rows []models.Reservation) [][]any {
	out := [][]any{{"ID", "Item", "User", "Status", "Quantity", "Start", "End", "Total", "Created"}}
	for i := range rows {
		out = append(out, reservationRow(reservations.FromModel(&rows[i])))
	}
	return out
}

func itemRows(rows []models.Item) [][]any {
	out := [][]any{{"ID", "Name", "Mode", "Plate", "Stock", "Initial Stock", "Unit Price", "Active"}}
	for _, item := range rows {
		plate := ""
		if item.PlateNumber != nil {
			plate = *item.PlateNumber
		}
		out = append(out, []any{
			item.ID.String(),
			item.Name,
			item.Mode.String(),
			plate,
			item.Stock,
			item.InitialStock,
			item.UnitPrice.String(),
			item.IsActive,
		})
	}
	return out
}

func userRows(rows []models.User) [][]any {
	out := [][]any{{"ID", "Email", "First Name", "Last Name", "Role", "Active"}}
	for _, user := range rows {
		out = append(out, []any{
			user.ID.String(),
			user.Email,
			user.FirstName,
			user.LastName,
			user.Role.String(),
			user.IsActive,
		})
	}
	return out
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
