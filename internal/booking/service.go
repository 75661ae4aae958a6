package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kerbside-app/kerbside-backend/internal/inventory"
	"github.com/kerbside-app/kerbside-backend/internal/reservations"
	"github.com/kerbside-app/kerbside-backend/pkg/config"
	"github.com/kerbside-app/kerbside-backend/pkg/db"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	"github.com/kerbside-app/kerbside-backend/pkg/enums"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
	"github.com/kerbside-app/kerbside-backend/pkg/logger"
	"github.com/kerbside-app/kerbside-backend/pkg/metrics"
)

// Service defines the booking operations used by controllers.
type Service interface {
	Book(ctx context.Context, input BookInput) (*reservations.ReservationDTO, error)
	Cancel(ctx context.Context, input CancelInput) (*reservations.ReservationDTO, error)
	SetStatus(ctx context.Context, input SetStatusInput) (*reservations.ReservationDTO, error)
}

// Recorder mirrors reservation changes to an external sink. Failures are
// logged, never surfaced to the caller.
type Recorder interface {
	RecordReservation(ctx context.Context, reservation *reservations.ReservationDTO) error
}

// Notifier sends booking lifecycle emails. Same best-effort contract as Recorder.
type Notifier interface {
	NotifyBooked(ctx context.Context, reservation *reservations.ReservationDTO) error
	NotifyCancelled(ctx context.Context, reservation *reservations.ReservationDTO) error
}

type service struct {
	db       *db.Client
	items    *inventory.Repository
	resRepo  *reservations.Repository
	cfg      config.BookingConfig
	logg     *logger.Logger
	metrics  *metrics.BookingMetrics
	recorder Recorder
	notifier Notifier
	now      func() time.Time
}

// ServiceParams bundles the booking service dependencies. Recorder and
// Notifier may be nil, which disables the respective side effect.
type ServiceParams struct {
	DB       *db.Client
	Items    *inventory.Repository
	ResRepo  *reservations.Repository
	Config   config.BookingConfig
	Logger   *logger.Logger
	Metrics  *metrics.BookingMetrics
	Recorder Recorder
	Notifier Notifier
	Now      func() time.Time
}

// NewService constructs a booking service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Items == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if params.ResRepo == nil {
		return nil, fmt.Errorf("reservations repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		db:       params.DB,
		items:    params.Items,
		resRepo:  params.ResRepo,
		cfg:      params.Config,
		logg:     params.Logger,
		metrics:  params.Metrics,
		recorder: params.Recorder,
		notifier: params.Notifier,
		now:      now,
	}, nil
}

func (s *service) Book(ctx context.Context, input BookInput) (*reservations.ReservationDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Request.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	started := s.now()
	var created *models.Reservation
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		itemRepo := s.items.WithTx(tx)
		resRepo := s.resRepo.WithTx(tx)

		// Lock the item row so concurrent bookings of the same item serialize.
		item, err := itemRepo.FindByIDForUpdate(ctx, input.Request.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		if !item.IsActive {
			return pkgerrors.New(pkgerrors.CodeConflict, "item is not available for booking")
		}

		switch item.Mode {
		case enums.BookingModeRental:
			created, err = s.bookRental(ctx, resRepo, item, input)
		case enums.BookingModeStock:
			created, err = s.bookStock(ctx, itemRepo, resRepo, item, input)
		default:
			err = pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown booking mode %q", item.Mode))
		}
		return err
	})
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	s.metrics.ObserveDuration(created.Item.Mode.String(), s.now().Sub(started))
	s.metrics.IncBooked(created.Item.Mode.String())

	dto := reservations.FromModel(created)
	s.runSideEffects(ctx, dto, false)
	return dto, nil
}

func (s *service) bookRental(ctx context.Context, resRepo *reservations.Repository, item *models.Item, input BookInput) (*models.Reservation, error) {
	req := input.Request
	if req.StartAt == nil || req.EndAt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_at and end_at are required for rentals")
	}
	start := req.StartAt.UTC()
	end := req.EndAt.UTC()
	if err := reservations.ValidateRentalWindow(s.now(), start, end, s.cfg.GraceWindow); err != nil {
		return nil, err
	}

	overlapping, err := resRepo.CountOverlapping(ctx, item.ID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check availability")
	}
	if overlapping > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "item is already reserved for that period")
	}

	reservation := &models.Reservation{
		ItemID:     item.ID,
		UserID:     input.UserID,
		Status:     enums.ReservationStatusPending,
		Quantity:   1,
		StartAt:    &start,
		EndAt:      &end,
		TotalPrice: rentalPrice(item.UnitPrice, start, end),
		Notes:      req.Notes,
	}
	created, err := resRepo.Create(ctx, reservation)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
	}
	created.Item = item
	return created, nil
}

func (s *service) bookStock(ctx context.Context, itemRepo *inventory.Repository, resRepo *reservations.Repository, item *models.Item, input BookInput) (*models.Reservation, error) {
	qty := input.Request.Quantity
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if qty == 0 {
		qty = 1
	}

	affected, err := itemRepo.DecrementStock(ctx, item.ID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock available")
	}
	item.Stock -= qty

	reservation := &models.Reservation{
		ItemID:     item.ID,
		UserID:     input.UserID,
		Status:     enums.ReservationStatusConfirmed,
		Quantity:   qty,
		TotalPrice: item.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
		Notes:      input.Request.Notes,
	}
	created, err := resRepo.Create(ctx, reservation)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
	}
	created.Item = item
	return created, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*reservations.ReservationDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var cancelled *models.Reservation
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		resRepo := s.resRepo.WithTx(tx)

		reservation, err := resRepo.FindByID(ctx, input.ReservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}

		isAdmin := input.ActorRole == enums.UserRoleAdmin
		if !isAdmin && reservation.UserID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "reservation belongs to another user")
		}

		if err := reservations.EnsureTransition(reservation.Status, enums.ReservationStatusCancelled); err != nil {
			return err
		}

		// Customers cannot cancel a rental once the lockout before its start
		// has begun. The boundary instant counts as locked. Admins may.
		if !isAdmin && reservation.StartAt != nil {
			if !s.now().Before(reservation.StartAt.Add(-s.cfg.CancelLockout)) {
				return pkgerrors.New(pkgerrors.CodeConflict, "too close to the rental start to cancel")
			}
		}

		cancelled, err = s.applyCancellation(ctx, tx, reservation)
		return err
	})
	if err != nil {
		return nil, err
	}

	mode := ""
	if cancelled.Item != nil {
		mode = cancelled.Item.Mode.String()
	}
	s.metrics.IncCancelled(mode)

	dto := reservations.FromModel(cancelled)
	s.runSideEffects(ctx, dto, true)
	return dto, nil
}

func (s *service) SetStatus(ctx context.Context, input SetStatusInput) (*reservations.ReservationDTO, error) {
	var updated *models.Reservation
	wasCancelled := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		resRepo := s.resRepo.WithTx(tx)

		reservation, err := resRepo.FindByID(ctx, input.ReservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}

		if err := reservations.EnsureTransition(reservation.Status, input.Status); err != nil {
			return err
		}

		if input.Status == enums.ReservationStatusCancelled {
			wasCancelled = true
			updated, err = s.applyCancellation(ctx, tx, reservation)
			return err
		}

		now := s.now()
		if err := resRepo.UpdateStatus(ctx, reservation.ID, input.Status, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation status")
		}
		reservation.Status = input.Status
		updated = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := reservations.FromModel(updated)
	s.runSideEffects(ctx, dto, wasCancelled)
	return dto, nil
}

// applyCancellation marks the reservation cancelled and, for stock items,
// returns the quantity when restocking is enabled.
func (s *service) applyCancellation(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) (*models.Reservation, error) {
	resRepo := s.resRepo.WithTx(tx)
	itemRepo := s.items.WithTx(tx)

	now := s.now()
	if err := resRepo.UpdateStatus(ctx, reservation.ID, enums.ReservationStatusCancelled, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation status")
	}
	reservation.Status = enums.ReservationStatusCancelled
	reservation.CancelledAt = &now

	restock := s.cfg.RestockOnCancel &&
		reservation.Item != nil &&
		reservation.Item.Mode == enums.BookingModeStock
	if restock {
		affected, err := itemRepo.IncrementStock(ctx, reservation.ItemID, reservation.Quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock item")
		}
		if affected == 0 {
			s.logg.Warn(ctx, "restock skipped: would exceed initial stock")
		} else {
			reservation.Item.Stock += reservation.Quantity
		}
	}
	return reservation, nil
}

// runSideEffects mirrors the reservation and sends notifications. Both are
// best effort: errors are logged and swallowed so a completed booking is
// never rolled back by an external dependency.
func (s *service) runSideEffects(ctx context.Context, dto *reservations.ReservationDTO, cancelled bool) {
	ctx = s.logg.WithReservationID(ctx, dto.ID.String())

	if s.recorder != nil {
		if err := s.recorder.RecordReservation(ctx, dto); err != nil {
			s.logg.Error(ctx, "mirror reservation failed", err)
		}
	}
	if s.notifier != nil {
		var err error
		if cancelled {
			err = s.notifier.NotifyCancelled(ctx, dto)
		} else {
			err = s.notifier.NotifyBooked(ctx, dto)
		}
		if err != nil {
			s.logg.Error(ctx, "reservation notification failed", err)
		}
	}
}

func (s *service) recordRejection(err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		return
	}
	switch typed.Code() {
	case pkgerrors.CodeConflict:
		s.metrics.IncRejected("conflict")
	case pkgerrors.CodeInsufficientStock:
		s.metrics.IncRejected("insufficient_stock")
	case pkgerrors.CodePastDate:
		s.metrics.IncRejected("past_date")
	case pkgerrors.CodeValidation:
		s.metrics.IncRejected("validation")
	}
}

// rentalPrice charges the unit price per started day of the window.
func rentalPrice(unitPrice decimal.Decimal, start, end time.Time) decimal.Decimal {
	days := int64(end.Sub(start) / (24 * time.Hour))
	if end.Sub(start)%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return unitPrice.Mul(decimal.NewFromInt(days))
}
