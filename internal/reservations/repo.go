package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	"github.com/kerbside-app/kerbside-backend/pkg/enums"
	"github.com/kerbside-app/kerbside-backend/pkg/pagination"
)

// Repository exposes reservation persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reservations repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new reservation.
func (r *Repository) Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

// FindByID loads a reservation with its item preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Item").
		First(&reservation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CountOverlapping counts non-cancelled rentals of the item whose half-open
// window [start_at, end_at) intersects the requested one.
func (r *Repository) CountOverlapping(ctx context.Context, itemID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("item_id = ?", itemID).
		Where("status <> ?", enums.ReservationStatusCancelled).
		Where("start_at < ? AND end_at > ?", end, start).
		Count(&count).Error
	return count, err
}

// CountOpenByItem counts reservations of the item that are not cancelled.
func (r *Repository) CountOpenByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("item_id = ?", itemID).
		Where("status <> ?", enums.ReservationStatusCancelled).
		Count(&count).Error
	return count, err
}

// List returns reservations after the cursor, newest first, with items preloaded.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Reservation, error) {
	query := r.db.WithContext(ctx).Model(&models.Reservation{}).Preload("Item")

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.ItemID != nil {
		query = query.Where("item_id = ?", *params.ItemID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Reservation
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus sets the reservation status, stamping cancelled_at when needed.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, at time.Time) error {
	updates := map[string]any{"status": status}
	if status == enums.ReservationStatusCancelled {
		updates["cancelled_at"] = at
	}
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListAll returns every reservation with items preloaded, oldest first.
// Used by export, mirror, and backup.
func (r *Repository) ListAll(ctx context.Context) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("User").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteAll removes every reservation row. Used by backup restore.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Reservation{}).Error
}
