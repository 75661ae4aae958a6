package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kerbside-app/kerbside-backend/internal/inventory"
	"github.com/kerbside-app/kerbside-backend/internal/reservations"
	"github.com/kerbside-app/kerbside-backend/internal/users"
	"github.com/kerbside-app/kerbside-backend/pkg/db"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
	"github.com/kerbside-app/kerbside-backend/pkg/logger"
)

// Snapshot is the JSON backup payload. Users keep their password hashes so a
// restore round-trips credentials.
type Snapshot struct {
	TakenAt      time.Time            `json:"taken_at"`
	Users        []models.User        `json:"users"`
	Items        []models.Item        `json:"items"`
	Reservations []models.Reservation `json:"reservations"`
}

// RestoreResult reports what a restore run actually loaded.
type RestoreResult struct {
	UsersRestored        int `json:"users_restored"`
	ItemsRestored        int `json:"items_restored"`
	ReservationsRestored int `json:"reservations_restored"`
	DuplicatesSkipped    int `json:"duplicates_skipped"`
	OrphansSkipped       int `json:"orphans_skipped"`
}

// Service exports and restores full-database snapshots.
type Service interface {
	Export(ctx context.Context) (*Snapshot, error)
	Restore(ctx context.Context, snapshot *Snapshot) (*RestoreResult, error)
}

type service struct {
	db      *db.Client
	users   *users.Repository
	items   *inventory.Repository
	resRepo *reservations.Repository
	logg    *logger.Logger
}

// ServiceParams bundles the backup service dependencies.
type ServiceParams struct {
	DB      *db.Client
	Users   *users.Repository
	Items   *inventory.Repository
	ResRepo *reservations.Repository
	Logger  *logger.Logger
}

// NewService constructs a backup service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Users == nil || params.Items == nil || params.ResRepo == nil {
		return nil, fmt.Errorf("all repositories are required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		db:      params.DB,
		users:   params.Users,
		items:   params.Items,
		resRepo: params.ResRepo,
		logg:    params.Logger,
	}, nil
}

func (s *service) Export(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{TakenAt: time.Now().UTC()}

	userRows, err := s.users.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load users")
	}
	itemRows, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}
	resRows, err := s.resRepo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservations")
	}
	for i := range resRows {
		resRows[i].Item = nil
		resRows[i].User = nil
	}

	snapshot.Users = userRows
	snapshot.Items = itemRows
	snapshot.Reservations = resRows
	return snapshot, nil
}

// Restore wipes the current tables and reloads them from the snapshot.
// Rows that collide on a unique key are skipped and counted rather than
// aborting the whole load; reservations whose user or item was skipped are
// dropped as orphans.
func (s *service) Restore(ctx context.Context, snapshot *Snapshot) (*RestoreResult, error) {
	if snapshot == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "snapshot is required")
	}

	result := &RestoreResult{}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		itemRepo := s.items.WithTx(tx)
		resRepo := s.resRepo.WithTx(tx)

		// Children first so foreign keys do not block the wipe.
		if err := resRepo.DeleteAll(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear reservations")
		}
		if err := itemRepo.DeleteAll(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear items")
		}
		if err := userRepo.DeleteAll(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear users")
		}

		keptUsers := map[uuid.UUID]bool{}
		seenEmails := map[string]bool{}
		for i := range snapshot.Users {
			user := snapshot.Users[i]
			if seenEmails[user.Email] {
				result.DuplicatesSkipped++
				continue
			}
			if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
				if db.IsUniqueViolation(err, "") {
					result.DuplicatesSkipped++
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore user")
			}
			seenEmails[user.Email] = true
			keptUsers[user.ID] = true
			result.UsersRestored++
		}

		keptItems := map[uuid.UUID]bool{}
		seenPlates := map[string]bool{}
		for i := range snapshot.Items {
			item := snapshot.Items[i]
			if item.PlateNumber != nil {
				if seenPlates[*item.PlateNumber] {
					result.DuplicatesSkipped++
					continue
				}
			}
			if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
				if db.IsUniqueViolation(err, "") {
					result.DuplicatesSkipped++
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore item")
			}
			if item.PlateNumber != nil {
				seenPlates[*item.PlateNumber] = true
			}
			keptItems[item.ID] = true
			result.ItemsRestored++
		}

		for i := range snapshot.Reservations {
			reservation := snapshot.Reservations[i]
			reservation.Item = nil
			reservation.User = nil
			if !keptUsers[reservation.UserID] || !keptItems[reservation.ItemID] {
				result.OrphansSkipped++
				continue
			}
			if err := tx.WithContext(ctx).Create(&reservation).Error; err != nil {
				if db.IsUniqueViolation(err, "") {
					result.DuplicatesSkipped++
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore reservation")
			}
			result.ReservationsRestored++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(ctx, fmt.Sprintf(
		"backup restore complete: %d users, %d items, %d reservations, %d duplicates skipped",
		result.UsersRestored, result.ItemsRestored, result.ReservationsRestored, result.DuplicatesSkipped,
	))
	return result, nil
}
