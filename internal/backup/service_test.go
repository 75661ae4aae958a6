package backup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kerbside-app/kerbside-backend/internal/inventory"
	"github.com/kerbside-app/kerbside-backend/internal/reservations"
	"github.com/kerbside-app/kerbside-backend/internal/users"
	"github.com/kerbside-app/kerbside-backend/pkg/db"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	"github.com/kerbside-app/kerbside-backend/pkg/enums"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
	"github.com/kerbside-app/kerbside-backend/pkg/logger"
)

func newBackupService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:backup_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Item{}, &models.Reservation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(ServiceParams{
		DB:      db.NewWithConn(conn),
		Users:   users.NewRepository(conn),
		Items:   inventory.NewRepository(conn),
		ResRepo: reservations.NewRepository(conn),
		Logger:  logger.New(logger.Options{ServiceName: "backup-test"}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func seedWorld(t *testing.T, conn *gorm.DB) (*models.User, *models.Item, *models.Reservation) {
	t.Helper()
	user := &models.User{
		Email:        "rider@example.com",
		PasswordHash: "hash",
		FirstName:    "Robin",
		LastName:     "Doe",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	item := &models.Item{Name: "Cargo van", Mode: enums.BookingModeRental, Stock: 1, InitialStock: 1, IsActive: true}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	reservation := &models.Reservation{
		ItemID:   item.ID,
		UserID:   user.ID,
		Status:   enums.ReservationStatusPending,
		Quantity: 1,
		StartAt:  &start,
		EndAt:    &end,
	}
	if err := conn.Create(reservation).Error; err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
	return user, item, reservation
}

func TestExportRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	svc, conn := newBackupService(t)
	ctx := context.Background()
	user, item, reservation := seedWorld(t, conn)

	snapshot, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(snapshot.Users) != 1 || len(snapshot.Items) != 1 || len(snapshot.Reservations) != 1 {
		t.Fatalf("unexpected snapshot sizes: %d/%d/%d",
			len(snapshot.Users), len(snapshot.Items), len(snapshot.Reservations))
	}
	if snapshot.Reservations[0].Item != nil || snapshot.Reservations[0].User != nil {
		t.Fatal("snapshot reservations must not embed associations")
	}

	// Mutate the live data, then restore the snapshot over it.
	if err := conn.Model(&models.Item{}).Where("id = ?", item.ID).Update("name", "renamed").Error; err != nil {
		t.Fatalf("mutate item: %v", err)
	}

	result, err := svc.Restore(ctx, snapshot)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if result.UsersRestored != 1 || result.ItemsRestored != 1 || result.ReservationsRestored != 1 {
		t.Fatalf("unexpected restore counts: %+v", result)
	}
	if result.DuplicatesSkipped != 0 || result.OrphansSkipped != 0 {
		t.Fatalf("unexpected skips: %+v", result)
	}

	var storedItem models.Item
	if err := conn.First(&storedItem, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if storedItem.Name != item.Name {
		t.Fatalf("expected restored name %q, got %q", item.Name, storedItem.Name)
	}

	var storedReservation models.Reservation
	if err := conn.First(&storedReservation, "id = ?", reservation.ID).Error; err != nil {
		t.Fatalf("load reservation: %v", err)
	}
	if storedReservation.UserID != user.ID {
		t.Fatalf("expected reservation owner preserved")
	}
}

func TestRestoreSkipsDuplicatesAndOrphans(t *testing.T) {
	t.Parallel()

	svc, _ := newBackupService(t)
	ctx := context.Background()

	keptUser := models.User{ID: uuid.New(), Email: "kept@example.com", PasswordHash: "h", FirstName: "K", LastName: "U", Role: enums.UserRoleCustomer, IsActive: true}
	dupUser := models.User{ID: uuid.New(), Email: "kept@example.com", PasswordHash: "h", FirstName: "D", LastName: "U", Role: enums.UserRoleCustomer, IsActive: true}

	plate := "KR-1"
	keptItem := models.Item{ID: uuid.New(), Name: "Van", Mode: enums.BookingModeRental, PlateNumber: &plate, Stock: 1, InitialStock: 1, IsActive: true}
	dupItem := models.Item{ID: uuid.New(), Name: "Van clone", Mode: enums.BookingModeRental, PlateNumber: &plate, Stock: 1, InitialStock: 1, IsActive: true}

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	good := models.Reservation{ID: uuid.New(), ItemID: keptItem.ID, UserID: keptUser.ID, Status: enums.ReservationStatusPending, Quantity: 1, StartAt: &start, EndAt: &end}
	orphan := models.Reservation{ID: uuid.New(), ItemID: dupItem.ID, UserID: dupUser.ID, Status: enums.ReservationStatusPending, Quantity: 1, StartAt: &start, EndAt: &end}

	result, err := svc.Restore(ctx, &Snapshot{
		TakenAt:      time.Now().UTC(),
		Users:        []models.User{keptUser, dupUser},
		Items:        []models.Item{keptItem, dupItem},
		Reservations: []models.Reservation{good, orphan},
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if result.UsersRestored != 1 || result.ItemsRestored != 1 {
		t.Fatalf("unexpected restore counts: %+v", result)
	}
	if result.DuplicatesSkipped != 2 {
		t.Fatalf("expected 2 duplicates skipped, got %d", result.DuplicatesSkipped)
	}
	if result.ReservationsRestored != 1 || result.OrphansSkipped != 1 {
		t.Fatalf("unexpected reservation counts: %+v", result)
	}
}

func TestRestoreRequiresSnapshot(t *testing.T) {
	t.Parallel()

	svc, _ := newBackupService(t)
	_, err := svc.Restore(context.Background(), nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
