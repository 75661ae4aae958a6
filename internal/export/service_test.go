package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kerbside-app/kerbside-backend/internal/inventory"
	"github.com/kerbside-app/kerbside-backend/internal/reservations"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	"github.com/kerbside-app/kerbside-backend/pkg/enums"
)

func newExportService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:export_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Item{}, &models.Reservation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(inventory.NewRepository(conn), reservations.NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func TestBuildWorkbook(t *testing.T) {
	t.Parallel()

	svc, conn := newExportService(t)
	ctx := context.Background()

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

	item := &models.Item{
		Name:      "Cargo van",
		Mode:      enums.BookingModeRental,
		UnitPrice: decimal.NewFromInt(100),
		Stock:     1, InitialStock: 1,
		IsActive: true,
	}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	reservation := &models.Reservation{
		ItemID:     item.ID,
		UserID:     user.ID,
		Status:     enums.ReservationStatusPending,
		Quantity:   1,
		StartAt:    &start,
		EndAt:      &end,
		TotalPrice: decimal.NewFromInt(100),
	}
	if err := conn.Create(reservation).Error; err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	workbook, err := svc.BuildWorkbook(ctx)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	// Round-trip through the serialized form, as a download would.
	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	parsed, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}

	sheets := parsed.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Items" || sheets[1] != "Reservations" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	itemRows, err := parsed.GetRows("Items")
	if err != nil {
		t.Fatalf("read items sheet: %v", err)
	}
	if len(itemRows) != 2 {
		t.Fatalf("expected header plus one item row, got %d", len(itemRows))
	}
	if itemRows[0][0] != "ID" || itemRows[1][1] != "Cargo van" {
		t.Fatalf("unexpected item rows: %v", itemRows)
	}

	resRows, err := parsed.GetRows("Reservations")
	if err != nil {
		t.Fatalf("read reservations sheet: %v", err)
	}
	if len(resRows) != 2 {
		t.Fatalf("expected header plus one reservation row, got %d", len(resRows))
	}
	row := resRows[1]
	if row[0] != reservation.ID.String() {
		t.Fatalf("unexpected reservation id: %q", row[0])
	}
	if row[1] != "Cargo van" || row[2] != "rider@example.com" {
		t.Fatalf("expected joined item and user columns, got %v", row)
	}
	if row[3] != "pending" {
		t.Fatalf("unexpected status: %q", row[3])
	}
}

func TestBuildWorkbookEmptyTables(t *testing.T) {
	t.Parallel()

	svc, _ := newExportService(t)
	workbook, err := svc.BuildWorkbook(context.Background())
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	rows, err := workbook.GetRows("Reservations")
	if err != nil {
		t.Fatalf("read reservations sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
