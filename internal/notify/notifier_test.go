package notify

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kerbside-app/kerbside-backend/internal/inventory"
	"github.com/kerbside-app/kerbside-backend/internal/reservations"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	"github.com/kerbside-app/kerbside-backend/pkg/enums"
)

type sentMail struct {
	to      string
	name    string
	subject string
	body    string
}

type fakeMailer struct {
	sent    []sentMail
	sendErr error
}

func (f *fakeMailer) Send(_ context.Context, toEmail, toName, subject, plainText string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{to: toEmail, name: toName, subject: subject, body: plainText})
	return nil
}

type fakeUserFinder struct {
	user *models.User
}

func (f *fakeUserFinder) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return f.user, nil
}

func sampleReservation(userID uuid.UUID) *reservations.ReservationDTO {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	return &reservations.ReservationDTO{
		ID:         uuid.New(),
		ItemID:     uuid.New(),
		UserID:     userID,
		Status:     enums.ReservationStatusPending,
		Quantity:   1,
		StartAt:    &start,
		EndAt:      &end,
		TotalPrice: decimal.NewFromInt(100),
		Item:       &inventory.ItemDTO{Name: "Cargo van"},
	}
}

func sampleUser() *models.User {
	return &models.User{
		ID:        uuid.New(),
		Email:     "rider@example.com",
		FirstName: "Robin",
		LastName:  "Doe",
	}
}

func TestNotifyBooked(t *testing.T) {
	t.Parallel()

	user := sampleUser()
	mailer := &fakeMailer{}
	notifier := NewNotifier(mailer, &fakeUserFinder{user: user}, "ops@kerbside.example")

	reservation := sampleReservation(user.ID)
	if err := notifier.NotifyBooked(context.Background(), reservation); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(mailer.sent) != 2 {
		t.Fatalf("expected customer and admin mail, got %d", len(mailer.sent))
	}

	customer := mailer.sent[0]
	if customer.to != "rider@example.com" || customer.name != "Robin Doe" {
		t.Fatalf("unexpected customer mail: %+v", customer)
	}
	if !strings.Contains(customer.body, "Cargo van") {
		t.Fatalf("expected item name in body: %q", customer.body)
	}

	admin := mailer.sent[1]
	if admin.to != "ops@kerbside.example" {
		t.Fatalf("unexpected admin recipient: %q", admin.to)
	}
	if !strings.HasPrefix(admin.subject, "[kerbside]") {
		t.Fatalf("expected tagged admin subject, got %q", admin.subject)
	}
}

func TestNotifyWithoutAdminCopy(t *testing.T) {
	t.Parallel()

	user := sampleUser()
	mailer := &fakeMailer{}
	notifier := NewNotifier(mailer, &fakeUserFinder{user: user}, "")

	if err := notifier.NotifyCancelled(context.Background(), sampleReservation(user.ID)); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected only the customer mail, got %d", len(mailer.sent))
	}
	if !strings.Contains(mailer.sent[0].subject, "cancelled") {
		t.Fatalf("unexpected subject: %q", mailer.sent[0].subject)
	}
}

func TestNotifyUnknownUser(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	notifier := NewNotifier(mailer, &fakeUserFinder{}, "")

	if err := notifier.NotifyBooked(context.Background(), sampleReservation(uuid.New())); err == nil {
		t.Fatal("expected lookup failure to surface")
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no mail, got %d", len(mailer.sent))
	}
}

func TestNilNotifierIsNoOp(t *testing.T) {
	t.Parallel()

	var notifier *Notifier
	if err := notifier.NotifyBooked(context.Background(), sampleReservation(uuid.New())); err != nil {
		t.Fatalf("nil notify: %v", err)
	}
	if err := notifier.NotifyCancelled(context.Background(), sampleReservation(uuid.New())); err != nil {
		t.Fatalf("nil notify: %v", err)
	}

	if got := NewNotifier(nil, &fakeUserFinder{}, ""); got != nil {
		t.Fatal("expected nil notifier when mailer is missing")
	}
}
