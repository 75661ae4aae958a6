package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/kerbside-app/kerbside-backend/internal/reservations"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
)

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Notifier emails the customer and optionally the operations inbox on
// reservation changes. A nil Notifier is a valid no-op.
type Notifier struct {
	mailer     Mailer
	users      userFinder
	adminEmail string
}

// NewNotifier constructs a reservation notifier. Returns nil when mailer is
// nil so callers can wire the result directly as an optional dependency.
func NewNotifier(mailer Mailer, users userFinder, adminEmail string) *Notifier {
	if mailer == nil {
		return nil
	}
	return &Notifier{mailer: mailer, users: users, adminEmail: adminEmail}
}

// NotifyBooked emails confirmation of a new reservation.
func (n *Notifier) NotifyBooked(ctx context.Context, reservation *reservations.ReservationDTO) error {
	if n == nil {
		return nil
	}
	subject := "Your reservation is in"
	return n.deliver(ctx, reservation, subject, bookingBody(reservation))
}

// NotifyCancelled emails confirmation of a cancellation.
func (n *Notifier) NotifyCancelled(ctx context.Context, reservation *reservations.ReservationDTO) error {
	if n == nil {
		return nil
	}
	subject := "Your reservation was cancelled"
	return n.deliver(ctx, reservation, subject, cancellationBody(reservation))
}

func (n *Notifier) deliver(ctx context.Context, reservation *reservations.ReservationDTO, subject, body string) error {
	user, err := n.users.FindByID(ctx, reservation.UserID)
	if err != nil {
		return fmt.Errorf("load reservation user: %w", err)
	}

	var errs error
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if err := n.mailer.Send(ctx, user.Email, name, subject, body); err != nil {
		errs = multierr.Append(errs, err)
	}
	if n.adminEmail != "" {
		adminSubject := fmt.Sprintf("[kerbside] %s (%s)", subject, reservation.ID)
		if err := n.mailer.Send(ctx, n.adminEmail, "Kerbside Ops", adminSubject, body); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func bookingBody(r *reservations.ReservationDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reservation %s is %s.\n", r.ID, r.Status)
	if r.Item != nil {
		fmt.Fprintf(&b, "Item: %s\n", r.Item.Name)
	}
	if r.StartAt != nil && r.EndAt != nil {
		fmt.Fprintf(&b, "Period: %s to %s\n", r.StartAt.UTC().Format("2006-01-02 15:04"), r.EndAt.UTC().Format("2006-01-02 15:04"))
	} else {
		fmt.Fprintf(&b, "Quantity: %d\n", r.Quantity)
	}
	fmt.Fprintf(&b, "Total: %s\n", r.TotalPrice.String())
	return b.String()
}

func cancellationBody(r *reservations.ReservationDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reservation %s has been cancelled.\n", r.ID)
	if r.Item != nil {
		fmt.Fprintf(&b, "Item: %s\n", r.Item.Name)
	}
	if r.CancelledAt != nil {
		fmt.Fprintf(&b, "Cancelled at: %s\n", r.CancelledAt.UTC().Format("2006-01-02 15:04"))
	}
	return b.String()
}
