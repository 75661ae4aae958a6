package reservations

import (
	"testing"

	"github.com/kerbside-app/kerbside-backend/pkg/enums"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to enums.ReservationStatus }{
		{enums.ReservationStatusPending, enums.ReservationStatusConfirmed},
		{enums.ReservationStatusPending, enums.ReservationStatusCancelled},
		{enums.ReservationStatusConfirmed, enums.ReservationStatusCancelled},
		{enums.ReservationStatusConfirmed, enums.ReservationStatusCompleted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to enums.ReservationStatus }{
		{enums.ReservationStatusPending, enums.ReservationStatusCompleted},
		{enums.ReservationStatusCancelled, enums.ReservationStatusPending},
		{enums.ReservationStatusCancelled, enums.ReservationStatusConfirmed},
		{enums.ReservationStatusCompleted, enums.ReservationStatusCancelled},
		{enums.ReservationStatusCompleted, enums.ReservationStatusConfirmed},
		{enums.ReservationStatusPending, enums.ReservationStatusPending},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestEnsureTransition(t *testing.T) {
	t.Parallel()

	if err := EnsureTransition(enums.ReservationStatusPending, enums.ReservationStatusConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := EnsureTransition(enums.ReservationStatusCompleted, enums.ReservationStatusCancelled)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	err = EnsureTransition(enums.ReservationStatusPending, enums.ReservationStatus("parked"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
