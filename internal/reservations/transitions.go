package reservations

import (
	"fmt"

	"github.com/kerbside-app/kerbside-backend/pkg/enums"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
)

// allowedTransitions encodes the reservation status graph. Cancelled and
// completed are terminal.
var allowedTransitions = map[enums.ReservationStatus][]enums.ReservationStatus{
	enums.ReservationStatusPending: {
		enums.ReservationStatusConfirmed,
		enums.ReservationStatusCancelled,
	},
	enums.ReservationStatusConfirmed: {
		enums.ReservationStatusCancelled,
		enums.ReservationStatusCompleted,
	},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to enums.ReservationStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// EnsureTransition returns a state conflict error when the move is not allowed.
func EnsureTransition(from, to enums.ReservationStatus) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid reservation status %q", to))
	}
	if !CanTransition(from, to) {
		return pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition reservation from %s to %s", from, to),
		)
	}
	return nil
}
