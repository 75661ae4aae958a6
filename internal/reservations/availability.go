package reservations

import (
	"time"

	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
)

// ValidateRentalWindow checks the ordering and timing rules for a rental
// request. Windows are half-open: [start, end). A start inside the grace
// window before now is still accepted; anything earlier is a past-date
// rejection.
func ValidateRentalWindow(now, start, end time.Time, grace time.Duration) error {
	if start.IsZero() || end.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end times are required")
	}
	if !end.After(start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end time must be after start time")
	}
	if start.Before(now.Add(-grace)) {
		return pkgerrors.New(pkgerrors.CodePastDate, "start time is in the past")
	}
	return nil
}

// Overlaps reports whether two half-open intervals intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
