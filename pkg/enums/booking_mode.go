package enums

import "fmt"

// BookingMode selects how an item is reserved: by time window or by quantity.
type BookingMode string

const (
	BookingModeRental BookingMode = "rental"
	BookingModeStock  BookingMode = "stock"
)

var validBookingModes = []BookingMode{
	BookingModeRental,
	BookingModeStock,
}

// String implements fmt.Stringer.
func (b BookingMode) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingMode.
func (b BookingMode) IsValid() bool {
	for _, candidate := range validBookingModes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBookingMode converts raw input into a BookingMode.
func ParseBookingMode(value string) (BookingMode, error) {
	for _, candidate := range validBookingModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking mode %q", value)
}
