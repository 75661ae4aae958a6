package reservations

import (
	"testing"
	"time"

	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
)

func TestValidateRentalWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	grace := 5 * time.Minute

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		code  pkgerrors.Code
	}{
		{"future window ok", now.Add(time.Hour), now.Add(25 * time.Hour), ""},
		{"zero start", time.Time{}, now.Add(time.Hour), pkgerrors.CodeValidation},
		{"zero end", now.Add(time.Hour), time.Time{}, pkgerrors.CodeValidation},
		{"end equals start", now.Add(time.Hour), now.Add(time.Hour), pkgerrors.CodeValidation},
		{"end before start", now.Add(2 * time.Hour), now.Add(time.Hour), pkgerrors.CodeValidation},
		{"start just inside grace", now.Add(-grace), now.Add(time.Hour), ""},
		{"start beyond grace", now.Add(-grace - time.Second), now.Add(time.Hour), pkgerrors.CodePastDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRentalWindow(now, tc.start, tc.end, grace)
			if tc.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"disjoint", at(0), at(2), at(3), at(5), false},
		{"touching endpoints", at(0), at(2), at(2), at(4), false},
		{"partial overlap", at(0), at(3), at(2), at(5), true},
		{"contained", at(0), at(10), at(2), at(4), true},
		{"identical", at(1), at(2), at(1), at(2), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Fatalf("expected %v", tc.want)
			}
		})
	}
}
