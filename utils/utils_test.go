package utils

import (
	"testing"
	"time"
)

func TestHoursUntil(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		from time.Time
		want int
	}{
		{"exactly a day", base.Add(-24 * time.Hour), 24},
		{"rounds to nearest", base.Add(-90 * time.Minute), 2},
		{"under half an hour", base.Add(-20 * time.Minute), 0},
		{"already started", base.Add(time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HoursUntil(tt.from, base); got != tt.want {
				t.Errorf("HoursUntil() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatKickoff(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	if got, want := FormatKickoff(ts, nil), "Sat, 01 Mar 2025 09:00 UTC"; got != want {
		t.Errorf("FormatKickoff() = %q, want %q", got, want)
	}
}

func TestPluralHours(t *testing.T) {
	if got := PluralHours(1); got != "1 hour" {
		t.Errorf("PluralHours(1) = %q", got)
	}
	if got := PluralHours(24); got != "24 hours" {
		t.Errorf("PluralHours(24) = %q", got)
	}
}
