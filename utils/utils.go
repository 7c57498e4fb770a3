package utils

import (
	"fmt"
	"os"
	"time"
)

const kickoffLayout = "Mon, 02 Jan 2006 15:04 MST"

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FormatKickoff renders a match time for notification messages in loc (UTC if nil).
func FormatKickoff(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(kickoffLayout)
}

// HoursUntil returns whole hours from from to to, rounded to the nearest hour and never negative.
func HoursUntil(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(d.Round(time.Hour) / time.Hour)
}

func PluralHours(n int) string {
	if n == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", n)
}
