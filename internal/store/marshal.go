package store

import (
	"fmt"
	"time"

	"github.com/roach88/rvcomply/internal/ir"
)

// Timestamps are stored as RFC 3339 TEXT in UTC so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func parseStatus(s string) (ir.Status, error) {
	status, err := ir.ParseStatus(s)
	if err != nil {
		return ir.Unknown, fmt.Errorf("parse status: %w", err)
	}
	return status, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
