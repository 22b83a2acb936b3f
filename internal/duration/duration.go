// Package duration provides parsing for human-readable duration strings.
package duration

import (
	"fmt"
	"strings"
	"time"
)

// Parse parses human-readable durations like "12h", "30d", "12w" or "6mo"
// into a time.Duration.
func Parse(s string) (time.Duration, error) {
	var n int
	var unit string

	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d%s", &n, &unit); err != nil {
		return 0, fmt.Errorf("invalid duration format: %s (use e.g., 12h, 30d, 12w)", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", s)
	}

	switch unit {
	case "m", "min", "mins":
		return time.Duration(n) * time.Minute, nil
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(n) * time.Hour, nil
	case "d", "day", "days":
		return time.Duration(n) * 24 * time.Hour, nil
	case "w", "wk", "wks", "week", "weeks":
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case "mo", "month", "months":
		return time.Duration(n) * 30 * 24 * time.Hour, nil
	case "y", "yr", "yrs", "year", "years":
		return time.Duration(n) * 365 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}

// Humanize renders a duration in the largest whole unit that fits,
// e.g. 2160h -> "90d". Used in summaries and ticket bodies.
func Humanize(d time.Duration) string {
	day := 24 * time.Hour
	switch {
	case d >= day && d%day == 0:
		return fmt.Sprintf("%dd", d/day)
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return d.String()
	}
}
