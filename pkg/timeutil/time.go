package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DatetimeLayout is the layout operators type range anchors in.
const DatetimeLayout = "2006-01-02 15:04:05"

// ParseTimeRange parses time range strings like "2h", "2d", "30m", "7d"
// Returns duration or error
func ParseTimeRange(timeRange string) (time.Duration, error) {
	duration, err := time.ParseDuration(timeRange)
	if err == nil {
		return duration, nil
	}

	if len(timeRange) > 1 && timeRange[len(timeRange)-1] == 'd' {
		days := timeRange[:len(timeRange)-1]
		if numDays, err := strconv.Atoi(days); err == nil {
			return time.Duration(numDays) * 24 * time.Hour, nil
		}
	}

	return 0, fmt.Errorf("invalid time range format: use formats like '2h', '30m', '2d', '7d'")
}

// ParseDatetime accepts "now", epoch milliseconds, RFC3339 or DatetimeLayout
// (interpreted in loc).
func ParseDatetime(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "now") {
		return now, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FromMillis(ms), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DatetimeLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q: use 'now', epoch millis, RFC3339 or '%s'", s, DatetimeLayout)
}

// Millis converts t to epoch milliseconds, the unit of every backend timestamp.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to a time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
