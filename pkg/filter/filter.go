// Package filter holds the list filters shared by the dashboard, alerts and
// events views: the time range window and the alert severity/status/tag
// selections.
package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hawkular/hawkular-alerts-console/pkg/timeutil"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// Unit of a range offset.
type Unit string

const (
	Minutes Unit = "Minutes"
	Hours   Unit = "Hours"
	Days    Unit = "Days"
)

// Direction of a range from its anchor datetime.
type Direction string

const (
	Before Direction = "Before"
	After  Direction = "After"
)

var (
	UnitOptions      = []Unit{Minutes, Hours, Days}
	DirectionOptions = []Direction{Before, After}
	Presets          = []string{"30m", "1h", "4h", "8h", "12h", "1d", "7d", "30d"}
)

const (
	AllSeverity = "All Severity"
	AllStatus   = "All Status"
)

var (
	SeverityOptions = []string{AllSeverity, "Low", "Medium", "High", "Critical"}
	StatusOptions   = []string{AllStatus, "Open", "Acknowledged", "Resolved"}
)

// Range is a time window of Offset Units before or after Datetime.
type Range struct {
	Datetime  time.Time
	Offset    int
	Unit      Unit
	Direction Direction
}

// DefaultRange is the 4 hours before now.
func DefaultRange(now time.Time) Range {
	return Range{Datetime: now, Offset: 4, Unit: Hours, Direction: Before}
}

// Duration returns the window length.
func (r Range) Duration() (time.Duration, error) {
	var unit time.Duration
	switch r.Unit {
	case Minutes:
		unit = time.Minute
	case Hours:
		unit = time.Hour
	case Days:
		unit = 24 * time.Hour
	default:
		return 0, fmt.Errorf("unsupported range unit %q", r.Unit)
	}
	return time.Duration(r.Offset) * unit, nil
}

// Bounds returns the window as epoch milliseconds [start, end].
func (r Range) Bounds() (int64, int64, error) {
	d, err := r.Duration()
	if err != nil {
		return 0, 0, err
	}
	anchor := timeutil.Millis(r.Datetime)
	switch r.Direction {
	case Before:
		return anchor - d.Milliseconds(), anchor, nil
	case After:
		return anchor, anchor + d.Milliseconds(), nil
	}
	return 0, 0, fmt.Errorf("unsupported range direction %q", r.Direction)
}

// Slide re-anchors the window to now. Used on every auto-refresh so the
// window keeps following the clock.
func (r Range) Slide(now time.Time) Range {
	r.Datetime = now
	return r
}

// Preset sets offset and unit from a shortcut like "4h" or "7d", anchors the
// window to now and looks backwards.
func (r Range) Preset(preset string, now time.Time) (Range, error) {
	switch preset {
	case "30m":
		r.Offset, r.Unit = 30, Minutes
	case "1h", "4h", "8h", "12h":
		r.Offset, r.Unit = atoi(strings.TrimSuffix(preset, "h")), Hours
	case "1d", "7d", "30d":
		r.Offset, r.Unit = atoi(strings.TrimSuffix(preset, "d")), Days
	default:
		return r, fmt.Errorf("unsupported range %q, use one of %s", preset, strings.Join(Presets, ", "))
	}
	r.Datetime = now
	r.Direction = Before
	return r, nil
}

// ParseRange builds a Range from a free form duration ("45m", "2d") ending now.
// Known presets keep their unit; anything else is expressed in minutes.
func ParseRange(s string, now time.Time) (Range, error) {
	r := DefaultRange(now)
	if s == "" {
		return r, nil
	}
	if p, err := r.Preset(s, now); err == nil {
		return p, nil
	}
	d, err := timeutil.ParseTimeRange(s)
	if err != nil {
		return r, err
	}
	if d < time.Minute {
		return r, fmt.Errorf("range %q is shorter than a minute", s)
	}
	r.Offset, r.Unit = int(d/time.Minute), Minutes
	return r, nil
}

// atoi is only fed the digits of a known preset.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// AlertFilter is the alerts list selection.
type AlertFilter struct {
	Severity string
	Status   string
	TagQuery string
}

// DefaultAlertFilter selects everything.
func DefaultAlertFilter() AlertFilter {
	return AlertFilter{Severity: AllSeverity, Status: AllStatus}
}

// Link returns the filter used when drilling down from the dashboard: empty
// selections mean "All" and the tag query is cleared.
func Link(status, severity string) AlertFilter {
	if status == "" {
		status = AllStatus
	}
	if severity == "" {
		severity = AllSeverity
	}
	return AlertFilter{Severity: severity, Status: status}
}

// Severities returns the backend severities selected, nil for all.
func (f AlertFilter) Severities() ([]types.Severity, error) {
	if f.Severity == "" || f.Severity == AllSeverity {
		return nil, nil
	}
	sev, ok := types.ParseSeverity(f.Severity)
	if !ok {
		return nil, fmt.Errorf("unknown severity %q, use one of %s", f.Severity, strings.Join(SeverityOptions, ", "))
	}
	return []types.Severity{sev}, nil
}

// Statuses returns the backend statuses selected, nil for all.
func (f AlertFilter) Statuses() ([]types.Status, error) {
	if f.Status == "" || f.Status == AllStatus {
		return nil, nil
	}
	st, ok := types.ParseStatus(f.Status)
	if !ok {
		return nil, fmt.Errorf("unknown status %q, use one of %s", f.Status, strings.Join(StatusOptions, ", "))
	}
	return []types.Status{st}, nil
}

// EventFilter is the events list selection.
type EventFilter struct {
	TagQuery string
}
