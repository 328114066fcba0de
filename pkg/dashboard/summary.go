// Package dashboard turns a window of alerts and events into the dashboard
// view: severity counts, the open/acknowledged matrix and timeline groups.
package dashboard

import (
	"sort"
	"time"

	"github.com/hawkular/hawkular-alerts-console/pkg/timeutil"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// Timeline group names and the order they are drawn in.
const (
	GroupOpen         = "Open Alerts"
	GroupAcknowledged = "Acknowledged Alerts"
	GroupResolved     = "Resolved Alerts"
	GroupEvents       = "Events"
)

// timelinePadding widens the drawn window on both sides, as a fraction of
// the range length.
const timelinePadding = 0.10

var groupColors = map[string]string{
	GroupOpen:         "#c00",
	GroupAcknowledged: "#ec7a08",
	GroupResolved:     "#3f9c35",
	GroupEvents:       "",
}

// Point is one dot on the timeline. Exactly one of Alert and Event is set.
type Point struct {
	Date  time.Time
	Alert *types.Alert
	Event *types.Event
}

// ID returns the id of the alert or event behind the point.
func (p Point) ID() string {
	if p.Alert != nil {
		return p.Alert.ID
	}
	if p.Event != nil {
		return p.Event.ID
	}
	return ""
}

// Group is a named timeline row.
type Group struct {
	Name   string
	Color  string
	Points []Point
}

// ActiveCounts is the number of open and acknowledged alerts of a severity.
type ActiveCounts struct {
	Severity     types.Severity
	Open         int
	Acknowledged int
}

// Summary is everything the dashboard draws for one refresh.
type Summary struct {
	Start, End int64

	// BySeverity counts alerts that are not resolved.
	BySeverity map[types.Severity]int
	// Active rows follow types.Severities order.
	Active []ActiveCounts

	Timeline      []Group
	ShowTimeline  bool
	TimelineStart time.Time
	TimelineEnd   time.Time
}

// Build computes the summary of alerts and events fetched for [start, end].
func Build(alerts []types.Alert, events []types.Event, start, end int64) *Summary {
	s := &Summary{
		Start:      start,
		End:        end,
		BySeverity: make(map[types.Severity]int, len(types.Severities)),
		Active:     make([]ActiveCounts, len(types.Severities)),
	}
	rows := make(map[types.Severity]*ActiveCounts, len(types.Severities))
	for i, sev := range types.Severities {
		s.BySeverity[sev] = 0
		s.Active[i].Severity = sev
		rows[sev] = &s.Active[i]
	}

	open := Group{Name: GroupOpen, Color: groupColors[GroupOpen]}
	ack := Group{Name: GroupAcknowledged, Color: groupColors[GroupAcknowledged]}
	resolved := Group{Name: GroupResolved, Color: groupColors[GroupResolved]}
	evs := Group{Name: GroupEvents, Color: groupColors[GroupEvents]}

	for i := range alerts {
		a := &alerts[i]
		row := rows[a.Severity]
		if a.Status != types.StatusResolved && row != nil {
			s.BySeverity[a.Severity]++
		}
		p := Point{Date: timeutil.FromMillis(a.LastStatusTime()), Alert: a}
		switch a.Status {
		case types.StatusOpen:
			open.Points = append(open.Points, p)
			if row != nil {
				row.Open++
			}
		case types.StatusAcknowledged:
			ack.Points = append(ack.Points, p)
			if row != nil {
				row.Acknowledged++
			}
		case types.StatusResolved:
			resolved.Points = append(resolved.Points, p)
		}
	}
	for i := range events {
		e := &events[i]
		evs.Points = append(evs.Points, Point{Date: timeutil.FromMillis(e.CTime), Event: e})
	}

	s.Timeline = []Group{open, ack, resolved, evs}
	s.ShowTimeline = len(alerts) > 0 || len(events) > 0
	s.TimelineStart, s.TimelineEnd = Window(start, end)
	return s
}

// Window pads [start, end] by 10% of its length on each side.
func Window(start, end int64) (time.Time, time.Time) {
	pad := int64(float64(end-start) * timelinePadding)
	return timeutil.FromMillis(start - pad), timeutil.FromMillis(end + pad)
}

// Group returns the named timeline group, nil if unknown.
func (s *Summary) Group(name string) *Group {
	for i := range s.Timeline {
		if s.Timeline[i].Name == name {
			return &s.Timeline[i]
		}
	}
	return nil
}

// TotalActive is the number of alerts that are not resolved.
func (s *Summary) TotalActive() int {
	n := 0
	for _, c := range s.BySeverity {
		n += c
	}
	return n
}

// Sorted returns the points of all groups ordered by date, newest first.
func (s *Summary) Sorted() []Point {
	var all []Point
	for _, g := range s.Timeline {
		all = append(all, g.Points...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	return all
}
