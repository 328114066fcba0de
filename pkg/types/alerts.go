package types

import "strings"

// Severity of an alert as set by the firing trigger.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities lists every severity from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Status is the lifecycle state of an alert.
type Status string

const (
	StatusOpen         Status = "OPEN"
	StatusAcknowledged Status = "ACKNOWLEDGED"
	StatusResolved     Status = "RESOLVED"
)

// ParseSeverity accepts any casing ("high", "High", "HIGH").
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	switch sev {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return sev, true
	}
	return "", false
}

// ParseStatus accepts any casing ("open", "Acknowledged", "RESOLVED").
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusOpen, StatusAcknowledged, StatusResolved:
		return st, true
	}
	return "", false
}

// LifeCycle is one status transition of an alert.
type LifeCycle struct {
	Status Status `json:"status"`
	User   string `json:"user,omitempty"`
	STime  int64  `json:"stime"`
}

// Note is an operator annotation on an alert.
type Note struct {
	User  string `json:"user"`
	CTime int64  `json:"ctime"`
	Text  string `json:"text"`
}

// Alert is an Event raised by a trigger that carries a lifecycle.
type Alert struct {
	Event
	Severity         Severity    `json:"severity,omitempty"`
	Status           Status      `json:"status,omitempty"`
	LifeCycle        []LifeCycle `json:"lifecycle,omitempty"`
	Notes            []Note      `json:"notes,omitempty"`
	ResolvedEvalSets [][]EvalSet `json:"resolvedEvalSets,omitempty"`
}

// LastStatusTime returns the stime of the most recent lifecycle entry,
// falling back to ctime for alerts fetched without lifecycle.
func (a *Alert) LastStatusTime() int64 {
	if n := len(a.LifeCycle); n > 0 {
		return a.LifeCycle[n-1].STime
	}
	return a.CTime
}
