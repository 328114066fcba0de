package types

import (
	"encoding/json"
	"fmt"
)

// EventTypeEvent and EventTypeAlert are the values of Event.EventType.
const (
	EventTypeEvent = "EVENT"
	EventTypeAlert = "ALERT"
)

// Event is a backend event document. Trigger and dampening snapshots are
// kept raw since the console only displays them.
type Event struct {
	TenantID   string            `json:"tenantId,omitempty"`
	ID         string            `json:"id"`
	CTime      int64             `json:"ctime"`
	DataSource string            `json:"dataSource,omitempty"`
	DataID     string            `json:"dataId,omitempty"`
	Category   string            `json:"category,omitempty"`
	Text       string            `json:"text,omitempty"`
	Context    map[string]string `json:"context,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
	Trigger    json.RawMessage   `json:"trigger,omitempty"`
	Dampening  json.RawMessage   `json:"dampening,omitempty"`
	EvalSets   [][]EvalSet       `json:"evalSets,omitempty"`
	EventType  string            `json:"eventType,omitempty"`
}

// EvalSet is a single condition evaluation. Its shape depends on the
// condition type so it stays a generic document.
type EvalSet map[string]any

// ParseContextEvents decodes the JSON string stored under context.events
// (context values can only be strings) into context.parsed. EvalSets
// without embedded events are left untouched.
func (e EvalSet) ParseContextEvents() error {
	ctx, ok := e["context"].(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := ctx["events"].(string)
	if !ok || raw == "" {
		return nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return fmt.Errorf("failed to parse context events: %w", err)
	}
	ctx["parsed"] = parsed
	return nil
}

// Clone copies the eval set and its context, the only parts
// ParseContextEvents writes. Other values are shared.
func (e EvalSet) Clone() EvalSet {
	if e == nil {
		return nil
	}
	c := make(EvalSet, len(e))
	for k, v := range e {
		c[k] = v
	}
	if ctx, ok := e["context"].(map[string]any); ok {
		cc := make(map[string]any, len(ctx))
		for k, v := range ctx {
			cc[k] = v
		}
		c["context"] = cc
	}
	return c
}

// CloneEvalSets clones every eval set; nil stays nil.
func CloneEvalSets(sets [][]EvalSet) [][]EvalSet {
	if sets == nil {
		return nil
	}
	out := make([][]EvalSet, len(sets))
	for i, set := range sets {
		if set == nil {
			continue
		}
		out[i] = make([]EvalSet, len(set))
		for j, eval := range set {
			out[i][j] = eval.Clone()
		}
	}
	return out
}

// ParseEvalSets runs ParseContextEvents over every eval set, returning the
// first error but still visiting the rest.
func ParseEvalSets(sets [][]EvalSet) error {
	var first error
	for _, set := range sets {
		for _, eval := range set {
			if err := eval.ParseContextEvents(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
