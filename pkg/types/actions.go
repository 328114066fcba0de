package types

import "encoding/json"

// ActionDefinition configures one action instance of a plugin.
type ActionDefinition struct {
	TenantID     string            `json:"tenantId,omitempty"`
	ActionPlugin string            `json:"actionPlugin"`
	ActionID     string            `json:"actionId"`
	Global       bool              `json:"global,omitempty"`
	States       []string          `json:"states,omitempty"`
	Calendar     string            `json:"calendar,omitempty"`
	Properties   map[string]string `json:"properties,omitempty"`
}

// Action is an entry of the actions history: one execution of an action
// definition for an event.
type Action struct {
	TenantID     string            `json:"tenantId,omitempty"`
	ActionPlugin string            `json:"actionPlugin"`
	ActionID     string            `json:"actionId"`
	EventID      string            `json:"eventId"`
	CTime        int64             `json:"ctime"`
	Result       string            `json:"result,omitempty"`
	Properties   map[string]string `json:"properties,omitempty"`
	Event        json.RawMessage   `json:"event,omitempty"`
}

// ActionIDs maps action plugin name to the action ids defined for it.
type ActionIDs map[string][]string

// Definitions is the export/import document.
type Definitions struct {
	Triggers []FullTrigger                          `json:"triggers,omitempty"`
	Actions  map[string]map[string]ActionDefinition `json:"actions,omitempty"`
}

// ImportStrategy controls how POST /import merges definitions.
type ImportStrategy string

const (
	ImportDelete ImportStrategy = "DELETE"
	ImportAll    ImportStrategy = "ALL"
	ImportNew    ImportStrategy = "NEW"
	ImportOld    ImportStrategy = "OLD"
)

// Valid reports whether s is one of the strategies the backend accepts.
func (s ImportStrategy) Valid() bool {
	switch s {
	case ImportDelete, ImportAll, ImportNew, ImportOld:
		return true
	}
	return false
}
