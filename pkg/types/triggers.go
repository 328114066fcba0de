package types

// TriggerAction links a trigger to an action definition.
type TriggerAction struct {
	TenantID     string   `json:"tenantId,omitempty"`
	ActionPlugin string   `json:"actionPlugin"`
	ActionID     string   `json:"actionId"`
	States       []string `json:"states,omitempty"`
	Calendar     string   `json:"calendar,omitempty"`
}

// Trigger is the definition header of a trigger, as listed by GET /triggers.
type Trigger struct {
	TenantID          string            `json:"tenantId,omitempty"`
	ID                string            `json:"id"`
	Name              string            `json:"name,omitempty"`
	Description       string            `json:"description,omitempty"`
	Type              string            `json:"type,omitempty"`
	EventType         string            `json:"eventType,omitempty"`
	EventCategory     string            `json:"eventCategory,omitempty"`
	EventText         string            `json:"eventText,omitempty"`
	Severity          Severity          `json:"severity,omitempty"`
	Enabled           bool              `json:"enabled"`
	AutoDisable       bool              `json:"autoDisable,omitempty"`
	AutoEnable        bool              `json:"autoEnable,omitempty"`
	AutoResolve       bool              `json:"autoResolve,omitempty"`
	AutoResolveAlerts bool              `json:"autoResolveAlerts,omitempty"`
	AutoResolveMatch  string            `json:"autoResolveMatch,omitempty"`
	FiringMatch       string            `json:"firingMatch,omitempty"`
	MemberOf          string            `json:"memberOf,omitempty"`
	Source            string            `json:"source,omitempty"`
	Context           map[string]string `json:"context,omitempty"`
	Tags              map[string]string `json:"tags,omitempty"`
	DataIDMap         map[string]string `json:"dataIdMap,omitempty"`
	Actions           []TriggerAction   `json:"actions,omitempty"`
}

// FullTrigger is a trigger with its dampenings and conditions. Conditions
// and dampenings are polymorphic on the backend and kept as documents.
type FullTrigger struct {
	Trigger    *Trigger         `json:"trigger"`
	Dampenings []map[string]any `json:"dampenings,omitempty"`
	Conditions []map[string]any `json:"conditions,omitempty"`
}

// TriggerID returns the id of the wrapped trigger, empty if none.
func (f *FullTrigger) TriggerID() string {
	if f == nil || f.Trigger == nil {
		return ""
	}
	return f.Trigger.ID
}
