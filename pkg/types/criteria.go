package types

import (
	"net/url"
	"strconv"
	"strings"
)

// Pager holds the paging query parameters understood by every list endpoint.
// Zero values are omitted so the backend applies its own defaults.
type Pager struct {
	Page    int    `json:"page,omitempty"`
	PerPage int    `json:"per_page,omitempty"`
	Sort    string `json:"sort,omitempty"`
	Order   string `json:"order,omitempty"`
}

func (p Pager) encode(v url.Values) {
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.Order != "" {
		v.Set("order", p.Order)
	}
}

// Page is one page of a list response. Total comes from X-Total-Count and
// falls back to len(Items) when the header is absent.
type Page[T any] struct {
	Items []T
	Total int
}

// AlertsCriteria filters GET / and PUT /delete.
type AlertsCriteria struct {
	StartTime  int64
	EndTime    int64
	AlertIDs   []string
	TriggerIDs []string
	Statuses   []Status
	Severities []Severity
	Tags       string
	TagQuery   string
	Thin       bool
	Pager
}

// Values encodes the criteria as query parameters.
func (c AlertsCriteria) Values() url.Values {
	v := url.Values{}
	setTime(v, "startTime", c.StartTime)
	setTime(v, "endTime", c.EndTime)
	setList(v, "alertIds", c.AlertIDs)
	setList(v, "triggerIds", c.TriggerIDs)
	if len(c.Statuses) > 0 {
		s := make([]string, len(c.Statuses))
		for i, st := range c.Statuses {
			s[i] = string(st)
		}
		setList(v, "statuses", s)
	}
	if len(c.Severities) > 0 {
		s := make([]string, len(c.Severities))
		for i, sev := range c.Severities {
			s[i] = string(sev)
		}
		setList(v, "severities", s)
	}
	if c.Tags != "" {
		v.Set("tags", c.Tags)
	}
	if c.TagQuery != "" {
		v.Set("tagQuery", c.TagQuery)
	}
	v.Set("thin", strconv.FormatBool(c.Thin))
	c.Pager.encode(v)
	return v
}

// EventsCriteria filters GET /events and PUT /events/delete.
type EventsCriteria struct {
	StartTime  int64
	EndTime    int64
	EventIDs   []string
	TriggerIDs []string
	Categories []string
	Tags       string
	TagQuery   string
	EventType  string
	Thin       bool
	Pager
}

// Values encodes the criteria as query parameters.
func (c EventsCriteria) Values() url.Values {
	v := url.Values{}
	setTime(v, "startTime", c.StartTime)
	setTime(v, "endTime", c.EndTime)
	setList(v, "eventIds", c.EventIDs)
	setList(v, "triggerIds", c.TriggerIDs)
	setList(v, "categories", c.Categories)
	if c.Tags != "" {
		v.Set("tags", c.Tags)
	}
	if c.TagQuery != "" {
		v.Set("tagQuery", c.TagQuery)
	}
	if c.EventType != "" {
		v.Set("eventType", c.EventType)
	}
	v.Set("thin", strconv.FormatBool(c.Thin))
	c.Pager.encode(v)
	return v
}

// TriggersCriteria filters GET /triggers.
type TriggersCriteria struct {
	TriggerIDs []string
	Tags       string
	Thin       bool
	Pager
}

// Values encodes the criteria as query parameters.
func (c TriggersCriteria) Values() url.Values {
	v := url.Values{}
	setList(v, "triggerIds", c.TriggerIDs)
	if c.Tags != "" {
		v.Set("tags", c.Tags)
	}
	if c.Thin {
		v.Set("thin", "true")
	}
	c.Pager.encode(v)
	return v
}

// ActionsCriteria filters GET /actions/history.
type ActionsCriteria struct {
	StartTime     int64
	EndTime       int64
	ActionPlugins []string
	ActionIDs     []string
	AlertIDs      []string
	EventIDs      []string
	Results       []string
	Thin          bool
	Pager
}

// Values encodes the criteria as query parameters.
func (c ActionsCriteria) Values() url.Values {
	v := url.Values{}
	setTime(v, "startTime", c.StartTime)
	setTime(v, "endTime", c.EndTime)
	setList(v, "actionPlugins", c.ActionPlugins)
	setList(v, "actionIds", c.ActionIDs)
	setList(v, "alertIds", c.AlertIDs)
	setList(v, "eventIds", c.EventIDs)
	setList(v, "results", c.Results)
	if c.Thin {
		v.Set("thin", "true")
	}
	c.Pager.encode(v)
	return v
}

func setTime(v url.Values, key string, ms int64) {
	if ms > 0 {
		v.Set(key, strconv.FormatInt(ms, 10))
	}
}

// setList joins ids with commas, the list encoding every endpoint expects.
func setList(v url.Values, key string, items []string) {
	if len(items) > 0 {
		v.Set(key, strings.Join(items, ","))
	}
}
