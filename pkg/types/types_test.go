package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertsCriteriaValues(t *testing.T) {
	c := AlertsCriteria{
		StartTime:  1000,
		EndTime:    2000,
		TriggerIDs: []string{"t1", "t2"},
		Statuses:   []Status{StatusOpen, StatusAcknowledged},
		Severities: []Severity{SeverityCritical},
		TagQuery:   "app = 'web'",
		Pager:      Pager{Page: 2, PerPage: 25, Sort: "ctime", Order: "desc"},
	}
	v := c.Values()

	assert.Equal(t, "1000", v.Get("startTime"))
	assert.Equal(t, "2000", v.Get("endTime"))
	assert.Equal(t, "t1,t2", v.Get("triggerIds"))
	assert.Equal(t, "OPEN,ACKNOWLEDGED", v.Get("statuses"))
	assert.Equal(t, "CRITICAL", v.Get("severities"))
	assert.Equal(t, "app = 'web'", v.Get("tagQuery"))
	assert.Equal(t, "false", v.Get("thin"))
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "25", v.Get("per_page"))
	assert.Equal(t, "ctime", v.Get("sort"))
	assert.Equal(t, "desc", v.Get("order"))
	assert.False(t, v.Has("alertIds"))
	assert.False(t, v.Has("tags"))
}

func TestEventsCriteriaValues(t *testing.T) {
	v := EventsCriteria{EventIDs: []string{"e1"}, EventType: EventTypeEvent, Thin: true}.Values()
	assert.Equal(t, "e1", v.Get("eventIds"))
	assert.Equal(t, "EVENT", v.Get("eventType"))
	assert.Equal(t, "true", v.Get("thin"))
	assert.False(t, v.Has("startTime"))
	assert.False(t, v.Has("page"))
}

func TestTriggersAndActionsCriteriaValues(t *testing.T) {
	v := TriggersCriteria{Tags: "env|prod"}.Values()
	assert.Equal(t, "env|prod", v.Get("tags"))
	assert.False(t, v.Has("thin"))

	v = ActionsCriteria{EventIDs: []string{"a", "b"}, Thin: true}.Values()
	assert.Equal(t, "a,b", v.Get("eventIds"))
	assert.Equal(t, "true", v.Get("thin"))
}

func TestParseSeverityAndStatus(t *testing.T) {
	sev, ok := ParseSeverity("high")
	assert.True(t, ok)
	assert.Equal(t, SeverityHigh, sev)
	_, ok = ParseSeverity("urgent")
	assert.False(t, ok)

	st, ok := ParseStatus(" Acknowledged ")
	assert.True(t, ok)
	assert.Equal(t, StatusAcknowledged, st)
	_, ok = ParseStatus("closed")
	assert.False(t, ok)
}

func TestAlertJSON(t *testing.T) {
	raw := `{
		"id": "a1", "ctime": 100, "eventType": "ALERT", "tags": {"app": "web"},
		"severity": "HIGH", "status": "ACKNOWLEDGED",
		"lifecycle": [{"status": "OPEN", "stime": 100}, {"status": "ACKNOWLEDGED", "user": "jdoe", "stime": 250}],
		"notes": [{"user": "jdoe", "ctime": 250, "text": "looking"}]
	}`
	var a Alert
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, "web", a.Tags["app"])
	assert.Equal(t, SeverityHigh, a.Severity)
	assert.Equal(t, int64(250), a.LastStatusTime())
	assert.Len(t, a.Notes, 1)

	a.LifeCycle = nil
	assert.Equal(t, int64(100), a.LastStatusTime())
}

func TestParseEvalSets(t *testing.T) {
	sets := [][]EvalSet{{
		{"type": "THRESHOLD"},
		{"context": map[string]any{"events": `[{"id":"inner"}]`}},
		{"context": map[string]any{"events": `not json`}},
	}}
	err := ParseEvalSets(sets)
	assert.Error(t, err)

	ctx := sets[0][1]["context"].(map[string]any)
	parsed, ok := ctx["parsed"].([]any)
	require.True(t, ok)
	require.Len(t, parsed, 1)
	assert.Equal(t, "inner", parsed[0].(map[string]any)["id"])

	assert.NoError(t, ParseEvalSets(nil))
}

func TestFullTriggerID(t *testing.T) {
	var ft *FullTrigger
	assert.Empty(t, ft.TriggerID())
	assert.Empty(t, (&FullTrigger{}).TriggerID())
	assert.Equal(t, "t1", (&FullTrigger{Trigger: &Trigger{ID: "t1"}}).TriggerID())
}

func TestImportStrategyValid(t *testing.T) {
	assert.True(t, ImportAll.Valid())
	assert.True(t, ImportStrategy("DELETE").Valid())
	assert.False(t, ImportStrategy("all").Valid())
}

func TestCloneEvalSets(t *testing.T) {
	assert.Nil(t, CloneEvalSets(nil))

	sets := [][]EvalSet{{
		{"type": "EVENT", "context": map[string]any{"events": `[{"id":"inner"}]`}},
		{"type": "THRESHOLD"},
	}}
	c := CloneEvalSets(sets)
	require.NoError(t, ParseEvalSets(c))

	assert.Contains(t, c[0][0]["context"], "parsed")
	assert.NotContains(t, sets[0][0]["context"], "parsed")
	assert.Equal(t, sets[0][1], c[0][1])
}
