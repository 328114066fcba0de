package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/contextutil"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeBackend is an in-memory Backend that records calls.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	triggers map[string]*types.FullTrigger
	actions  map[string]map[string]*types.ActionDefinition
	alerts   []types.Alert
	events   []types.Event
	history  map[string][]types.Action

	failTrigger string
	failHistory string
	alertsErr   error

	lastAlerts types.AlertsCriteria
	lastEvents types.EventsCriteria

	// queryAlerts overrides QueryAlerts when set.
	queryAlerts func(ctx context.Context, c types.AlertsCriteria) (types.Page[types.Alert], error)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		triggers: map[string]*types.FullTrigger{},
		actions:  map[string]map[string]*types.ActionDefinition{},
		history:  map[string][]types.Action{},
	}
}

func (f *fakeBackend) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) addTrigger(id string) {
	f.triggers[id] = &types.FullTrigger{Trigger: &types.Trigger{ID: id, Name: "trigger " + id}}
}

func (f *fakeBackend) addAction(plugin, id string) {
	if f.actions[plugin] == nil {
		f.actions[plugin] = map[string]*types.ActionDefinition{}
	}
	f.actions[plugin][id] = &types.ActionDefinition{ActionPlugin: plugin, ActionID: id}
}

func (f *fakeBackend) ListTriggers(ctx context.Context, c types.TriggersCriteria) (types.Page[types.Trigger], error) {
	f.record("ListTriggers tags=%s", c.Tags)
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.triggers))
	for id := range f.triggers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	items := make([]types.Trigger, 0, len(ids))
	for _, id := range ids {
		items = append(items, *f.triggers[id].Trigger)
	}
	return types.Page[types.Trigger]{Items: items, Total: len(items)}, nil
}

func (f *fakeBackend) GetFullTrigger(ctx context.Context, id string) (*types.FullTrigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == f.failTrigger {
		return nil, &client.APIError{StatusCode: 500, Status: "Internal Server Error"}
	}
	ft, ok := f.triggers[id]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Status: "Not Found"}
	}
	return ft, nil
}

func (f *fakeBackend) CreateFullTrigger(ctx context.Context, ft *types.FullTrigger) (*types.FullTrigger, error) {
	f.record("CreateFullTrigger %s", ft.TriggerID())
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers[ft.TriggerID()] = ft
	return ft, nil
}

func (f *fakeBackend) UpdateFullTrigger(ctx context.Context, id string, ft *types.FullTrigger) error {
	f.record("UpdateFullTrigger %s", id)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers[id] = ft
	return nil
}

func (f *fakeBackend) DeleteTrigger(ctx context.Context, id string) error {
	f.record("DeleteTrigger %s", id)
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.triggers, id)
	return nil
}

func (f *fakeBackend) SetTriggersEnabled(ctx context.Context, ids []string, enabled bool) error {
	f.record("SetTriggersEnabled %v %t", ids, enabled)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if ft, ok := f.triggers[id]; ok {
			ft.Trigger.Enabled = enabled
		}
	}
	return nil
}

func (f *fakeBackend) ListActionIDs(ctx context.Context) (types.ActionIDs, error) {
	f.record("ListActionIDs")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := types.ActionIDs{}
	for plugin, defs := range f.actions {
		for id := range defs {
			out[plugin] = append(out[plugin], id)
		}
		sort.Strings(out[plugin])
	}
	return out, nil
}

func (f *fakeBackend) ListActionIDsByPlugin(ctx context.Context, plugin string) ([]string, error) {
	f.record("ListActionIDsByPlugin %s", plugin)
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.actions[plugin] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeBackend) GetActionDefinition(ctx context.Context, plugin, id string) (*types.ActionDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.actions[plugin][id]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Status: "Not Found"}
	}
	return def, nil
}

func (f *fakeBackend) CreateActionDefinition(ctx context.Context, def *types.ActionDefinition) (*types.ActionDefinition, error) {
	f.record("CreateActionDefinition %s/%s", def.ActionPlugin, def.ActionID)
	f.addAction(def.ActionPlugin, def.ActionID)
	return def, nil
}

func (f *fakeBackend) UpdateActionDefinition(ctx context.Context, def *types.ActionDefinition) error {
	f.record("UpdateActionDefinition %s/%s", def.ActionPlugin, def.ActionID)
	return nil
}

func (f *fakeBackend) DeleteActionDefinition(ctx context.Context, plugin, id string) error {
	f.record("DeleteActionDefinition %s/%s", plugin, id)
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.actions[plugin], id)
	return nil
}

func (f *fakeBackend) ListActionsHistory(ctx context.Context, c types.ActionsCriteria) (types.Page[types.Action], error) {
	id := c.EventIDs[0]
	if id == f.failHistory {
		return types.Page[types.Action]{}, errors.New("boom")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.history[id]
	return types.Page[types.Action]{Items: items, Total: len(items)}, nil
}

func (f *fakeBackend) ListPlugins(ctx context.Context) ([]string, error) {
	return []string{"webhook", "email", "aerogear"}, nil
}

func (f *fakeBackend) GetPlugin(ctx context.Context, plugin string) ([]string, error) {
	return []string{"to", "from"}, nil
}

func (f *fakeBackend) QueryAlerts(ctx context.Context, c types.AlertsCriteria) (types.Page[types.Alert], error) {
	if f.queryAlerts != nil {
		return f.queryAlerts(ctx, c)
	}
	f.record("QueryAlerts")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAlerts = c
	if f.alertsErr != nil {
		return types.Page[types.Alert]{}, f.alertsErr
	}
	return types.Page[types.Alert]{Items: f.alerts, Total: len(f.alerts)}, nil
}

func (f *fakeBackend) GetAlert(ctx context.Context, id string, thin bool) (*types.Alert, error) {
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			return &f.alerts[i], nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Status: "Not Found"}
}

func (f *fakeBackend) AckAlerts(ctx context.Context, ids []string, by, notes string) error {
	f.record("AckAlerts %v %s %s", ids, by, notes)
	return nil
}

func (f *fakeBackend) ResolveAlerts(ctx context.Context, ids []string, by, notes string) error {
	f.record("ResolveAlerts %v %s %s", ids, by, notes)
	return nil
}

func (f *fakeBackend) NoteAlert(ctx context.Context, id, user, text string) error {
	f.record("NoteAlert %s %s %s", id, user, text)
	return nil
}

func (f *fakeBackend) DeleteAlerts(ctx context.Context, c types.AlertsCriteria) (int, error) {
	f.record("DeleteAlerts %v", c.AlertIDs)
	return len(c.AlertIDs), nil
}

func (f *fakeBackend) QueryEvents(ctx context.Context, c types.EventsCriteria) (types.Page[types.Event], error) {
	f.record("QueryEvents")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEvents = c
	return types.Page[types.Event]{Items: f.events, Total: len(f.events)}, nil
}

func (f *fakeBackend) GetEvent(ctx context.Context, id string, thin bool) (*types.Event, error) {
	for i := range f.events {
		if f.events[i].ID == id {
			return &f.events[i], nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Status: "Not Found"}
}

func (f *fakeBackend) DeleteEvents(ctx context.Context, c types.EventsCriteria) (int, error) {
	f.record("DeleteEvents %v", c.EventIDs)
	return len(c.EventIDs), nil
}

func (f *fakeBackend) Status(ctx context.Context) (map[string]string, error) {
	return map[string]string{"status": "STARTED"}, nil
}

func (f *fakeBackend) Export(ctx context.Context) (*types.Definitions, error) {
	return &types.Definitions{}, nil
}

func (f *fakeBackend) Import(ctx context.Context, s types.ImportStrategy, defs *types.Definitions) (*types.Definitions, error) {
	f.record("Import %s %d", s, len(defs.Triggers))
	return defs, nil
}

func newTestConsole(b Backend) *Console {
	return New(zap.NewNop(), b, WithFanoutLimit(2))
}

func TestTriggersFanOutOmitsFailures(t *testing.T) {
	b := newFakeBackend()
	for i := 0; i < 12; i++ {
		b.addTrigger(fmt.Sprintf("t%02d", i))
	}
	b.failTrigger = "t03"

	v, err := newTestConsole(b).Triggers(context.Background(), TriggerQuery{Tags: "env|prod", Page: 2})
	require.NoError(t, err)
	require.Len(t, v.Triggers, 11)
	assert.Equal(t, "t00", v.Triggers[0].TriggerID())
	assert.Equal(t, "t04", v.Triggers[3].TriggerID(), "order follows the list")
	assert.Equal(t, 11, v.Pages.Total)
	assert.Equal(t, 2, v.Pages.MaxPages)
	assert.Equal(t, 10, v.Pages.From)
	assert.Equal(t, 11, v.Pages.To)
	assert.Len(t, v.Visible(), 1)
	assert.Contains(t, b.Calls(), "ListTriggers tags=env|prod")
}

func TestTriggerMutationsRefetch(t *testing.T) {
	b := newFakeBackend()
	b.addTrigger("t1")
	c := newTestConsole(b)
	ctx := context.Background()

	v, err := c.CreateTrigger(ctx, `{"trigger":{"id":"t2","name":"new"}}`, TriggerQuery{})
	require.NoError(t, err)
	assert.Len(t, v.Triggers, 2)

	v, err = c.SetTriggerEnabled(ctx, "t2", true, TriggerQuery{})
	require.NoError(t, err)
	assert.True(t, v.Triggers[1].Trigger.Enabled)

	v, err = c.DeleteTrigger(ctx, "t1", TriggerQuery{})
	require.NoError(t, err)
	assert.Len(t, v.Triggers, 1)

	_, err = c.UpdateTrigger(ctx, "t2", `{"trigger":{"id":"t2","name":"renamed"}}`, TriggerQuery{})
	require.NoError(t, err)

	calls := b.Calls()
	assert.Equal(t, []string{
		"CreateFullTrigger t2", "ListTriggers tags=",
		"SetTriggersEnabled [t2] true", "ListTriggers tags=",
		"DeleteTrigger t1", "ListTriggers tags=",
		"UpdateFullTrigger t2", "ListTriggers tags=",
	}, calls)
}

func TestRejectsUnsendableJSON(t *testing.T) {
	b := newFakeBackend()
	c := newTestConsole(b)
	ctx := context.Background()

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"malformed", `{"trigger":`},
		{"no trigger document", `{"conditions":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateTrigger(ctx, tt.text, TriggerQuery{})
			assert.ErrorIs(t, err, client.ErrInvalidInput)
		})
	}
	_, err := c.CreateActionDefinition(ctx, "{", "")
	assert.ErrorIs(t, err, client.ErrInvalidInput)
	assert.Empty(t, b.Calls())
}

func TestPlugins(t *testing.T) {
	v, err := newTestConsole(newFakeBackend()).Plugins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"aerogear", "email", "webhook"}, v.Plugins)
	assert.Equal(t, []string{AllPlugins, "aerogear", "email", "webhook"}, v.Options)
}

func TestActionDefinitions(t *testing.T) {
	b := newFakeBackend()
	b.addAction("webhook", "hook")
	b.addAction("email", "ops")
	b.addAction("email", "dev")
	c := newTestConsole(b)
	ctx := context.Background()

	defs, err := c.ActionDefinitions(ctx, AllPlugins)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, "email", defs[0].ActionPlugin)
	assert.Equal(t, "dev", defs[0].ActionID)
	assert.Equal(t, "webhook", defs[2].ActionPlugin)

	defs, err = c.ActionDefinitions(ctx, "email")
	require.NoError(t, err)
	assert.Len(t, defs, 2)
	assert.Contains(t, b.Calls(), "ListActionIDsByPlugin email")

	defs, err = c.CreateActionDefinition(ctx, `{"actionPlugin":"email","actionId":"new"}`, "email")
	require.NoError(t, err)
	assert.Len(t, defs, 3)

	defs, err = c.DeleteActionDefinition(ctx, "email", "ops", "")
	require.NoError(t, err)
	assert.Len(t, defs, 3)
}

func TestUpdateActionDefinitionTarget(t *testing.T) {
	tests := []struct {
		name     string
		plugin   string
		id       string
		doc      string
		wantCall string
		wantErr  bool
	}{
		{"document only", "", "", `{"actionPlugin":"email","actionId":"ops"}`, "UpdateActionDefinition email/ops", false},
		{"filled from target", "email", "ops", `{"properties":{"to":"a@b"}}`, "UpdateActionDefinition email/ops", false},
		{"matching target", "email", "ops", `{"actionPlugin":"email","actionId":"ops"}`, "UpdateActionDefinition email/ops", false},
		{"other id", "email", "ops", `{"actionPlugin":"email","actionId":"dev"}`, "", true},
		{"other plugin", "email", "ops", `{"actionPlugin":"webhook","actionId":"ops"}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			b.addAction("email", "ops")
			c := newTestConsole(b)

			_, err := c.UpdateActionDefinition(context.Background(), tt.plugin, tt.id, tt.doc, "email")
			if tt.wantErr {
				assert.ErrorIs(t, err, client.ErrInvalidInput)
				assert.Empty(t, b.Calls())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCall, b.Calls()[0])
		})
	}
}

func TestAlertsCriteria(t *testing.T) {
	b := newFakeBackend()
	c := newTestConsole(b)
	rng := filter.DefaultRange(now)

	_, err := c.Alerts(context.Background(), AlertsQuery{
		Range:  rng,
		Filter: filter.AlertFilter{Severity: "High", Status: "Open", TagQuery: "app|web"},
	})
	require.NoError(t, err)

	crit := b.lastAlerts
	start, end, _ := rng.Bounds()
	assert.Equal(t, start, crit.StartTime)
	assert.Equal(t, end, crit.EndTime)
	assert.Equal(t, []types.Severity{types.SeverityHigh}, crit.Severities)
	assert.Equal(t, []types.Status{types.StatusOpen}, crit.Statuses)
	assert.Equal(t, "app|web", crit.Tags)
	assert.False(t, crit.Thin)

	_, err = c.Alerts(context.Background(), AlertsQuery{Range: rng, Filter: filter.DefaultAlertFilter()})
	require.NoError(t, err)
	assert.Nil(t, b.lastAlerts.Severities)
	assert.Nil(t, b.lastAlerts.Statuses)

	_, err = c.Alerts(context.Background(), AlertsQuery{Range: rng, Filter: filter.AlertFilter{Severity: "Urgent"}})
	assert.ErrorIs(t, err, client.ErrInvalidInput)
}

func TestAlertLifecycle(t *testing.T) {
	b := newFakeBackend()
	c := newTestConsole(b)
	ctx := context.Background()
	q := AlertsQuery{Range: filter.DefaultRange(now), Filter: filter.DefaultAlertFilter()}

	_, err := c.AckAlert(ctx, "a1", Lifecycle{User: "", Notes: "x"}, q)
	assert.ErrorIs(t, err, client.ErrInvalidInput)
	_, err = c.ResolveAlert(ctx, "a1", Lifecycle{User: "jdoe", Notes: " "}, q)
	assert.ErrorIs(t, err, client.ErrInvalidInput)
	assert.Empty(t, b.Calls())

	_, err = c.AckAlert(ctx, "a1", Lifecycle{User: "jdoe", Notes: "mine"}, q)
	require.NoError(t, err)
	_, err = c.ResolveAlert(ctx, "a1", Lifecycle{User: "jdoe", Notes: "fixed"}, q)
	require.NoError(t, err)
	_, err = c.NoteAlert(ctx, "a1", Lifecycle{User: "jdoe", Notes: "fyi"}, q)
	require.NoError(t, err)
	_, err = c.DeleteAlert(ctx, "a1", q)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"AckAlerts [a1] jdoe mine", "QueryAlerts",
		"ResolveAlerts [a1] jdoe fixed", "QueryAlerts",
		"NoteAlert a1 jdoe fyi", "QueryAlerts",
		"DeleteAlerts [a1]", "QueryAlerts",
	}, b.Calls())
}

func TestEvents(t *testing.T) {
	b := newFakeBackend()
	c := newTestConsole(b)
	q := EventsQuery{Range: filter.DefaultRange(now), Filter: filter.EventFilter{TagQuery: "k|v"}}

	_, err := c.DeleteEvent(context.Background(), "e1", q)
	require.NoError(t, err)
	assert.Equal(t, []string{"DeleteEvents [e1]", "QueryEvents"}, b.Calls())
	assert.Equal(t, types.EventTypeEvent, b.lastEvents.EventType)
	assert.Equal(t, "k|v", b.lastEvents.Tags)
	assert.False(t, b.lastEvents.Thin)
}

func TestDashboard(t *testing.T) {
	b := newFakeBackend()
	b.alerts = []types.Alert{
		{Event: types.Event{ID: "a1", CTime: now.UnixMilli()}, Severity: types.SeverityCritical, Status: types.StatusOpen},
		{Event: types.Event{ID: "a2", CTime: now.UnixMilli()}, Severity: types.SeverityLow, Status: types.StatusResolved},
	}
	b.events = []types.Event{{ID: "e1", CTime: now.UnixMilli()}}
	c := newTestConsole(b)

	sum, err := c.Dashboard(context.Background(), filter.DefaultRange(now))
	require.NoError(t, err)
	assert.True(t, sum.ShowTimeline)
	assert.Equal(t, 1, sum.TotalActive())
	assert.Equal(t, types.EventTypeEvent, b.lastEvents.EventType)

	b.alertsErr = &client.APIError{StatusCode: 500, Status: "Internal Server Error"}
	_, err = c.Dashboard(context.Background(), filter.DefaultRange(now))
	assert.Error(t, err, "both requests must succeed")
}

func TestEventDetails(t *testing.T) {
	b := newFakeBackend()
	b.alerts = []types.Alert{{
		Event: types.Event{
			ID:       "a1",
			CTime:    now.UnixMilli(),
			EvalSets: [][]types.EvalSet{{{"context": map[string]any{"events": `[{"id":"x"}]`}}}},
		},
		Severity:  types.SeverityHigh,
		Status:    types.StatusOpen,
		LifeCycle: []types.LifeCycle{{Status: types.StatusOpen, STime: now.UnixMilli()}},
	}}
	b.events = []types.Event{{ID: "e1", CTime: now.UnixMilli()}}
	b.history["a1"] = []types.Action{{ActionPlugin: "email", ActionID: "ops", EventID: "a1"}}
	b.failHistory = "e1"
	c := newTestConsole(b)

	sum, err := c.Dashboard(context.Background(), filter.DefaultRange(now))
	require.NoError(t, err)

	details, err := c.EventDetails(context.Background(), sum.Sorted())
	require.NoError(t, err)
	require.Len(t, details, 2)

	byID := map[string]int{}
	for i, d := range details {
		byID[d.ID()] = i
	}
	alert := details[byID["a1"]]
	assert.Len(t, alert.Actions, 1)
	assert.Equal(t, 3, alert.Sections)
	ctx := alert.Alert.EvalSets[0][0]["context"].(map[string]any)
	assert.NotNil(t, ctx["parsed"])

	event := details[byID["e1"]]
	assert.Nil(t, event.Actions, "history failed, detail still shown")
	assert.Equal(t, 0, event.Sections)
}

func TestFanOutCancellation(t *testing.T) {
	c := newTestConsole(newFakeBackend())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fanOut(ctx, c, "test", []int{1, 2, 3}, func(ctx context.Context, i int) (int, error) {
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTenantTravelsInContext(t *testing.T) {
	b := newFakeBackend()
	var seen string
	b.queryAlerts = func(ctx context.Context, c types.AlertsCriteria) (types.Page[types.Alert], error) {
		seen, _ = contextutil.Tenant(ctx)
		return types.Page[types.Alert]{}, nil
	}
	_, err := newTestConsole(b).Alerts(contextutil.WithTenant(context.Background(), "acme"), AlertsQuery{Range: filter.DefaultRange(now)})
	require.NoError(t, err)
	assert.Equal(t, "acme", seen)
}

func TestImport(t *testing.T) {
	b := newFakeBackend()
	_, err := newTestConsole(b).Import(context.Background(), types.ImportAll, `{"triggers":[{"trigger":{"id":"t1"}}]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Import ALL 1"}, b.Calls())
}
