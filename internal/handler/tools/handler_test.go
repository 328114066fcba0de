package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/internal/contextutil"
	"github.com/hawkular/hawkular-alerts-console/internal/telemetry"
	"github.com/hawkular/hawkular-alerts-console/pkg/paginate"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// fakeHawkular serves a small tenant: two triggers (one broken), an email
// action, one open alert and one event.
type fakeHawkular struct {
	mu      sync.Mutex
	tenants []string
	acks    []string
	status  int
}

func (f *fakeHawkular) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := f.status
		f.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		reply(w, `{"status": "STARTED", "Implementation-Version": "1.7.0"}`)
	})
	mux.HandleFunc("GET /triggers", func(w http.ResponseWriter, r *http.Request) {
		reply(w, `[{"id": "cpu-high"}, {"id": "broken"}]`)
	})
	mux.HandleFunc("GET /triggers/trigger/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		reply(w, `{"trigger": {"id": "cpu-high", "name": "CPU usage high", "severity": "HIGH", "enabled": true}}`)
	})
	mux.HandleFunc("GET /actions", func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"email": ["notify-admins"]}`)
	})
	mux.HandleFunc("GET /actions/{plugin}/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"actionPlugin": "email", "actionId": "notify-admins", "properties": {"to": "admins@example.com"}}`)
	})
	mux.HandleFunc("GET /actions/history", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alert-1", r.URL.Query().Get("eventIds"))
		reply(w, `[{"actionPlugin": "email", "actionId": "notify-admins", "eventId": "alert-1", "result": "SENT"}]`)
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tenants = append(f.tenants, r.Header.Get(contextutil.TenantHeader))
		f.mu.Unlock()
		reply(w, `[{"id": "alert-1", "ctime": 1773489000000, "severity": "CRITICAL", "status": "OPEN", "text": "CPU usage high"}]`)
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "EVENT", r.URL.Query().Get("eventType"))
		reply(w, `[{"id": "event-1", "ctime": 1773489600000, "text": "deployment"}]`)
	})
	mux.HandleFunc("PUT /ack", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "jdoe", q.Get("ackBy"))
		assert.Equal(t, "looking", q.Get("ackNotes"))
		f.mu.Lock()
		f.acks = append(f.acks, q.Get("alertIds"))
		f.mu.Unlock()
	})
	return mux
}

type testEnv struct {
	client   *mcpclient.Client
	registry *prometheus.Registry
	backend  *fakeHawkular
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := &fakeHawkular{}
	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	alerts, err := client.NewClient(zap.NewNop(), srv.URL, "acme", client.WithRateLimit(0, 0), client.WithMetrics(metrics))
	require.NoError(t, err)

	mock := clock.NewMock()
	mock.Set(now)
	c := console.New(zap.NewNop(), alerts, console.WithClock(mock), console.WithMetrics(metrics))
	h, err := NewHandler(zap.NewNop(), c, "acme", WithMetrics(metrics), WithIndexCacheSize(2))
	require.NoError(t, err)
	t.Cleanup(h.Close)

	s := server.NewMCPServer("test", "0.0.1", server.WithToolCapabilities(false))
	h.Register(s)

	cl, err := mcpclient.NewInProcessClient(s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	ctx := context.Background()
	require.NoError(t, cl.Start(ctx))
	var init mcp.InitializeRequest
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "0.0.1"}
	_, err = cl.Initialize(ctx, init)
	require.NoError(t, err)

	return &testEnv{client: cl, registry: reg, backend: backend}
}

func (e *testEnv) call(t *testing.T, name string, args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := e.client.CallTool(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text, res.IsError
}

func TestRegisteredTools(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.client.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, tool := range res.Tools {
		names[tool.Name] = true
		assert.True(t, strings.HasPrefix(tool.Name, "hawkular_"), tool.Name)
		assert.Contains(t, tool.InputSchema.Properties, "tenant", tool.Name)
	}
	for _, name := range []string{
		"hawkular_status", "hawkular_export", "hawkular_import",
		"hawkular_list_triggers", "hawkular_get_trigger", "hawkular_create_trigger",
		"hawkular_update_trigger", "hawkular_delete_trigger", "hawkular_enable_trigger",
		"hawkular_search_definitions",
		"hawkular_list_plugins", "hawkular_get_plugin", "hawkular_list_actions", "hawkular_get_action",
		"hawkular_create_action", "hawkular_update_action", "hawkular_delete_action",
		"hawkular_list_alerts", "hawkular_get_alert", "hawkular_ack_alert", "hawkular_resolve_alert",
		"hawkular_note_alert", "hawkular_delete_alert",
		"hawkular_list_events", "hawkular_get_event", "hawkular_delete_event",
		"hawkular_dashboard", "hawkular_event_details",
	} {
		assert.True(t, names[name], "missing tool %s", name)
	}
}

func TestListTriggersOmitsFailedAndPages(t *testing.T) {
	env := newTestEnv(t)

	text, isErr := env.call(t, "hawkular_list_triggers", map[string]any{"limit": "10"})
	require.False(t, isErr, text)

	var resp paginate.Response
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, 1, resp.Pagination.Total)
	assert.False(t, resp.Pagination.HasMore)
	assert.Equal(t, -1, resp.Pagination.NextOffset)
	require.Len(t, resp.Data, 1)
	assert.Contains(t, text, "CPU usage high")
}

func TestToolErrorsAreDescribed(t *testing.T) {
	env := newTestEnv(t)
	env.backend.mu.Lock()
	env.backend.status = http.StatusServiceUnavailable
	env.backend.mu.Unlock()

	text, isErr := env.call(t, "hawkular_status", nil)
	assert.True(t, isErr)
	assert.Equal(t, "Status [503] Service Unavailable", text)

	expected := `
# HELP hwkconsole_tool_calls_total MCP tool calls by tool and outcome.
# TYPE hwkconsole_tool_calls_total counter
hwkconsole_tool_calls_total{result="error",tool="hawkular_status"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(env.registry, strings.NewReader(expected), "hwkconsole_tool_calls_total"))
}

func TestAckAlert(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
		acked   bool
	}{
		{
			name:  "acknowledged",
			args:  map[string]any{"alertId": "alert-1", "user": "jdoe", "notes": "looking"},
			acked: true,
		},
		{
			name:    "missing notes",
			args:    map[string]any{"alertId": "alert-1", "user": "jdoe"},
			wantErr: "notes is required",
		},
		{
			name:    "missing alert id",
			args:    map[string]any{"user": "jdoe", "notes": "looking"},
			wantErr: `"alertId" must be a non-empty string`,
		},
		{
			name:    "bad range",
			args:    map[string]any{"alertId": "alert-1", "user": "jdoe", "notes": "looking", "range": "soon"},
			wantErr: "invalid time range format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			text, isErr := env.call(t, "hawkular_ack_alert", tt.args)
			if tt.wantErr != "" {
				assert.True(t, isErr)
				assert.Contains(t, text, tt.wantErr)
				assert.Empty(t, env.backend.acks)
				return
			}
			require.False(t, isErr, text)
			assert.Equal(t, []string{"alert-1"}, env.backend.acks)

			var res mutationResult
			require.NoError(t, json.Unmarshal([]byte(text), &res))
			assert.Equal(t, "Alert alert-1 acknowledged", res.Message)
			assert.Equal(t, 1, res.Total, "alerts are refetched after the change")
		})
	}
}

func TestTenantArgument(t *testing.T) {
	env := newTestEnv(t)

	_, isErr := env.call(t, "hawkular_list_alerts", map[string]any{"tenant": "other"})
	require.False(t, isErr)
	_, isErr = env.call(t, "hawkular_list_alerts", nil)
	require.False(t, isErr)

	env.backend.mu.Lock()
	defer env.backend.mu.Unlock()
	assert.Equal(t, []string{"other", "acme"}, env.backend.tenants)
}

func TestSearchDefinitions(t *testing.T) {
	env := newTestEnv(t)

	text, isErr := env.call(t, "hawkular_search_definitions", map[string]any{"query": "cpu"})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"id":"cpu-high"`)

	text, isErr = env.call(t, "hawkular_search_definitions", map[string]any{"query": "+kind:action admins", "refresh": "true"})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"plugin":"email"`)

	_, isErr = env.call(t, "hawkular_search_definitions", map[string]any{"query": "  "})
	assert.True(t, isErr)
}

func TestDashboardAndDetails(t *testing.T) {
	env := newTestEnv(t)

	text, isErr := env.call(t, "hawkular_dashboard", map[string]any{"range": "1h"})
	require.False(t, isErr, text)
	var dash dashboardResult
	require.NoError(t, json.Unmarshal([]byte(text), &dash))
	assert.Equal(t, 1, dash.TotalActive)
	assert.True(t, dash.ShowTimeline)
	require.Len(t, dash.Timeline, 4)
	assert.Equal(t, "alert-1", dash.Timeline[0].Points[0].ID)
	assert.Equal(t, "event-1", dash.Timeline[3].Points[0].ID)

	text, isErr = env.call(t, "hawkular_event_details", map[string]any{"ids": "alert-1", "range": "1h"})
	require.False(t, isErr, text)
	var details []detailResult
	require.NoError(t, json.Unmarshal([]byte(text), &details))
	require.Len(t, details, 1)
	assert.Equal(t, "alert-1", details[0].ID)
	require.Len(t, details[0].Actions, 1)
	assert.Equal(t, "SENT", details[0].Actions[0].Result)

	text, isErr = env.call(t, "hawkular_event_details", map[string]any{"ids": "nope"})
	assert.True(t, isErr)
	assert.Contains(t, text, "none of the ids")
}

func TestImportRejectsUnknownStrategy(t *testing.T) {
	env := newTestEnv(t)
	text, isErr := env.call(t, "hawkular_import", map[string]any{"strategy": "MERGE", "definitions": "{}"})
	assert.True(t, isErr)
	assert.Contains(t, text, "unknown import strategy")
}
