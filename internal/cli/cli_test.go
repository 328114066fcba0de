package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/config"
	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// fakeBackend answers the Hawkular endpoints the commands use and records
// what mutations were sent.
type fakeBackend struct {
	mu       sync.Mutex
	tenants  []string
	queries  map[string]url.Values
	bodies   map[string]string
	imported bool
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{queries: map[string]url.Values{}, bodies: map[string]string{}}
	mux := http.NewServeMux()

	record := func(r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		defer b.mu.Unlock()
		key := r.Method + " " + r.URL.Path
		b.queries[key] = r.URL.Query()
		b.bodies[key] = string(body)
	}
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "STARTED", "Implementation-Version": "2.0"})
	})
	mux.HandleFunc("GET /triggers", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.tenants = append(b.tenants, r.Header.Get("Hawkular-Tenant"))
		b.mu.Unlock()
		writeJSON(w, []types.Trigger{{ID: "t1"}, {ID: "t2"}})
	})
	mux.HandleFunc("GET /triggers/trigger/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		writeJSON(w, types.FullTrigger{
			Trigger: &types.Trigger{
				ID:       id,
				Name:     "Trigger " + id,
				Severity: types.SeverityHigh,
				Enabled:  true,
				Tags:     map[string]string{"env": "prod"},
			},
			Conditions: []map[string]any{{"type": "THRESHOLD"}},
		})
	})
	mux.HandleFunc("POST /triggers/trigger", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		b.mu.Lock()
		body := b.bodies["POST /triggers/trigger"]
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("PUT /triggers/enabled", func(w http.ResponseWriter, r *http.Request) {
		record(r)
	})
	mux.HandleFunc("GET /plugins", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []string{"webhook", "email"})
	})
	mux.HandleFunc("GET /plugins/{plugin}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []string{"to", "cc"})
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.Header().Set(client.TotalCountHeader, "5")
		writeJSON(w, []types.Alert{{
			Event:    types.Event{ID: "a1", CTime: time.Now().Add(-10 * time.Minute).UnixMilli(), Text: "CPU above 90%"},
			Severity: types.SeverityHigh,
			Status:   types.StatusOpen,
		}})
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []types.Event{})
	})
	mux.HandleFunc("PUT /ack", func(w http.ResponseWriter, r *http.Request) {
		record(r)
	})
	mux.HandleFunc("POST /import/{strategy}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.imported = true
		b.mu.Unlock()
		writeJSON(w, types.Definitions{})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) query(key string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[key]
}

func (b *fakeBackend) wasImported() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.imported
}

func (b *fakeBackend) body(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[key]
}

// syncBuffer is written by the dashboard watcher while the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func run(t *testing.T, backendURL, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand(&out, &errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--url", backendURL, "--tenant", "acme", "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatus(t *testing.T) {
	_, srv := newFakeBackend(t)

	out, err := run(t, srv.URL, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Implementation-Version  2.0")
	assert.Contains(t, out, "STARTED")
}

func TestInvalidOutput(t *testing.T) {
	_, srv := newFakeBackend(t)

	_, err := run(t, srv.URL, "", "-o", "xml", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid output "xml"`)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "ftp://example.com", "", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.HawkularURL)
}

func TestTriggersList(t *testing.T) {
	b, srv := newFakeBackend(t)

	t.Run("table", func(t *testing.T) {
		out, err := run(t, srv.URL, "", "triggers", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "Trigger t1")
		assert.Contains(t, out, "env=prod")
		assert.Contains(t, out, "Showing 1 to 2 of 2 triggers (page 1 of 1)")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, srv.URL, "", "triggers", "list", "-o", "json")
		require.NoError(t, err)
		var got []types.FullTrigger
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		ids := make([]string, 0, len(got))
		for _, ft := range got {
			ids = append(ids, ft.Trigger.ID)
		}
		assert.ElementsMatch(t, []string{"t1", "t2"}, ids)
	})

	t.Run("paged", func(t *testing.T) {
		out, err := run(t, srv.URL, "", "triggers", "list", "--page-size", "1", "--page", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Showing 2 to 2 of 2 triggers (page 2 of 2)")
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tenant := range b.tenants {
		assert.Equal(t, "acme", tenant)
	}
}

func TestTriggerEnable(t *testing.T) {
	tests := []struct {
		command string
		enabled string
		message string
	}{
		{command: "enable", enabled: "true", message: "Trigger t1 enabled"},
		{command: "disable", enabled: "false", message: "Trigger t1 disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			b, srv := newFakeBackend(t)
			out, err := run(t, srv.URL, "", "triggers", tt.command, "t1")
			require.NoError(t, err)
			assert.Contains(t, out, tt.message)

			q := b.query("PUT /triggers/enabled")
			assert.Equal(t, "t1", q.Get("triggerIds"))
			assert.Equal(t, tt.enabled, q.Get("enabled"))
		})
	}
}

func TestTriggerCreateFromStdin(t *testing.T) {
	b, srv := newFakeBackend(t)

	out, err := run(t, srv.URL, `{"trigger":{"id":"t3","name":"New"}}`, "triggers", "create", "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Trigger created, 2 triggers defined")
	assert.Contains(t, b.body("POST /triggers/trigger"), `"id":"t3"`)
}

func TestTriggerCreateRequiresFile(t *testing.T) {
	_, srv := newFakeBackend(t)

	_, err := run(t, srv.URL, "", "triggers", "create")
	require.ErrorIs(t, err, client.ErrInvalidInput)
}

func TestAlerts(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		b, srv := newFakeBackend(t)
		out, err := run(t, srv.URL, "", "alerts", "list", "--severity", "High", "--range", "1h")
		require.NoError(t, err)
		assert.Contains(t, out, "a1")
		assert.Contains(t, out, "CPU above 90%")
		assert.Contains(t, out, "1 of 5 alerts")

		q := b.query("GET /")
		assert.Equal(t, "HIGH", q.Get("severities"))
		assert.Equal(t, "false", q.Get("thin"))
	})

	t.Run("ack", func(t *testing.T) {
		b, srv := newFakeBackend(t)
		out, err := run(t, srv.URL, "", "alerts", "ack", "a1", "--user", "jdoe", "--notes", "looking")
		require.NoError(t, err)
		assert.Contains(t, out, "Alert a1 acknowledged")

		q := b.query("PUT /ack")
		assert.Equal(t, "a1", q.Get("alertIds"))
		assert.Equal(t, "jdoe", q.Get("ackBy"))
		assert.Equal(t, "looking", q.Get("ackNotes"))
	})

	t.Run("ack requires notes", func(t *testing.T) {
		b, srv := newFakeBackend(t)
		_, err := run(t, srv.URL, "", "alerts", "ack", "a1", "--user", "jdoe")
		require.ErrorIs(t, err, client.ErrInvalidInput)
		assert.Nil(t, b.query("PUT /ack"))
	})

	t.Run("bad range", func(t *testing.T) {
		_, srv := newFakeBackend(t)
		_, err := run(t, srv.URL, "", "alerts", "list", "--range", "soon")
		require.ErrorIs(t, err, client.ErrInvalidInput)
	})
}

func TestPluginsOutput(t *testing.T) {
	_, srv := newFakeBackend(t)

	out, err := run(t, srv.URL, "", "actions", "plugins", "-o", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "- email\n- webhook\n", out)

	out, err = run(t, srv.URL, "", "actions", "plugins", "email", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `["to","cc"]`, out)
}

func TestImportRejectsUnknownStrategy(t *testing.T) {
	b, srv := newFakeBackend(t)

	_, err := run(t, srv.URL, "{}", "import", "--strategy", "MERGE", "-f", "-")
	require.ErrorIs(t, err, client.ErrInvalidInput)
	assert.False(t, b.wasImported())

	out, err := run(t, srv.URL, "{}", "import", "--strategy", "all", "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 triggers and 0 action plugins")
	assert.True(t, b.wasImported())
}

func TestDashboard(t *testing.T) {
	_, srv := newFakeBackend(t)

	out, err := run(t, srv.URL, "", "dashboard", "-o", "json")
	require.NoError(t, err)
	var got summaryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 1, got.TotalActive)
	assert.Equal(t, 1, got.BySeverity[types.SeverityHigh])
	require.NotEmpty(t, got.Timeline)
	assert.Equal(t, []string{"a1"}, got.Timeline[0].IDs)

	_, err = run(t, srv.URL, "", "dashboard", "--details", "nope")
	require.ErrorIs(t, err, client.ErrInvalidInput)
}

func TestDashboardWatch(t *testing.T) {
	_, srv := newFakeBackend(t)

	out := &syncBuffer{}
	a := &app{
		v:           config.NewViper(),
		out:         out,
		errOut:      io.Discard,
		consoleOpts: []console.Option{console.WithClock(clock.NewMock())},
	}
	root := a.rootCommand()
	root.SetArgs([]string{"--url", srv.URL, "--tenant", "acme", "--log-level", "error", "dashboard", "--watch"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Active alerts:")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("dashboard --watch did not stop, output: %s", out.String())
	}
}
