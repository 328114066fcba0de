// Package webui is the server-rendered operator console: dashboard, alerts,
// events, triggers and actions pages over the console view-models.
package webui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/internal/contextutil"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/timeutil"
)

const (
	// TenantCookie remembers the tenant picked with ?tenant=.
	TenantCookie = "hwk_tenant"

	DefaultPollerCacheSize = 32
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the web console.
type Server struct {
	console  *console.Console
	logger   *zap.Logger
	tenant   string
	interval time.Duration

	// one dashboard poller per tenant; evicted pollers are stopped
	pollers  *lru.Cache[string, *console.Poller]
	pollerMu sync.Mutex

	router  *mux.Router
	handler http.Handler
	pages   map[string]*template.Template
}

type options struct {
	interval  time.Duration
	cacheSize int
}

// Option configures a Server.
type Option func(*options)

// WithRefreshInterval sets the dashboard auto-refresh period.
func WithRefreshInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithPollerCacheSize bounds the number of tenants with a live dashboard.
func WithPollerCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// New creates the web console. defaultTenant is used when a request names
// none.
func New(log *zap.Logger, c *console.Console, defaultTenant string, opts ...Option) (*Server, error) {
	o := options{interval: console.DefaultRefreshInterval, cacheSize: DefaultPollerCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	pollers, err := lru.NewWithEvict(o.cacheSize, func(tenant string, p *console.Poller) {
		log.Debug("Stopping dashboard poller", zap.String("tenant", tenant))
		p.Stop()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create poller cache: %w", err)
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		console:  c,
		logger:   log,
		tenant:   defaultTenant,
		interval: o.interval,
		pollers:  pollers,
		pages:    pages,
	}
	s.router = s.routes()
	// Forms post back to the console itself; cross-site POSTs are refused
	// with 403 before any handler runs.
	s.handler = http.NewCrossOriginProtection().Handler(s.router)
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.withTenant)
	r.Handle("/", http.RedirectHandler("/dashboard", http.StatusFound)).Methods(http.MethodGet)

	r.HandleFunc("/dashboard", s.dashboard).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/refresh", s.refreshDashboard).Methods(http.MethodPost)

	r.HandleFunc("/alerts", s.alerts).Methods(http.MethodGet)
	r.HandleFunc("/alerts/{id}", s.alert).Methods(http.MethodGet)
	r.HandleFunc("/alerts/{id}/{op:ack|resolve|note}", s.alertLifecycle).Methods(http.MethodPost)
	r.HandleFunc("/alerts/{id}/delete", s.deleteAlert).Methods(http.MethodPost)

	r.HandleFunc("/events", s.events).Methods(http.MethodGet)
	r.HandleFunc("/events/{id}", s.event).Methods(http.MethodGet)
	r.HandleFunc("/events/{id}/delete", s.deleteEvent).Methods(http.MethodPost)

	r.HandleFunc("/triggers", s.triggers).Methods(http.MethodGet)
	r.HandleFunc("/triggers", s.createTrigger).Methods(http.MethodPost)
	r.HandleFunc("/triggers/{id}", s.trigger).Methods(http.MethodGet)
	r.HandleFunc("/triggers/{id}", s.updateTrigger).Methods(http.MethodPost)
	r.HandleFunc("/triggers/{id}/delete", s.deleteTrigger).Methods(http.MethodPost)
	r.HandleFunc("/triggers/{id}/enable", s.enableTrigger).Methods(http.MethodPost)

	r.HandleFunc("/actions", s.actions).Methods(http.MethodGet)
	r.HandleFunc("/actions", s.createAction).Methods(http.MethodPost)
	r.HandleFunc("/actions/{plugin}/{id}", s.action).Methods(http.MethodGet)
	r.HandleFunc("/actions/{plugin}/{id}", s.updateAction).Methods(http.MethodPost)
	r.HandleFunc("/actions/{plugin}/{id}/delete", s.deleteAction).Methods(http.MethodPost)
	r.HandleFunc("/plugins/{plugin}", s.plugin).Methods(http.MethodGet)
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close stops every dashboard poller.
func (s *Server) Close() {
	s.pollerMu.Lock()
	defer s.pollerMu.Unlock()
	s.pollers.Purge()
}

// withTenant resolves the tenant of a request: ?tenant= (remembered in a
// cookie), else the cookie, else the default.
func (s *Server) withTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := strings.TrimSpace(r.URL.Query().Get("tenant"))
		if tenant != "" {
			http.SetCookie(w, &http.Cookie{Name: TenantCookie, Value: tenant, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
		} else if c, err := r.Cookie(TenantCookie); err == nil && c.Value != "" {
			tenant = c.Value
		} else {
			tenant = s.tenant
		}
		ctx := r.Context()
		if tenant != "" {
			ctx = contextutil.WithTenant(ctx, tenant)
		}
		if id := r.Header.Get(client.RequestIDHeader); id != "" {
			ctx = contextutil.WithRequestID(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tenantOf(ctx context.Context) string {
	t, _ := contextutil.Tenant(ctx)
	return t
}

// poller returns the running dashboard poller of tenant, starting one if
// needed.
func (s *Server) poller(tenant string) *console.Poller {
	s.pollerMu.Lock()
	defer s.pollerMu.Unlock()
	if p, ok := s.pollers.Get(tenant); ok {
		return p
	}
	now := s.console.Clock().Now()
	p := console.NewPoller(s.console, tenant, filter.DefaultRange(now), s.interval, nil)
	p.Start()
	s.pollers.Add(tenant, p)
	s.logger.Debug("Started dashboard poller", zap.String("tenant", tenant))
	return p
}

// toast is a timestamped notification shown on top of a page.
type toast struct {
	At      time.Time
	Message string
	Error   bool
}

type page struct {
	Title   string
	Nav     string
	Tenant  string
	Query   template.URL
	Refresh int
	Toasts  []toast
	Data    any
}

func (s *Server) newPage(r *http.Request, nav, title string) *page {
	return &page{
		Title:  title,
		Nav:    nav,
		Tenant: tenantOf(r.Context()),
		Query:  template.URL(r.URL.Query().Encode()),
	}
}

func (p *page) info(at time.Time, format string, args ...any) {
	p.Toasts = append(p.Toasts, toast{At: at, Message: fmt.Sprintf(format, args...)})
}

func (p *page) fail(at time.Time, err error) {
	p.Toasts = append(p.Toasts, toast{At: at, Message: client.Describe(err), Error: true})
}

func (s *Server) render(w http.ResponseWriter, name string, p *page) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.logger.Error("Unknown page template", zap.String("page", name))
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		s.logger.Error("Failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("Failed to write page", zap.Error(err))
	}
}

var funcs = template.FuncMap{
	"ago": humanize.Time,
	"datetime": func(t time.Time) string {
		return t.Format(timeutil.DatetimeLayout)
	},
	"millis": func(ms int64) string {
		if ms == 0 {
			return ""
		}
		return timeutil.FromMillis(ms).Format(timeutil.DatetimeLayout)
	},
	"pretty": prettyOrError,
	"lower": strings.ToLower,
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	},
}

var pageNames = []string{"dashboard", "alerts", "events", "triggers", "actions", "document"}

// parsePages builds one template set per page, each with the shared layout.
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}
