package webui

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/pkg/dashboard"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

type dashboardData struct {
	Range      filter.Range
	Presets    []string
	Running    bool
	Snapshot   *console.Snapshot
	Summary    *dashboard.Summary
	Points     []dashboard.Point
	Details    []*dashboard.Detail
	Severities []types.Severity
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(r, "dashboard", "Dashboard")
	now := s.console.Clock().Now()
	data := &dashboardData{Presets: filter.Presets, Severities: types.Severities}
	p.Data = data

	tenant := tenantOf(r.Context())
	if tenant == "" {
		data.Range = filter.DefaultRange(now)
		p.fail(now, client.ErrNoTenant)
		s.render(w, "dashboard", p)
		return
	}
	poller := s.poller(tenant)

	q := r.URL.Query()
	if q.Has("range") || q.Has("refresh") {
		failed := false
		if preset := q.Get("range"); preset != "" {
			rng, err := poller.Range().Preset(preset, now)
			if err != nil {
				p.fail(now, err)
				failed = true
			} else {
				poller.SetRange(rng)
			}
		}
		switch q.Get("refresh") {
		case "off":
			poller.Pause()
		case "on":
			poller.Resume()
		}
		// post/redirect/get: the auto refresh must reload a URL that
		// changes nothing
		if !failed {
			q.Del("range")
			q.Del("refresh")
			q.Del("tenant")
			target := "/dashboard"
			if len(q) > 0 {
				target += "?" + q.Encode()
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
	}

	if last, ok := poller.Last(); ok && last.Err != nil {
		p.fail(last.At, last.Err)
	}
	if good, ok := poller.LastSummary(); ok {
		data.Snapshot = &good
		data.Summary = good.Summary
		data.Points = good.Summary.Sorted()
	}

	if ids := q.Get("detail"); ids != "" && data.Summary != nil {
		// the timeline must not move under an open detail
		poller.Pause()
		points := selectPoints(data.Points, ids)
		details, err := s.console.EventDetails(r.Context(), points)
		if err != nil {
			s.logger.Error("Failed to load event details", zap.String("ids", ids), zap.Error(err))
			p.fail(now, err)
		}
		data.Details = details
	}

	data.Range = poller.Range()
	data.Running = poller.Running()
	if data.Running {
		p.Refresh = max(int(s.interval.Seconds()), 1)
	}
	s.render(w, "dashboard", p)
}

func (s *Server) refreshDashboard(w http.ResponseWriter, r *http.Request) {
	if tenant := tenantOf(r.Context()); tenant != "" {
		s.poller(tenant).Refresh()
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// selectPoints keeps the points whose id is in the comma separated ids.
func selectPoints(points []dashboard.Point, ids string) []dashboard.Point {
	wanted := make(map[string]bool)
	for _, id := range strings.Split(ids, ",") {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = true
		}
	}
	var out []dashboard.Point
	for _, p := range points {
		if wanted[p.ID()] {
			out = append(out, p)
		}
	}
	return out
}
