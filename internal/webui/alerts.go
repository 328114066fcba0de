package webui

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

type alertsData struct {
	Range           string
	Presets         []string
	Filter          filter.AlertFilter
	SeverityOptions []string
	StatusOptions   []string
	Alerts          []types.Alert
	Total           int
}

type eventsData struct {
	Range    string
	Presets  []string
	TagQuery string
	Events   []types.Event
	Total    int
}

type documentData struct {
	Heading string
	JSON    string
	Back    string
	// Edit is the form action of an editable document, empty for read only.
	Edit string
}

func (s *Server) alertsQuery(r *http.Request) (console.AlertsQuery, error) {
	rng, err := filter.ParseRange(r.FormValue("range"), s.console.Clock().Now())
	if err != nil {
		return console.AlertsQuery{}, err
	}
	f := filter.DefaultAlertFilter()
	if v := r.FormValue("severity"); v != "" {
		f.Severity = v
	}
	if v := r.FormValue("status"); v != "" {
		f.Status = v
	}
	f.TagQuery = r.FormValue("tagQuery")
	return console.AlertsQuery{Range: rng, Filter: f}, nil
}

func (s *Server) eventsQuery(r *http.Request) (console.EventsQuery, error) {
	rng, err := filter.ParseRange(r.FormValue("range"), s.console.Clock().Now())
	if err != nil {
		return console.EventsQuery{}, err
	}
	return console.EventsQuery{Range: rng, Filter: filter.EventFilter{TagQuery: r.FormValue("tagQuery")}}, nil
}

func (s *Server) newAlertsPage(r *http.Request) (*page, *alertsData) {
	p := s.newPage(r, "alerts", "Alerts")
	data := &alertsData{
		Range:           r.FormValue("range"),
		Presets:         filter.Presets,
		Filter:          filter.DefaultAlertFilter(),
		SeverityOptions: filter.SeverityOptions,
		StatusOptions:   filter.StatusOptions,
	}
	if v := r.FormValue("severity"); v != "" {
		data.Filter.Severity = v
	}
	if v := r.FormValue("status"); v != "" {
		data.Filter.Status = v
	}
	data.Filter.TagQuery = r.FormValue("tagQuery")
	p.Data = data
	return p, data
}

// listAlerts fills data with a fresh query, reporting failures as toasts.
func (s *Server) listAlerts(r *http.Request, p *page, data *alertsData) {
	now := s.console.Clock().Now()
	q, err := s.alertsQuery(r)
	if err != nil {
		p.fail(now, err)
		return
	}
	res, err := s.console.Alerts(r.Context(), q)
	if err != nil {
		p.fail(now, err)
		return
	}
	data.Alerts, data.Total = res.Items, res.Total
}

func (s *Server) alerts(w http.ResponseWriter, r *http.Request) {
	p, data := s.newAlertsPage(r)
	s.listAlerts(r, p, data)
	s.render(w, "alerts", p)
}

func (s *Server) alert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p := s.newPage(r, "alerts", "Alert "+id)
	doc := &documentData{Heading: "Alert " + id, Back: "/alerts"}
	p.Data = doc
	a, err := s.console.Alert(r.Context(), id)
	if err != nil {
		p.fail(s.console.Clock().Now(), err)
	} else {
		doc.JSON = prettyOrError(a)
	}
	s.render(w, "document", p)
}

func (s *Server) alertLifecycle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, op := vars["id"], vars["op"]
	p, data := s.newAlertsPage(r)
	now := s.console.Clock().Now()

	q, err := s.alertsQuery(r)
	if err != nil {
		p.fail(now, err)
		s.render(w, "alerts", p)
		return
	}
	l := console.Lifecycle{User: r.FormValue("user"), Notes: r.FormValue("notes")}

	var (
		res  types.Page[types.Alert]
		done string
	)
	switch op {
	case "ack":
		res, err = s.console.AckAlert(r.Context(), id, l, q)
		done = "acknowledged"
	case "resolve":
		res, err = s.console.ResolveAlert(r.Context(), id, l, q)
		done = "resolved"
	case "note":
		res, err = s.console.NoteAlert(r.Context(), id, l, q)
		done = "annotated"
	}
	if err != nil {
		p.fail(now, err)
		s.listAlerts(r, p, data)
	} else {
		p.info(now, "Alert %s %s", id, done)
		data.Alerts, data.Total = res.Items, res.Total
	}
	s.render(w, "alerts", p)
}

func (s *Server) deleteAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, data := s.newAlertsPage(r)
	now := s.console.Clock().Now()
	q, err := s.alertsQuery(r)
	if err != nil {
		p.fail(now, err)
		s.render(w, "alerts", p)
		return
	}
	res, err := s.console.DeleteAlert(r.Context(), id, q)
	if err != nil {
		p.fail(now, err)
		s.listAlerts(r, p, data)
	} else {
		p.info(now, "Alert %s deleted", id)
		data.Alerts, data.Total = res.Items, res.Total
	}
	s.render(w, "alerts", p)
}

func (s *Server) newEventsPage(r *http.Request) (*page, *eventsData) {
	p := s.newPage(r, "events", "Events")
	data := &eventsData{Range: r.FormValue("range"), Presets: filter.Presets, TagQuery: r.FormValue("tagQuery")}
	p.Data = data
	return p, data
}

func (s *Server) listEvents(r *http.Request, p *page, data *eventsData) {
	now := s.console.Clock().Now()
	q, err := s.eventsQuery(r)
	if err != nil {
		p.fail(now, err)
		return
	}
	res, err := s.console.Events(r.Context(), q)
	if err != nil {
		p.fail(now, err)
		return
	}
	data.Events, data.Total = res.Items, res.Total
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	p, data := s.newEventsPage(r)
	s.listEvents(r, p, data)
	s.render(w, "events", p)
}

func (s *Server) event(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p := s.newPage(r, "events", "Event "+id)
	doc := &documentData{Heading: "Event " + id, Back: "/events"}
	p.Data = doc
	e, err := s.console.Event(r.Context(), id)
	if err != nil {
		p.fail(s.console.Clock().Now(), err)
	} else {
		doc.JSON = prettyOrError(e)
	}
	s.render(w, "document", p)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, data := s.newEventsPage(r)
	now := s.console.Clock().Now()
	q, err := s.eventsQuery(r)
	if err != nil {
		p.fail(now, err)
		s.render(w, "events", p)
		return
	}
	res, err := s.console.DeleteEvent(r.Context(), id, q)
	if err != nil {
		p.fail(now, err)
		s.listEvents(r, p, data)
	} else {
		p.info(now, "Event %s deleted", id)
		data.Events, data.Total = res.Items, res.Total
	}
	s.render(w, "events", p)
}

func prettyOrError(v any) string {
	s, err := console.PrettyJSON(v)
	if err != nil {
		return fmt.Sprintf("failed to render document: %v", err)
	}
	return s
}
