package webui

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

type triggersData struct {
	Tags  string
	View  *console.TriggersView
	Pages []int
}

type actionsData struct {
	Plugin      string
	Plugins     *console.PluginsView
	Definitions []types.ActionDefinition
}

func triggerQuery(r *http.Request) console.TriggerQuery {
	page, _ := strconv.Atoi(r.FormValue("page"))
	return console.TriggerQuery{Tags: r.FormValue("tags"), Page: page}
}

func (s *Server) newTriggersPage(r *http.Request) (*page, *triggersData) {
	p := s.newPage(r, "triggers", "Triggers")
	data := &triggersData{Tags: r.FormValue("tags")}
	p.Data = data
	return p, data
}

func (data *triggersData) set(view *console.TriggersView) {
	data.View = view
	data.Pages = make([]int, view.Pages.MaxPages)
	for i := range data.Pages {
		data.Pages[i] = i + 1
	}
}

func (s *Server) listTriggers(r *http.Request, p *page, data *triggersData) {
	view, err := s.console.Triggers(r.Context(), triggerQuery(r))
	if err != nil {
		p.fail(s.console.Clock().Now(), err)
		return
	}
	data.set(view)
}

// triggerMutation renders the triggers page after a change, refetched by
// the console on success and fetched again here on failure.
func (s *Server) triggerMutation(w http.ResponseWriter, r *http.Request, view *console.TriggersView, err error, format string, args ...any) {
	p, data := s.newTriggersPage(r)
	now := s.console.Clock().Now()
	if err != nil {
		p.fail(now, err)
		s.listTriggers(r, p, data)
	} else {
		p.info(now, format, args...)
		data.set(view)
	}
	s.render(w, "triggers", p)
}

func (s *Server) triggers(w http.ResponseWriter, r *http.Request) {
	p, data := s.newTriggersPage(r)
	s.listTriggers(r, p, data)
	s.render(w, "triggers", p)
}

func (s *Server) trigger(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p := s.newPage(r, "triggers", "Trigger "+id)
	doc := &documentData{Heading: "Trigger " + id, Back: "/triggers", Edit: "/triggers/" + id}
	p.Data = doc
	ft, err := s.console.Trigger(r.Context(), id)
	if err != nil {
		p.fail(s.console.Clock().Now(), err)
		doc.Edit = ""
	} else {
		doc.JSON = prettyOrError(ft)
	}
	s.render(w, "document", p)
}

func (s *Server) createTrigger(w http.ResponseWriter, r *http.Request) {
	view, err := s.console.CreateTrigger(r.Context(), r.FormValue("json"), triggerQuery(r))
	s.triggerMutation(w, r, view, err, "Trigger created")
}

func (s *Server) updateTrigger(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	view, err := s.console.UpdateTrigger(r.Context(), id, r.FormValue("json"), triggerQuery(r))
	s.triggerMutation(w, r, view, err, "Trigger %s updated", id)
}

func (s *Server) deleteTrigger(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	view, err := s.console.DeleteTrigger(r.Context(), id, triggerQuery(r))
	s.triggerMutation(w, r, view, err, "Trigger %s deleted", id)
}

func (s *Server) enableTrigger(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	enabled := r.FormValue("enabled") != "false"
	view, err := s.console.SetTriggerEnabled(r.Context(), id, enabled, triggerQuery(r))
	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	s.triggerMutation(w, r, view, err, "Trigger %s %s", id, state)
}

func (s *Server) newActionsPage(r *http.Request) (*page, *actionsData) {
	p := s.newPage(r, "actions", "Actions")
	data := &actionsData{Plugin: r.FormValue("plugin")}
	if data.Plugin == "" {
		data.Plugin = console.AllPlugins
	}
	p.Data = data
	plugins, err := s.console.Plugins(r.Context())
	if err != nil {
		p.fail(s.console.Clock().Now(), err)
	}
	data.Plugins = plugins
	return p, data
}

func (s *Server) listActions(r *http.Request, p *page, data *actionsData) {
	defs, err := s.console.ActionDefinitions(r.Context(), data.Plugin)
	if err != nil {
		p.fail(s.console.Clock().Now(), err)
		return
	}
	data.Definitions = defs
}

func (s *Server) actionMutation(w http.ResponseWriter, r *http.Request, mutate func(filter string) ([]types.ActionDefinition, error), format string, args ...any) {
	p, data := s.newActionsPage(r)
	now := s.console.Clock().Now()
	defs, err := mutate(data.Plugin)
	if err != nil {
		p.fail(now, err)
		s.listActions(r, p, data)
	} else {
		p.info(now, format, args...)
		data.Definitions = defs
	}
	s.render(w, "actions", p)
}

func (s *Server) actions(w http.ResponseWriter, r *http.Request) {
	p, data := s.newActionsPage(r)
	s.listActions(r, p, data)
	s.render(w, "actions", p)
}

func (s *Server) action(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	plugin, id := vars["plugin"], vars["id"]
	p := s.newPage(r, "actions", "Action "+id)
	doc := &documentData{Heading: "Action " + plugin + "/" + id, Back: "/actions", Edit: "/actions/" + plugin + "/" + id}
	p.Data = doc
	def, err := s.console.ActionDefinition(r.Context(), plugin, id)
	if err != nil {
		p.fail(s.console.Clock().Now(), err)
		doc.Edit = ""
	} else {
		doc.JSON = prettyOrError(def)
	}
	s.render(w, "document", p)
}

func (s *Server) createAction(w http.ResponseWriter, r *http.Request) {
	s.actionMutation(w, r, func(filter string) ([]types.ActionDefinition, error) {
		return s.console.CreateActionDefinition(r.Context(), r.FormValue("json"), filter)
	}, "Action created")
}

func (s *Server) updateAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	plugin, id := vars["plugin"], vars["id"]
	s.actionMutation(w, r, func(filter string) ([]types.ActionDefinition, error) {
		return s.console.UpdateActionDefinition(r.Context(), plugin, id, r.FormValue("json"), filter)
	}, "Action %s updated", id)
}

func (s *Server) deleteAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	plugin, id := vars["plugin"], vars["id"]
	s.actionMutation(w, r, func(filter string) ([]types.ActionDefinition, error) {
		return s.console.DeleteActionDefinition(r.Context(), plugin, id, filter)
	}, "Action %s deleted", id)
}

func (s *Server) plugin(w http.ResponseWriter, r *http.Request) {
	plugin := mux.Vars(r)["plugin"]
	p := s.newPage(r, "actions", "Plugin "+plugin)
	doc := &documentData{Heading: "Plugin " + plugin + " properties", Back: "/actions"}
	p.Data = doc
	props, err := s.console.PluginProperties(r.Context(), plugin)
	if err != nil {
		p.fail(s.console.Clock().Now(), err)
	} else {
		doc.JSON = prettyOrError(props)
	}
	s.render(w, "document", p)
}
