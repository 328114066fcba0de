package dashboard

import "github.com/hawkular/hawkular-alerts-console/pkg/types"

// Detail is the expanded view of a timeline point: the alert or event, the
// actions executed for it and how many detail sections it has.
type Detail struct {
	Alert    *types.Alert
	Event    *types.Event
	Actions  []types.Action
	Sections int
	// ParseErr is set when an eval set context could not be decoded; the
	// detail is still shown.
	ParseErr error
}

// ID returns the alert or event id.
func (d *Detail) ID() string {
	if d.Alert != nil {
		return d.Alert.ID
	}
	if d.Event != nil {
		return d.Event.ID
	}
	return ""
}

// NewDetail prepares a detail for a point: context events embedded in eval
// sets are decoded and the section count computed without actions. The
// point's documents may be shared with other readers, so decoding works on
// a copy of the eval sets.
func NewDetail(p Point) *Detail {
	d := &Detail{}
	switch {
	case p.Alert != nil:
		a := *p.Alert
		a.EvalSets = types.CloneEvalSets(a.EvalSets)
		a.ResolvedEvalSets = types.CloneEvalSets(a.ResolvedEvalSets)
		d.Alert = &a
		if err := types.ParseEvalSets(a.EvalSets); err != nil {
			d.ParseErr = err
		}
		if err := types.ParseEvalSets(a.ResolvedEvalSets); err != nil && d.ParseErr == nil {
			d.ParseErr = err
		}
	case p.Event != nil:
		e := *p.Event
		e.EvalSets = types.CloneEvalSets(e.EvalSets)
		d.Event = &e
		d.ParseErr = types.ParseEvalSets(e.EvalSets)
	}
	d.Sections = d.countSections()
	return d
}

// SetActions attaches the action history and recounts sections.
func (d *Detail) SetActions(actions []types.Action) {
	d.Actions = actions
	d.Sections = d.countSections()
}

// countSections counts the non-empty parts among eval sets, resolved eval
// sets, lifecycle and actions.
func (d *Detail) countSections() int {
	n := 0
	var evalSets [][]types.EvalSet
	if d.Alert != nil {
		evalSets = d.Alert.EvalSets
		if d.Alert.ResolvedEvalSets != nil {
			n++
		}
		if d.Alert.LifeCycle != nil {
			n++
		}
	} else if d.Event != nil {
		evalSets = d.Event.EvalSets
	}
	if evalSets != nil {
		n++
	}
	if d.Actions != nil {
		n++
	}
	return n
}
