package reconcile

import (
	"encoding/json"

	"github.com/agentsync-dev/agentsync/pkg/errors"
)

// Summary holds per-kind action counts for a plan.
type Summary struct {
	Install  int `json:"install"`
	Update   int `json:"update"`
	Skip     int `json:"skip"`
	Conflict int `json:"conflict"`
	Delete   int `json:"delete"`
}

// Total returns the number of actions counted.
func (s Summary) Total() int {
	return s.Install + s.Update + s.Skip + s.Conflict + s.Delete
}

// Summarize derives the summary counts from an action list.
func Summarize(actions []Action) Summary {
	var s Summary
	for _, a := range actions {
		switch a.Kind() {
		case KindInstall:
			s.Install++
		case KindUpdate:
			s.Update++
		case KindSkip:
			s.Skip++
		case KindConflict:
			s.Conflict++
		case KindDelete:
			s.Delete++
		}
	}
	return s
}

// Plan is the full, ordered decision set of one reconcile call. Summary and
// HasConflicts are derived from Actions at planning time and re-validated
// before any execution.
type Plan struct {
	Actions      []Action
	Summary      Summary
	HasConflicts bool
}

// NewPlan builds a plan from actions with a consistent summary.
func NewPlan(actions []Action) *Plan {
	s := Summarize(actions)
	return &Plan{
		Actions:      actions,
		Summary:      s,
		HasConflicts: s.Conflict > 0,
	}
}

// Validate recomputes the summary from the action list and rejects the plan
// when the declared summary or conflict flag disagrees. This protects
// execution from a stale or tampered plan.
func (p *Plan) Validate() error {
	derived := Summarize(p.Actions)
	if derived != p.Summary {
		return errors.Newf(errors.ErrPlanInvalid,
			"plan summary does not match actions: declared %+v, derived %+v", p.Summary, derived)
	}
	if p.HasConflicts != (derived.Conflict > 0) {
		return errors.Newf(errors.ErrPlanInvalid,
			"plan conflict flag %v does not match conflict count %d", p.HasConflicts, derived.Conflict)
	}
	return nil
}

// Conflicts returns the conflict actions in plan order.
func (p *Plan) Conflicts() []Conflict {
	var out []Conflict
	for _, a := range p.Actions {
		if c, ok := a.(Conflict); ok {
			out = append(out, c)
		}
	}
	return out
}

// planWire is the serialized form of a plan, suitable for a preview-then-
// confirm workflow across a network boundary.
type planWire struct {
	Actions      json.RawMessage `json:"actions"`
	Summary      Summary         `json:"summary"`
	HasConflicts bool            `json:"hasConflicts"`
}

// MarshalJSON implements json.Marshaler.
func (p *Plan) MarshalJSON() ([]byte, error) {
	actions, err := MarshalActions(p.Actions)
	if err != nil {
		return nil, err
	}
	return json.Marshal(planWire{
		Actions:      actions,
		Summary:      p.Summary,
		HasConflicts: p.HasConflicts,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var w planWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	actions, err := UnmarshalActions(w.Actions)
	if err != nil {
		return err
	}
	p.Actions = actions
	p.Summary = w.Summary
	p.HasConflicts = w.HasConflicts
	return nil
}

// ResolutionKind selects how a conflict should be settled.
type ResolutionKind string

const (
	// ResolutionOverwrite takes the engine version.
	ResolutionOverwrite ResolutionKind = "overwrite"

	// ResolutionKeep takes the user version.
	ResolutionKeep ResolutionKind = "keep"

	// ResolutionSmartMerge updates engine-managed sections while preserving
	// user additions, delegated to the settings merge collaborator.
	ResolutionSmartMerge ResolutionKind = "smart-merge"

	// ResolutionContent installs caller-supplied final bytes.
	ResolutionContent ResolutionKind = "resolved"
)

// Resolution settles one conflict action. Content is meaningful only for
// ResolutionContent. Resolutions are consumed by a single execution and
// never persisted.
type Resolution struct {
	Kind    ResolutionKind `json:"kind"`
	Content []byte         `json:"content,omitempty"`
}

// valid reports whether the resolution is well-formed.
func (r Resolution) valid() bool {
	switch r.Kind {
	case ResolutionOverwrite, ResolutionKeep, ResolutionSmartMerge:
		return true
	case ResolutionContent:
		return r.Content != nil
	default:
		return false
	}
}
