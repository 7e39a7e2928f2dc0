package reconcile

import (
	"encoding/json"
	"fmt"

	"github.com/agentsync-dev/agentsync/pkg/types"
)

// Kind discriminates the planned operations.
type Kind string

const (
	KindInstall  Kind = "install"
	KindUpdate   Kind = "update"
	KindSkip     Kind = "skip"
	KindConflict Kind = "conflict"
	KindDelete   Kind = "delete"
)

// Checksums is the audit set attached to every action: the four values the
// planner compared to reach its decision. Unknown values are recorded as-is
// so a caller's diff UI can show exactly what evidence was available.
type Checksums struct {
	Source           string `json:"source,omitempty"`
	RegisteredSource string `json:"registeredSource,omitempty"`
	CurrentTarget    string `json:"currentTarget,omitempty"`
	RegisteredTarget string `json:"registeredTarget,omitempty"`
}

// Meta holds the fields common to every action kind.
type Meta struct {
	Key        types.InstallKey `json:"key"`
	TargetPath string           `json:"targetPath"`
	Reason     string           `json:"reason"`
	Checksums  Checksums        `json:"checksums"`
}

// Action is one planned operation. Concrete kinds carry only the fields
// meaningful for them, so states like a resolution on a non-conflict action
// are unrepresentable.
type Action interface {
	Kind() Kind
	Common() Meta
}

// Install writes a target that has no registry record.
type Install struct {
	Meta

	// PreviousItem/PreviousPath are set when this install migrates a
	// renamed item or a moved target path.
	PreviousItem string `json:"previousItem,omitempty"`
	PreviousPath string `json:"previousPath,omitempty"`

	// CleanupPaths are old paths to delete once this write succeeds.
	CleanupPaths []string `json:"cleanupPaths,omitempty"`
}

func (a Install) Kind() Kind   { return KindInstall }
func (a Install) Common() Meta { return a.Meta }

// Update rewrites a registered target whose source changed (or whose state
// is being forced over).
type Update struct {
	Meta

	PreviousItem string   `json:"previousItem,omitempty"`
	PreviousPath string   `json:"previousPath,omitempty"`
	CleanupPaths []string `json:"cleanupPaths,omitempty"`
}

func (a Update) Kind() Kind   { return KindUpdate }
func (a Update) Common() Meta { return a.Meta }

// Skip records a decision to leave the target alone.
type Skip struct {
	Meta
}

func (a Skip) Kind() Kind   { return KindSkip }
func (a Skip) Common() Meta { return a.Meta }

// Conflict flags a target the engine must not touch without the caller's
// explicit resolution.
type Conflict struct {
	Meta

	// Diff optionally carries a rendered diff for the caller's UI.
	Diff string `json:"diff,omitempty"`

	// MergeSections lists the engine-managed sections of a merge-based
	// target, when known.
	MergeSections []string `json:"mergeSections,omitempty"`
}

func (a Conflict) Kind() Kind   { return KindConflict }
func (a Conflict) Common() Meta { return a.Meta }

// Delete removes the target of a registry record whose item left the source.
type Delete struct {
	Meta
}

func (a Delete) Kind() Kind   { return KindDelete }
func (a Delete) Common() Meta { return a.Meta }

// wireAction is the serialized envelope for one action. Exactly one of the
// kind-specific fields is populated, matching Kind.
type wireAction struct {
	Kind     Kind      `json:"kind"`
	Install  *Install  `json:"install,omitempty"`
	Update   *Update   `json:"update,omitempty"`
	Skip     *Skip     `json:"skip,omitempty"`
	Conflict *Conflict `json:"conflict,omitempty"`
	Delete   *Delete   `json:"delete,omitempty"`
}

func toWire(a Action) (wireAction, error) {
	switch v := a.(type) {
	case Install:
		return wireAction{Kind: KindInstall, Install: &v}, nil
	case Update:
		return wireAction{Kind: KindUpdate, Update: &v}, nil
	case Skip:
		return wireAction{Kind: KindSkip, Skip: &v}, nil
	case Conflict:
		return wireAction{Kind: KindConflict, Conflict: &v}, nil
	case Delete:
		return wireAction{Kind: KindDelete, Delete: &v}, nil
	default:
		return wireAction{}, fmt.Errorf("unknown action type %T", a)
	}
}

func (w wireAction) action() (Action, error) {
	switch w.Kind {
	case KindInstall:
		if w.Install == nil {
			return nil, fmt.Errorf("install action missing body")
		}
		return *w.Install, nil
	case KindUpdate:
		if w.Update == nil {
			return nil, fmt.Errorf("update action missing body")
		}
		return *w.Update, nil
	case KindSkip:
		if w.Skip == nil {
			return nil, fmt.Errorf("skip action missing body")
		}
		return *w.Skip, nil
	case KindConflict:
		if w.Conflict == nil {
			return nil, fmt.Errorf("conflict action missing body")
		}
		return *w.Conflict, nil
	case KindDelete:
		if w.Delete == nil {
			return nil, fmt.Errorf("delete action missing body")
		}
		return *w.Delete, nil
	default:
		return nil, fmt.Errorf("unknown action kind %q", w.Kind)
	}
}

// MarshalActions serializes an action list into its stable wire form.
func MarshalActions(actions []Action) ([]byte, error) {
	wires := make([]wireAction, 0, len(actions))
	for _, a := range actions {
		w, err := toWire(a)
		if err != nil {
			return nil, err
		}
		wires = append(wires, w)
	}
	return json.Marshal(wires)
}

// UnmarshalActions decodes an action list from its wire form.
func UnmarshalActions(data []byte) ([]Action, error) {
	var wires []wireAction
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, err
	}
	actions := make([]Action, 0, len(wires))
	for _, w := range wires {
		a, err := w.action()
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}
