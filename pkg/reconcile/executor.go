package reconcile

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentsync-dev/agentsync/pkg/checksum"
	"github.com/agentsync-dev/agentsync/pkg/errors"
	"github.com/agentsync-dev/agentsync/pkg/ledger"
	"github.com/agentsync-dev/agentsync/pkg/logging"
	"github.com/agentsync-dev/agentsync/pkg/registry"
	"github.com/agentsync-dev/agentsync/pkg/types"
)

// ResultStatus is the per-action execution outcome.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusSkipped ResultStatus = "skipped"
	StatusFailed  ResultStatus = "failed"
)

// ActionResult reports the outcome of one executed action.
type ActionResult struct {
	Key        types.InstallKey `json:"key"`
	Kind       Kind             `json:"kind"`
	TargetPath string           `json:"targetPath"`
	Status     ResultStatus     `json:"status"`
	Message    string           `json:"message,omitempty"`
}

// Result is the full outcome of one plan execution.
type Result struct {
	Actions   []ActionResult `json:"actions"`
	Installed int            `json:"installed"`
	Skipped   int            `json:"skipped"`
	Deleted   int            `json:"deleted"`
	Failed    int            `json:"failed"`
}

func (r *Result) record(res ActionResult) {
	r.Actions = append(r.Actions, res)
	switch res.Status {
	case StatusSuccess:
		if res.Kind == KindDelete {
			r.Deleted++
		} else {
			r.Installed++
		}
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}

// Executor applies a validated plan. It mutates the ledger and registry
// snapshots it is given; the caller persists them afterwards.
type Executor struct {
	FS       types.FS
	Ledger   *ledger.Ledger
	Registry *registry.Registry

	// Content maps each installable key to the bytes to write. Directory-
	// based items have no entry; they go through Dirs instead.
	Content map[types.InstallKey][]byte

	// SkillDirs maps directory-based item names to their source directory.
	SkillDirs map[string]string

	// Dirs installs directory-based items. Required only when the plan
	// contains such actions.
	Dirs types.DirectoryInstaller

	// Merger performs smart-merge resolutions. Required only when one is
	// requested.
	Merger types.SettingsMerger

	// Version is recorded in ledger entries for files written by this run.
	Version string

	Logger zerolog.Logger
}

// NewExecutor returns an executor over the given collaborators.
func NewExecutor(filesystem types.FS, led *ledger.Ledger, reg *registry.Registry) *Executor {
	return &Executor{
		FS:       filesystem,
		Ledger:   led,
		Registry: reg,
		Content:  make(map[types.InstallKey][]byte),
		Logger:   logging.GetLogger("executor"),
	}
}

// pendingDelete is a deferred phase-two removal.
type pendingDelete struct {
	key     types.InstallKey
	path    string
	kind    Kind
	dirItem bool
	// forget-only cleanup does not touch the registry
	cleanupOnly bool
}

// Execute validates and applies a plan. Validation failures return an error
// before any side effect; per-action I/O failures are recorded in the
// result and do not abort the remaining queue.
//
// Writes and deletes form two ordered phases: every install/update/resolved
// conflict is executed before any delete, and a delete whose path was just
// written by this same plan is reported as skipped rather than executed.
// This makes rename sequences safe when the old and new path coincide.
func (e *Executor) Execute(plan *Plan, resolutions map[types.InstallKey]Resolution) (*Result, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if err := checkResolutions(plan, resolutions); err != nil {
		return nil, err
	}

	result := &Result{}
	writeSet := make(map[string]bool)
	var deletes []pendingDelete

	// Phase one: everything that writes.
	for _, a := range plan.Actions {
		switch act := a.(type) {
		case Skip:
			result.record(ActionResult{
				Key: act.Key, Kind: KindSkip, TargetPath: act.TargetPath,
				Status: StatusSkipped, Message: act.Reason,
			})

		case Install:
			e.executeWrite(result, act.Meta, KindInstall, nil, act.PreviousItem, act.CleanupPaths, writeSet, &deletes)

		case Update:
			e.executeWrite(result, act.Meta, KindUpdate, nil, act.PreviousItem, act.CleanupPaths, writeSet, &deletes)

		case Conflict:
			res := resolutions[act.Key]
			switch res.Kind {
			case ResolutionKeep:
				result.record(ActionResult{
					Key: act.Key, Kind: KindConflict, TargetPath: act.TargetPath,
					Status: StatusSkipped, Message: "user version kept",
				})
			case ResolutionOverwrite, ResolutionSmartMerge:
				e.executeWrite(result, act.Meta, KindConflict, &res, "", nil, writeSet, &deletes)
			case ResolutionContent:
				e.executeWrite(result, act.Meta, KindConflict, &res, "", nil, writeSet, &deletes)
			}

		case Delete:
			deletes = append(deletes, pendingDelete{
				key:     act.Key,
				path:    act.TargetPath,
				kind:    KindDelete,
				dirItem: act.Key.Type.DirectoryBased(),
			})
		}
	}

	// Phase two: deletes, after all writes are known.
	for _, d := range deletes {
		e.executeDelete(result, d, writeSet)
	}

	return result, nil
}

// checkResolutions rejects a plan wholesale when any conflict lacks a valid
// resolution: an under-resolved plan is never partially executed.
func checkResolutions(plan *Plan, resolutions map[types.InstallKey]Resolution) error {
	for _, c := range plan.Conflicts() {
		res, ok := resolutions[c.Key]
		if !ok {
			return errors.Newf(errors.ErrPlanUnresolved,
				"conflict for %s has no resolution", c.Key)
		}
		if !res.valid() {
			return errors.Newf(errors.ErrResolutionInvalid,
				"resolution for %s is invalid: kind %q", c.Key, res.Kind)
		}
	}
	return nil
}

// executeWrite performs one install/update/resolved-conflict write and
// updates the ledger and registry to the newly written state.
func (e *Executor) executeWrite(result *Result, meta Meta, kind Kind, res *Resolution, prevItem string, cleanup []string, writeSet map[string]bool, deletes *[]pendingDelete) {
	fail := func(err error) {
		e.Logger.Warn().Err(err).Str("path", meta.TargetPath).Stringer("key", meta.Key).Msg("action failed")
		result.record(ActionResult{
			Key: meta.Key, Kind: kind, TargetPath: meta.TargetPath,
			Status: StatusFailed, Message: err.Error(),
		})
	}

	var written string
	if meta.Key.Type.DirectoryBased() {
		sum, err := e.installDirectory(meta)
		if err != nil {
			fail(err)
			return
		}
		written = sum
	} else {
		content, err := e.contentFor(meta, res)
		if err != nil {
			fail(err)
			return
		}
		if err := e.FS.MkdirAll(filepath.Dir(meta.TargetPath), fs.FileMode(0755)); err != nil {
			fail(errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent directory for %s", meta.TargetPath))
			return
		}
		if err := e.FS.WriteFile(meta.TargetPath, content, fs.FileMode(0644)); err != nil {
			fail(errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", meta.TargetPath))
			return
		}
		written = checksum.Of(content)
	}

	writeSet[meta.TargetPath] = true
	e.Ledger.Track(meta.TargetPath, written, e.Version)
	e.Registry.Upsert(registry.Record{
		Item:           meta.Key.Item,
		Type:           meta.Key.Type,
		Provider:       meta.Key.Provider,
		Global:         meta.Key.Global,
		TargetPath:     meta.TargetPath,
		SourceChecksum: meta.Checksums.Source,
		TargetChecksum: written,
		InstalledAt:    time.Now().UTC(),
	})

	// A rename supersedes the old item's registry record.
	if prevItem != "" {
		oldKey := meta.Key
		oldKey.Item = prevItem
		e.Registry.Remove(oldKey)
	}

	for _, p := range cleanup {
		*deletes = append(*deletes, pendingDelete{
			key:         meta.Key,
			path:        p,
			kind:        KindDelete,
			dirItem:     meta.Key.Type.DirectoryBased(),
			cleanupOnly: true,
		})
	}

	e.Logger.Debug().Stringer("key", meta.Key).Str("path", meta.TargetPath).Str("checksum", written).Msg("wrote target")
	result.record(ActionResult{
		Key: meta.Key, Kind: kind, TargetPath: meta.TargetPath, Status: StatusSuccess,
	})
}

// contentFor picks the bytes to write for a single-file action.
func (e *Executor) contentFor(meta Meta, res *Resolution) ([]byte, error) {
	if res != nil {
		switch res.Kind {
		case ResolutionContent:
			return res.Content, nil
		case ResolutionSmartMerge:
			if e.Merger == nil {
				return nil, errors.Newf(errors.ErrMergeFailed, "no merge collaborator configured for %s", meta.Key)
			}
			incoming, ok := e.Content[meta.Key]
			if !ok {
				return nil, errors.Newf(errors.ErrActionExecute, "no content available for %s", meta.Key)
			}
			existing, err := e.FS.ReadFile(meta.TargetPath)
			if err != nil && !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s for merge", meta.TargetPath)
			}
			merged, err := e.Merger.Merge(existing, incoming)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrMergeFailed, "merge failed for %s", meta.TargetPath)
			}
			return merged, nil
		}
	}
	content, ok := e.Content[meta.Key]
	if !ok {
		return nil, errors.Newf(errors.ErrActionExecute, "no content available for %s", meta.Key)
	}
	return content, nil
}

// installDirectory delegates a directory-based item to the directory
// installer and returns the checksum to record for it.
func (e *Executor) installDirectory(meta Meta) (string, error) {
	if e.Dirs == nil {
		return "", errors.Newf(errors.ErrActionExecute, "no directory installer configured for %s", meta.Key)
	}
	sourceDir, ok := e.SkillDirs[meta.Key.Item]
	if !ok {
		return "", errors.Newf(errors.ErrActionExecute, "no source directory known for %s", meta.Key)
	}
	if err := e.Dirs.InstallDir(meta.Key, sourceDir, meta.TargetPath); err != nil {
		return "", errors.Wrapf(err, errors.ErrActionExecute, "directory install failed for %s", meta.Key)
	}
	// The directory content hash is the source hash: the installer mirrors
	// the source tree verbatim.
	return meta.Checksums.Source, nil
}

// executeDelete performs one phase-two removal, honoring the same-path
// write-wins rule.
func (e *Executor) executeDelete(result *Result, d pendingDelete, writeSet map[string]bool) {
	if writeSet[d.path] {
		result.record(ActionResult{
			Key: d.key, Kind: d.kind, TargetPath: d.path,
			Status: StatusSkipped, Message: "path was rewritten by this plan; delete skipped",
		})
		return
	}

	var err error
	if d.dirItem {
		if e.Dirs != nil {
			err = e.Dirs.RemoveDir(d.key, d.path)
		} else {
			err = e.FS.RemoveAll(d.path)
		}
	} else {
		err = e.FS.Remove(d.path)
		if err != nil && os.IsNotExist(err) {
			// Already gone; the desired state holds.
			err = nil
		}
	}
	if err != nil {
		e.Logger.Warn().Err(err).Str("path", d.path).Msg("delete failed")
		result.record(ActionResult{
			Key: d.key, Kind: d.kind, TargetPath: d.path,
			Status: StatusFailed, Message: err.Error(),
		})
		return
	}

	e.Ledger.Forget(d.path)
	if !d.cleanupOnly {
		e.Registry.Remove(d.key)
	}

	e.Logger.Debug().Stringer("key", d.key).Str("path", d.path).Msg("deleted target")
	result.record(ActionResult{
		Key: d.key, Kind: d.kind, TargetPath: d.path, Status: StatusSuccess,
	})
}
