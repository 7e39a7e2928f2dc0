package commands

import (
	"strings"

	"github.com/agentsync-dev/agentsync/pkg/errors"
	"github.com/agentsync-dev/agentsync/pkg/ledger"
	"github.com/agentsync-dev/agentsync/pkg/reconcile"
	"github.com/agentsync-dev/agentsync/pkg/registry"
	"github.com/agentsync-dev/agentsync/pkg/settings"
	"github.com/agentsync-dev/agentsync/pkg/source"
	"github.com/agentsync-dev/agentsync/pkg/types"
)

// Apply plans and executes in one pass. Conflict resolutions arrive as
// "provider/type/item@scope=strategy" specs; an unresolved conflict rejects
// the whole run before any write.
func (e *Env) Apply(resolutionSpecs []string) (*reconcile.Result, error) {
	ctx, err := e.buildPlan()
	if err != nil {
		return nil, err
	}
	resolutions, err := ParseResolutions(ctx.plan, resolutionSpecs)
	if err != nil {
		return nil, err
	}

	led, err := ledger.Load(e.FS, e.Paths.LedgerPath())
	if err != nil {
		return nil, err
	}

	exec := reconcile.NewExecutor(e.FS, led, ctx.registry)
	exec.Version = e.Version
	exec.SkillDirs = ctx.inventory.SkillDirs
	exec.Dirs = source.NewDirInstaller(e.FS)
	exec.Merger = settings.NewMerger()
	for _, a := range ctx.plan.Actions {
		key := a.Common().Key
		if key.Type.DirectoryBased() {
			continue
		}
		for _, item := range ctx.inventory.Items {
			if item.Name == key.Item && item.Type == key.Type {
				exec.Content[key] = item.ContentFor(key.Provider)
				break
			}
		}
	}

	result, err := exec.Execute(ctx.plan, resolutions)
	if err != nil {
		return nil, err
	}

	if err := registry.Save(e.FS, e.Paths.RegistryPath(), ctx.registry); err != nil {
		return nil, err
	}
	if err := ledger.Save(e.FS, e.Paths.LedgerPath(), led); err != nil {
		return nil, err
	}

	e.Logger.Info().
		Int("installed", result.Installed).
		Int("skipped", result.Skipped).
		Int("deleted", result.Deleted).
		Int("failed", result.Failed).
		Msg("apply finished")
	return result, nil
}

// ParseResolutions turns "key=strategy" specs into a resolution map. The key
// is the provider/type/item@scope form a plan prints; strategy is one of
// overwrite, keep or smart-merge. Specs naming a key with no conflict in the
// plan are rejected so typos surface instead of silently doing nothing.
func ParseResolutions(plan *reconcile.Plan, specs []string) (map[types.InstallKey]reconcile.Resolution, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	byName := make(map[string]types.InstallKey)
	for _, c := range plan.Conflicts() {
		byName[c.Key.String()] = c.Key
	}

	out := make(map[types.InstallKey]reconcile.Resolution, len(specs))
	for _, spec := range specs {
		name, strategy, found := strings.Cut(spec, "=")
		if !found {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"invalid resolution %q, expected key=strategy", spec)
		}
		key, ok := byName[name]
		if !ok {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"resolution %q does not match any conflict in the plan", name)
		}
		var kind reconcile.ResolutionKind
		switch strategy {
		case "overwrite":
			kind = reconcile.ResolutionOverwrite
		case "keep":
			kind = reconcile.ResolutionKeep
		case "smart-merge", "merge":
			kind = reconcile.ResolutionSmartMerge
		default:
			return nil, errors.Newf(errors.ErrResolutionInvalid,
				"unknown resolution strategy %q for %s", strategy, name)
		}
		out[key] = reconcile.Resolution{Kind: kind}
	}
	return out, nil
}
