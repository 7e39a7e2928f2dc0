// Package commands implements the operations behind the CLI: plan, apply,
// status and uninstall. Each operation wires the source scanner, registry,
// ledger, provider table and reconciler together and handles persistence at
// the process boundary; the CLI layer stays a thin flag parser.
package commands

import (
	"github.com/rs/zerolog"

	"github.com/agentsync-dev/agentsync/pkg/checksum"
	"github.com/agentsync-dev/agentsync/pkg/config"
	"github.com/agentsync-dev/agentsync/pkg/logging"
	"github.com/agentsync-dev/agentsync/pkg/paths"
	"github.com/agentsync-dev/agentsync/pkg/providers"
	"github.com/agentsync-dev/agentsync/pkg/reconcile"
	"github.com/agentsync-dev/agentsync/pkg/registry"
	"github.com/agentsync-dev/agentsync/pkg/source"
	"github.com/agentsync-dev/agentsync/pkg/types"
)

// Env bundles the collaborators every command operates on.
type Env struct {
	FS      types.FS
	Paths   paths.Paths
	Config  *config.Config
	Version string
	Logger  zerolog.Logger
}

// NewEnv returns a command environment over the given collaborators.
func NewEnv(filesystem types.FS, p paths.Paths, cfg *config.Config, version string) *Env {
	return &Env{
		FS:      filesystem,
		Paths:   p,
		Config:  cfg,
		Version: version,
		Logger:  logging.GetLogger("commands"),
	}
}

// sourceRoot honors the config override before the default project layout.
func (e *Env) sourceRoot() string {
	if e.Config.SourceDir != "" {
		return e.Config.SourceDir
	}
	return e.Paths.SourceRoot()
}

func (e *Env) providerConfigs() []types.ProviderConfig {
	out := make([]types.ProviderConfig, 0, len(e.Config.Providers))
	for _, p := range e.Config.Providers {
		out = append(out, types.ProviderConfig{Provider: p, Global: e.Config.Global})
	}
	return out
}

// planContext carries everything a planning pass produced, so apply can
// execute without re-scanning.
type planContext struct {
	plan      *reconcile.Plan
	inventory *source.Inventory
	registry  *registry.Registry
	resolver  *providers.Table
}

// buildPlan runs discovery, snapshots target state and reconciles.
func (e *Env) buildPlan() (*planContext, error) {
	inv, err := source.NewScanner(e.FS, e.sourceRoot()).Scan()
	if err != nil {
		return nil, err
	}
	reg, err := registry.Load(e.FS, e.Paths.RegistryPath())
	if err != nil {
		return nil, err
	}
	manifest, err := source.LoadManifest(e.FS, e.sourceRoot())
	if err != nil {
		return nil, err
	}

	resolver := providers.NewTable(e.Paths.ProjectRoot(), e.Paths.HomeDir())
	pcs := e.providerConfigs()
	targets := e.snapshotTargets(inv.Items, reg, resolver, pcs)

	plan := reconcile.Reconcile(reconcile.Input{
		Items:     inv.Items,
		Registry:  reg,
		Targets:   targets,
		Providers: pcs,
		Resolver:  resolver,
		Manifest:  manifest,
		Force:     e.Config.Force,
	})

	e.Logger.Info().
		Int("actions", len(plan.Actions)).
		Int("conflicts", plan.Summary.Conflict).
		Msg("plan built")
	return &planContext{plan: plan, inventory: inv, registry: reg, resolver: resolver}, nil
}

// snapshotTargets reads the live state of every path the planner might
// consult: resolved paths for current items, recorded paths for everything
// in the registry (migrations and orphans are judged at the recorded path).
func (e *Env) snapshotTargets(items []types.SourceItemState, reg *registry.Registry, resolver *providers.Table, pcs []types.ProviderConfig) map[string]types.TargetFileState {
	targets := make(map[string]types.TargetFileState)

	snapshot := func(path string, dirItem bool) {
		if _, done := targets[path]; done {
			return
		}
		info, err := e.FS.Stat(path)
		if err != nil {
			targets[path] = types.TargetFileState{Path: path}
			return
		}
		if dirItem && info.IsDir() {
			sum, err := source.HashDir(e.FS, path)
			if err != nil {
				// exists but unreadable: unknown checksum, never assumed equal
				targets[path] = types.TargetFileState{Path: path, Exists: true}
				return
			}
			targets[path] = types.TargetFileState{Path: path, Exists: true, Checksum: sum}
			return
		}
		if info.IsDir() {
			targets[path] = types.TargetFileState{Path: path, Exists: true}
			return
		}
		content, err := e.FS.ReadFile(path)
		if err != nil {
			targets[path] = types.TargetFileState{Path: path, Exists: true}
			return
		}
		targets[path] = types.TargetFileState{Path: path, Exists: true, Checksum: checksum.Of(content)}
	}

	for _, pc := range pcs {
		for _, item := range items {
			if path, ok := resolver.ResolvePath(item.Name, item.Type, pc.Provider, pc.Global); ok {
				snapshot(path, item.Type.DirectoryBased())
			}
		}
	}
	for _, rec := range reg.Sorted() {
		snapshot(rec.TargetPath, rec.Type.DirectoryBased())
	}
	return targets
}
