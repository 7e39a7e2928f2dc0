package reconcile

import (
	"sort"

	"github.com/agentsync-dev/agentsync/pkg/checksum"
	"github.com/agentsync-dev/agentsync/pkg/registry"
	"github.com/agentsync-dev/agentsync/pkg/types"
)

// Rename is a migration hint from a prior kit manifest: the item named
// FromItem is now called ToItem.
type Rename struct {
	Type     types.ItemType `json:"type"`
	FromItem string         `json:"fromItem"`
	ToItem   string         `json:"toItem"`
}

// Manifest carries rename/migration hints into a reconcile run.
type Manifest struct {
	Renames []Rename `json:"renames,omitempty"`
}

// Input is everything the planner needs. It is a pure snapshot: the planner
// performs no I/O and produces the same plan for identical inputs.
type Input struct {
	// Items is the fresh state of every source item.
	Items []types.SourceItemState

	// Registry is the installation history snapshot.
	Registry *registry.Registry

	// Targets maps each referenced target path to its live state. Paths
	// absent from the map are treated as non-existent.
	Targets map[string]types.TargetFileState

	// Providers is the set of provider × scope combinations to plan for.
	Providers []types.ProviderConfig

	// Resolver supplies provider capability and path rules.
	Resolver types.PathResolver

	// Manifest optionally carries rename hints from a prior kit version.
	Manifest *Manifest

	// Force overrides conflict and deletion-respect decisions.
	Force bool
}

// Reconcile produces the action plan for one run. Decision rules, in order,
// for each supported item × provider combination:
//
//  1. no registry record, target absent            -> install
//  2. no registry record, target present           -> conflict (update when forced)
//  3. record exists, target missing                -> skip (install when forced)
//  4. record exists, target untouched since install:
//     source unchanged -> skip, source changed -> update
//  5. record exists, target modified by user       -> conflict (update when forced)
//
// A checksum unknown on either side of a comparison always takes the
// non-equal branch: sameness is never asserted without evidence.
func Reconcile(in Input) *Plan {
	items := sortedItems(in.Items)
	providers := sortedProviders(in.Providers)
	renames := renameIndex(in.Manifest, items)

	var actions []Action
	for _, pc := range providers {
		for _, item := range items {
			if in.Resolver == nil || !in.Resolver.Supports(pc.Provider, item.Type) {
				continue
			}
			path, ok := in.Resolver.ResolvePath(item.Name, item.Type, pc.Provider, pc.Global)
			if !ok {
				continue
			}
			actions = append(actions, planOne(in, item, pc, path, renames))
		}
	}

	actions = append(actions, planOrphans(in, items, renames)...)
	return NewPlan(actions)
}

// planOne decides the action for a single item × provider combination.
func planOne(in Input, item types.SourceItemState, pc types.ProviderConfig, path string, renames map[renameKey]string) Action {
	key := types.InstallKey{Item: item.Name, Type: item.Type, Provider: pc.Provider, Global: pc.Global}
	srcSum := checksum.Normalize(item.ChecksumFor(pc.Provider))

	rec, hasRec := in.Registry.Find(key)

	// Rename migration: when the item has no record under its new name but
	// the manifest maps an old name to it, plan against the old record and
	// schedule its path for cleanup.
	var prevItem, prevPath string
	var cleanup []string
	if !hasRec {
		if from, ok := renames[renameKey{item.Type, item.Name}]; ok {
			oldKey := key
			oldKey.Item = from
			if oldRec, ok := in.Registry.Find(oldKey); ok {
				prevItem = from
				prevPath = oldRec.TargetPath
				if oldRec.TargetPath != path {
					cleanup = append(cleanup, oldRec.TargetPath)
				}
			}
		}
	}

	// Target path migration: the record's path no longer matches the
	// provider's current rules. The installed file lives at the old path,
	// so ownership rules are evaluated there; the new write goes to the new
	// path and the old one is cleaned up after it succeeds.
	migrating := hasRec && rec.TargetPath != path
	statePath := path
	if migrating {
		prevPath = rec.TargetPath
		cleanup = append(cleanup, rec.TargetPath)
		statePath = rec.TargetPath
	}

	ts := in.Targets[statePath]
	currentTarget := checksum.Unknown
	if ts.Exists {
		currentTarget = checksum.Normalize(ts.Checksum)
	}

	meta := Meta{
		Key:        key,
		TargetPath: path,
		Checksums: Checksums{
			Source:        srcSum,
			CurrentTarget: currentTarget,
		},
	}
	if hasRec {
		meta.Checksums.RegisteredSource = checksum.Normalize(rec.SourceChecksum)
		meta.Checksums.RegisteredTarget = checksum.Normalize(rec.TargetChecksum)
	}

	switch {
	case !hasRec && !ts.Exists:
		meta.Reason = "not installed yet"
		return Install{Meta: meta, PreviousItem: prevItem, PreviousPath: prevPath, CleanupPaths: cleanup}

	case !hasRec && ts.Exists:
		if in.Force {
			meta.Reason = "unmanaged file overwritten (forced)"
			return Update{Meta: meta, PreviousItem: prevItem, PreviousPath: prevPath, CleanupPaths: cleanup}
		}
		meta.Reason = "unmanaged file already present"
		return Conflict{Meta: meta}

	case !ts.Exists:
		if in.Force {
			meta.Reason = "target missing; reinstalling (forced)"
			return Install{Meta: meta, PreviousItem: prevItem, PreviousPath: prevPath, CleanupPaths: cleanup}
		}
		meta.Reason = "target was deleted by user; respecting deletion"
		return Skip{Meta: meta}

	case checksum.Equal(currentTarget, rec.TargetChecksum):
		if migrating {
			meta.Reason = "target path changed"
			return Update{Meta: meta, PreviousItem: prevItem, PreviousPath: prevPath, CleanupPaths: cleanup}
		}
		if checksum.Equal(srcSum, rec.SourceChecksum) {
			meta.Reason = "unchanged"
			return Skip{Meta: meta}
		}
		meta.Reason = "source changed"
		return Update{Meta: meta, PreviousItem: prevItem, PreviousPath: prevPath, CleanupPaths: cleanup}

	default:
		if in.Force {
			meta.Reason = "target modified by user; overwritten (forced)"
			return Update{Meta: meta, PreviousItem: prevItem, PreviousPath: prevPath, CleanupPaths: cleanup}
		}
		meta.Reason = "target modified by user since install"
		return Conflict{Meta: meta}
	}
}

// planOrphans emits delete actions for registry records whose item left the
// source. Directory-based item types are excluded: their lifecycle belongs
// to the directory installer, not per-file orphan detection. Records whose
// item is the old side of a rename are excluded too, since the rename's
// cleanup already removes the old path.
func planOrphans(in Input, items []types.SourceItemState, renames map[renameKey]string) []Action {
	selected := make(map[types.ProviderConfig]bool, len(in.Providers))
	for _, pc := range in.Providers {
		selected[pc] = true
	}

	present := make(map[renameKey]bool, len(items))
	for _, item := range items {
		present[renameKey{item.Type, item.Name}] = true
	}

	renamedFrom := make(map[renameKey]bool, len(renames))
	for to, from := range renames {
		renamedFrom[renameKey{to.itemType, from}] = true
	}

	var deletes []Action
	for _, rec := range in.Registry.Sorted() {
		if rec.Type.DirectoryBased() {
			continue
		}
		if !selected[types.ProviderConfig{Provider: rec.Provider, Global: rec.Global}] {
			continue
		}
		k := renameKey{rec.Type, rec.Item}
		if present[k] || renamedFrom[k] {
			continue
		}
		deletes = append(deletes, Delete{Meta: Meta{
			Key:        rec.Key(),
			TargetPath: rec.TargetPath,
			Reason:     "item removed from source",
			Checksums: Checksums{
				RegisteredSource: checksum.Normalize(rec.SourceChecksum),
				RegisteredTarget: checksum.Normalize(rec.TargetChecksum),
			},
		}})
	}
	return deletes
}

type renameKey struct {
	itemType types.ItemType
	item     string
}

// renameIndex maps each renamed-to item to its previous name, dropping
// hints whose new item is not actually present in the source.
func renameIndex(m *Manifest, items []types.SourceItemState) map[renameKey]string {
	out := make(map[renameKey]string)
	if m == nil {
		return out
	}
	present := make(map[renameKey]bool, len(items))
	for _, item := range items {
		present[renameKey{item.Type, item.Name}] = true
	}
	for _, r := range m.Renames {
		k := renameKey{r.Type, r.ToItem}
		if present[k] {
			out[k] = r.FromItem
		}
	}
	return out
}

func sortedItems(items []types.SourceItemState) []types.SourceItemState {
	out := make([]types.SourceItemState, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortedProviders(pcs []types.ProviderConfig) []types.ProviderConfig {
	out := make([]types.ProviderConfig, len(pcs))
	copy(out, pcs)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return !out[i].Global && out[j].Global
	})
	return out
}
