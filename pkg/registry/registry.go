// Package registry stores the durable record of every (item, type, provider,
// scope) installation agentsync has ever made, together with the checksums
// that were true at install time. The reconciler diffs current source and
// live disk state against this memory; a missing record is what turns a
// decision into an install instead of an update, skip, or conflict.
//
// The registry is treated as an immutable snapshot during planning. The
// executor applies explicit mutations (Upsert/Remove) and persistence is a
// thin Load/Save at the process boundary.
package registry

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/agentsync-dev/agentsync/pkg/errors"
	"github.com/agentsync-dev/agentsync/pkg/types"
)

// CurrentVersion is the registry document format version.
const CurrentVersion = 1

// Record is one installation ever made: the target it produced and the
// checksums observed when it was written.
type Record struct {
	Item     string         `json:"item"`
	Type     types.ItemType `json:"type"`
	Provider string         `json:"provider"`
	Global   bool           `json:"global"`

	TargetPath string `json:"targetPath"`

	// SourceChecksum is the digest of the (converted) source content at the
	// time of install.
	SourceChecksum string `json:"sourceChecksum"`

	// TargetChecksum is the digest of the bytes that install actually wrote.
	TargetChecksum string `json:"targetChecksum"`

	InstalledAt time.Time `json:"installedAt"`

	// Metadata carries arbitrary provider bookkeeping.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Key returns the record's installation key.
func (r Record) Key() types.InstallKey {
	return types.InstallKey{Item: r.Item, Type: r.Type, Provider: r.Provider, Global: r.Global}
}

// Registry is the full installation history document.
type Registry struct {
	Version       int      `json:"version"`
	Installations []Record `json:"installations"`
}

// New returns an empty registry at the current format version.
func New() *Registry {
	return &Registry{Version: CurrentVersion}
}

// Find returns the record for key, if one exists.
func (r *Registry) Find(key types.InstallKey) (Record, bool) {
	for _, rec := range r.Installations {
		if rec.Key() == key {
			return rec, true
		}
	}
	return Record{}, false
}

// Upsert inserts or replaces the record for rec.Key().
func (r *Registry) Upsert(rec Record) {
	for i, existing := range r.Installations {
		if existing.Key() == rec.Key() {
			r.Installations[i] = rec
			return
		}
	}
	r.Installations = append(r.Installations, rec)
}

// Remove drops the record for key, reporting whether one was present.
func (r *Registry) Remove(key types.InstallKey) bool {
	for i, rec := range r.Installations {
		if rec.Key() == key {
			r.Installations = append(r.Installations[:i], r.Installations[i+1:]...)
			return true
		}
	}
	return false
}

// Sorted returns the records ordered by (provider, global, type, item) so
// iteration order is stable across runs.
func (r *Registry) Sorted() []Record {
	out := make([]Record, len(r.Installations))
	copy(out, r.Installations)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		if a.Global != b.Global {
			return !a.Global
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Item < b.Item
	})
	return out
}

// Load reads and validates a registry document from path. A missing file
// yields an empty registry; a document that fails schema validation is an
// error so planning never proceeds from a corrupt history.
func Load(filesystem types.FS, path string) (*Registry, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.Wrapf(err, errors.ErrRegistryLoad, "failed to read registry from %s", path)
	}

	if err := validateDocument(data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRegistrySchema, "registry at %s failed schema validation", path)
	}

	var r Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRegistryLoad, "failed to parse registry at %s", path)
	}
	return &r, nil
}

// Save writes the registry document to path, creating parent directories.
func Save(filesystem types.FS, path string, r *Registry) error {
	if err := filesystem.MkdirAll(filepath.Dir(path), fs.FileMode(0755)); err != nil {
		return errors.Wrapf(err, errors.ErrRegistrySave, "failed to create registry directory for %s", path)
	}
	doc := *r
	if doc.Installations == nil {
		// Keep the persisted document schema-valid: installations is a
		// required array, never null.
		doc.Installations = []Record{}
	}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrRegistrySave, "failed to encode registry")
	}
	if err := filesystem.WriteFile(path, append(data, '\n'), fs.FileMode(0644)); err != nil {
		return errors.Wrapf(err, errors.ErrRegistrySave, "failed to write registry to %s", path)
	}
	return nil
}
