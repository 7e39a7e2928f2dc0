// Package ledger maintains the per-installed-file ownership record used to
// decide what agentsync may safely overwrite or delete. Every file the
// engine writes gets an entry holding the checksum of the written content;
// classification compares that against the live file to tell engine-owned
// files apart from user edits.
package ledger

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

// Ownership classifies who controls the current content of a tracked file.
type Ownership string

const (
	// OwnerEngine means the file is byte-identical to what the engine last wrote.
	OwnerEngine Ownership = "engine"

	// OwnerUser means the file was never written by the engine.
	OwnerUser Ownership = "user"

	// OwnerEngineModified means the engine wrote the file but it has been
	// edited since.
	OwnerEngineModified Ownership = "engine-modified"
)

// TrackedFile is one ledger entry: the engine's record of a file it wrote.
type TrackedFile struct {
	// Path is relative to the installation root the ledger belongs to.
	Path string `json:"path"`

	// Checksum is the digest of the content the engine last wrote.
	Checksum string `json:"checksum"`

	Ownership        Ownership `json:"ownership"`
	InstalledVersion string    `json:"installedVersion"`

	// BaseChecksum is the digest of the file found at the path before the
	// first install, when one existed. Optional.
	BaseChecksum string `json:"baseChecksum,omitempty"`

	// SourceTimestamp is the modification time of the source item at
	// install time. Optional.
	SourceTimestamp *time.Time `json:"sourceTimestamp,omitempty"`

	InstalledAt *time.Time `json:"installedAt,omitempty"`
}

// Ledger is the persisted set of tracked files, keyed by relative path.
type Ledger struct {
	Version string                 `json:"version"`
	Files   map[string]TrackedFile `json:"files"`
}

// New returns an empty ledger.
func New(version string) *Ledger {
	return &Ledger{Version: version, Files: make(map[string]TrackedFile)}
}

// Get returns the entry for path, if tracked.
func (l *Ledger) Get(path string) (TrackedFile, bool) {
	f, ok := l.Files[path]
	return f, ok
}

// Track records that the engine wrote content with the given checksum to
// path, replacing any previous entry for it.
func (l *Ledger) Track(path, checksum, version string) {
	now := time.Now().UTC()
	entry := TrackedFile{
		Path:             path,
		Checksum:         checksum,
		Ownership:        OwnerEngine,
		InstalledVersion: version,
		InstalledAt:      &now,
	}
	if prev, ok := l.Files[path]; ok {
		entry.BaseChecksum = prev.BaseChecksum
	}
	l.Files[path] = entry
}

// Forget drops the entry for path, if present.
func (l *Ledger) Forget(path string) {
	delete(l.Files, path)
}

// Paths returns all tracked paths in sorted order.
func (l *Ledger) Paths() []string {
	out := make([]string, 0, len(l.Files))
	for p := range l.Files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Load reads a ledger document from path. A missing file yields an empty
// ledger; a corrupt one is an error.
func Load(filesystem types.FS, path string) (*Ledger, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(""), nil
		}
		return nil, errors.Wrapf(err, errors.ErrLedgerLoad, "failed to read ledger from %s", path)
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrapf(err, errors.ErrLedgerLoad, "failed to parse ledger at %s", path)
	}
	if l.Files == nil {
		l.Files = make(map[string]TrackedFile)
	}
	return &l, nil
}

// Save writes the ledger document to path, creating parent directories.
func Save(filesystem types.FS, path string, l *Ledger) error {
	if err := filesystem.MkdirAll(filepath.Dir(path), fs.FileMode(0755)); err != nil {
		return errors.Wrapf(err, errors.ErrLedgerSave, "failed to create ledger directory for %s", path)
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrLedgerSave, "failed to encode ledger")
	}
	if err := filesystem.WriteFile(path, append(data, '\n'), fs.FileMode(0644)); err != nil {
		return errors.Wrapf(err, errors.ErrLedgerSave, "failed to write ledger to %s", path)
	}
	return nil
}
