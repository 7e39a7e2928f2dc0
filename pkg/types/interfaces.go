package types

import (
	"io/fs"
)

// FS is the filesystem interface required for agentsync operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error

	// Optional operations - implementations should check for support
	// For testing, Lstat can fall back to Stat
	Lstat(name string) (fs.FileInfo, error)
}

// PathResolver maps (item, type, provider, scope) to a concrete target path.
// It is a pure table lookup so the planner stays free of I/O.
type PathResolver interface {
	// ResolvePath returns the target path for an item, or ok=false when the
	// provider does not support the item type at that scope.
	ResolvePath(item string, t ItemType, provider string, global bool) (path string, ok bool)

	// Supports reports whether the provider handles the item type at all.
	Supports(provider string, t ItemType) bool
}

// DirectoryInstaller installs and removes directory-based items (skills).
// The executor delegates to it for any action whose type is directory-based.
type DirectoryInstaller interface {
	InstallDir(key InstallKey, sourceDir, targetDir string) error
	RemoveDir(key InstallKey, targetDir string) error
}

// SettingsMerger performs the selective merge for shared single-file
// settings targets: engine-managed sections update, user additions are
// preserved. Byte-level merge policy lives entirely behind this interface.
type SettingsMerger interface {
	Merge(existing, incoming []byte) ([]byte, error)
}
