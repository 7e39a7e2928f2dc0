package ledger

import "github.com/agentsync-dev/agentsync/pkg/checksum"

// Classification is the outcome of comparing a ledger entry with the file
// currently on disk.
type Classification string

const (
	// ClassEngine: the live file is exactly what the engine last wrote.
	ClassEngine Classification = "engine"

	// ClassUser: the path was never tracked by the engine.
	ClassUser Classification = "user"

	// ClassEngineModified: the engine wrote the file but it differs now.
	ClassEngineModified Classification = "engine-modified"

	// ClassRemoved: the entry is tracked but the file is gone. The caller
	// decides whether to preserve the deletion or drop the entry.
	ClassRemoved Classification = "removed"
)

// Classify applies the ownership decision table. entry is nil when the path
// was never tracked; liveChecksum is the digest of the file currently on
// disk, or empty/unknown when the file is missing or unreadable.
//
// Safe uninstall builds on this: only ClassEngine files are deleted
// unconditionally, everything else is preserved unless forced.
func Classify(entry *TrackedFile, liveChecksum string, exists bool) Classification {
	if entry == nil {
		return ClassUser
	}
	if !exists {
		return ClassRemoved
	}
	if checksum.Equal(entry.Checksum, liveChecksum) {
		return ClassEngine
	}
	return ClassEngineModified
}

// Deletable reports whether a file with the given classification may be
// removed. force extends deletion to user-modified files; never-tracked
// files are not deletable even under force.
func Deletable(c Classification, force bool) bool {
	switch c {
	case ClassEngine:
		return true
	case ClassEngineModified:
		return force
	default:
		return false
	}
}
