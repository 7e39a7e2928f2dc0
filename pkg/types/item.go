package types

import "fmt"

// ItemType identifies the kind of configuration artifact an item is.
type ItemType string

const (
	ItemTypeAgent   ItemType = "agent"
	ItemTypeCommand ItemType = "command"
	ItemTypeSkill   ItemType = "skill"
	ItemTypeConfig  ItemType = "config"
	ItemTypeRules   ItemType = "rules"
)

// AllItemTypes lists every item type in stable order.
var AllItemTypes = []ItemType{
	ItemTypeAgent,
	ItemTypeCommand,
	ItemTypeSkill,
	ItemTypeConfig,
	ItemTypeRules,
}

// IsValid reports whether t is one of the known item types.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeAgent, ItemTypeCommand, ItemTypeSkill, ItemTypeConfig, ItemTypeRules:
		return true
	}
	return false
}

// DirectoryBased reports whether items of this type install as whole
// directories rather than single files. Directory-based items are owned by
// the directory installer and are excluded from per-file orphan scanning.
func (t ItemType) DirectoryBased() bool {
	return t == ItemTypeSkill
}

// MergeBased reports whether items of this type target a shared single file
// whose contents are selectively merged instead of overwritten.
func (t ItemType) MergeBased() bool {
	return t == ItemTypeConfig
}

// InstallKey uniquely identifies one installation: an item of a given type
// installed for one provider at one scope. It is the lookup key for both the
// installation registry and conflict resolutions.
type InstallKey struct {
	Item     string   `json:"item"`
	Type     ItemType `json:"type"`
	Provider string   `json:"provider"`
	Global   bool     `json:"global"`
}

// String renders the key in the provider/type/item[@global] form used in
// logs and error messages.
func (k InstallKey) String() string {
	scope := "project"
	if k.Global {
		scope = "global"
	}
	return fmt.Sprintf("%s/%s/%s@%s", k.Provider, k.Type, k.Item, scope)
}

// ProviderConfig selects one provider at one scope for a reconcile run.
type ProviderConfig struct {
	Provider string `json:"provider"`
	Global   bool   `json:"global"`
}

// SourceItemState is the freshly computed state of one source item at the
// start of a reconcile run. It is never persisted; every run rebuilds it
// from the canonical source directory.
type SourceItemState struct {
	Name           string
	Type           ItemType
	SourceChecksum string

	// ConvertedChecksums holds the checksum of the item's content after
	// per-provider format conversion, keyed by provider name. Providers
	// that take the content verbatim map to SourceChecksum.
	ConvertedChecksums map[string]string

	// SourceContent is the raw canonical content, written verbatim for
	// providers with no conversion. Directory-based items leave it nil.
	SourceContent []byte

	// ConvertedContent holds the converted bytes per provider. The planner
	// never reads this; it exists so the executor can write without
	// re-running conversion.
	ConvertedContent map[string][]byte
}

// ChecksumFor returns the effective source checksum for a provider,
// falling back to the unconverted checksum when no conversion applies.
func (s *SourceItemState) ChecksumFor(provider string) string {
	if c, ok := s.ConvertedChecksums[provider]; ok {
		return c
	}
	return s.SourceChecksum
}

// ContentFor returns the bytes to install for a provider, falling back to
// the raw source content when no conversion applies.
func (s *SourceItemState) ContentFor(provider string) []byte {
	if b, ok := s.ConvertedContent[provider]; ok {
		return b
	}
	return s.SourceContent
}

// TargetFileState is a snapshot of one on-disk target path taken before
// planning. Checksum is empty when the path does not exist or could not be
// read as a regular file; callers must treat that as unknown, not as proof
// of a mismatch.
type TargetFileState struct {
	Path     string
	Exists   bool
	Checksum string
}
