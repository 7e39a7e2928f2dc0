package providers

import (
	"path/filepath"
	"sort"

	"github.com/agentsync-dev/agentsync/pkg/types"
)

// Supported provider names.
const (
	Claude   = "claude"
	Cursor   = "cursor"
	Codex    = "codex"
	Windsurf = "windsurf"
	Copilot  = "copilot"
)

// pathRule describes where one item type lands for one provider. Either
// single names a fixed file under the provider root, or dir/ext build a
// per-item path. An empty ext marks a directory target.
type pathRule struct {
	dir     string
	ext     string
	single  string
	project bool
	global  bool
}

// providerSpec is the full capability description of one provider.
type providerSpec struct {
	// root is the provider's directory name, joined under the project root
	// or the home directory depending on scope.
	root  string
	rules map[types.ItemType]pathRule
}

var specs = map[string]providerSpec{
	Claude: {
		root: ".claude",
		rules: map[types.ItemType]pathRule{
			types.ItemTypeAgent:   {dir: "agents", ext: ".md", project: true, global: true},
			types.ItemTypeCommand: {dir: "commands", ext: ".md", project: true, global: true},
			types.ItemTypeSkill:   {dir: "skills", project: true, global: true},
			types.ItemTypeRules:   {dir: "rules", ext: ".md", project: true, global: true},
			types.ItemTypeConfig:  {single: "settings.json", project: true, global: true},
		},
	},
	Cursor: {
		root: ".cursor",
		rules: map[types.ItemType]pathRule{
			types.ItemTypeRules:  {dir: "rules", ext: ".mdc", project: true},
			types.ItemTypeConfig: {single: "settings.json", project: true},
		},
	},
	Codex: {
		root: ".codex",
		rules: map[types.ItemType]pathRule{
			types.ItemTypeCommand: {dir: "prompts", ext: ".toml", global: true},
			types.ItemTypeRules:   {dir: "rules", ext: ".toml", project: true, global: true},
			types.ItemTypeConfig:  {single: "config.toml", project: true, global: true},
		},
	},
	Windsurf: {
		root: ".windsurf",
		rules: map[types.ItemType]pathRule{
			types.ItemTypeRules:  {dir: "rules", ext: ".md", project: true, global: true},
			types.ItemTypeConfig: {single: "settings.json", project: true},
		},
	},
	Copilot: {
		root: ".github",
		rules: map[types.ItemType]pathRule{
			types.ItemTypeCommand: {dir: "prompts", ext: ".prompt.md", project: true},
			types.ItemTypeRules:   {single: "copilot-instructions.md", project: true},
		},
	},
}

// Names returns all supported provider names in sorted order.
func Names() []string {
	out := make([]string, 0, len(specs))
	for name := range specs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Known reports whether name is a supported provider.
func Known(name string) bool {
	_, ok := specs[name]
	return ok
}

// Table resolves target paths from the static provider rules. It implements
// types.PathResolver.
type Table struct {
	// ProjectRoot anchors project-scoped paths.
	ProjectRoot string

	// HomeDir anchors global-scoped paths.
	HomeDir string
}

// NewTable returns a resolver anchored at the given roots.
func NewTable(projectRoot, homeDir string) *Table {
	return &Table{ProjectRoot: projectRoot, HomeDir: homeDir}
}

// Supports reports whether the provider handles the item type at any scope.
func (t *Table) Supports(provider string, it types.ItemType) bool {
	spec, ok := specs[provider]
	if !ok {
		return false
	}
	_, ok = spec.rules[it]
	return ok
}

// ResolvePath returns the target path for one item, or ok=false when the
// provider does not support the item type at the requested scope.
func (t *Table) ResolvePath(item string, it types.ItemType, provider string, global bool) (string, bool) {
	spec, ok := specs[provider]
	if !ok {
		return "", false
	}
	rule, ok := spec.rules[it]
	if !ok {
		return "", false
	}
	if global && !rule.global {
		return "", false
	}
	if !global && !rule.project {
		return "", false
	}

	root := t.ProjectRoot
	if global {
		root = t.HomeDir
	}
	if rule.single != "" {
		return filepath.Join(root, spec.root, rule.single), true
	}
	return filepath.Join(root, spec.root, rule.dir, item+rule.ext), true
}
