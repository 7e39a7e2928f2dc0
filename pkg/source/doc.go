// Package source discovers items in the canonical source directory and
// renders them into per-provider form. The layout it scans:
//
//	agents/<name>.md      agent definitions with YAML frontmatter
//	commands/<name>.md    command prompts with YAML frontmatter
//	rules/<name>.md       shared instruction files
//	skills/<name>/        directory-based skills, installed as whole trees
//	config.yaml           canonical settings, rendered per provider
//	manifest.yaml         optional rename hints from earlier versions
//
// Discovery produces fresh SourceItemState values on every call; nothing in
// this package is persisted.
package source
