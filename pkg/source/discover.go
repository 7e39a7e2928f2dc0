package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentsync-dev/agentsync/pkg/checksum"
	"github.com/agentsync-dev/agentsync/pkg/errors"
	"github.com/agentsync-dev/agentsync/pkg/logging"
	"github.com/agentsync-dev/agentsync/pkg/providers"
	"github.com/agentsync-dev/agentsync/pkg/types"
)

// ConfigFileName is the canonical settings file in the source root.
const ConfigFileName = "config.yaml"

// markdownDirs maps each per-file source subdirectory to the item type it
// contains.
var markdownDirs = []struct {
	dir      string
	itemType types.ItemType
}{
	{"agents", types.ItemTypeAgent},
	{"commands", types.ItemTypeCommand},
	{"rules", types.ItemTypeRules},
}

// Inventory is the result of one source scan.
type Inventory struct {
	Items []types.SourceItemState

	// SkillDirs maps each skill name to its source directory, for the
	// directory installer.
	SkillDirs map[string]string
}

// Scanner discovers items under one source root.
type Scanner struct {
	FS     types.FS
	Root   string
	Logger zerolog.Logger
}

// NewScanner returns a scanner over the given root.
func NewScanner(filesystem types.FS, root string) *Scanner {
	return &Scanner{
		FS:     filesystem,
		Root:   root,
		Logger: logging.GetLogger("source"),
	}
}

// Scan walks the source root and returns every discovered item with its
// per-provider converted checksums and content. Missing subdirectories are
// not an error; a malformed item is.
func (s *Scanner) Scan() (*Inventory, error) {
	inv := &Inventory{SkillDirs: make(map[string]string)}

	for _, md := range markdownDirs {
		items, err := s.scanMarkdownDir(md.dir, md.itemType)
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, items...)
	}

	skills, err := s.scanSkills(inv.SkillDirs)
	if err != nil {
		return nil, err
	}
	inv.Items = append(inv.Items, skills...)

	cfg, ok, err := s.scanConfig()
	if err != nil {
		return nil, err
	}
	if ok {
		inv.Items = append(inv.Items, cfg)
	}

	sort.Slice(inv.Items, func(i, j int) bool {
		if inv.Items[i].Type != inv.Items[j].Type {
			return inv.Items[i].Type < inv.Items[j].Type
		}
		return inv.Items[i].Name < inv.Items[j].Name
	})

	s.Logger.Debug().Int("items", len(inv.Items)).Str("root", s.Root).Msg("source scan complete")
	return inv, nil
}

func (s *Scanner) scanMarkdownDir(dir string, itemType types.ItemType) ([]types.SourceItemState, error) {
	entries, err := s.FS.ReadDir(filepath.Join(s.Root, dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrSourceNotFound, "failed to read source directory %s", dir)
	}

	var items []types.SourceItemState
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(s.Root, dir, entry.Name())
		raw, err := s.FS.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSourceInvalid, "failed to read %s", path)
		}

		fm, body, err := SplitFrontmatter(raw)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSourceInvalid, "invalid frontmatter in %s", path)
		}
		name := fm.Name
		if name == "" {
			name = strings.TrimSuffix(entry.Name(), ".md")
		}

		item := types.SourceItemState{
			Name:           name,
			Type:           itemType,
			SourceChecksum: checksum.Of(raw),
			SourceContent:  raw,
		}
		doc := providers.Document{
			Name:        name,
			Description: fm.Description,
			Model:       fm.Model,
			Tools:       fm.Tools,
			Raw:         raw,
			Body:        body,
		}
		if err := renderConversions(&item, itemType, doc, raw); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Scanner) scanSkills(skillDirs map[string]string) ([]types.SourceItemState, error) {
	entries, err := s.FS.ReadDir(filepath.Join(s.Root, "skills"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrSourceNotFound, "failed to read skills directory")
	}

	var items []types.SourceItemState
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.Root, "skills", entry.Name())
		sum, err := HashDir(s.FS, dir)
		if err != nil {
			return nil, err
		}
		items = append(items, types.SourceItemState{
			Name:           entry.Name(),
			Type:           types.ItemTypeSkill,
			SourceChecksum: sum,
		})
		skillDirs[entry.Name()] = dir
	}
	return items, nil
}

func (s *Scanner) scanConfig() (types.SourceItemState, bool, error) {
	path := filepath.Join(s.Root, ConfigFileName)
	raw, err := s.FS.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.SourceItemState{}, false, nil
		}
		return types.SourceItemState{}, false, errors.Wrapf(err, errors.ErrSourceInvalid, "failed to read %s", path)
	}

	item := types.SourceItemState{
		Name:           "config",
		Type:           types.ItemTypeConfig,
		SourceChecksum: checksum.Of(raw),
		SourceContent:  raw,
	}
	if err := renderConversions(&item, types.ItemTypeConfig, providers.Document{Name: "config", Raw: raw}, raw); err != nil {
		return types.SourceItemState{}, false, err
	}
	return item, true, nil
}

// renderConversions fills the per-provider converted content and checksums
// for every provider that takes the item in a non-verbatim format. Verbatim
// providers are left out so ChecksumFor falls back to the source checksum.
func renderConversions(item *types.SourceItemState, itemType types.ItemType, doc providers.Document, raw []byte) error {
	for _, p := range providers.Names() {
		rendered, err := providers.Convert(p, itemType, doc)
		if err != nil {
			return errors.Wrapf(err, errors.ErrConvertFailed, "failed to render %s for %s", item.Name, p)
		}
		if bytes.Equal(rendered, raw) {
			continue
		}
		if item.ConvertedChecksums == nil {
			item.ConvertedChecksums = make(map[string]string)
			item.ConvertedContent = make(map[string][]byte)
		}
		item.ConvertedChecksums[p] = checksum.Of(rendered)
		item.ConvertedContent[p] = rendered
	}
	return nil
}

// HashDir computes a stable digest over a directory tree: the sorted
// relative paths of all files, each paired with its content digest. Any
// rename, addition, removal or edit inside the tree changes the result.
// Both source skill directories and their installed targets hash the same
// way, so an untouched installation compares equal.
func HashDir(filesystem types.FS, dir string) (string, error) {
	var manifest bytes.Buffer

	var walk func(rel string) error
	walk = func(rel string) error {
		entries, err := filesystem.ReadDir(filepath.Join(dir, rel))
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read directory %s", filepath.Join(dir, rel))
		}
		for _, entry := range entries {
			childRel := filepath.Join(rel, entry.Name())
			if entry.IsDir() {
				if err := walk(childRel); err != nil {
					return err
				}
				continue
			}
			content, err := filesystem.ReadFile(filepath.Join(dir, childRel))
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", filepath.Join(dir, childRel))
			}
			fmt.Fprintf(&manifest, "%s\x00%s\n", filepath.ToSlash(childRel), checksum.Of(content))
		}
		return nil
	}
	if err := walk(""); err != nil {
		return "", err
	}
	return checksum.Of(manifest.Bytes()), nil
}
