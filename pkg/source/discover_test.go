package source_test

import (
	"testing"

	"github.com/agentsync-dev/agentsync/pkg/checksum"
	"github.com/agentsync-dev/agentsync/pkg/filesystem"
	"github.com/agentsync-dev/agentsync/pkg/providers"
	"github.com/agentsync-dev/agentsync/pkg/source"
	"github.com/agentsync-dev/agentsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "/src/.agentsync"

func seedSource(t *testing.T) *filesystem.MemoryFS {
	t.Helper()
	fs := filesystem.NewMemory()
	files := map[string]string{
		root + "/agents/reviewer.md":            "---\nname: code-reviewer\ndescription: Reviews diffs\n---\nReview carefully.\n",
		root + "/commands/deploy.md":            "---\ndescription: Ship it\n---\nRun the checklist.\n",
		root + "/rules/docker.md":               "Prefer multi-stage builds.\n",
		root + "/skills/pdf-tools/SKILL.md":     "---\nname: pdf-tools\n---\nExtract text.\n",
		root + "/skills/pdf-tools/scripts/x.py": "print('x')\n",
		root + "/config.yaml":                   "model: opus\n",
	}
	for path, content := range files {
		require.NoError(t, fs.WriteFile(path, []byte(content), 0644))
	}
	return fs
}

func findItem(t *testing.T, items []types.SourceItemState, name string, it types.ItemType) types.SourceItemState {
	t.Helper()
	for _, item := range items {
		if item.Name == name && item.Type == it {
			return item
		}
	}
	t.Fatalf("item %s/%s not found in %d items", it, name, len(items))
	return types.SourceItemState{}
}

func TestScanner_Scan(t *testing.T) {
	fs := seedSource(t)
	inv, err := source.NewScanner(fs, root).Scan()
	require.NoError(t, err)
	require.Len(t, inv.Items, 5)

	// frontmatter name overrides the filename
	agent := findItem(t, inv.Items, "code-reviewer", types.ItemTypeAgent)
	raw, _ := fs.ReadFile(root + "/agents/reviewer.md")
	assert.Equal(t, checksum.Of(raw), agent.SourceChecksum)

	// filename is the fallback name
	findItem(t, inv.Items, "deploy", types.ItemTypeCommand)
	findItem(t, inv.Items, "docker", types.ItemTypeRules)

	// skills register their source directory for the installer
	skill := findItem(t, inv.Items, "pdf-tools", types.ItemTypeSkill)
	assert.NotEmpty(t, skill.SourceChecksum)
	assert.Equal(t, root+"/skills/pdf-tools", inv.SkillDirs["pdf-tools"])

	findItem(t, inv.Items, "config", types.ItemTypeConfig)
}

func TestScanner_ConvertedContentPerProvider(t *testing.T) {
	fs := seedSource(t)
	inv, err := source.NewScanner(fs, root).Scan()
	require.NoError(t, err)

	// codex gets a TOML rendition with its own checksum
	cmd := findItem(t, inv.Items, "deploy", types.ItemTypeCommand)
	codexSum := cmd.ChecksumFor(providers.Codex)
	assert.NotEqual(t, cmd.SourceChecksum, codexSum)
	assert.Equal(t, checksum.Of(cmd.ContentFor(providers.Codex)), codexSum)

	// verbatim providers fall back to the raw source file
	assert.Equal(t, cmd.SourceChecksum, cmd.ChecksumFor(providers.Claude))
	raw, _ := fs.ReadFile(root + "/commands/deploy.md")
	assert.Equal(t, raw, cmd.ContentFor(providers.Claude))

	// config is rendered for every provider that takes it
	cfg := findItem(t, inv.Items, "config", types.ItemTypeConfig)
	assert.NotEqual(t, cfg.SourceChecksum, cfg.ChecksumFor(providers.Claude))
	assert.NotEqual(t, cfg.ChecksumFor(providers.Claude), cfg.ChecksumFor(providers.Codex))
	assert.JSONEq(t, `{"model":"opus"}`, string(cfg.ContentFor(providers.Claude)))
}

func TestScanner_SkillChecksumTracksContent(t *testing.T) {
	fs := seedSource(t)
	scanner := source.NewScanner(fs, root)

	first, err := scanner.Scan()
	require.NoError(t, err)
	before := findItem(t, first.Items, "pdf-tools", types.ItemTypeSkill).SourceChecksum

	// scanning again without changes is stable
	again, err := scanner.Scan()
	require.NoError(t, err)
	assert.Equal(t, before, findItem(t, again.Items, "pdf-tools", types.ItemTypeSkill).SourceChecksum)

	// editing a nested file changes the digest
	require.NoError(t, fs.WriteFile(root+"/skills/pdf-tools/scripts/x.py", []byte("print('y')\n"), 0644))
	changed, err := scanner.Scan()
	require.NoError(t, err)
	assert.NotEqual(t, before, findItem(t, changed.Items, "pdf-tools", types.ItemTypeSkill).SourceChecksum)
}

func TestScanner_EmptyRoot(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll(root, 0755))

	inv, err := source.NewScanner(fs, root).Scan()
	require.NoError(t, err)
	assert.Empty(t, inv.Items)
}

func TestScanner_MalformedItemFailsScan(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.WriteFile(root+"/agents/bad.md", []byte("---\nname: x\nnever closed"), 0644))

	_, err := source.NewScanner(fs, root).Scan()
	assert.Error(t, err)
}

func TestLoadManifest(t *testing.T) {
	fs := filesystem.NewMemory()

	t.Run("missing_is_nil", func(t *testing.T) {
		m, err := source.LoadManifest(fs, root)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("renames_parsed", func(t *testing.T) {
		doc := "renames:\n  - type: agent\n    from: reviewer\n    to: code-reviewer\n"
		require.NoError(t, fs.WriteFile(root+"/manifest.yaml", []byte(doc), 0644))

		m, err := source.LoadManifest(fs, root)
		require.NoError(t, err)
		require.NotNil(t, m)
		require.Len(t, m.Renames, 1)
		assert.Equal(t, types.ItemTypeAgent, m.Renames[0].Type)
		assert.Equal(t, "reviewer", m.Renames[0].FromItem)
		assert.Equal(t, "code-reviewer", m.Renames[0].ToItem)
	})

	t.Run("invalid_entry_rejected", func(t *testing.T) {
		doc := "renames:\n  - type: dragon\n    from: a\n    to: b\n"
		require.NoError(t, fs.WriteFile(root+"/manifest.yaml", []byte(doc), 0644))

		_, err := source.LoadManifest(fs, root)
		assert.Error(t, err)
	})
}

func TestDirInstaller(t *testing.T) {
	fs := seedSource(t)
	installer := source.NewDirInstaller(fs)
	key := types.InstallKey{Item: "pdf-tools", Type: types.ItemTypeSkill, Provider: "claude"}
	target := "/proj/.claude/skills/pdf-tools"

	// a stale file from an earlier version sits in the target
	require.NoError(t, fs.WriteFile(target+"/old-helper.py", []byte("gone"), 0644))

	require.NoError(t, installer.InstallDir(key, root+"/skills/pdf-tools", target))

	got, err := fs.ReadFile(target + "/SKILL.md")
	require.NoError(t, err)
	assert.Contains(t, string(got), "pdf-tools")
	_, err = fs.ReadFile(target + "/scripts/x.py")
	require.NoError(t, err)
	_, err = fs.Stat(target + "/old-helper.py")
	assert.Error(t, err, "install replaces the target wholesale")

	require.NoError(t, installer.RemoveDir(key, target))
	_, err = fs.Stat(target)
	assert.Error(t, err)
}
