package registry_test

import (
	"testing"
	"time"

	"github.com/agentsync-dev/agentsync/pkg/errors"
	"github.com/agentsync-dev/agentsync/pkg/filesystem"
	"github.com/agentsync-dev/agentsync/pkg/registry"
	"github.com/agentsync-dev/agentsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(item string, t types.ItemType, provider string, global bool) registry.Record {
	return registry.Record{
		Item:           item,
		Type:           t,
		Provider:       provider,
		Global:         global,
		TargetPath:     ".claude/rules/" + item + ".md",
		SourceChecksum: "src-" + item,
		TargetChecksum: "tgt-" + item,
		InstalledAt:    time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestFind(t *testing.T) {
	r := registry.New()
	r.Upsert(record("docker", types.ItemTypeRules, "claude", false))

	rec, ok := r.Find(types.InstallKey{Item: "docker", Type: types.ItemTypeRules, Provider: "claude", Global: false})
	require.True(t, ok)
	assert.Equal(t, ".claude/rules/docker.md", rec.TargetPath)

	// Same item at global scope is a different installation
	_, ok = r.Find(types.InstallKey{Item: "docker", Type: types.ItemTypeRules, Provider: "claude", Global: true})
	assert.False(t, ok)
}

func TestUpsert_ReplacesExisting(t *testing.T) {
	r := registry.New()
	r.Upsert(record("docker", types.ItemTypeRules, "claude", false))

	updated := record("docker", types.ItemTypeRules, "claude", false)
	updated.TargetChecksum = "tgt-v2"
	r.Upsert(updated)

	require.Len(t, r.Installations, 1)
	rec, _ := r.Find(updated.Key())
	assert.Equal(t, "tgt-v2", rec.TargetChecksum)
}

func TestRemove(t *testing.T) {
	r := registry.New()
	rec := record("docker", types.ItemTypeRules, "claude", false)
	r.Upsert(rec)

	assert.True(t, r.Remove(rec.Key()))
	assert.False(t, r.Remove(rec.Key()))
	assert.Empty(t, r.Installations)
}

func TestSorted_StableOrder(t *testing.T) {
	r := registry.New()
	r.Upsert(record("zeta", types.ItemTypeRules, "cursor", false))
	r.Upsert(record("alpha", types.ItemTypeRules, "claude", true))
	r.Upsert(record("alpha", types.ItemTypeRules, "claude", false))

	sorted := r.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, "claude", sorted[0].Provider)
	assert.False(t, sorted[0].Global)
	assert.True(t, sorted[1].Global)
	assert.Equal(t, "cursor", sorted[2].Provider)
}

func TestLoadSave_RoundTrip(t *testing.T) {
	fs := filesystem.NewMemory()
	r := registry.New()
	r.Upsert(record("docker", types.ItemTypeRules, "claude", false))
	r.Upsert(record("reviewer", types.ItemTypeAgent, "claude", true))

	require.NoError(t, registry.Save(fs, "/data/registry.json", r))

	loaded, err := registry.Load(fs, "/data/registry.json")
	require.NoError(t, err)
	assert.Equal(t, registry.CurrentVersion, loaded.Version)
	require.Len(t, loaded.Installations, 2)

	rec, ok := loaded.Find(types.InstallKey{Item: "docker", Type: types.ItemTypeRules, Provider: "claude", Global: false})
	require.True(t, ok)
	assert.Equal(t, "src-docker", rec.SourceChecksum)
	assert.Equal(t, "tgt-docker", rec.TargetChecksum)
}

func TestLoad_MissingFileYieldsEmptyRegistry(t *testing.T) {
	fs := filesystem.NewMemory()
	r, err := registry.Load(fs, "/data/registry.json")
	require.NoError(t, err)
	assert.Empty(t, r.Installations)
	assert.Equal(t, registry.CurrentVersion, r.Version)
}

func TestSave_EmptyRegistryIsSchemaValid(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, registry.Save(fs, "/data/registry.json", registry.New()))
	_, err := registry.Load(fs, "/data/registry.json")
	require.NoError(t, err)
}

func TestLoad_SchemaViolationRejected(t *testing.T) {
	fs := filesystem.NewMemory()

	tests := []struct {
		name string
		doc  string
	}{
		{"missing_version", `{"installations": []}`},
		{"bad_item_type", `{"version": 1, "installations": [{"item": "x", "type": "plugin", "provider": "claude", "global": false, "targetPath": "p", "sourceChecksum": "a", "targetChecksum": "b", "installedAt": "2026-01-01T00:00:00Z"}]}`},
		{"installations_null", `{"version": 1, "installations": null}`},
		{"not_json", `{broken`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, fs.WriteFile("/data/registry.json", []byte(tt.doc), 0644))
			_, err := registry.Load(fs, "/data/registry.json")
			require.Error(t, err)
			if tt.name != "not_json" {
				assert.True(t, errors.IsErrorCode(err, errors.ErrRegistrySchema))
			}
		})
	}
}
