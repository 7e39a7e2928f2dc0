package ui_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentsync-dev/agentsync/pkg/ledger"
	"github.com/agentsync-dev/agentsync/pkg/reconcile"
	"github.com/agentsync-dev/agentsync/pkg/types"
	"github.com/agentsync-dev/agentsync/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlan() *reconcile.Plan {
	return reconcile.NewPlan([]reconcile.Action{
		reconcile.Install{Meta: reconcile.Meta{
			Key:        types.InstallKey{Item: "reviewer", Type: types.ItemTypeAgent, Provider: "claude"},
			TargetPath: ".claude/agents/reviewer.md",
			Reason:     "not installed yet",
		}},
		reconcile.Conflict{Meta: reconcile.Meta{
			Key:        types.InstallKey{Item: "docker", Type: types.ItemTypeRules, Provider: "claude"},
			TargetPath: ".claude/rules/docker.md",
			Reason:     "target modified by user since install",
		}},
	})
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]ui.Format{
		"":     ui.FormatAuto,
		"auto": ui.FormatAuto,
		"term": ui.FormatTerm,
		"text": ui.FormatText,
		"json": ui.FormatJSON,
	} {
		got, err := ui.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ui.ParseFormat("xml")
	assert.Error(t, err)
}

func TestResolve_PipedOutputIsText(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, ui.FormatText, ui.Resolve(ui.FormatAuto, f))
	// explicit formats pass through untouched
	assert.Equal(t, ui.FormatJSON, ui.Resolve(ui.FormatJSON, f))
	assert.Equal(t, ui.FormatTerm, ui.Resolve(ui.FormatTerm, f))
}

func TestRenderer_PlanText(t *testing.T) {
	var buf bytes.Buffer
	r := ui.NewRenderer(ui.FormatText, &buf)

	require.NoError(t, r.Plan(testPlan()))

	out := buf.String()
	assert.Contains(t, out, "install")
	assert.Contains(t, out, ".claude/agents/reviewer.md")
	assert.Contains(t, out, "1 install, 0 update, 0 skip, 1 conflict, 0 delete")
	assert.Contains(t, out, "Conflicts require a resolution")
}

func TestRenderer_PlanJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	r := ui.NewRenderer(ui.FormatJSON, &buf)

	require.NoError(t, r.Plan(testPlan()))

	var decoded reconcile.Plan
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, testPlan().Summary, decoded.Summary)
	assert.Len(t, decoded.Actions, 2)
}

func TestRenderer_EmptyPlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ui.NewRenderer(ui.FormatText, &buf).Plan(reconcile.NewPlan(nil)))
	assert.Contains(t, buf.String(), "Nothing to do.")
}

func TestRenderer_Result(t *testing.T) {
	result := &reconcile.Result{
		Actions: []reconcile.ActionResult{
			{Kind: reconcile.KindInstall, TargetPath: "a.md", Status: reconcile.StatusSuccess},
			{Kind: reconcile.KindInstall, TargetPath: "b.md", Status: reconcile.StatusFailed, Message: "permission denied"},
		},
		Installed: 1,
		Failed:    1,
	}

	var buf bytes.Buffer
	require.NoError(t, ui.NewRenderer(ui.FormatText, &buf).Result(result))

	out := buf.String()
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, "1 installed, 0 skipped, 0 deleted, 1 failed")
}

func TestRenderer_Status(t *testing.T) {
	rows := []ui.StatusRow{
		{Path: ".claude/rules/docker.md", Classification: ledger.ClassEngine, Version: "1.2.0"},
		{Path: ".claude/rules/edited.md", Classification: ledger.ClassEngineModified, Version: "1.2.0"},
	}

	var buf bytes.Buffer
	require.NoError(t, ui.NewRenderer(ui.FormatText, &buf).Status(rows))
	assert.Contains(t, buf.String(), "engine-modified")

	buf.Reset()
	require.NoError(t, ui.NewRenderer(ui.FormatText, &buf).Status(nil))
	assert.Contains(t, buf.String(), "No tracked files.")
}
