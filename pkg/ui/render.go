// Package ui renders plans, execution results and status reports for the
// terminal, in plain text, or as JSON for scripting.
package ui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"

	"github.com/agentsync-dev/agentsync/pkg/ledger"
	"github.com/agentsync-dev/agentsync/pkg/reconcile"
)

var kindStyles = map[reconcile.Kind]lipgloss.Style{
	reconcile.KindInstall:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	reconcile.KindUpdate:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	reconcile.KindSkip:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	reconcile.KindConflict: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	reconcile.KindDelete:   lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
}

var headerStyle = lipgloss.NewStyle().Bold(true)

// Renderer writes command output in one fixed format.
type Renderer struct {
	Format Format
	Out    io.Writer
}

// NewRenderer returns a renderer for the resolved format.
func NewRenderer(format Format, out io.Writer) *Renderer {
	return &Renderer{Format: format, Out: out}
}

// Plan renders a reconcile plan.
func (r *Renderer) Plan(plan *reconcile.Plan) error {
	if r.Format == FormatJSON {
		return r.renderJSON(plan)
	}

	if len(plan.Actions) == 0 {
		fmt.Fprintln(r.Out, "Nothing to do.")
		return nil
	}

	if r.Format == FormatTerm {
		data := pterm.TableData{{"ACTION", "TARGET", "PATH", "REASON"}}
		for _, a := range plan.Actions {
			m := a.Common()
			data = append(data, []string{
				kindStyles[a.Kind()].Render(string(a.Kind())),
				m.Key.String(),
				m.TargetPath,
				m.Reason,
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(r.Out).Render(); err != nil {
			return err
		}
	} else {
		for _, a := range plan.Actions {
			m := a.Common()
			fmt.Fprintf(r.Out, "%-8s %s  %s  (%s)\n", a.Kind(), m.Key, m.TargetPath, m.Reason)
		}
	}

	r.summaryLine(plan.Summary)
	if plan.HasConflicts {
		fmt.Fprintln(r.Out, "Conflicts require a resolution; rerun apply with --resolve or --force.")
	}
	return nil
}

// Result renders an execution result.
func (r *Renderer) Result(result *reconcile.Result) error {
	if r.Format == FormatJSON {
		return r.renderJSON(result)
	}

	for _, a := range result.Actions {
		line := fmt.Sprintf("%-8s %-8s %s", a.Status, a.Kind, a.TargetPath)
		if a.Message != "" {
			line += "  (" + a.Message + ")"
		}
		if r.Format == FormatTerm && a.Status == reconcile.StatusFailed {
			line = kindStyles[reconcile.KindConflict].Render(line)
		}
		fmt.Fprintln(r.Out, line)
	}
	fmt.Fprintf(r.Out, "\n%d installed, %d skipped, %d deleted, %d failed\n",
		result.Installed, result.Skipped, result.Deleted, result.Failed)
	return nil
}

// StatusRow is one ledger entry with its live classification.
type StatusRow struct {
	Path           string                `json:"path"`
	Classification ledger.Classification `json:"classification"`
	Version        string                `json:"installedVersion,omitempty"`
}

// Status renders the ownership report.
func (r *Renderer) Status(rows []StatusRow) error {
	if r.Format == FormatJSON {
		return r.renderJSON(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(r.Out, "No tracked files.")
		return nil
	}

	if r.Format == FormatTerm {
		data := pterm.TableData{{"STATE", "PATH", "VERSION"}}
		for _, row := range rows {
			data = append(data, []string{string(row.Classification), row.Path, row.Version})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(r.Out).Render()
	}
	for _, row := range rows {
		fmt.Fprintf(r.Out, "%-16s %s\n", row.Classification, row.Path)
	}
	return nil
}

func (r *Renderer) summaryLine(s reconcile.Summary) {
	line := fmt.Sprintf("\n%d install, %d update, %d skip, %d conflict, %d delete",
		s.Install, s.Update, s.Skip, s.Conflict, s.Delete)
	if r.Format == FormatTerm {
		line = headerStyle.Render(line)
	}
	fmt.Fprintln(r.Out, line)
}

func (r *Renderer) renderJSON(v interface{}) error {
	enc := json.NewEncoder(r.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
