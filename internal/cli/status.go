package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored modules and plan progress",
	Long: `Validates every module stored in .stato/ and lists the result. When
plan.py is valid, also shows step progress, the running step and the next
step whose dependencies are complete.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject(cmd.Context(), projectDir())
		if err != nil {
			return err
		}
		defer m.Close()
		return showStatus(cmd.Context(), cmd.OutOrStdout(), m, jsonOutput())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// planProgress summarises the stored plan.
type planProgress struct {
	Name     string `json:"name,omitempty"`
	Complete int    `json:"complete"`
	Total    int    `json:"total"`
	Current  *int64 `json:"current_step,omitempty"`
	Next     *int64 `json:"next_step,omitempty"`
	Done     bool   `json:"done"`
}

type statusReport struct {
	Modules []validationReport `json:"modules"`
	Plan    *planProgress      `json:"plan,omitempty"`
}

func showStatus(ctx context.Context, w io.Writer, m *state.Manager, asJSON bool) error {
	modules, err := m.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}

	report := statusReport{Modules: make([]validationReport, 0, len(modules))}
	for _, ms := range modules {
		report.Modules = append(report.Modules, validationReport{Path: ms.Path, Result: ms.Result})
		if ms.Path == state.PlanFile && ms.Result.Success {
			report.Plan = progressOf(ms.Result)
		}
	}

	if asJSON {
		return printJSON(w, report)
	}
	if len(modules) == 0 {
		fmt.Fprintln(w, "No modules found.")
		return nil
	}

	tw := newTable(w)
	tw.AppendHeader(table.Row{"Module", "Kind", "Class", "Status", "Errors", "Corrections", "Advice"})
	for _, r := range report.Modules {
		status := "ok"
		if !r.Result.Success {
			status = "invalid"
		}
		tw.AppendRow(table.Row{
			r.Path, r.Result.Kind, r.Result.ClassName, status,
			len(r.Result.HardErrors), len(r.Result.AutoCorrections), len(r.Result.Advice),
		})
	}
	tw.Render()

	if p := report.Plan; p != nil {
		fmt.Fprintln(w)
		printField(w, "Plan", p.Name)
		printField(w, "Progress", fmt.Sprintf("%d/%d steps complete", p.Complete, p.Total))
		if p.Current != nil {
			printField(w, "Running", fmt.Sprintf("step %d", *p.Current))
		}
		switch {
		case p.Done:
			printField(w, "Next", "plan complete")
		case p.Next != nil:
			printField(w, "Next", fmt.Sprintf("step %d", *p.Next))
		default:
			printField(w, "Next", "none ready")
		}
	}
	return nil
}

func progressOf(res *module.ValidationResult) *planProgress {
	steps := module.DecodeSteps(res.Fields["steps"])
	p := &planProgress{Done: module.IsComplete(steps)}
	p.Complete, p.Total = module.Progress(steps)
	if name, ok := res.Fields["name"].(string); ok {
		p.Name = name
	}
	if s, ok := module.CurrentStep(steps); ok {
		id := s.ID
		p.Current = &id
	}
	if s, ok := module.NextStep(steps); ok {
		id := s.ID
		p.Next = &id
	}
	return p
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-10s %s\n", label+":", value)
}
