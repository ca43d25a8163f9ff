package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/state"
)

var resumeBrief bool

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Print a recap of the project state",
	Long: `Prints a recap of the stored modules for restoring an agent's context:
the project, plan progress with completed outputs and the next step, the
available skills and the current memory phase.

Modules that fail validation are left out. With --brief the recap is one
paragraph.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject(cmd.Context(), projectDir())
		if err != nil {
			return err
		}
		defer m.Close()
		return showResume(cmd.Context(), cmd.OutOrStdout(), m, resumeBrief)
	},
}

func init() {
	resumeCmd.Flags().BoolVar(&resumeBrief, "brief", false, "one-paragraph summary")
	rootCmd.AddCommand(resumeCmd)
}

// recap holds the field values of the valid modules of a project.
type recap struct {
	context map[string]any
	plan    map[string]any
	memory  map[string]any
	skills  []map[string]any
}

func loadRecap(ctx context.Context, m *state.Manager) (*recap, error) {
	modules, err := m.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	r := &recap{}
	for _, ms := range modules {
		if !ms.Result.Success {
			continue
		}
		switch {
		case ms.Path == state.ContextFile:
			r.context = ms.Result.Fields
		case ms.Path == state.PlanFile:
			r.plan = ms.Result.Fields
		case ms.Path == state.MemoryFile:
			r.memory = ms.Result.Fields
		case strings.HasPrefix(ms.Path, state.SkillsDir+"/") && ms.Result.Kind == module.KindSkill:
			r.skills = append(r.skills, ms.Result.Fields)
		}
	}
	return r, nil
}

func showResume(ctx context.Context, w io.Writer, m *state.Manager, brief bool) error {
	r, err := loadRecap(ctx, m)
	if err != nil {
		return err
	}
	out := r.full()
	if brief {
		out = r.brief()
	}
	if out == "" {
		out = "Nothing to resume: no valid modules found."
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func (r *recap) full() string {
	var lines []string
	add := func(format string, args ...any) { lines = append(lines, fmt.Sprintf(format, args...)) }

	if r.context != nil {
		add("Project: %s", display(r.context["project"]))
		add("Description: %s", display(r.context["description"]))
		if env, ok := r.context["environment"].(*module.Dict); ok && env.Len() > 0 {
			parts := make([]string, 0, env.Len())
			for _, e := range env.Entries {
				parts = append(parts, display(e.Key)+" "+display(e.Value))
			}
			add("Environment: %s", strings.Join(parts, ", "))
		}
	}

	if r.plan != nil {
		steps := module.DecodeSteps(r.plan["steps"])
		done, total := module.Progress(steps)
		add("")
		add("Plan: %s", display(r.plan["name"]))
		add("Objective: %s", display(r.plan["objective"]))
		add("Progress: %d/%d steps complete", done, total)
		var completed []string
		for _, s := range steps {
			if s.Status != module.StatusComplete {
				continue
			}
			line := fmt.Sprintf("  Step %d: %s", s.ID, s.Action)
			if out := display(s.Output); s.Output != nil && out != "" {
				line += " -> " + out
			}
			completed = append(completed, line)
		}
		if len(completed) > 0 {
			add("Completed:")
			lines = append(lines, completed...)
		}
		if next, ok := upcoming(steps); ok {
			add("Next: Step %d: %s", next.ID, next.Action)
		}
		if log := text(r.plan["decision_log"]); log != "" {
			add("")
			add("Key decisions:")
			add("%s", log)
		}
	}

	if len(r.skills) > 0 {
		add("")
		add("Available expertise:")
		for _, s := range r.skills {
			add("  %s", skillLine(s))
		}
	}

	if r.memory != nil {
		add("")
		add("Current phase: %s", display(r.memory["phase"]))
		if issues, ok := r.memory["known_issues"].(*module.Dict); ok && issues.Len() > 0 {
			add("Known issues:")
			for _, e := range issues.Entries {
				add("  %s: %s", display(e.Key), display(e.Value))
			}
		}
		if reflection := text(r.memory["reflection"]); reflection != "" {
			add("")
			add("Reflection:")
			add("%s", reflection)
		}
	}

	return strings.TrimLeft(strings.Join(lines, "\n"), "\n")
}

func (r *recap) brief() string {
	var parts []string
	if r.context != nil {
		parts = append(parts, fmt.Sprintf("%s: %s.", display(r.context["project"]), display(r.context["description"])))
	}
	if r.plan != nil {
		steps := module.DecodeSteps(r.plan["steps"])
		done, total := module.Progress(steps)
		parts = append(parts, fmt.Sprintf("Progress: %d/%d steps complete.", done, total))
		if next, ok := upcoming(steps); ok {
			parts = append(parts, fmt.Sprintf("Next: %s.", next.Action))
		}
	}
	if r.memory != nil {
		if reflection := text(r.memory["reflection"]); reflection != "" {
			first, _, _ := strings.Cut(reflection, ".")
			parts = append(parts, strings.TrimSpace(first)+".")
		}
	}
	return strings.Join(parts, " ")
}

// upcoming is the running step, or else the next pending step whose
// dependencies are complete.
func upcoming(steps []module.StepRecord) (module.StepRecord, bool) {
	if s, ok := module.CurrentStep(steps); ok {
		return s, true
	}
	return module.NextStep(steps)
}

// skillLine summarises a skill as "name vX | k=v, ... | N lessons", with
// at most three parameters.
func skillLine(fields map[string]any) string {
	line := display(fields["name"])
	version := "?"
	if v, ok := fields["version"].(string); ok {
		version = v
	}
	line += " v" + version

	if params, ok := fields["default_params"].(*module.Dict); ok && params.Len() > 0 {
		entries := params.Entries
		if len(entries) > 3 {
			entries = entries[:3]
		}
		kv := make([]string, len(entries))
		for i, e := range entries {
			kv[i] = display(e.Key) + "=" + display(e.Value)
		}
		line += " | " + strings.Join(kv, ", ")
	}

	if lessons := text(fields["lessons_learned"]); lessons != "" {
		count := 0
		for _, l := range strings.Split(lessons, "\n") {
			if strings.HasPrefix(strings.TrimSpace(l), "-") {
				count++
			}
		}
		line += fmt.Sprintf(" | %d lessons", count)
	}
	return line
}

// display renders a field value the way it reads in prose: strings bare,
// everything else in literal form.
func display(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return module.Repr(v)
}

// text returns a string field trimmed, or "" for any other value.
func text(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
