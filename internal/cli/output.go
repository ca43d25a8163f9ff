package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/thruflo/stato/internal/module"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

// printDiagnostics renders every diagnostic of res as one table row.
func printDiagnostics(w io.Writer, res *module.ValidationResult) {
	diags := res.Diagnostics()
	if len(diags) == 0 {
		return
	}
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Code", "Severity", "Line", "Message"})
	for _, d := range diags {
		line := "-"
		if d.Line > 0 {
			line = strconv.Itoa(d.Line)
		}
		tw.AppendRow(table.Row{d.Code, d.Severity, line, d.Message})
	}
	tw.Render()
}

// summary is the one-line verdict for a validated module.
func summary(path string, res *module.ValidationResult) string {
	verdict := "OK"
	if !res.Success {
		verdict = "FAILED"
	}
	desc := ""
	if res.ClassName != "" {
		desc = fmt.Sprintf(" (%s %s)", res.Kind, res.ClassName)
	}
	return fmt.Sprintf("%s %s%s: %d error(s), %d correction(s), %d advice",
		verdict, path, desc, len(res.HardErrors), len(res.AutoCorrections), len(res.Advice))
}
