package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thruflo/stato/internal/module"
	"github.com/thruflo/stato/internal/source"
)

var narrativeFields = []string{"lessons_learned", "decision_log", "reflection", "notes"}

// Decompile renders a document as markdown: the class heading and
// docstring, a table of literal fields, the method signatures, long
// narrative fields and the full source. Nothing is executed.
func Decompile(src string) string {
	var b strings.Builder
	f, err := source.Parse(src)
	if err != nil {
		fmt.Fprintf(&b, "# Invalid Module\n\nSource has syntax errors.\n\n## Source\n\n```python\n%s\n```\n", src)
		return b.String()
	}
	classes := f.Classes()
	if len(classes) == 0 {
		fmt.Fprintf(&b, "# No Class Found\n\n## Source\n\n```python\n%s\n```\n", src)
		return b.String()
	}
	c := classes[0]
	d := newDeclaration(c)

	lines := []string{"# " + c.Name, ""}
	if c.Doc != nil {
		if doc, err := c.Doc.Value(); err == nil && strings.TrimSpace(doc) != "" {
			lines = append(lines, dedent(doc), "")
		}
	}

	values := map[string]any{}
	var names []string
	for _, fld := range d.Fields {
		if fld.Value == nil {
			continue
		}
		v, ok := source.LiteralValue(fld.Value)
		if !ok || v == nil {
			continue
		}
		if _, seen := values[fld.Name]; !seen {
			names = append(names, fld.Name)
		}
		values[fld.Name] = v
	}
	if len(names) > 0 {
		lines = append(lines, "## Fields", "", "| Field | Value |", "|---|---|")
		for _, name := range names {
			repr := module.Repr(values[name])
			if len(repr) > 60 {
				repr = repr[:57] + "..."
			}
			lines = append(lines, fmt.Sprintf("| %s | %s |", name, strings.ReplaceAll(repr, "|", `\|`)))
		}
		lines = append(lines, "")
	}

	var methods []string
	for _, stmt := range c.Body {
		fn, ok := stmt.(*source.FuncDef)
		if !ok {
			continue
		}
		var args []string
		for _, p := range fn.Params {
			switch {
			case p.Kind == source.ParamVarArgs:
				args = append(args, "*"+p.Name)
			case p.Kind == source.ParamKwArgs:
				args = append(args, "**"+p.Name)
			case p.Name != "self":
				args = append(args, p.Name)
			}
		}
		methods = append(methods, fmt.Sprintf("- `%s(%s)`", fn.Name, strings.Join(args, ", ")))
	}
	if len(methods) > 0 {
		lines = append(lines, "## Methods", "")
		lines = append(lines, methods...)
		lines = append(lines, "")
	}

	for _, name := range narrativeFields {
		s, ok := values[name].(string)
		if !ok || len(s) <= 40 {
			continue
		}
		lines = append(lines, "## "+titleWords(name), "", dedent(s), "")
	}

	lines = append(lines, "## Source", "", "```python", strings.TrimSpace(src), "```")
	return strings.Join(lines, "\n") + "\n"
}

var sourceBlock = regexp.MustCompile("(?s)## Source\\s*\\n+```python\\s*\\n(.*?)```")
var heading = regexp.MustCompile(`(?m)^# (.+)$`)

// FromMarkdown recovers a document from markdown produced by Decompile.
// When there is no source block a placeholder class named after the first
// heading is produced. The recovered source is validated with v.
func (v *Validator) FromMarkdown(md string) (string, *module.ValidationResult) {
	var src string
	if m := sourceBlock.FindStringSubmatch(md); m != nil {
		src = strings.TrimSpace(m[1]) + "\n"
	} else {
		name := "GeneratedModule"
		if h := heading.FindStringSubmatch(md); h != nil {
			name = strings.TrimSpace(h[1])
		}
		src = fmt.Sprintf("class %s:\n    pass\n", name)
	}
	return src, v.Validate(src, "")
}

// dedent strips the first line's leading whitespace and the indentation
// common to the remaining non-blank lines, then trims the result.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	lines[0] = strings.TrimLeft(lines[0], " \t")
	prefix, first := "", true
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		ws := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix, first = ws, false
			continue
		}
		for !strings.HasPrefix(ws, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimPrefix(lines[i], prefix)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func titleWords(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
