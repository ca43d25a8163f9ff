package module

// ValidationResult is the aggregate outcome of one pipeline run. It is built
// once by NewResult and must be treated as read-only afterwards.
type ValidationResult struct {
	Success         bool         `json:"success"`
	Kind            Kind         `json:"module_kind,omitempty"`
	ClassName       string       `json:"class_name,omitempty"`
	CorrectedSource string       `json:"corrected_source"`
	HardErrors      []Diagnostic `json:"hard_errors"`
	AutoCorrections []Diagnostic `json:"auto_corrections"`
	Advice          []Diagnostic `json:"advice"`

	// Fields holds the runtime value of every field bound on the
	// declaration, as observed by the sandbox. It is nil when the
	// pipeline halted before execution.
	Fields map[string]any `json:"fields,omitempty"`
}

// NewResult partitions diags by severity. Success is true iff no
// diagnostic has SeverityError.
func NewResult(kind Kind, className, corrected string, fields map[string]any, diags []Diagnostic) *ValidationResult {
	r := &ValidationResult{
		Kind:            kind,
		ClassName:       className,
		CorrectedSource: corrected,
		HardErrors:      []Diagnostic{},
		AutoCorrections: []Diagnostic{},
		Advice:          []Diagnostic{},
		Fields:          fields,
	}
	for _, d := range diags {
		switch d.Severity {
		case SeverityError:
			r.HardErrors = append(r.HardErrors, d)
		case SeverityWarning:
			r.AutoCorrections = append(r.AutoCorrections, d)
		default:
			r.Advice = append(r.Advice, d)
		}
	}
	r.Success = len(r.HardErrors) == 0
	return r
}

// Diagnostics returns every diagnostic in severity order: errors, then
// warnings, then advice.
func (r *ValidationResult) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, 0, len(r.HardErrors)+len(r.AutoCorrections)+len(r.Advice))
	out = append(out, r.HardErrors...)
	out = append(out, r.AutoCorrections...)
	return append(out, r.Advice...)
}

// HasCode reports whether any diagnostic carries code.
func (r *ValidationResult) HasCode(code Code) bool {
	return r.CountCode(code) > 0
}

// CountCode returns the number of diagnostics carrying code.
func (r *ValidationResult) CountCode(code Code) int {
	n := 0
	for _, d := range r.Diagnostics() {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Corrected reports whether any auto-correction was applied.
func (r *ValidationResult) Corrected() bool {
	return len(r.AutoCorrections) > 0
}
