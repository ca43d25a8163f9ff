package module

import "fmt"

// Severity is the tier of a diagnostic.
type Severity string

// Severities. Errors block persistence, warnings record an applied
// auto-correction (or a non-blocking structural problem) and advice is
// purely informational.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityAdvice  Severity = "advice"
)

// Code is a stable diagnostic identifier such as "E009".
type Code string

// Diagnostic codes. The table is part of the public contract and codes are
// never renumbered.
const (
	CodeSyntaxError           Code = "E001"
	CodeNoDeclarationFound    Code = "E002"
	CodeMissingRequiredField  Code = "E003"
	CodeMissingRequiredMethod Code = "E004"
	CodeRuntimeExecutionError Code = "E005"
	CodeMethodNotCallable     Code = "E006"
	CodeFieldTypeMismatch     Code = "E007"
	CodeInvalidStepReference  Code = "E008"
	CodeCyclicStepDependency  Code = "E009"
	CodeInvalidStepStatus     Code = "E010"

	CodeDependsOnStringWrapped Code = "W001"
	CodeDependsOnIntWrapped    Code = "W002"
	CodeVersionPatchAppended   Code = "W003"
	CodeStepStatusDefaulted    Code = "W004"
	CodeMultipleDeclarations   Code = "W005"
	CodeAmbiguousKind          Code = "W006"

	CodeNamingConvention      Code = "I001"
	CodeMissingDocstring      Code = "I002"
	CodeMissingLessonsLearned Code = "I003"
	CodeMissingDecisionLog    Code = "I004"
	CodeEmptyHandoffSchema    Code = "I005"
	CodeRunMissingTypeHints   Code = "I006"
	CodeNonSemverVersion      Code = "I007"
)

var codeNames = map[Code]string{
	CodeSyntaxError:           "SyntaxError",
	CodeNoDeclarationFound:    "NoDeclarationFound",
	CodeMissingRequiredField:  "MissingRequiredField",
	CodeMissingRequiredMethod: "MissingRequiredMethod",
	CodeRuntimeExecutionError: "RuntimeExecutionError",
	CodeMethodNotCallable:     "MethodNotCallable",
	CodeFieldTypeMismatch:     "FieldTypeMismatch",
	CodeInvalidStepReference:  "InvalidStepReference",
	CodeCyclicStepDependency:  "CyclicStepDependency",
	CodeInvalidStepStatus:     "InvalidStepStatus",

	CodeDependsOnStringWrapped: "DependsOnWrappedInList",
	CodeDependsOnIntWrapped:    "DependsOnWrappedInList",
	CodeVersionPatchAppended:   "VersionPatchAppended",
	CodeStepStatusDefaulted:    "StepStatusDefaulted",
	CodeMultipleDeclarations:   "MultipleDeclarationsFound",
	CodeAmbiguousKind:          "AmbiguousKind",

	CodeNamingConvention:      "NamingConvention",
	CodeMissingDocstring:      "MissingDocstring",
	CodeMissingLessonsLearned: "MissingLessonsLearned",
	CodeMissingDecisionLog:    "MissingDecisionLog",
	CodeEmptyHandoffSchema:    "EmptyHandoffSchema",
	CodeRunMissingTypeHints:   "RunMissingTypeHints",
	CodeNonSemverVersion:      "NonSemverVersion",
}

// Name returns the symbolic name of the code, or "" for unknown codes.
func (c Code) Name() string { return codeNames[c] }

// Severity derives the tier from the code prefix.
func (c Code) Severity() Severity {
	if len(c) > 0 {
		switch c[0] {
		case 'E':
			return SeverityError
		case 'W':
			return SeverityWarning
		}
	}
	return SeverityAdvice
}

// Diagnostic is a single coded finding. Line is 1-based; zero means the
// finding has no source location.
type Diagnostic struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
}

// NewDiagnostic builds a diagnostic whose severity follows its code.
func NewDiagnostic(code Code, line int, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: code.Severity(),
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
	}
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s %s (line %d)", d.Code, d.Message, d.Line)
	}
	return fmt.Sprintf("%s %s", d.Code, d.Message)
}
