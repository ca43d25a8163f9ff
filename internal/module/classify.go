package module

import "strings"

// Shape is the structural summary of a declaration used for
// classification: its class name and the names it binds.
type Shape struct {
	ClassName string
	Fields    map[string]bool
	Methods   map[string]bool
}

// Classification is the outcome of Classify.
type Classification struct {
	Kind      Kind
	Confident bool
}

// Classify infers the module kind of a declaration. Class-name suffixes
// win over field shape; a declaration matching no rule is a Skill with
// Confident=false. The hint only replaces that fallback, it never
// overrides a confident match.
func Classify(s Shape, hint Kind) Classification {
	name := strings.ToLower(s.ClassName)
	has := func(f string) bool { return s.Fields[f] }
	run := s.Methods["run"]

	switch {
	case strings.HasSuffix(name, "context"):
		return Classification{Kind: KindContext, Confident: true}
	case strings.HasSuffix(name, "state"):
		return Classification{Kind: KindMemory, Confident: true}
	case strings.HasSuffix(name, "protocol"):
		return Classification{Kind: KindProtocol, Confident: true}
	case has("steps") && has("objective"):
		return Classification{Kind: KindPlan, Confident: true}
	case has("handoff_schema"):
		return Classification{Kind: KindProtocol, Confident: true}
	case has("phase") && !run:
		return Classification{Kind: KindMemory, Confident: true}
	case has("project") && has("description") && !run:
		return Classification{Kind: KindContext, Confident: true}
	case run:
		return Classification{Kind: KindSkill, Confident: true}
	}
	if hint.Valid() {
		return Classification{Kind: hint, Confident: true}
	}
	return Classification{Kind: KindSkill}
}
