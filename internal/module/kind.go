package module

import (
	"fmt"
	"strings"
)

// Kind identifies which of the five module kinds a document declares.
type Kind string

// Module kinds.
const (
	KindSkill    Kind = "skill"
	KindPlan     Kind = "plan"
	KindMemory   Kind = "memory"
	KindContext  Kind = "context"
	KindProtocol Kind = "protocol"
)

// Kinds lists every module kind in a stable order.
var Kinds = []Kind{KindSkill, KindPlan, KindMemory, KindContext, KindProtocol}

// ParseKind converts a user-supplied name into a Kind. Matching is
// case-insensitive; the empty string yields the zero Kind and no error.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown module kind %q (want one of skill, plan, memory, context, protocol)", s)
}

// Valid reports whether k is one of the five module kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// NameSuffix is the class-name suffix conventionally used for the kind.
// Skill and Plan have no convention and return "".
func (k Kind) NameSuffix() string {
	switch k {
	case KindMemory:
		return "State"
	case KindContext:
		return "Context"
	case KindProtocol:
		return "Protocol"
	}
	return ""
}

func (k Kind) String() string { return string(k) }
