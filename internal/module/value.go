package module

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Field values are plain Go values so that every collaborator can inspect
// them without depending on the parser or the sandbox:
//
//	str      string
//	int      int64 or *big.Int
//	float    float64
//	bool     bool
//	None     nil
//	list     List
//	tuple    Tuple
//	set      Set
//	dict     *Dict
//	bytes    Bytes
//	function Callable
//
// Anything else the sandbox produces is reported as Opaque.

// List is an ordered, mutable sequence.
type List []any

// Tuple is an ordered, immutable sequence.
type Tuple []any

// Set is an unordered collection. The order of elements is the order the
// sandbox iterated them in.
type Set []any

// Bytes is a byte string literal.
type Bytes []byte

// Callable stands in for a function or method value.
type Callable struct {
	Name string
}

// Opaque is a runtime value with no Go representation. Type is the name of
// its runtime type.
type Opaque struct {
	Type string
	Repr string
}

// DictEntry is one key/value pair of a Dict.
type DictEntry struct {
	Key   any
	Value any
}

// Dict is an insertion-ordered mapping.
type Dict struct {
	Entries []DictEntry
}

// NewDict returns an empty Dict.
func NewDict() *Dict { return &Dict{} }

// Set inserts or replaces the value for key.
func (d *Dict) Set(key, value any) {
	for i, e := range d.Entries {
		if keysEqual(e.Key, key) {
			d.Entries[i].Value = value
			return
		}
	}
	d.Entries = append(d.Entries, DictEntry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (d *Dict) Get(key any) (any, bool) {
	if d == nil {
		return nil, false
	}
	for _, e := range d.Entries {
		if keysEqual(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Entries)
}

// StringKeys returns the string keys of d in insertion order.
func (d *Dict) StringKeys() []string {
	if d == nil {
		return nil
	}
	var keys []string
	for _, e := range d.Entries {
		if s, ok := e.Key.(string); ok {
			keys = append(keys, s)
		}
	}
	return keys
}

func keysEqual(a, b any) bool {
	switch av := a.(type) {
	case string, bool, float64, nil:
		return a == b
	case int64:
		switch bv := b.(type) {
		case int64:
			return av == bv
		case *big.Int:
			return bv.IsInt64() && bv.Int64() == av
		}
	case *big.Int:
		switch bv := b.(type) {
		case int64:
			return av.IsInt64() && av.Int64() == bv
		case *big.Int:
			return av.Cmp(bv) == 0
		}
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !keysEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// TypeName returns the runtime type name of v using the document
// language's spelling ("str", "int", "list", "dict", ...).
func TypeName(v any) string {
	switch x := v.(type) {
	case nil:
		return "NoneType"
	case string:
		return "str"
	case bool:
		return "bool"
	case int64, *big.Int:
		return "int"
	case float64:
		return "float"
	case List:
		return "list"
	case Tuple:
		return "tuple"
	case Set:
		return "set"
	case *Dict:
		return "dict"
	case Bytes:
		return "bytes"
	case Callable:
		return "function"
	case Opaque:
		return x.Type
	}
	return fmt.Sprintf("%T", v)
}

// AsInt returns v as an int64 when it is an integer that fits. Booleans
// are not integers here.
func AsInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case *big.Int:
		if x.IsInt64() {
			return x.Int64(), true
		}
	}
	return 0, false
}

// Truthy reports the truth value of v.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case int64:
		return x != 0
	case *big.Int:
		return x.Sign() != 0
	case float64:
		return x != 0
	case List:
		return len(x) > 0
	case Tuple:
		return len(x) > 0
	case Set:
		return len(x) > 0
	case *Dict:
		return x.Len() > 0
	case Bytes:
		return len(x) > 0
	}
	return true
}

// Repr renders v the way the document language would print it.
func Repr(v any) string {
	var b strings.Builder
	writeRepr(&b, v)
	return b.String()
}

func writeRepr(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("None")
	case string:
		b.WriteString(quote(x))
	case bool:
		if x {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case *big.Int:
		b.WriteString(x.String())
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}
		b.WriteString(s)
	case List:
		writeSeq(b, "[", "]", x)
	case Tuple:
		if len(x) == 1 {
			b.WriteString("(")
			writeRepr(b, x[0])
			b.WriteString(",)")
			return
		}
		writeSeq(b, "(", ")", x)
	case Set:
		if len(x) == 0 {
			b.WriteString("set()")
			return
		}
		writeSeq(b, "{", "}", x)
	case *Dict:
		b.WriteString("{")
		for i, e := range x.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRepr(b, e.Key)
			b.WriteString(": ")
			writeRepr(b, e.Value)
		}
		b.WriteString("}")
	case Bytes:
		b.WriteString("b")
		b.WriteString(quote(string(x)))
	case Callable:
		fmt.Fprintf(b, "<function %s>", x.Name)
	case Opaque:
		if x.Repr != "" {
			b.WriteString(x.Repr)
		} else {
			fmt.Fprintf(b, "<%s>", x.Type)
		}
	default:
		fmt.Fprintf(b, "%v", v)
	}
}

func writeSeq(b *strings.Builder, open, close string, items []any) {
	b.WriteString(open)
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		writeRepr(b, item)
	}
	b.WriteString(close)
}

// quote uses single quotes unless the string contains one and no double
// quote, matching the document language's repr.
func quote(s string) string {
	q := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, "\"") {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
