package source

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/thruflo/stato/internal/module"
)

// stringParts splits a string token into its lowercased prefix and body.
func stringParts(t Token) (prefix, body string) {
	i := strings.IndexAny(t.Text, `'"`)
	prefix = strings.ToLower(t.Text[:i])
	rest := t.Text[i:]
	q := 1
	if len(rest) >= 6 && rest[0] == rest[1] && rest[1] == rest[2] {
		q = 3
	}
	return prefix, rest[q : len(rest)-q]
}

func isBytes(t Token) bool {
	prefix, _ := stringParts(t)
	return strings.Contains(prefix, "b")
}

// IsBytes reports whether the literal is a bytes literal.
func (s *StringLit) IsBytes() bool { return isBytes(s.Parts[0]) }

// IsFormatted reports whether any part is an f-string.
func (s *StringLit) IsFormatted() bool {
	for _, p := range s.Parts {
		prefix, _ := stringParts(p)
		if strings.Contains(prefix, "f") {
			return true
		}
	}
	return false
}

// Value returns the decoded, concatenated contents of the literal.
// F-strings have no static value.
func (s *StringLit) Value() (string, error) {
	if s.IsFormatted() {
		return "", errors.New("formatted string has no literal value")
	}
	var b strings.Builder
	for _, p := range s.Parts {
		prefix, body := stringParts(p)
		if strings.Contains(prefix, "r") {
			b.WriteString(body)
			continue
		}
		decoded, err := unescape(body, strings.Contains(prefix, "b"))
		if err != nil {
			return "", err
		}
		b.WriteString(decoded)
	}
	return b.String(), nil
}

func unescape(body string, bytesLit bool) (string, error) {
	if !strings.Contains(body, `\`) {
		return body, nil
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := body[i]; e {
		case '\n':
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(body) && j < i+3 && body[j] >= '0' && body[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(body[i:j], 8, 32)
			writeCode(&b, rune(n), bytesLit)
			i = j - 1
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[e]
			if e != 'x' && bytesLit {
				b.WriteByte('\\')
				b.WriteByte(e)
				continue
			}
			if i+1+width > len(body) {
				return "", fmt.Errorf("truncated \\%c escape", e)
			}
			n, err := strconv.ParseUint(body[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("truncated \\%c escape", e)
			}
			if n > utf8.MaxRune {
				return "", fmt.Errorf("illegal Unicode character")
			}
			writeCode(&b, rune(n), bytesLit)
			i += width
		case 'N':
			return "", errors.New(`\N{...} escapes are not supported`)
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return b.String(), nil
}

func writeCode(b *strings.Builder, r rune, bytesLit bool) {
	if bytesLit {
		b.WriteByte(byte(r))
		return
	}
	b.WriteRune(r)
}

// LiteralValue evaluates x if it is a literal: strings, bytes, numbers,
// True, False, None, and tuples, lists, sets and dicts of literals, plus
// unary signs on numbers and the empty set(). ok is false for anything
// else, including names and calls.
func LiteralValue(x Expr) (v any, ok bool) {
	switch e := x.(type) {
	case *StringLit:
		s, err := e.Value()
		if err != nil {
			return nil, false
		}
		if e.IsBytes() {
			return module.Bytes(s), true
		}
		return s, true
	case *BasicLit:
		return numberValue(e)
	case *Ident:
		switch e.Name {
		case "True":
			return true, true
		case "False":
			return false, true
		case "None":
			return nil, true
		}
	case *Ellipsis:
		return module.Opaque{Type: "ellipsis", Repr: "Ellipsis"}, true
	case *ParenExpr:
		return LiteralValue(e.X)
	case *UnaryExpr:
		if e.Op != "-" && e.Op != "+" {
			return nil, false
		}
		operand, ok := LiteralValue(e.X)
		if !ok {
			return nil, false
		}
		return signed(e.Op, operand)
	case *TupleExpr:
		items, ok := literalList(e.Elts)
		return module.Tuple(items), ok
	case *ListExpr:
		items, ok := literalList(e.Elts)
		return module.List(items), ok
	case *SetExpr:
		items, ok := literalList(e.Elts)
		if !ok {
			return nil, false
		}
		for _, it := range items {
			if !hashable(it) {
				return nil, false
			}
		}
		return module.Set(items), true
	case *DictExpr:
		d := module.NewDict()
		for _, entry := range e.Entries {
			if entry.Key == nil {
				return nil, false
			}
			k, ok := LiteralValue(entry.Key)
			if !ok || !hashable(k) {
				return nil, false
			}
			val, ok := LiteralValue(entry.Value)
			if !ok {
				return nil, false
			}
			d.Set(k, val)
		}
		return d, true
	case *CallExpr:
		if fn, isIdent := e.Fun.(*Ident); isIdent && fn.Name == "set" && len(e.Args) == 0 {
			return module.Set{}, true
		}
	}
	return nil, false
}

func literalList(elts []Expr) ([]any, bool) {
	items := make([]any, 0, len(elts))
	for _, elt := range elts {
		v, ok := LiteralValue(elt)
		if !ok {
			return nil, false
		}
		items = append(items, v)
	}
	return items, true
}

func numberValue(e *BasicLit) (any, bool) {
	text := strings.ReplaceAll(e.Text, "_", "")
	switch e.Kind {
	case IntLit:
		if n, err := strconv.ParseInt(text, 0, 64); err == nil {
			return n, true
		}
		n, ok := new(big.Int).SetString(text, 0)
		if !ok {
			return nil, false
		}
		return n, true
	case FloatLit:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, false
		}
		return f, true
	}
	return module.Opaque{Type: "complex", Repr: e.Text}, true
}

func signed(op string, v any) (any, bool) {
	switch n := v.(type) {
	case int64:
		if op == "-" {
			if n == -n && n != 0 {
				return new(big.Int).Neg(big.NewInt(n)), true
			}
			return -n, true
		}
		return n, true
	case *big.Int:
		if op == "-" {
			neg := new(big.Int).Neg(n)
			if neg.IsInt64() {
				return neg.Int64(), true
			}
			return neg, true
		}
		return n, true
	case float64:
		if op == "-" {
			return -n, true
		}
		return n, true
	case module.Opaque:
		if n.Type == "complex" {
			return module.Opaque{Type: "complex", Repr: op + n.Repr}, true
		}
	}
	return nil, false
}

func hashable(v any) bool {
	switch x := v.(type) {
	case module.List, module.Set, *module.Dict:
		return false
	case module.Tuple:
		for _, it := range x {
			if !hashable(it) {
				return false
			}
		}
	}
	return true
}
