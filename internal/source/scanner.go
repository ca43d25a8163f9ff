package source

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// lineIndex holds the byte offset at which each line starts.
type lineIndex []int

func newLineIndex(src string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

// position converts a byte offset to a 1-based line and column.
func (li lineIndex) position(off int) (line, col int) {
	i := sort.Search(len(li), func(i int) bool { return li[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, off - li[i] + 1
}

type bracket struct {
	ch  byte
	off int
}

type scanner struct {
	src         string
	lines       lineIndex
	pos         int
	tokens      []Token
	indents     []int
	brackets    []bracket
	atLineStart bool
}

// Tokenize splits src into tokens, synthesizing NEWLINE, INDENT and DEDENT
// tokens from the line structure. Newlines inside brackets and after a
// backslash continuation are not significant. Blank and comment-only lines
// produce no tokens.
func Tokenize(src string) ([]Token, error) {
	s := &scanner{
		src:         src,
		lines:       newLineIndex(src),
		indents:     []int{0},
		atLineStart: true,
	}
	if !utf8.ValidString(src) {
		off := 0
		for off < len(src) {
			r, n := utf8.DecodeRuneInString(src[off:])
			if r == utf8.RuneError && n == 1 {
				break
			}
			off += n
		}
		return nil, s.errorAt(off, "invalid UTF-8 byte 0x%02x", src[off])
	}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.tokens, nil
}

func (s *scanner) errorAt(off int, format string, args ...any) error {
	line, col := s.lines.position(off)
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) emit(kind TokenKind, start, end int) {
	s.tokens = append(s.tokens, Token{Kind: kind, Text: s.src[start:end], Start: start, End: end})
}

func (s *scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

func (s *scanner) run() error {
	if strings.HasPrefix(s.src, "\ufeff") {
		s.pos = len("\ufeff")
	}
	for {
		if s.atLineStart && len(s.brackets) == 0 {
			eof, err := s.lineStart()
			if err != nil {
				return err
			}
			if eof {
				break
			}
		}
		if s.pos >= len(s.src) {
			break
		}
		c := s.src[s.pos]
		var err error
		switch {
		case c == ' ' || c == '\t' || c == '\f' || c == '\r':
			s.pos++
		case c == '#':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		case c == '\n':
			if len(s.brackets) == 0 {
				s.emit(Newline, s.pos, s.pos+1)
				s.atLineStart = true
			}
			s.pos++
		case c == '\\':
			err = s.continuation()
		case isDigit(c) || (c == '.' && isDigit(s.peek(1))):
			err = s.number()
		case c == '"' || c == '\'':
			err = s.str(s.pos)
		case c < utf8.RuneSelf && !isIdentByte(c):
			err = s.operator()
		default:
			err = s.nameOrString()
		}
		if err != nil {
			return err
		}
	}

	if n := len(s.brackets); n > 0 {
		b := s.brackets[n-1]
		return s.errorAt(b.off, "'%c' was never closed", b.ch)
	}
	if n := len(s.tokens); n > 0 && s.tokens[n-1].Kind != Newline {
		s.emit(Newline, len(s.src), len(s.src))
	}
	for len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
		s.emit(Dedent, len(s.src), len(s.src))
	}
	s.emit(EOF, len(s.src), len(s.src))
	return nil
}

// lineStart measures the indentation of the next logical line and emits
// INDENT or DEDENT tokens. Blank and comment-only lines are consumed.
func (s *scanner) lineStart() (eof bool, err error) {
	for {
		start := s.pos
		col := 0
	measure:
		for s.pos < len(s.src) {
			switch s.src[s.pos] {
			case ' ':
				col++
			case '\t':
				col = (col/8 + 1) * 8
			case '\f':
				col = 0
			case '\r':
			default:
				break measure
			}
			s.pos++
		}
		if s.pos >= len(s.src) {
			return true, nil
		}
		if c := s.src[s.pos]; c == '#' || c == '\n' {
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
			if s.pos < len(s.src) {
				s.pos++
			}
			continue
		}

		s.atLineStart = false
		top := s.indents[len(s.indents)-1]
		switch {
		case col > top:
			s.indents = append(s.indents, col)
			s.emit(Indent, start, s.pos)
		case col < top:
			for col < s.indents[len(s.indents)-1] {
				s.indents = s.indents[:len(s.indents)-1]
				s.emit(Dedent, s.pos, s.pos)
			}
			if col != s.indents[len(s.indents)-1] {
				return false, s.errorAt(s.pos, "unindent does not match any outer indentation level")
			}
		}
		return false, nil
	}
}

func (s *scanner) continuation() error {
	j := s.pos + 1
	if j < len(s.src) && s.src[j] == '\r' {
		j++
	}
	if j >= len(s.src) {
		return s.errorAt(s.pos, "unexpected EOF while parsing")
	}
	if s.src[j] != '\n' {
		return s.errorAt(s.pos, "unexpected character after line continuation character")
	}
	s.pos = j + 1
	return nil
}

func (s *scanner) nameOrString() error {
	start := s.pos
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !isIdentRune(r, s.pos == start) {
			break
		}
		s.pos += size
	}
	if s.pos == start {
		r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
		return s.errorAt(s.pos, "invalid character '%c' (U+%04X)", r, r)
	}
	if q := s.peek(0); (q == '"' || q == '\'') && isStringPrefix(s.src[start:s.pos]) {
		return s.str(start)
	}
	s.emit(Name, start, s.pos)
	return nil
}

// str scans a string literal whose prefix begins at start and whose
// opening quote is at s.pos.
func (s *scanner) str(start int) error {
	q := s.src[s.pos]
	closing := string(q)
	if strings.HasPrefix(s.src[s.pos:], strings.Repeat(closing, 3)) {
		closing = strings.Repeat(closing, 3)
	}
	triple := len(closing) == 3
	s.pos += len(closing)
	for {
		if s.pos >= len(s.src) {
			line, _ := s.lines.position(len(s.src))
			if triple {
				return s.errorAt(start, "unterminated triple-quoted string literal (detected at line %d)", line)
			}
			return s.errorAt(start, "unterminated string literal (detected at line %d)", line)
		}
		switch c := s.src[s.pos]; {
		case c == '\\':
			s.pos += 2
			if s.pos < len(s.src) && s.src[s.pos-1] == '\r' && s.src[s.pos] == '\n' {
				s.pos++
			}
		case c == '\n' && !triple:
			line, _ := s.lines.position(start)
			return s.errorAt(start, "unterminated string literal (detected at line %d)", line)
		case strings.HasPrefix(s.src[s.pos:], closing):
			s.pos += len(closing)
			s.emit(String, start, s.pos)
			return nil
		default:
			s.pos++
		}
	}
}

func (s *scanner) number() error {
	start := s.pos
	if s.peek(0) == '0' && strings.ContainsRune("xXoObB", rune(s.peek(1))) {
		base := unicode.ToLower(rune(s.peek(1)))
		s.pos += 2
		for s.pos < len(s.src) && (isIdentByte(s.src[s.pos]) || isDigit(s.src[s.pos])) {
			if c := s.src[s.pos]; c != '_' && !digitInBase(c, base) {
				return s.errorAt(s.pos, "invalid %s literal", baseName(base))
			}
			s.pos++
		}
		if s.pos == start+2 {
			return s.errorAt(start, "invalid %s literal", baseName(base))
		}
		s.emit(Number, start, s.pos)
		return nil
	}

	s.digits()
	if s.peek(0) == '.' {
		s.pos++
		s.digits()
	}
	if c := s.peek(0); c == 'e' || c == 'E' {
		switch n := s.peek(1); {
		case isDigit(n):
			s.pos++
			s.digits()
		case (n == '+' || n == '-') && isDigit(s.peek(2)):
			s.pos += 2
			s.digits()
		}
	}
	if c := s.peek(0); c == 'j' || c == 'J' {
		s.pos++
	}
	if s.pos < len(s.src) && (isIdentByte(s.src[s.pos]) || s.src[s.pos] >= utf8.RuneSelf) {
		return s.errorAt(s.pos, "invalid decimal literal")
	}
	if text := s.src[start:s.pos]; len(text) > 1 && text[0] == '0' &&
		strings.Trim(text, "0_") != "" && strings.Trim(text, "0123456789_") == "" {
		return s.errorAt(start, "leading zeros in decimal integer literals are not permitted")
	}
	s.emit(Number, start, s.pos)
	return nil
}

func (s *scanner) digits() {
	for s.pos < len(s.src) && (isDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
		s.pos++
	}
}

var (
	ops3 = []string{"**=", "//=", ">>=", "<<=", "..."}
	ops2 = []string{"**", "//", ">>", "<<", "<=", ">=", "==", "!=", "->",
		"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=", ":="}
)

const ops1 = "+-*/%@&|^~<>()[]{},:.;="

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

func (s *scanner) operator() error {
	rest := s.src[s.pos:]
	for _, group := range [][]string{ops3, ops2} {
		for _, op := range group {
			if strings.HasPrefix(rest, op) {
				s.emit(Op, s.pos, s.pos+len(op))
				s.pos += len(op)
				return nil
			}
		}
	}
	c := rest[0]
	if strings.IndexByte(ops1, c) < 0 {
		return s.errorAt(s.pos, "invalid syntax")
	}
	switch c {
	case '(', '[', '{':
		s.brackets = append(s.brackets, bracket{ch: c, off: s.pos})
	case ')', ']', '}':
		n := len(s.brackets)
		if n == 0 {
			return s.errorAt(s.pos, "unmatched '%c'", c)
		}
		if open := s.brackets[n-1].ch; open != closers[c] {
			return s.errorAt(s.pos, "closing parenthesis '%c' does not match opening parenthesis '%c'", c, open)
		}
		s.brackets = s.brackets[:n-1]
	}
	s.emit(Op, s.pos, s.pos+1)
	s.pos++
	return nil
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdentByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentRune(r rune, first bool) bool {
	if r < utf8.RuneSelf {
		return isIdentByte(byte(r)) || (!first && isDigit(byte(r)))
	}
	if unicode.IsLetter(r) {
		return true
	}
	return !first && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Pc, r))
}

func isStringPrefix(p string) bool {
	switch strings.ToLower(p) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}

func digitInBase(c byte, base rune) bool {
	switch base {
	case 'x':
		return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
	case 'o':
		return '0' <= c && c <= '7'
	}
	return c == '0' || c == '1'
}

func baseName(base rune) string {
	switch base {
	case 'x':
		return "hexadecimal"
	case 'o':
		return "octal"
	}
	return "binary"
}
