package reader

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokAtom
	tokQuoted // quoted atom; never an operator-only name
	tokVar
	tokInt
	tokFloat
	tokString
	tokPunct // ( ) [ ] { } , |
	tokOpenCT
	tokEnd
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokAtom, tokQuoted:
		return "atom"
	case tokVar:
		return "variable"
	case tokInt, tokFloat:
		return "number"
	case tokString:
		return "string"
	case tokPunct, tokOpenCT:
		return "punctuation"
	case tokEnd:
		return "end of clause"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	ival int64
	bval *big.Int // set instead of ival when the literal exceeds int64
	fval float64
	pos  Pos
	// layout reports whitespace or a comment directly before the token.
	layout bool
}

// Pos is a 1-based line and column in the source text.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

const symbolChars = "+-*/\\^<>=~:.?@#&$"

type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) peekRune() rune {
	if l.off >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	return r
}

func (l *lexer) peekRuneAt(n int) rune {
	off := l.off
	for i := 0; i < n; i++ {
		if off >= len(l.src) {
			return -1
		}
		_, size := utf8.DecodeRuneInString(l.src[off:])
		off += size
	}
	if off >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[off:])
	return r
}

func (l *lexer) next() rune {
	if l.off >= len(l.src) {
		return -1
	}
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) pos() Pos {
	return Pos{Line: l.line, Col: l.col}
}

func (l *lexer) errorf(p Pos, format string, args ...any) error {
	return &SyntaxError{Pos: p, Message: fmt.Sprintf(format, args...)}
}

// skipLayout consumes whitespace and comments and reports whether it
// consumed anything.
func (l *lexer) skipLayout() (bool, error) {
	skipped := false
	for {
		r := l.peekRune()
		switch {
		case r == -1:
			return skipped, nil
		case unicode.IsSpace(r):
			l.next()
		case r == '%':
			for r := l.peekRune(); r != -1 && r != '\n'; r = l.peekRune() {
				l.next()
			}
		case r == '/' && l.peekRuneAt(1) == '*':
			start := l.pos()
			l.next()
			l.next()
			for {
				r := l.next()
				if r == -1 {
					return skipped, l.errorf(start, "unterminated block comment")
				}
				if r == '*' && l.peekRune() == '/' {
					l.next()
					break
				}
			}
		default:
			return skipped, nil
		}
		skipped = true
	}
}

func (l *lexer) token() (token, error) {
	layout, err := l.skipLayout()
	if err != nil {
		return token{}, err
	}
	start := l.pos()
	tok := token{pos: start, layout: layout}
	r := l.peekRune()

	switch {
	case r == -1:
		tok.kind = tokEOF
		return tok, nil

	case unicode.IsDigit(r):
		return l.number(tok)

	case r == '_' || unicode.IsUpper(r):
		tok.kind = tokVar
		tok.text = l.identifier()
		return tok, nil

	case unicode.IsLetter(r):
		tok.kind = tokAtom
		tok.text = l.identifier()
		return tok, nil

	case r == '\'':
		l.next()
		s, err := l.quoted('\'', start)
		if err != nil {
			return tok, err
		}
		tok.kind = tokQuoted
		tok.text = s
		return tok, nil

	case r == '"':
		l.next()
		s, err := l.quoted('"', start)
		if err != nil {
			return tok, err
		}
		tok.kind = tokString
		tok.text = s
		return tok, nil

	case r == '(':
		l.next()
		tok.kind = tokPunct
		if !layout {
			tok.kind = tokOpenCT
		}
		tok.text = "("
		return tok, nil

	case strings.ContainsRune(")[]{},|", r):
		l.next()
		tok.kind = tokPunct
		tok.text = string(r)
		return tok, nil

	case r == '!' || r == ';':
		l.next()
		tok.kind = tokAtom
		tok.text = string(r)
		return tok, nil

	case r == '.':
		next := l.peekRuneAt(1)
		if next == -1 || next == '%' || unicode.IsSpace(next) {
			l.next()
			tok.kind = tokEnd
			tok.text = "."
			return tok, nil
		}
		fallthrough

	case strings.ContainsRune(symbolChars, r):
		var b strings.Builder
		for r := l.peekRune(); r != -1 && strings.ContainsRune(symbolChars, r); r = l.peekRune() {
			b.WriteRune(l.next())
		}
		tok.kind = tokAtom
		tok.text = b.String()
		return tok, nil
	}

	return tok, l.errorf(start, "unexpected character %q", r)
}

func (l *lexer) identifier() string {
	var b strings.Builder
	for r := l.peekRune(); r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r); r = l.peekRune() {
		b.WriteRune(l.next())
	}
	return b.String()
}

func (l *lexer) number(tok token) (token, error) {
	start := l.off
	if l.peekRune() == '0' {
		switch l.peekRuneAt(1) {
		case '\'':
			l.next()
			l.next()
			r, err := l.charCode(tok.pos)
			if err != nil {
				return tok, err
			}
			tok.kind = tokInt
			tok.ival = int64(r)
			return tok, nil
		case 'x', 'o', 'b':
			base := map[rune]int{'x': 16, 'o': 8, 'b': 2}[l.peekRuneAt(1)]
			if isDigitIn(l.peekRuneAt(2), base) {
				l.next()
				l.next()
				digits := l.off
				for isDigitIn(l.peekRune(), base) {
					l.next()
				}
				tok.kind = tokInt
				tok.ival, tok.bval = parseInteger(l.src[digits:l.off], base)
				return tok, nil
			}
		}
	}
	for unicode.IsDigit(l.peekRune()) {
		l.next()
	}
	isFloat := false
	if l.peekRune() == '.' && unicode.IsDigit(l.peekRuneAt(1)) {
		isFloat = true
		l.next()
		for unicode.IsDigit(l.peekRune()) {
			l.next()
		}
	}
	if r := l.peekRune(); r == 'e' || r == 'E' {
		n := 1
		if s := l.peekRuneAt(1); s == '+' || s == '-' {
			n = 2
		}
		if unicode.IsDigit(l.peekRuneAt(n)) {
			isFloat = true
			for i := 0; i < n; i++ {
				l.next()
			}
			for unicode.IsDigit(l.peekRune()) {
				l.next()
			}
		}
	}
	text := l.src[start:l.off]
	tok.text = text
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return tok, l.errorf(tok.pos, "invalid float %q", text)
		}
		tok.kind = tokFloat
		tok.fval = f
		return tok, nil
	}
	tok.kind = tokInt
	tok.ival, tok.bval = parseInteger(text, 10)
	return tok, nil
}

// parseInteger converts a run of digits already checked by the lexer.
// Values beyond int64 come back as a *big.Int.
func parseInteger(digits string, base int) (int64, *big.Int) {
	if v, err := strconv.ParseInt(digits, base, 64); err == nil {
		return v, nil
	}
	v, _ := new(big.Int).SetString(digits, base)
	return 0, v
}

func isDigitIn(r rune, base int) bool {
	switch {
	case r >= '0' && r <= '9':
		return int(r-'0') < base
	case r >= 'a' && r <= 'f':
		return base == 16
	case r >= 'A' && r <= 'F':
		return base == 16
	}
	return false
}

// charCode reads the character after 0' including escapes.
func (l *lexer) charCode(p Pos) (rune, error) {
	r := l.next()
	switch r {
	case -1:
		return 0, l.errorf(p, "unexpected end of file in character code")
	case '\\':
		return l.escape(p)
	case '\'':
		if l.peekRune() == '\'' {
			l.next()
		}
	}
	return r, nil
}

func (l *lexer) quoted(q rune, p Pos) (string, error) {
	var b strings.Builder
	for {
		r := l.next()
		switch r {
		case -1:
			return "", l.errorf(p, "unterminated quoted text")
		case q:
			if l.peekRune() == q {
				l.next()
				b.WriteRune(q)
				continue
			}
			return b.String(), nil
		case '\\':
			if l.peekRune() == '\n' {
				l.next()
				continue
			}
			e, err := l.escape(p)
			if err != nil {
				return "", err
			}
			b.WriteRune(e)
		default:
			b.WriteRune(r)
		}
	}
}

func (l *lexer) escape(p Pos) (rune, error) {
	r := l.next()
	switch r {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case 'a':
		return '\a', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'v':
		return '\v', nil
	case '0':
		return 0, nil
	case '\\', '\'', '"', '`':
		return r, nil
	case 'x':
		start := l.off
		for isDigitIn(l.peekRune(), 16) {
			l.next()
		}
		v, err := strconv.ParseInt(l.src[start:l.off], 16, 32)
		if err != nil {
			return 0, l.errorf(p, "invalid hex escape")
		}
		if l.peekRune() == '\\' {
			l.next()
		}
		return rune(v), nil
	}
	return 0, l.errorf(p, "unknown escape \\%c", r)
}
