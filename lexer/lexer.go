// Package lexer tokenizes fylang source text into the token stream consumed
// by the (external) parser.
package lexer

import (
	"bufio"
	"io"
	"strings"

	"github.com/tbhmens/fylang/report"
	"github.com/tbhmens/fylang/token"
)

// Lexer converts a character stream into a Token stream. It holds a single
// rune of lookahead, as required by spec.md's Non-goals (no source-location
// tracking beyond one lookahead).
type Lexer struct {
	src *bufio.Reader

	// peeked holds the next unread rune, or -1 at end of input.
	peeked  rune
	hasPeek bool
}

// New wraps r in a Lexer.
func New(r io.Reader) *Lexer {
	return &Lexer{src: bufio.NewReader(r)}
}

// NextToken returns the next token from the source, advancing past it.
// Whitespace and comments are silently skipped. Lexer errors are fatal, per
// spec.md §7: NextToken reports the diagnostic and terminates the process
// rather than returning an error value.
func (l *Lexer) NextToken() token.Token {
	for {
		c, ok := l.peek()
		if !ok {
			return token.Token{Kind: token.EOF}
		}

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			l.next()
		case c == '/':
			if tok, isComment := l.lexCommentOrSlash(); !isComment {
				return tok
			}
		case c == '\'':
			return l.lexChar()
		case c == '"':
			return l.lexString()
		case isIdentStart(c):
			return l.lexIdentOrKeyword()
		case isDigit(c):
			return l.lexNumber()
		default:
			return l.lexOperator()
		}
	}
}

// -----------------------------------------------------------------------------

func (l *Lexer) peek() (rune, bool) {
	if l.hasPeek {
		return l.peeked, l.peeked != -1
	}

	c, _, err := l.src.ReadRune()
	if err != nil {
		l.peeked, l.hasPeek = -1, true
		return -1, false
	}

	l.peeked, l.hasPeek = c, true
	return c, true
}

// next consumes and returns the current lookahead rune, refilling it.
func (l *Lexer) next() rune {
	c, ok := l.peek()
	l.hasPeek = false
	if !ok {
		return -1
	}
	return c
}

// -----------------------------------------------------------------------------

func isDigit(c rune) bool      { return '0' <= c && c <= '9' }
func isHexDigit(c rune) bool   { return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F') }
func isIdentStart(c rune) bool { return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isIdentCont(c rune) bool  { return isIdentStart(c) || isDigit(c) }

// -----------------------------------------------------------------------------

func (l *Lexer) lexIdentOrKeyword() token.Token {
	var sb strings.Builder
	for {
		c, ok := l.peek()
		if !ok || !isIdentCont(c) {
			break
		}
		sb.WriteRune(l.next())
	}

	name := sb.String()
	if kind, ok := token.LookupKeyword(name); ok {
		return token.Token{Kind: kind}
	}
	return token.Token{Kind: token.IDENTIFIER, Ident: name}
}

// -----------------------------------------------------------------------------

// lexNumber implements spec.md §4.1's number rule: an optional base prefix
// (0x/0b/0o), a run of base-appropriate digits with at most one '.' for base
// 10, and an optional type suffix.
func (l *Lexer) lexNumber() token.Token {
	var sb strings.Builder

	base := 10
	first := l.next()

	hasPrefix := false
	if first == '0' {
		if c, ok := l.peek(); ok {
			switch c {
			case 'x':
				base = 16
				hasPrefix = true
				l.next()
			case 'b':
				base = 2
				hasPrefix = true
				l.next()
			case 'o':
				base = 8
				hasPrefix = true
				l.next()
			}
		}
	}
	if !hasPrefix {
		sb.WriteRune(first)
	}

	hasDot := false
	seenDot := false
	for {
		c, ok := l.peek()
		if !ok {
			break
		}

		if c == '.' {
			if base != 10 {
				report.Fatalf("floating-point numbers with a base that isn't decimal aren't supported")
			}
			if seenDot {
				break
			}
			seenDot = true
			hasDot = true
			sb.WriteRune(l.next())
			continue
		}

		if !isDigitForBase(c, base) {
			break
		}
		sb.WriteRune(l.next())
	}

	var suffix byte
	if c, ok := l.peek(); ok && isSuffixChar(c) {
		suffix = byte(l.next())
	} else if hasDot {
		suffix = 'd'
	} else {
		suffix = 'i'
	}

	return token.Token{
		Kind: token.NUMBER,
		Num: token.NumberLit{
			Text:   sb.String(),
			Base:   base,
			HasDot: hasDot,
			Suffix: suffix,
		},
	}
}

func isDigitForBase(c rune, base int) bool {
	switch base {
	case 2:
		return c == '0' || c == '1'
	case 8:
		return '0' <= c && c <= '7'
	case 16:
		return isHexDigit(c)
	default:
		return isDigit(c)
	}
}

func isSuffixChar(c rune) bool {
	switch c {
	case 'd', 'f', 'i', 'u', 'l', 'b':
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------

func (l *Lexer) lexString() token.Token {
	l.next() // opening quote

	var buf []byte
	for {
		c, ok := l.peek()
		if !ok {
			report.Fatalf("unterminated string literal")
		}
		if c == '"' {
			l.next()
			break
		}
		if c == '\\' {
			l.next()
			buf = append(buf, l.readEscape())
			continue
		}
		buf = append(buf, byte(l.next()))
	}

	flavor := token.CharArray
	if c, ok := l.peek(); ok {
		switch c {
		case 'c':
			flavor = token.CString
			l.next()
		case 'p':
			flavor = token.PtrCharArray
			l.next()
		}
	}

	if flavor == token.CString || flavor == token.PtrCharArray {
		buf = append(buf, 0)
	}

	return token.Token{Kind: token.STRING, Str: token.StringLit{Bytes: buf, Flavor: flavor}}
}

func (l *Lexer) lexChar() token.Token {
	l.next() // opening quote

	c, ok := l.peek()
	if !ok {
		report.Fatalf("unterminated char literal")
	}

	var val byte
	if c == '\\' {
		l.next()
		val = l.readEscape()
	} else if c == '\'' {
		report.Fatalf("empty char literal")
	} else {
		val = byte(l.next())
	}

	closing, ok := l.peek()
	if !ok {
		report.Fatalf("unterminated char literal")
	}
	if closing != '\'' {
		report.Fatalf("char literal may only contain a single byte")
	}
	l.next()

	return token.Token{Kind: token.CHAR, CharVal: val}
}

func (l *Lexer) readEscape() byte {
	c, ok := l.peek()
	if !ok {
		report.Fatalf("expected escape sequence, got end of input")
	}
	l.next()

	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case '\\':
		return '\\'
	case '\'':
		return '\''
	case '"':
		return '"'
	case '0':
		return 0
	case 'x':
		hi, ok1 := l.peek()
		if !ok1 || !isHexDigit(hi) {
			report.Fatalf("expected two hex digits after \\x")
		}
		l.next()
		lo, ok2 := l.peek()
		if !ok2 || !isHexDigit(lo) {
			report.Fatalf("expected two hex digits after \\x")
		}
		l.next()
		return byte(hexVal(hi)<<4 | hexVal(lo))
	default:
		report.Fatalf("invalid escape sequence '\\%c'", c)
		return 0
	}
}

func hexVal(c rune) int {
	switch {
	case c <= '9':
		return int(c - '0')
	case c <= 'F':
		return int(c-'A') + 10
	default:
		return int(c-'a') + 10
	}
}

// -----------------------------------------------------------------------------

// lexCommentOrSlash consumes a `/` that might start a line or block comment.
// If it was a comment, isComment is true and the caller should loop back
// around to NextToken's top; otherwise tok is the `/`-rooted operator token.
func (l *Lexer) lexCommentOrSlash() (tok token.Token, isComment bool) {
	l.next() // '/'

	c, ok := l.peek()
	if !ok {
		return token.Token{Kind: '/'}, false
	}

	switch c {
	case '/':
		for {
			c, ok := l.peek()
			if !ok || c == '\n' {
				break
			}
			l.next()
		}
		return token.Token{}, true
	case '*':
		l.next()
		var prev rune
		for {
			c, ok := l.peek()
			if !ok {
				report.Fatalf("unterminated block comment")
			}
			l.next()
			if prev == '*' && c == '/' {
				break
			}
			prev = c
		}
		return token.Token{}, true
	case '=':
		l.next()
		return token.Token{Kind: token.SLASHEQ}, false
	default:
		return token.Token{Kind: '/'}, false
	}
}

// -----------------------------------------------------------------------------

// twoCharOps is the closed set of maximal-munch multi-character operators,
// keyed by their first rune then matched against the second.
var twoCharOps = map[rune]map[rune]token.Kind{
	'=': {'=': token.EQEQ},
	'<': {'=': token.LEQ, '<': token.LSHIFT},
	'>': {'=': token.GEQ, '>': token.RSHIFT},
	'!': {'=': token.NEQ},
	'+': {'=': token.PLUSEQ},
	'-': {'=': token.MINUSEQ},
	'*': {'=': token.STAREQ},
	'%': {'=': token.PERCENTEQ},
	'&': {'=': token.ANDEQ, '&': token.LAND},
	'|': {'=': token.OREQ, '|': token.LOR},
	':': {':': token.DOUBLECOLON},
}

func (l *Lexer) lexOperator() token.Token {
	first := l.next()

	if seconds, ok := twoCharOps[first]; ok {
		if c, ok := l.peek(); ok {
			if kind, ok := seconds[c]; ok {
				l.next()
				return token.Token{Kind: kind}
			}
		}
	}

	return token.Token{Kind: token.Kind(first)}
}
