package jslex

import (
	"fmt"
	"strings"
)

// Lexer produces Tokens on demand. It is not safe for concurrent use.
type Lexer struct {
	src  string
	pos  int
	prev Token // last token returned, used for regex/division disambiguation
	have bool  // whether prev is meaningful yet
}

// New creates a Lexer over src.
func New(src string) *Lexer { return &Lexer{src: src} }

// regexAllowedAfter reports whether a "/" immediately following prev must
// start a regex literal rather than being the division/`/=` operator.
// Mirrors original_source/src/core_impl/parser/ident.rs's lookback table:
// after an identifier, number, string, template, regex, `)`, `]`, `}`, or
// the postfix `++`/`--`, "/" is division; everywhere else — including at
// the very start of input, after most punctuators, and after the
// regex-introducing keyword set — it is a regex literal.
func regexAllowedAfter(prev Token, have bool) bool {
	if !have {
		return true
	}
	switch prev.Kind {
	case Ident, Number, BigInt, String, TemplateString, Regex:
		return false
	case Keyword:
		switch prev.Text {
		case "this", "super", "true", "false", "null", "undefined":
			return false
		}
		return true
	case Punct:
		switch prev.Text {
		case ")", "]", "}", "++", "--":
			return false
		}
		return true
	}
	return true
}

// Next returns the next token, or a Kind==EOF token at the end of input.
func (l *Lexer) Next() (Token, error) {
	newline := l.skipTrivia()
	if l.pos >= len(l.src) {
		t := Token{Kind: EOF, NewlineBefore: newline}
		l.prev, l.have = t, true
		return t, nil
	}

	c := l.src[l.pos]
	var tok Token
	var err error
	switch {
	case isIdentStart(c):
		tok = l.readIdent()
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		tok, err = l.readNumber()
	case c == '"' || c == '\'':
		tok, err = l.readString(c)
	case c == '`':
		tok, err = l.readTemplate()
	case c == '/' && regexAllowedAfter(l.prev, l.have):
		tok, err = l.readRegex()
	default:
		tok, err = l.readPunct()
	}
	if err != nil {
		return Token{}, err
	}
	tok.NewlineBefore = newline
	l.prev, l.have = tok, true
	return tok, nil
}

// skipTrivia consumes whitespace and comments, reporting whether a line
// terminator was seen (needed for automatic-semicolon-insertion in the
// parser).
func (l *Lexer) skipTrivia() bool {
	newline := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			newline = true
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				l.pos = len(l.src)
				return newline
			}
			if strings.Contains(l.src[l.pos:l.pos+2+end], "\n") {
				newline = true
			}
			l.pos += 2 + end + 2
		default:
			return newline
		}
	}
	return newline
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}
func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
func isDigit(c byte) bool     { return c >= '0' && c <= '9' }

func (l *Lexer) readIdent() Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	kind := Ident
	if IsKeyword(text) {
		kind = Keyword
	}
	return Token{Kind: kind, Text: text}
}

func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == 'x' || l.src[l.pos+1] == 'X') {
		l.pos += 2
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
		}
	} else {
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		if l.pos < len(l.src) && l.src[l.pos] == '.' {
			l.pos++
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
		if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
			l.pos++
			if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
				l.pos++
			}
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}
	if l.pos < len(l.src) && l.src[l.pos] == 'n' {
		text := l.src[start:l.pos]
		l.pos++
		return Token{Kind: BigInt, Text: text}, nil
	}
	return Token{Kind: Number, Text: l.src[start:l.pos]}, nil
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (l *Lexer) readString(quote byte) (Token, error) {
	l.pos++ // consume opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == quote {
			l.pos++
			return Token{Kind: String, Str: sb.String()}, nil
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			r, n := decodeEscape(l.src[l.pos+1:])
			sb.WriteString(r)
			l.pos += 1 + n
			continue
		}
		sb.WriteByte(c)
		l.pos++
	}
	return Token{}, fmt.Errorf("jslex: unterminated string literal at EOF")
}

// readTemplate captures the raw template-literal source (backtick to
// backtick, honoring nested ${ … } brace depth) without decoding escapes or
// splitting quasis — jsparse re-lexes the quasi segments itself so nested
// expressions can contain further template literals.
func (l *Lexer) readTemplate() (Token, error) {
	start := l.pos
	l.pos++ // consume opening backtick
	depth := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.src):
			l.pos += 2
		case c == '`' && depth == 0:
			l.pos++
			return Token{Kind: TemplateString, Text: l.src[start:l.pos]}, nil
		case c == '$' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '{':
			depth++
			l.pos += 2
		case c == '}' && depth > 0:
			depth--
			l.pos++
		default:
			l.pos++
		}
	}
	return Token{}, fmt.Errorf("jslex: unterminated template literal at EOF")
}

func (l *Lexer) readRegex() (Token, error) {
	start := l.pos
	l.pos++ // consume opening '/'
	inClass := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.src):
			l.pos += 2
		case c == '[':
			inClass = true
			l.pos++
		case c == ']':
			inClass = false
			l.pos++
		case c == '/' && !inClass:
			pattern := l.src[start+1 : l.pos]
			l.pos++
			flagStart := l.pos
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			return Token{Kind: Regex, RegexPattern: pattern, RegexFlags: l.src[flagStart:l.pos]}, nil
		case c == '\n':
			return Token{}, fmt.Errorf("jslex: unterminated regex literal")
		default:
			l.pos++
		}
	}
	return Token{}, fmt.Errorf("jslex: unterminated regex literal at EOF")
}

// puncts is tried longest-match-first.
var puncts = []string{
	">>>=", "...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--", "+=", "-=",
	"*=", "/=", "%=", "&=", "|=", "^=", "**", "<<", ">>",
	"{", "}", "(", ")", "[", "]", ".", ";", ",", "<", ">", "+", "-", "*", "/",
	"%", "&", "|", "^", "!", "~", "?", ":", "=",
}

func (l *Lexer) readPunct() (Token, error) {
	for _, p := range puncts {
		if strings.HasPrefix(l.src[l.pos:], p) {
			l.pos += len(p)
			return Token{Kind: Punct, Text: p}, nil
		}
	}
	return Token{}, fmt.Errorf("jslex: unexpected character %q at offset %d", l.src[l.pos], l.pos)
}

func decodeEscape(s string) (string, int) {
	if s == "" {
		return "", 0
	}
	switch s[0] {
	case 'n':
		return "\n", 1
	case 't':
		return "\t", 1
	case 'r':
		return "\r", 1
	case 'b':
		return "\b", 1
	case 'f':
		return "\f", 1
	case 'v':
		return "\v", 1
	case '0':
		return "\x00", 1
	case '\n':
		return "", 1
	case 'u':
		if len(s) > 1 && s[1] == '{' {
			end := strings.IndexByte(s, '}')
			if end > 0 {
				if r, ok := parseHexRune(s[2:end]); ok {
					return string(r), end + 1
				}
			}
			return "u", 1
		}
		if len(s) >= 5 {
			if r, ok := parseHexRune(s[1:5]); ok {
				return string(r), 5
			}
		}
		return "u", 1
	case 'x':
		if len(s) >= 3 {
			if r, ok := parseHexRune(s[1:3]); ok {
				return string(r), 3
			}
		}
		return "x", 1
	default:
		return string(s[0]), 1
	}
}

func parseHexRune(s string) (rune, bool) {
	var n rune
	for _, c := range []byte(s) {
		n <<= 4
		switch {
		case c >= '0' && c <= '9':
			n |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			n |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			n |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return n, true
}
