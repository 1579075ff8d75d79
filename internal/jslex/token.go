// Package jslex tokenizes the JS-subset source jsparse consumes. Its one
// hard problem, called out explicitly by the design this follows, is
// telling a "/" that starts a regex literal from a division operator; the
// lexer carries the keyword/punctuator lookback table original_source
// uses for that decision rather than guessing at a smaller one.
package jslex

// Kind classifies a Token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Keyword
	Number
	BigInt
	String
	TemplateString // raw source text of a template literal, re-lexed by the parser
	Regex
	Punct
)

// Token is one lexical token; Text is the token's literal source slice
// (identifier name, number's digits, punctuator symbol, …). Str holds the
// decoded value for String tokens. Regex tokens split pattern/flags in
// RegexPattern/RegexFlags.
type Token struct {
	Kind        Kind
	Text        string
	Str         string
	RegexPattern string
	RegexFlags   string
	NewlineBefore bool // true if a line terminator appeared before this token (ASI)
}

var keywords = map[string]bool{
	"var": true, "let": true, "const": true, "function": true, "return": true,
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"break": true, "continue": true, "true": true, "false": true, "null": true,
	"undefined": true, "new": true, "delete": true, "typeof": true, "void": true,
	"in": true, "of": true, "instanceof": true, "try": true, "catch": true,
	"finally": true, "throw": true, "switch": true, "case": true, "default": true,
	"this": true, "yield": true, "await": true, "async": true, "class": true,
	"extends": true, "super": true, "static": true, "get": true, "set": true,
}

// IsKeyword reports whether s is a reserved word this grammar recognizes.
func IsKeyword(s string) bool { return keywords[s] }
