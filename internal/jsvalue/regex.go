package jsvalue

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// RegexData wraps a compiled regexp2.Regexp (chosen over the standard
// library's RE2-based regexp because JS patterns routinely use
// backreferences and lookaround, which RE2 cannot express) alongside the
// literal source text needed for toString and lastIndex bookkeeping.
type RegexData struct {
	Source    string
	Flags     string
	Compiled  *regexp2.Regexp
	LastIndex int // used when Global or Sticky
	Global    bool
	Sticky    bool
}

// CompileRegex builds a RegExp object from a /pattern/flags pair.
func CompileRegex(pattern, flags string) (*Object, error) {
	opts := regexp2.None
	if strings.Contains(flags, "i") {
		opts |= regexp2.IgnoreCase
	}
	if strings.Contains(flags, "s") {
		opts |= regexp2.Singleline
	}
	if strings.Contains(flags, "m") {
		opts |= regexp2.Multiline
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	return &Object{
		Class: ClassRegExp,
		index: map[string]int{},
		Regex: &RegexData{
			Source:   pattern,
			Flags:    flags,
			Compiled: re,
			Global:   strings.Contains(flags, "g"),
			Sticky:   strings.Contains(flags, "y"),
		},
	}, nil
}
