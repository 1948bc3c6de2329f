package value

import (
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultRegexTimeout bounds a single match of a Regex built with RegexOf.
const DefaultRegexTimeout = 100 * time.Millisecond

// Regex is a compiled pattern. Two regexes are equal when their pattern
// text is equal.
//
// Patterns use the backtracking regexp2 engine in RE2 mode: lookarounds and
// backreferences are available, `$` only matches at the very end of the
// input and \d, \w, \s are ASCII classes. Every match is bounded by a
// timeout.
type Regex struct {
	pattern string
	re      *regexp2.Regexp
}

// CompileRegex compiles pattern with the given match timeout. A zero
// timeout selects DefaultRegexTimeout.
func CompileRegex(pattern string, timeout time.Duration) (*Regex, error) {
	re, err := regexp2.Compile(pattern, regexp2.RE2)
	if err != nil {
		return nil, wrapError(ErrorInvalidRegex, err, "invalid pattern %q", pattern)
	}
	if timeout <= 0 {
		timeout = DefaultRegexTimeout
	}
	re.MatchTimeout = timeout
	return &Regex{pattern: pattern, re: re}, nil
}

// Pattern returns the source text.
func (r *Regex) Pattern() string {
	if r == nil {
		return ""
	}
	return r.pattern
}

// MatchString reports whether s contains a match. The only error it returns
// is a match timeout.
func (r *Regex) MatchString(s string) (bool, error) {
	return r.re.MatchString(s)
}

// Timeout returns the match bound.
func (r *Regex) Timeout() time.Duration {
	return r.re.MatchTimeout
}

func (r *Regex) String() string {
	return r.Pattern()
}
