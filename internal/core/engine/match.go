// Package engine evaluates rule lists against event content and produces the
// label and comment action sets.
package engine

import (
	"fmt"
	"regexp"
	"strings"
)

var delimitedForm = regexp.MustCompile(`^/(.*)/([a-zA-Z]*)$`)

// compilePattern compiles one match pattern. The delimited form
// "/body/flags" honors the i, m and s flags; any other string is compiled as
// a plain regular expression (literal substrings work unchanged).
func compilePattern(pattern string) (*regexp.Regexp, error) {
	body := pattern
	if m := delimitedForm.FindStringSubmatch(pattern); m != nil {
		body = m[1]
		var flags strings.Builder
		for _, f := range m[2] {
			switch f {
			case 'i', 'm', 's':
				flags.WriteRune(f)
			}
		}
		if flags.Len() > 0 {
			body = "(?" + flags.String() + ")" + body
		}
	}
	re, err := regexp.Compile(body)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Match reports whether the text satisfies every pattern in the list. An
// empty list is vacuously true; the check short-circuits on the first
// non-matching pattern. An invalid pattern is a fatal error, since it means
// the configuration itself is bad.
func Match(text string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		re, err := compilePattern(pattern)
		if err != nil {
			return false, err
		}
		if !re.MatchString(text) {
			return false, nil
		}
	}
	return true, nil
}
