package commands

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// nameMatcher filters listings by a case-insensitive glob on product names.
// An empty pattern matches everything.
type nameMatcher struct {
	pattern string
}

func newNameMatcher(pattern string) (nameMatcher, error) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nameMatcher{}, fmt.Errorf("invalid --match pattern %q", pattern)
	}
	return nameMatcher{pattern: pattern}, nil
}

func (m nameMatcher) Match(names ...string) bool {
	if m.pattern == "" {
		return true
	}
	for _, name := range names {
		if ok, _ := doublestar.Match(m.pattern, strings.ToLower(name)); ok {
			return true
		}
	}
	return false
}
