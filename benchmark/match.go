package benchmark

import (
	"fmt"
	"regexp"
	"strings"
)

// matcher selects instances with go test -run syntax: the pattern is split on
// '/', the first element matches the case name and element i matches the
// i-th tuple label. Elements are unanchored regular expressions; an empty
// element matches anything, as do missing elements.
type matcher struct {
	levels []*regexp.Regexp
}

func newMatcher(pattern string) (*matcher, error) {
	m := &matcher{}
	if pattern == "" {
		return m, nil
	}
	for i, elem := range strings.Split(pattern, "/") {
		if elem == "" {
			m.levels = append(m.levels, nil)
			continue
		}
		re, err := regexp.Compile(elem)
		if err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("filter element %d %q: %v", i, elem, err)}
		}
		m.levels = append(m.levels, re)
	}
	return m, nil
}

func (m *matcher) matchCase(name string) bool {
	return m.match(0, name)
}

func (m *matcher) matchLabels(labels []string) bool {
	for i, l := range labels {
		if !m.match(i+1, l) {
			return false
		}
	}
	return true
}

func (m *matcher) match(level int, s string) bool {
	if level >= len(m.levels) || m.levels[level] == nil {
		return true
	}
	return m.levels[level].MatchString(s)
}
