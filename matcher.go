package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
)

// newLeafMatchers lists all known leaf matchers in claim order
// To support a new match-type modifier, implement LeafMatcher and add an
// instance here, modifier claims must not overlap
func newLeafMatchers() []LeafMatcher {
	return []LeafMatcher{
		&RegexMatcher{},
		&GlobMatcher{},
	}
}

// stringifyValue converts a scalar to the canonical string form used for comparison
// Rule values and event values go through the same conversion so a numeric
// selector can match a numeric field
func stringifyValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case string:
		return v, true
	}
	return "", false
}

// isEmptyValue defines the null-selector notion of an empty field
// Absent, json null and zero-length string all count
func isEmptyValue(value interface{}, found bool) bool {
	if !found || value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return len(s) == 0
	}
	return false
}

// RegexMatcher is the default leaf matcher, claiming leaves without modifier segments
// Configured value is compiled as a regular expression and compared against
// the whole stringified field value, substring hits alone do not count
// A null configured value flips semantics, the leaf then matches empty fields
type RegexMatcher struct {
	re *regexp.Regexp
}

// IsTargetKey implements LeafMatcher
func (m *RegexMatcher) IsTargetKey(modifiers []string) bool {
	return len(modifiers) == 0
}

// Init implements LeafMatcher
func (m *RegexMatcher) Init(keys []string, value interface{}) []error {
	if value == nil {
		m.re = nil
		return nil
	}
	pattern, ok := stringifyValue(value)
	if !ok {
		return []error{ErrUnsupportedSelector{Keys: keys, Value: value}}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return []error{ErrInvalidRegex{Pattern: pattern, Keys: keys, Err: err}}
	}
	m.re = re
	return nil
}

// IsMatch implements LeafMatcher
func (m *RegexMatcher) IsMatch(value interface{}, found bool) bool {
	if m.re == nil {
		return isEmptyValue(value, found)
	}
	if !found {
		return false
	}
	str, ok := stringifyValue(value)
	if !ok {
		return false
	}
	return m.fullMatch(str)
}

// fullMatch reports whether some substring matched by the pattern equals the
// entire input, rule authors do not need explicit anchoring
func (m *RegexMatcher) fullMatch(str string) bool {
	for _, hit := range m.re.FindAllString(str, -1) {
		if hit == str {
			return true
		}
	}
	return false
}

// GlobMatcher handles the contains, startswith and endswith modifier segments,
// written in rules as a nested mapping under the field name
// Configured value becomes a wildcard pattern around or beside the field value,
// contains: certutil behaves like glob *certutil*
// Wildcards inside the configured value itself are passed through to the glob
type GlobMatcher struct {
	g glob.Glob
}

// glob matcher modifier keys
const (
	modContains   = "contains"
	modStartswith = "startswith"
	modEndswith   = "endswith"
)

// IsTargetKey implements LeafMatcher
func (m *GlobMatcher) IsTargetKey(modifiers []string) bool {
	if len(modifiers) != 1 {
		return false
	}
	switch modifiers[0] {
	case modContains, modStartswith, modEndswith:
		return true
	}
	return false
}

// Init implements LeafMatcher
func (m *GlobMatcher) Init(keys []string, value interface{}) []error {
	if value == nil {
		// null has no meaningful contains semantics
		return []error{ErrUnsupportedSelector{Keys: keys, Value: value}}
	}
	token, ok := stringifyValue(value)
	if !ok {
		return []error{ErrUnsupportedSelector{Keys: keys, Value: value}}
	}
	token = escapeGlobMeta(token)
	var pattern string
	switch keys[len(keys)-1] {
	case modContains:
		pattern = "*" + token + "*"
	case modStartswith:
		pattern = token + "*"
	case modEndswith:
		pattern = "*" + token
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return []error{ErrInvalidGlob{Pattern: pattern, Keys: keys, Err: err}}
	}
	m.g = g
	return nil
}

// escapeGlobMeta escapes glob control characters other than the wildcards
// Backslashes and brackets in rule values are plain text, * and ? pass through
func escapeGlobMeta(token string) string {
	sb := strings.Builder{}
	for i := 0; i < len(token); i++ {
		switch token[i] {
		case '\\', '[', ']', '{', '}':
			sb.WriteByte('\\')
		}
		sb.WriteByte(token[i])
	}
	return sb.String()
}

// IsMatch implements LeafMatcher
func (m *GlobMatcher) IsMatch(value interface{}, found bool) bool {
	if m.g == nil || !found {
		return false
	}
	str, ok := stringifyValue(value)
	if !ok {
		return false
	}
	return m.g.Match(str)
}
