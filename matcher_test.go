package engine

import (
	"testing"
)

func TestRegexMatcherClaims(t *testing.T) {
	m := &RegexMatcher{}
	if !m.IsTargetKey(nil) || !m.IsTargetKey([]string{}) {
		t.Fatal("regex matcher should claim leaves without modifiers")
	}
	if m.IsTargetKey([]string{"contains"}) {
		t.Fatal("regex matcher should not claim modifier segments")
	}
}

func TestRegexMatcherNullSelector(t *testing.T) {
	m := &RegexMatcher{}
	if errs := m.Init([]string{"SubjectUserSid"}, nil); len(errs) > 0 {
		t.Fatalf("null selector should bind, got %v", errs)
	}
	cases := []struct {
		value    interface{}
		found    bool
		expected bool
	}{
		{nil, false, true},
		{nil, true, true},
		{"", true, true},
		{"S-1-5-18", true, false},
		{float64(0), true, false},
		{false, true, false},
		{map[string]interface{}{}, true, false},
	}
	for i, c := range cases {
		if got := m.IsMatch(c.value, c.found); got != c.expected {
			t.Fatalf("null selector case %d: got %v, wanted %v for %v/%v",
				i, got, c.expected, c.value, c.found)
		}
	}
}

func TestRegexMatcherFullStringSemantics(t *testing.T) {
	m := &RegexMatcher{}
	if errs := m.Init([]string{"Image"}, "abc"); len(errs) > 0 {
		t.Fatal(errs)
	}
	if !m.IsMatch("abc", true) {
		t.Fatal("pattern abc should match value abc")
	}
	for _, value := range []string{"xabcx", "abcd", "zabc", "ab"} {
		if m.IsMatch(value, true) {
			t.Fatalf("pattern abc should not match value %s", value)
		}
	}
}

func TestRegexMatcherStringification(t *testing.T) {
	cases := []struct {
		selector interface{}
		value    interface{}
		expected bool
	}{
		{true, true, true},
		{true, "true", true},
		{true, false, false},
		{42, float64(42), true},
		{42, "42", true},
		{42, float64(421), false},
		{"4624", float64(4624), true},
		{1.5, float64(1.5), true},
		{"abc", []interface{}{"abc"}, false},
		{"abc", map[string]interface{}{"abc": "abc"}, false},
	}
	for i, c := range cases {
		m := &RegexMatcher{}
		if errs := m.Init([]string{"field"}, c.selector); len(errs) > 0 {
			t.Fatalf("case %d failed init: %v", i, errs)
		}
		if got := m.IsMatch(c.value, true); got != c.expected {
			t.Fatalf("case %d: selector %v against %v got %v, wanted %v",
				i, c.selector, c.value, got, c.expected)
		}
	}
}

func TestRegexMatcherBindErrors(t *testing.T) {
	m := &RegexMatcher{}
	errs := m.Init([]string{"Image"}, "[")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error for broken pattern, got %v", errs)
	}
	if _, ok := errs[0].(ErrInvalidRegex); !ok {
		t.Fatalf("expected ErrInvalidRegex, got %T", errs[0])
	}
	m = &RegexMatcher{}
	errs = m.Init([]string{"Image"}, []interface{}{"a"})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error for non-scalar selector, got %v", errs)
	}
	if _, ok := errs[0].(ErrUnsupportedSelector); !ok {
		t.Fatalf("expected ErrUnsupportedSelector, got %T", errs[0])
	}
}

func TestGlobMatcherClaims(t *testing.T) {
	m := &GlobMatcher{}
	for _, mod := range []string{modContains, modStartswith, modEndswith} {
		if !m.IsTargetKey([]string{mod}) {
			t.Fatalf("glob matcher should claim %s", mod)
		}
	}
	if m.IsTargetKey(nil) {
		t.Fatal("glob matcher should not claim unmodified leaves")
	}
	if m.IsTargetKey([]string{"frobnicate"}) {
		t.Fatal("glob matcher should not claim unknown modifiers")
	}
	if m.IsTargetKey([]string{modContains, modContains}) {
		t.Fatal("glob matcher should not claim stacked modifiers")
	}
}

func TestGlobMatcherModes(t *testing.T) {
	cases := []struct {
		modifier string
		selector interface{}
		pos, neg []string
	}{
		{
			modifier: modContains,
			selector: "certutil",
			pos:      []string{"certutil -urlcache", "run certutil now", "certutil"},
			neg:      []string{"certuti", "CERTUTIL"},
		},
		{
			modifier: modStartswith,
			selector: `C:\Windows`,
			pos:      []string{`C:\Windows\System32\cmd.exe`, `C:\Windows`},
			neg:      []string{`D:\C:\Windows`, `c:\windows\cmd.exe`},
		},
		{
			modifier: modEndswith,
			selector: `\cmd.exe`,
			pos:      []string{`C:\Windows\System32\cmd.exe`, `\cmd.exe`},
			neg:      []string{`cmd.exe`, `\cmd.exe -args`},
		},
		{
			modifier: modContains,
			selector: 4624,
			pos:      []string{"id 4624 seen", "4624"},
			neg:      []string{"462"},
		},
	}
	for i, c := range cases {
		m := &GlobMatcher{}
		if errs := m.Init([]string{"field", c.modifier}, c.selector); len(errs) > 0 {
			t.Fatalf("case %d failed init: %v", i, errs)
		}
		for _, value := range c.pos {
			if !m.IsMatch(value, true) {
				t.Fatalf("case %d: %s should match %s", i, c.modifier, value)
			}
		}
		for _, value := range c.neg {
			if m.IsMatch(value, true) {
				t.Fatalf("case %d: %s should not match %s", i, c.modifier, value)
			}
		}
		if m.IsMatch(nil, false) {
			t.Fatalf("case %d: absent value should never match", i)
		}
		if m.IsMatch(map[string]interface{}{}, true) {
			t.Fatalf("case %d: composite value should never match", i)
		}
	}
}

func TestGlobMatcherNullSelector(t *testing.T) {
	m := &GlobMatcher{}
	errs := m.Init([]string{"field", modContains}, nil)
	if len(errs) != 1 {
		t.Fatalf("null selector should be a bind error for glob matcher, got %v", errs)
	}
	if _, ok := errs[0].(ErrUnsupportedSelector); !ok {
		t.Fatalf("expected ErrUnsupportedSelector, got %T", errs[0])
	}
}

func TestStringifyValue(t *testing.T) {
	cases := []struct {
		in       interface{}
		expected string
		ok       bool
	}{
		{true, "true", true},
		{false, "false", true},
		{42, "42", true},
		{int64(42), "42", true},
		{uint64(42), "42", true},
		{float64(4624), "4624", true},
		{1.5, "1.5", true},
		{"str", "str", true},
		{nil, "", false},
		{[]interface{}{}, "", false},
		{map[string]interface{}{}, "", false},
	}
	for i, c := range cases {
		got, ok := stringifyValue(c.in)
		if ok != c.ok || got != c.expected {
			t.Fatalf("case %d: got %q/%v, wanted %q/%v", i, got, ok, c.expected, c.ok)
		}
	}
}
