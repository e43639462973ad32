package engine

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

var aliasTestEvent = DynamicMap{
	"a": map[string]interface{}{
		"b": map[string]interface{}{
			"c": float64(7),
		},
	},
	"Y":     "direct",
	"empty": "",
}

func TestGetEventValueAliasPrecedence(t *testing.T) {
	fields := NewFieldAliases(map[string]string{"X": "a.b.c"})
	val, ok := GetEventValue("X", aliasTestEvent, fields)
	if !ok {
		t.Fatal("aliased field should resolve")
	}
	if val != float64(7) {
		t.Fatalf("expected 7, got %v", val)
	}
}

func TestGetEventValueFallback(t *testing.T) {
	fields := NewFieldAliases(map[string]string{"X": "a.b.c"})
	val, ok := GetEventValue("Y", aliasTestEvent, fields)
	if !ok || val != "direct" {
		t.Fatalf("unaliased field should resolve as its own path, got %v/%v", val, ok)
	}
	val, ok = GetEventValue("a.b.c", aliasTestEvent, nil)
	if !ok || val != float64(7) {
		t.Fatalf("nil alias config should degrade to identity lookup, got %v/%v", val, ok)
	}
}

func TestGetEventValueMisses(t *testing.T) {
	cases := []string{
		"",             // empty field name
		"missing",      // absent top-level key
		"a.b.missing",  // absent nested key
		"Y.sub",        // descent into a scalar
		"a.b.c.deeper", // descent past a scalar
	}
	for _, key := range cases {
		if val, ok := GetEventValue(key, aliasTestEvent, nil); ok {
			t.Fatalf("key %q should not resolve, got %v", key, val)
		}
	}
}

func TestGetEventValueComposite(t *testing.T) {
	// a full path ending on an object resolves to the object itself
	val, ok := GetEventValue("a.b", aliasTestEvent, nil)
	if !ok {
		t.Fatal("path to composite should resolve")
	}
	if _, isMap := val.(map[string]interface{}); !isMap {
		t.Fatalf("expected composite value, got %T", val)
	}
}

func TestLoadFieldAliases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yml")
	doc := []byte("EventID: Event.System.EventID\nChannel: Event.System.Channel\n")
	if err := ioutil.WriteFile(path, doc, 0644); err != nil {
		t.Fatal(err)
	}
	fields, err := LoadFieldAliases(path)
	if err != nil {
		t.Fatal(err)
	}
	mapped, ok := fields.Lookup("EventID")
	if !ok || mapped != "Event.System.EventID" {
		t.Fatalf("unexpected lookup result %v/%v", mapped, ok)
	}
	if _, ok := fields.Lookup("NoSuchField"); ok {
		t.Fatal("unknown alias should not resolve")
	}
	if _, err := LoadFieldAliases(filepath.Join(dir, "missing.yml")); err == nil {
		t.Fatal("missing alias file should error")
	}
}
