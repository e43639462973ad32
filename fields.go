package engine

import (
	"os"

	"gopkg.in/yaml.v2"
)

// FieldAliases maps friendly logical field names used in rules to actual
// dotted paths inside event documents
// Built once before any rule validation or evaluation, read-only afterwards
// A nil handle is valid and degrades to identity lookup
type FieldAliases struct {
	data map[string]string
}

// NewFieldAliases wraps an existing alias mapping
func NewFieldAliases(mapping map[string]string) *FieldAliases {
	if mapping == nil {
		mapping = make(map[string]string)
	}
	return &FieldAliases{data: mapping}
}

// LoadFieldAliases reads an alias mapping from a yaml file
// Format is a flat map of alias to dotted event path
func LoadFieldAliases(path string) (*FieldAliases, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var data map[string]string
	if err := yaml.NewDecoder(f).Decode(&data); err != nil {
		return nil, err
	}
	return NewFieldAliases(data), nil
}

// Lookup resolves a logical field name to its configured dotted path
func (f *FieldAliases) Lookup(name string) (string, bool) {
	if f == nil {
		return "", false
	}
	val, ok := f.data[name]
	return val, ok
}

// GetEventValue resolves a rule field name to a value inside an event
// Alias mapping takes precedence, otherwise the name itself is used as a dotted path
func GetEventValue(key string, e Event, fields *FieldAliases) (interface{}, bool) {
	if key == "" {
		return nil, false
	}
	if path, ok := fields.Lookup(key); ok {
		key = path
	}
	return e.Select(key)
}
