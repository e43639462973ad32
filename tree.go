package engine

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v2"
)

// Tree represents a rule compiled into a selection tree
// Root is nil when the rule has no detection or no selection section,
// such a rule never matches anything
type Tree struct {
	Root SelectionNode
	Rule *RuleHandle

	fields *FieldAliases
}

// NewTree compiles a rule handle into a selection tree
// Compilation itself cannot fail, structural problems like unknown modifier
// segments or broken patterns are reported by Validate instead
func NewTree(r RuleHandle, fields *FieldAliases) *Tree {
	t := &Tree{
		Rule:   &r,
		fields: fields,
	}
	if selection, ok := r.Detection.Selection(); ok {
		t.Root = newSelectionNode(nil, selection)
	}
	return t
}

// Validate binds a matcher to every leaf and aggregates configuration errors
// across the whole tree in document order
// Idempotent, re-running on a valid tree yields the same bindings
func (t *Tree) Validate() []error {
	if t.Root == nil {
		return nil
	}
	return t.Root.init()
}

// Match evaluates an event against the compiled selection
func (t *Tree) Match(e Event) bool {
	if t.Root == nil {
		return false
	}
	return t.Root.selects(e, t.fields)
}

// Eval returns rule identity on positive match, for result sinks
func (t *Tree) Eval(e Event) (*Result, bool) {
	if !t.Match(e) {
		return nil, false
	}
	if t.Rule == nil {
		return &Result{}, true
	}
	return &Result{
		ID:    t.Rule.ID,
		Title: t.Rule.Title,
		Tags:  t.Rule.Tags,
	}, true
}

// newSelectionNode recursively compiles one selection document node
// Mappings mean conjunction with the key appended to the field-key path,
// sequences mean disjunction over alternatives with an unchanged path,
// anything else is a leaf carrying the accumulated path and the raw value
func newSelectionNode(keys []string, doc interface{}) SelectionNode {
	switch val := doc.(type) {
	case yaml.MapSlice:
		node := make(NodeAnd, 0, len(val))
		for _, item := range val {
			node = append(node, newSelectionNode(
				appendKey(keys, fmt.Sprintf("%v", item.Key)), item.Value))
		}
		return node
	case Detection:
		return newSelectionNode(keys, yaml.MapSlice(val))
	case map[string]interface{}:
		// JSON-decoded documents carry no ordering, sort for determinism
		sorted := make([]string, 0, len(val))
		for key := range val {
			sorted = append(sorted, key)
		}
		sort.Strings(sorted)
		node := make(NodeAnd, 0, len(val))
		for _, key := range sorted {
			node = append(node, newSelectionNode(appendKey(keys, key), val[key]))
		}
		return node
	case map[interface{}]interface{}:
		sorted := make([]string, 0, len(val))
		lookup := make(map[string]interface{}, len(val))
		for key, value := range val {
			str := fmt.Sprintf("%v", key)
			sorted = append(sorted, str)
			lookup[str] = value
		}
		sort.Strings(sorted)
		node := make(NodeAnd, 0, len(val))
		for _, key := range sorted {
			node = append(node, newSelectionNode(appendKey(keys, key), lookup[key]))
		}
		return node
	case []interface{}:
		node := make(NodeOr, 0, len(val))
		for _, item := range val {
			node = append(node, newSelectionNode(keys, item))
		}
		return node
	default:
		return &NodeLeaf{Keys: keys, Value: val}
	}
}

// appendKey extends a field-key path without aliasing the parent's backing array
func appendKey(keys []string, key string) []string {
	child := make([]string, len(keys)+1)
	copy(child, keys)
	child[len(keys)] = key
	return child
}
