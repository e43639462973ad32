package engine

// Selector extracts a field value from a structured event
// Key is a logical field name or a dotted path into the event document
type Selector interface {
	// Select implements Selector
	Select(key string) (interface{}, bool)
}

// Event is one structured log record being evaluated against rules
type Event interface {
	Selector
}

// SelectionNode is a single node in a compiled selection tree
// Implemented by NodeAnd, NodeOr and NodeLeaf
// The set is closed on purpose, new behaviors should be added as leaf matchers instead
type SelectionNode interface {
	// selects evaluates the node against an event
	// field aliases are consulted at call time, never cached in the tree
	selects(e Event, fields *FieldAliases) bool

	// init binds leaf matchers to configured values
	// every error in the subtree is collected, no short-circuit on first failure
	init() []error
}

// LeafMatcher is a pluggable comparison strategy bound to a leaf during validation
// A leaf is claimed via IsTargetKey by the modifier segments that follow the field name
// in the rule key path
type LeafMatcher interface {
	// IsTargetKey reports if the matcher claims a leaf with these modifier segments
	IsTargetKey(modifiers []string) bool

	// Init binds the configured rule value to the matcher
	// keys is the full field-key path of the leaf, kept for error messages
	Init(keys []string, value interface{}) []error

	// IsMatch compares a resolved event value against the bound configuration
	// found is false when field resolution produced no value
	IsMatch(value interface{}, found bool) bool
}
