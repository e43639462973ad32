package engine

// NodeAnd is a list of child nodes connected with logical conjunction
// Mapping entries in a rule selection compile to this node type
// An empty node is vacuously true
type NodeAnd []SelectionNode

// selects implements SelectionNode
func (n NodeAnd) selects(e Event, fields *FieldAliases) bool {
	for _, child := range n {
		if !child.selects(e, fields) {
			return false
		}
	}
	return true
}

// init implements SelectionNode
func (n NodeAnd) init() []error {
	return initChildren(n)
}

// NodeOr is a list of child nodes connected with logical disjunction
// Sequence elements in a rule selection compile to this node type
// An empty node never matches
type NodeOr []SelectionNode

// selects implements SelectionNode
func (n NodeOr) selects(e Event, fields *FieldAliases) bool {
	for _, child := range n {
		if child.selects(e, fields) {
			return true
		}
	}
	return false
}

// init implements SelectionNode
func (n NodeOr) init() []error {
	return initChildren(n)
}

// initChildren validates every child in order and concatenates their errors
// Never stops at the first failure, a broken leaf should not hide its siblings
func initChildren(children []SelectionNode) []error {
	var errs []error
	for _, child := range children {
		errs = append(errs, child.init()...)
	}
	return errs
}

// NodeLeaf is a terminal node comparing one resolved field against one configured value
// Keys holds the field-key path, first element is the logical field name and
// the remainder are matcher-selection modifiers
type NodeLeaf struct {
	Keys  []string
	Value interface{}

	matcher LeafMatcher
}

// selects implements SelectionNode
// A leaf with no bound matcher never matches, unvalidated rules fail closed
func (n *NodeLeaf) selects(e Event, fields *FieldAliases) bool {
	if n.matcher == nil {
		return false
	}
	val, ok := GetEventValue(n.Keys[0], e, fields)
	return n.matcher.IsMatch(val, ok)
}

// init implements SelectionNode
// Binds the first matcher claiming the leaf's modifier segments
func (n *NodeLeaf) init() []error {
	if len(n.Keys) == 0 {
		return []error{ErrUnknownModifier{}}
	}
	modifiers := n.Keys[1:]
	for _, matcher := range newLeafMatchers() {
		if !matcher.IsTargetKey(modifiers) {
			continue
		}
		if errs := matcher.Init(n.Keys, n.Value); len(errs) > 0 {
			return errs
		}
		n.matcher = matcher
		return nil
	}
	return []error{ErrUnknownModifier{Keys: n.Keys}}
}
