package engine

import (
	"fmt"
	"os"
)

// Config is used as argument to creating a new ruleset
type Config struct {
	// root directories for recursive rule search
	// rules must be readable files with "yml" suffix
	Directory []string
	// optional yaml file mapping logical field names to dotted event paths
	FieldAliasFile string
	// by default, a rule that fails matcher binding only increments Ruleset.Failed
	// this parameter causes an early error return carrying the aggregated errors
	FailOnRuleParse, FailOnYamlParse bool
}

func (c Config) validate() error {
	if len(c.Directory) == 0 {
		return fmt.Errorf("missing root directory for detection rules")
	}
	for _, dir := range c.Directory {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			return fmt.Errorf("%s does not exist", dir)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
	}
	return nil
}

// Ruleset is a collection of compiled and validated rules
type Ruleset struct {
	Rules  []*Tree
	Fields *FieldAliases
	root   []string

	Total, Ok, Failed, Unsupported int
}

// NewRuleset instanciates a Ruleset object
// Broken rules are counted and skipped rather than failing the whole corpus,
// unless configured otherwise
func NewRuleset(c Config) (*Ruleset, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	var fields *FieldAliases
	if c.FieldAliasFile != "" {
		var err error
		if fields, err = LoadFieldAliases(c.FieldAliasFile); err != nil {
			return nil, err
		}
	}
	files, err := NewRuleFileList(c.Directory)
	if err != nil {
		return nil, err
	}
	var fail, unsupp int
	rules, err := NewRuleList(files, !c.FailOnYamlParse)
	if err != nil {
		switch e := err.(type) {
		case ErrBulkParseYaml:
			fail += len(e.Errs)
		default:
			return nil, err
		}
	}
	set := make([]*Tree, 0)
loop:
	for _, raw := range rules {
		if raw.Multipart {
			unsupp++
			continue loop
		}
		tree := NewTree(raw, fields)
		if errs := tree.Validate(); len(errs) > 0 {
			if c.FailOnRuleParse {
				return nil, ErrBulkValidate{Path: raw.Path, Errs: errs}
			}
			fail++
			continue loop
		}
		set = append(set, tree)
	}
	return &Ruleset{
		root:        c.Directory,
		Rules:       set,
		Fields:      fields,
		Failed:      fail,
		Ok:          len(set),
		Unsupported: unsupp,
		Total:       len(files),
	}, nil
}

// EvalAll evaluates an event against every rule in the set
func (r Ruleset) EvalAll(e Event) (Results, bool) {
	results := make(Results, 0)
	for _, rule := range r.Rules {
		if res, match := rule.Eval(e); match {
			results = append(results, *res)
		}
	}
	if len(results) > 0 {
		return results, true
	}
	return nil, false
}
