package engine

import (
	"fmt"
	"reflect"
	"strings"
)

// selectionPath renders the fully qualified location of a selection leaf
// for user-facing error messages
func selectionPath(keys []string) string {
	sb := strings.Builder{}
	sb.WriteString("detection -> selection")
	for _, key := range keys {
		sb.WriteString(" -> ")
		sb.WriteString(key)
	}
	return sb.String()
}

// ErrInvalidRegex contextualizes broken regular expressions presented by the user
type ErrInvalidRegex struct {
	Pattern string
	Keys    []string
	Err     error
}

// Error implements error
func (e ErrInvalidRegex) Error() string {
	return fmt.Sprintf("cannot parse regex /%s/ for %s, %s",
		e.Pattern, selectionPath(e.Keys), e.Err)
}

// ErrInvalidGlob contextualizes broken wildcard patterns presented by the user
type ErrInvalidGlob struct {
	Pattern string
	Keys    []string
	Err     error
}

// Error implements error
func (e ErrInvalidGlob) Error() string {
	return fmt.Sprintf("cannot parse glob |%s| for %s, %s",
		e.Pattern, selectionPath(e.Keys), e.Err)
}

// ErrUnknownModifier indicates a selection leaf whose modifier segments no
// registered matcher claims
type ErrUnknownModifier struct {
	Keys []string
}

// Error implements error
func (e ErrUnknownModifier) Error() string {
	return fmt.Sprintf("found unknown key. key:%s", selectionPath(e.Keys))
}

// ErrUnsupportedSelector indicates a configured rule value that the claiming
// matcher cannot represent as a comparable pattern
// Usually means rule author used a document construct outside scalar types
type ErrUnsupportedSelector struct {
	Keys  []string
	Value interface{}
}

// Error implements error
func (e ErrUnsupportedSelector) Error() string {
	return fmt.Sprintf("unsupported selector value for %s. Got |%+v| with type |%s|",
		selectionPath(e.Keys), e.Value, func() string {
			if e.Value == nil {
				return "null"
			}
			return reflect.TypeOf(e.Value).String()
		}())
}

// ErrBulkValidate aggregates every matcher binding problem found in one rule
// Validation never stops at the first broken leaf, all are reported at once
// Caller decides whether to skip the rule or abort
type ErrBulkValidate struct {
	Path string
	Errs []error
}

// Error implements error
func (e ErrBulkValidate) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("rule %s failed validation: %s", e.Path, strings.Join(msgs, "; "))
}

// ErrParseYaml indicates YAML parsing error
type ErrParseYaml struct {
	Path  string
	Err   error
	Count int
}

// Error implements error
func (e ErrParseYaml) Error() string {
	return fmt.Sprintf("%d - File: %s; Err: %s", e.Count, e.Path, e.Err)
}

// ErrBulkParseYaml is a bulk error handler for dealing with broken rule files
// Some rules are bound to fail, no reason to exit entire application
// Individual errors can be collected and returned at the end
// Caller decides if they should be only reported or warrant a full exit
type ErrBulkParseYaml struct {
	Errs []ErrParseYaml
}

// Error implements error
func (e ErrBulkParseYaml) Error() string {
	return fmt.Sprintf("got %d broken yaml files", len(e.Errs))
}
