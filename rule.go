package sitepatch

import (
	"errors"
	"fmt"
)

// ErrConfig marks a malformed rule or option set. Config errors fail
// before any extraction runs.
var ErrConfig = errors.New("invalid configuration")

// Issue is one validation finding: the logical path of the offending
// value, a machine code and a human message.
type Issue struct {
	Path    string
	Code    string
	Message string
}

func (i Issue) String() string {
	if i.Code == "" {
		return fmt.Sprintf("%s: %s", i.Path, i.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Path, i.Message, i.Code)
}

// Validated is a validator outcome: a reshaped value, or the issues that
// rejected the input. Exactly one of the two is meaningful.
type Validated struct {
	Value  map[string]any
	Issues []Issue
}

func Valid(v map[string]any) *Validated {
	return &Validated{Value: v}
}

func Invalid(issues ...Issue) *Validated {
	return &Validated{Issues: issues}
}

// Validator checks and reshapes extracted data. It must return rather
// than panic, must not block on anything asynchronous, and must tolerate
// preserved-subtree placeholders appearing as values.
type Validator func(data map[string]any) *Validated

// DeriveFunc emits additional root-level values computed from validated
// data. emit may be called zero or more times; each record's key/value
// pairs become root-level set patches.
type DeriveFunc func(validated map[string]any, emit func(record map[string]any))

// Rule is what to do with one matched call site. At least one of Schema,
// Derive and Prune must be set.
type Rule struct {
	Schema Validator
	Derive DeriveFunc
	Prune  []string
}

func (r *Rule) validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil rule", ErrConfig)
	}
	if r.Schema == nil && r.Derive == nil && len(r.Prune) == 0 {
		return fmt.Errorf("%w: a rule needs at least one of schema, derive or prune", ErrConfig)
	}
	return nil
}

// ValidationError aborts a call site whose schema rejected the extracted
// data. The first issue carries the headline path and message.
type ValidationError struct {
	Component string
	Issues    []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("%s: validation failed", e.Component)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Issues[0])
}
