package datatable

import (
	"fmt"
	"maps"
	"strings"
)

// Predicate compares a row value against a filter value.
type Predicate func(rowValue, filterValue any) bool

// ColumnPredicate overrides the registry for a single column.
type ColumnPredicate func(op Operator, rowValue, filterValue any) bool

// Registry maps operators to predicates. A Registry is never mutated after it
// is built; With returns an extended copy.
type Registry struct {
	predicates map[Operator]Predicate
}

var defaultRegistry = newDefaultRegistry()

// DefaultRegistry returns the built-in registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func newDefaultRegistry() *Registry {
	return &Registry{predicates: map[Operator]Predicate{
		Contains:    containsPredicate,
		Equals:      equalsPredicate,
		NotEquals:   notEqualsPredicate,
		GreaterThan: greaterThanPredicate,
		LessThan:    lessThanPredicate,
	}}
}

// With returns a copy of the registry with op bound to p.
func (r *Registry) With(op Operator, p Predicate) *Registry {
	next := &Registry{predicates: maps.Clone(r.predicates)}
	next.predicates[op] = p
	return next
}

// Has reports whether op is registered.
func (r *Registry) Has(op Operator) bool {
	_, ok := r.predicates[op]
	return ok
}

// Evaluate runs the predicate bound to op. Unknown operators return
// ErrUnknownOperator and a panicking predicate returns ErrPredicateEvaluation;
// in both cases callers keep the row.
func (r *Registry) Evaluate(op Operator, rowValue, filterValue any) (bool, error) {
	p, ok := r.predicates[op]
	if !ok {
		return true, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
	}
	return guard(func() bool { return p(rowValue, filterValue) })
}

// guard converts a panic inside fn into ErrPredicateEvaluation and a match.
func guard(fn func() bool) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = true
			err = fmt.Errorf("%w: %v", ErrPredicateEvaluation, rec)
		}
	}()
	return fn(), nil
}

func containsPredicate(rowValue, filterValue any) bool {
	return strings.Contains(
		strings.ToLower(toString(rowValue)),
		strings.ToLower(toString(filterValue)),
	)
}

func equalsPredicate(rowValue, filterValue any) bool {
	if a, ok := asNumber(rowValue); ok {
		if b, ok := asNumber(filterValue); ok {
			return a == b
		}
	}
	return strings.EqualFold(toString(rowValue), toString(filterValue))
}

func notEqualsPredicate(rowValue, filterValue any) bool {
	return !equalsPredicate(rowValue, filterValue)
}

func greaterThanPredicate(rowValue, filterValue any) bool {
	if a, ok := asNumber(rowValue); ok {
		if b, ok := asNumber(filterValue); ok {
			return a > b
		}
	}
	return localeCompare(toString(rowValue), toString(filterValue)) > 0
}

func lessThanPredicate(rowValue, filterValue any) bool {
	if a, ok := asNumber(rowValue); ok {
		if b, ok := asNumber(filterValue); ok {
			return a < b
		}
	}
	return localeCompare(toString(rowValue), toString(filterValue)) < 0
}

var operatorAliases = map[string]Operator{
	"contains":     Contains,
	"~":            Contains,
	"like":         Contains,
	"equals":       Equals,
	"eq":           Equals,
	"=":            Equals,
	"==":           Equals,
	"notequals":    NotEquals,
	"not_equals":   NotEquals,
	"not equals":   NotEquals,
	"ne":           NotEquals,
	"!=":           NotEquals,
	"<>":           NotEquals,
	"greaterthan":  GreaterThan,
	"greater_than": GreaterThan,
	"greater than": GreaterThan,
	"gt":           GreaterThan,
	">":            GreaterThan,
	"lessthan":     LessThan,
	"less_than":    LessThan,
	"less than":    LessThan,
	"lt":           LessThan,
	"<":            LessThan,
}

// ParseOperator resolves an operator from its tag, label, snake case or symbol.
func ParseOperator(s string) (Operator, error) {
	if op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}
