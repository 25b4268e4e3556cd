// Package datefilter builds range predicates over partial dates.
//
// Every predicate is evaluated with pdate.Compare using the filter bound as
// the reference and the row value as the candidate, so a bound given only
// to the year admits any row date inside that year.
package datefilter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/bookcat/internal/pdate"
)

// Type selects how a predicate tests a candidate date.
type Type int

const (
	// Before admits candidates that sort before the bound.
	Before Type = iota + 1
	// After admits candidates that sort after the bound.
	After
	// On admits candidates contained by the bound.
	On
	// Not admits candidates the bound does not contain.
	Not
	// Between admits candidates from the lower bound (contained) up to but
	// excluding anything the upper bound contains.
	Between
)

var typeNames = map[Type]string{
	Before:  "before",
	After:   "after",
	On:      "on",
	Not:     "not",
	Between: "between",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Errors returned by ParseType, New and Parse.
var (
	ErrUnknownType     = errors.New("unknown filter type")
	ErrMissingBound    = errors.New("filter bound is missing")
	ErrUnexpectedBound = errors.New("filter takes a single bound")
	ErrInvalidBound    = errors.New("filter bound is not a date")
)

// ParseType reads a filter type name. "in" is accepted as an alias for
// "on".
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "in" {
		return On, nil
	}
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Predicate tests candidate dates against one or two bounds.
type Predicate struct {
	Type  Type
	Lower pdate.Date
	Upper pdate.Date
}

// New returns a predicate after checking its bounds: Between needs both,
// every other type needs exactly Lower.
func New(t Type, lower, upper pdate.Date) (Predicate, error) {
	if _, ok := typeNames[t]; !ok {
		return Predicate{}, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
	if lower.IsZero() {
		return Predicate{}, fmt.Errorf("%s: %w", t, ErrMissingBound)
	}
	if t == Between && upper.IsZero() {
		return Predicate{}, fmt.Errorf("%s: upper: %w", t, ErrMissingBound)
	}
	if t != Between && !upper.IsZero() {
		return Predicate{}, fmt.Errorf("%s: %w", t, ErrUnexpectedBound)
	}
	return Predicate{Type: t, Lower: lower, Upper: upper}, nil
}

// Parse builds a predicate from textual bounds. until is only read for
// Between.
func Parse(typeName, bound, until string) (Predicate, error) {
	t, err := ParseType(typeName)
	if err != nil {
		return Predicate{}, err
	}
	lower, err := parseBound(bound)
	if err != nil {
		return Predicate{}, err
	}
	var upper pdate.Date
	if t == Between || until != "" {
		if upper, err = parseBound(until); err != nil {
			return Predicate{}, err
		}
	}
	return New(t, lower, upper)
}

func parseBound(s string) (pdate.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pdate.Date{}, nil
	}
	d, ok := pdate.Parse(s)
	if !ok {
		return pdate.Date{}, fmt.Errorf("%w: %q", ErrInvalidBound, s)
	}
	return d, nil
}

// Match reports whether candidate passes the predicate.
func (p Predicate) Match(candidate pdate.Date) bool {
	c := pdate.Compare(p.Lower, candidate)
	switch p.Type {
	case Before:
		return c > 0
	case After:
		return c < 0
	case On:
		return c == 0
	case Not:
		return c != 0
	case Between:
		return c <= 0 && pdate.Compare(p.Upper, candidate) > 0
	default:
		return false
	}
}

func (p Predicate) String() string {
	if p.Type == Between {
		return fmt.Sprintf("between %s and %s", p.Lower, p.Upper)
	}
	return fmt.Sprintf("%s %s", p.Type, p.Lower)
}

// Apply returns the rows whose key passes p, preserving order.
func Apply[T any](rows []T, p Predicate, key func(T) pdate.Date) []T {
	var out []T
	for _, row := range rows {
		if p.Match(key(row)) {
			out = append(out, row)
		}
	}
	return out
}
