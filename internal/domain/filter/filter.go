package filter

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MaxConditions caps each group of an Expression.
const MaxConditions = 32

// Expression is a structured candidate filter: every must condition holds and
// no must-not condition holds.
type Expression struct {
	must    []Condition
	mustNot []Condition
}

// NewExpression validates and creates an Expression.
func NewExpression(must, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditions)
	}
	if len(mustNot) > MaxConditions {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditions)
	}
	return Expression{must: must, mustNot: mustNot}, nil
}

// Must returns the required conditions.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the excluded conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 && len(e.mustNot) == 0 }

// Condition is either a tag match against one of several values or an
// inclusive numeric range.
type Condition struct {
	key    string
	values []string
	rng    *Range
}

// Tag matches documents whose tag field holds any of values. Matching is
// case-insensitive.
func Tag(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, errors.New("filter key is required")
	}
	vals := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, values: vals}, nil
}

// Between matches numeric fields inside [lo, hi]. A nil bound is open.
func Between(key string, lo, hi *float64) (Condition, error) {
	if key == "" {
		return Condition{}, errors.New("filter key is required")
	}
	r, err := NewRange(lo, hi)
	if err != nil {
		return Condition{}, fmt.Errorf("%s: %w", key, err)
	}
	return Condition{key: key, rng: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Values returns the accepted tag values.
func (c Condition) Values() []string { return c.values }

// Range returns the numeric range, or nil for tag conditions.
func (c Condition) Range() *Range { return c.rng }

// IsTag reports whether this is a tag condition.
func (c Condition) IsTag() bool { return len(c.values) > 0 }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rng != nil }

// MatchTags reports whether any of have equals an accepted value.
func (c Condition) MatchTags(have []string) bool {
	for _, h := range have {
		for _, v := range c.values {
			if strings.EqualFold(strings.TrimSpace(h), v) {
				return true
			}
		}
	}
	return false
}

// Range is an inclusive numeric interval. Nil bounds are unbounded.
type Range struct {
	lo *float64
	hi *float64
}

// NewRange validates and creates a Range.
func NewRange(lo, hi *float64) (Range, error) {
	if lo == nil && hi == nil {
		return Range{}, errors.New("at least one range boundary is required")
	}
	for _, b := range []*float64{lo, hi} {
		if b != nil && (math.IsNaN(*b) || math.IsInf(*b, 0)) {
			return Range{}, errors.New("range boundary must be finite")
		}
	}
	if lo != nil && hi != nil && *lo > *hi {
		return Range{}, fmt.Errorf("lower bound %g exceeds upper bound %g", *lo, *hi)
	}
	return Range{lo: lo, hi: hi}, nil
}

// Lo returns the lower bound or nil.
func (r Range) Lo() *float64 { return r.lo }

// Hi returns the upper bound or nil.
func (r Range) Hi() *float64 { return r.hi }

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	if r.lo != nil && v < *r.lo {
		return false
	}
	if r.hi != nil && v > *r.hi {
		return false
	}
	return true
}

// Builder accumulates conditions and keeps the first error.
type Builder struct {
	must    []Condition
	mustNot []Condition
	err     error
}

// NewBuilder starts an empty expression.
func NewBuilder() *Builder { return &Builder{} }

// Tag requires key to hold one of values. Blank input is skipped.
func (b *Builder) Tag(key string, values ...string) *Builder {
	if !hasValue(values) {
		return b
	}
	c, err := Tag(key, values...)
	return b.add(&b.must, c, err)
}

// AllTags requires key to hold every value.
func (b *Builder) AllTags(key string, values ...string) *Builder {
	for _, v := range values {
		b.Tag(key, v)
	}
	return b
}

// Between requires key to fall in [lo, hi]. Both nil is a no-op.
func (b *Builder) Between(key string, lo, hi *float64) *Builder {
	if lo == nil && hi == nil {
		return b
	}
	c, err := Between(key, lo, hi)
	return b.add(&b.must, c, err)
}

// Exclude rejects documents whose key holds any of values.
func (b *Builder) Exclude(key string, values ...string) *Builder {
	if !hasValue(values) {
		return b
	}
	c, err := Tag(key, values...)
	return b.add(&b.mustNot, c, err)
}

// Build returns the expression or the first error seen.
func (b *Builder) Build() (Expression, error) {
	if b.err != nil {
		return Expression{}, b.err
	}
	return NewExpression(b.must, b.mustNot)
}

func (b *Builder) add(group *[]Condition, c Condition, err error) *Builder {
	if b.err != nil {
		return b
	}
	if err != nil {
		b.err = err
		return b
	}
	*group = append(*group, c)
	return b
}

func hasValue(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
