package filter

import (
	"math"
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

// --- Range tests ---

func TestNewRange_Valid(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi *float64
	}{
		{"lo only", floatPtr(1), nil},
		{"hi only", nil, floatPtr(10)},
		{"both", floatPtr(0), floatPtr(10)},
		{"equal", floatPtr(5), floatPtr(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRange(tt.lo, tt.hi)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (r.Lo() == nil) != (tt.lo == nil) {
				t.Error("Lo() mismatch")
			}
			if (r.Hi() == nil) != (tt.hi == nil) {
				t.Error("Hi() mismatch")
			}
		})
	}
}

func TestNewRange_Errors(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi *float64
		want   string
	}{
		{"no bounds", nil, nil, "at least one"},
		{"inverted", floatPtr(10), floatPtr(1), "exceeds"},
		{"inf", floatPtr(0), floatPtr(math.Inf(1)), "finite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRange(tt.lo, tt.hi)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestRange_Contains(t *testing.T) {
	r, _ := NewRange(floatPtr(5), floatPtr(10))
	for v, want := range map[float64]bool{4.99: false, 5: true, 7: true, 10: true, 10.01: false} {
		if got := r.Contains(v); got != want {
			t.Errorf("Contains(%g) = %v, want %v", v, got, want)
		}
	}
	open, _ := NewRange(nil, floatPtr(3))
	if !open.Contains(-100) {
		t.Error("open lower bound should accept any low value")
	}
}

// --- Condition tests ---

func TestTag_Valid(t *testing.T) {
	c, err := Tag("category", " Bakery ", "", "dairy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsTag() || c.IsRange() {
		t.Error("expected tag condition")
	}
	if got := c.Values(); len(got) != 2 || got[0] != "Bakery" {
		t.Errorf("values = %v", got)
	}
}

func TestTag_Errors(t *testing.T) {
	if _, err := Tag("", "x"); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := Tag("k", " "); err == nil {
		t.Error("expected error for blank values")
	}
}

func TestCondition_MatchTags(t *testing.T) {
	c, _ := Tag("dietary", "vegan", "organic")
	if !c.MatchTags([]string{"glutenFree", "ORGANIC"}) {
		t.Error("expected case-insensitive match")
	}
	if c.MatchTags([]string{"kosher"}) {
		t.Error("unexpected match")
	}
	if c.MatchTags(nil) {
		t.Error("nil tags must not match")
	}
}

func TestBetween(t *testing.T) {
	c, err := Between("price", floatPtr(1), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsRange() || c.Range().Lo() == nil {
		t.Errorf("bad range condition: %+v", c)
	}
	if _, err := Between("", floatPtr(1), nil); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := Between("price", floatPtr(9), floatPtr(1)); err == nil {
		t.Error("expected error for inverted range")
	}
}

// --- Expression tests ---

func TestNewExpression_Limits(t *testing.T) {
	conds := make([]Condition, MaxConditions+1)
	if _, err := NewExpression(conds, nil); err == nil {
		t.Error("expected error for too many must")
	}
	if _, err := NewExpression(nil, conds); err == nil {
		t.Error("expected error for too many must_not")
	}
	if _, err := NewExpression(conds[:MaxConditions], nil); err != nil {
		t.Errorf("at max: %v", err)
	}
}

func TestExpression_IsEmpty(t *testing.T) {
	var e Expression
	if !e.IsEmpty() {
		t.Error("zero expression should be empty")
	}
}

// --- Builder tests ---

func TestBuilder(t *testing.T) {
	expr, err := NewBuilder().
		Tag("status", "active").
		Tag("category", "").
		AllTags("dietary", "vegan", "kosher").
		Between("price", floatPtr(2), floatPtr(20)).
		Between("stock", nil, nil).
		Exclude("status", "draft").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expr.Must()) != 4 {
		t.Errorf("must = %d, want 4", len(expr.Must()))
	}
	if len(expr.MustNot()) != 1 {
		t.Errorf("must_not = %d, want 1", len(expr.MustNot()))
	}
}

func TestBuilder_KeepsFirstError(t *testing.T) {
	_, err := NewBuilder().
		Between("price", floatPtr(5), floatPtr(1)).
		Tag("", "x").
		Build()
	if err == nil || !strings.Contains(err.Error(), "price") {
		t.Fatalf("err = %v, want the price error", err)
	}
}
