package validation

import (
	"errors"
	"strings"
	"testing"
)

type searchParams struct {
	Query   string   `query:"q" validate:"max=5"`
	Lat     *float64 `query:"userLat" validate:"omitempty,latitude"`
	Radius  float64  `query:"proximityRadius" validate:"gte=0,lte=500"`
	Dietary string   `query:"dietary" validate:"omitempty,dietary"`
	Limit   int      `json:"limit" validate:"min=0,max=100"`
	Flags   []string `json:"flags" validate:"omitempty,dietary"`
	Name    string   `validate:"required"`
}

func valid() searchParams {
	return searchParams{Query: "eggs", Radius: 10, Dietary: "organic, vegan", Limit: 20, Name: "x"}
}

func TestStruct_Valid(t *testing.T) {
	p := valid()
	if err := Struct(&p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_FieldNamesAndMessages(t *testing.T) {
	lat := 91.0
	tests := []struct {
		name   string
		mutate func(*searchParams)
		field  string
		msg    string
	}{
		{"string max", func(p *searchParams) { p.Query = "toolong" }, "q", "q must be at most 5 characters"},
		{"latitude", func(p *searchParams) { p.Lat = &lat }, "userLat", "userLat must be a valid latitude (-90 to 90)"},
		{"lte", func(p *searchParams) { p.Radius = 501 }, "proximityRadius", "proximityRadius must be less than or equal to 500"},
		{"dietary string", func(p *searchParams) { p.Dietary = "vegan,paleo" }, "dietary", "dietary must list known dietary flags"},
		{"dietary slice", func(p *searchParams) { p.Flags = []string{"kosher", "keto"} }, "flags", "flags must list known dietary flags"},
		{"int max", func(p *searchParams) { p.Limit = 101 }, "limit", "limit must be at most 100"},
		{"required", func(p *searchParams) { p.Name = "" }, "Name", "Name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := Struct(&p)
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if len(verr.Fields()) != 1 {
				t.Fatalf("fields = %+v", verr.Fields())
			}
			f := verr.Fields()[0]
			if f.Field != tt.field || f.Message != tt.msg {
				t.Errorf("got %s %q, want %s %q", f.Field, f.Message, tt.field, tt.msg)
			}
		})
	}
}

func TestStruct_MultipleErrorsJoined(t *testing.T) {
	p := valid()
	p.Limit = -1
	p.Name = ""
	err := Struct(&p)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("error = %q", err)
	}
}

func TestStruct_NotAStruct(t *testing.T) {
	err := Struct(42)
	var verr *Error
	if !errors.As(err, &verr) || verr.Fields()[0].Field != "unknown" {
		t.Errorf("got %v", err)
	}
}

func TestGet_Singleton(t *testing.T) {
	if Get() != Get() {
		t.Error("Get must return the shared instance")
	}
}
