package db

import (
	"slices"
	"strings"
	"testing"
)

func TestIndexBuilder_JSONDefault(t *testing.T) {
	idx := NewIndex("products-idx").
		Prefix("bazaarmkt:product:").
		Text("$.name", "name").
		Tag("$.category", "category").
		SortableNumeric("$.createdTs", "created").
		MustBuild()

	if idx.StorageType != StorageJSON {
		t.Errorf("storage = %q, want JSON", idx.StorageType)
	}
	if len(idx.Fields) != 3 {
		t.Fatalf("fields count = %d, want 3", len(idx.Fields))
	}
	if idx.Fields[0].Key() != "name" || idx.Fields[0].Type != IndexFieldText {
		t.Errorf("field[0] = %+v, want name TEXT", idx.Fields[0])
	}
	if !idx.Fields[2].Sortable {
		t.Error("expected created to be sortable")
	}
}

func TestIndexBuilder_OnHash(t *testing.T) {
	idx := NewIndex("h").OnHash().Numeric("price", "").MustBuild()
	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if idx.Fields[0].Key() != "price" {
		t.Errorf("key without alias = %q, want price", idx.Fields[0].Key())
	}
}

func TestIndexBuilder_TagOptions(t *testing.T) {
	idx := NewIndex("tag-idx").
		Prefix("t:").
		TagWithOpts("$.tags[*]", "tags", "|", true).
		MustBuild()

	f := idx.Fields[0]
	if f.TagSeparator != "|" {
		t.Errorf("separator = %q, want |", f.TagSeparator)
	}
	if !f.TagCaseSensitive {
		t.Error("expected TagCaseSensitive=true")
	}
}

func TestIndexBuilder_MultiplePrefixes(t *testing.T) {
	idx := NewIndex("multi-idx").
		Prefix("a:", "b:", "c:").
		Tag("$.x", "x").
		MustBuild()

	if len(idx.Prefixes) != 3 {
		t.Errorf("prefix count = %d, want 3", len(idx.Prefixes))
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Tag("$.x", "x").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "sortable tag",
			builder: func() (*IndexDefinition, error) {
				def := IndexDefinition{Name: "idx", Fields: []IndexField{
					{Name: "$.s", Alias: "s", Type: IndexFieldTag, Sortable: true},
				}}
				return &def, def.Validate()
			},
			wantErr: "cannot be sortable",
		},
		{
			name: "duplicate alias",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Tag("$.a", "x").Text("$.b", "x").Build()
			},
			wantErr: "duplicate field name",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Tag("$.x", "x").Build()
			},
			wantErr: "invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexBuilder_SamePathTwice(t *testing.T) {
	idx, err := NewIndex("idx").
		Tag("$.tags[*]", "tags").
		Text("$.tags[*]", "tags_text").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := idx.Field("tags_text")
	if !ok || f.Type != IndexFieldText {
		t.Errorf("Field(tags_text) = %+v, %v", f, ok)
	}
	if _, ok := idx.Field("missing"); ok {
		t.Error("unexpected field")
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("my-idx").
		Prefix("doc:").
		Tag("$.cat", "cat").
		SortableNumeric("$.ts", "ts").
		MustBuild()

	want := "FT.CREATE my-idx ON JSON PREFIX 1 doc: SCHEMA $.cat AS cat TAG $.ts AS ts NUMERIC SORTABLE"
	if got := idx.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIndexDefinition_CreateArgs(t *testing.T) {
	idx := NewIndex("p-idx").
		Prefix("p:").
		Language("english").
		NoStopWords().
		WeightedText("$.name", "name", 5).
		WeightedText("$.tags[*]", "tags_text", 1.5).
		Text("$.description", "description").
		TagWithOpts("$.tags[*]", "tags", ",", true).
		Numeric("$.price", "price").
		MustBuild()

	want := []string{
		"p-idx", "ON", "JSON", "PREFIX", "1", "p:", "LANGUAGE", "english", "STOPWORDS", "0", "SCHEMA",
		"$.name", "AS", "name", "TEXT", "WEIGHT", "5",
		"$.tags[*]", "AS", "tags_text", "TEXT", "WEIGHT", "1.5",
		"$.description", "AS", "description", "TEXT",
		"$.tags[*]", "AS", "tags", "TAG", "SEPARATOR", ",", "CASESENSITIVE",
		"$.price", "AS", "price", "NUMERIC",
	}
	if got := idx.CreateArgs(); !slices.Equal(got, want) {
		t.Errorf("CreateArgs =\n%v\nwant\n%v", got, want)
	}
}

func TestIndexDefinition_CreateArgsDefaultsToJSON(t *testing.T) {
	idx := IndexDefinition{Name: "x", Fields: []IndexField{{Name: "a", Type: IndexFieldNumeric}}}
	want := []string{"x", "ON", "JSON", "SCHEMA", "a", "NUMERIC"}
	if got := idx.CreateArgs(); !slices.Equal(got, want) {
		t.Errorf("CreateArgs = %v, want %v", got, want)
	}
}

func TestIndexDefinition_WeightValidation(t *testing.T) {
	tests := []struct {
		name    string
		field   IndexField
		wantErr string
	}{
		{"negative", IndexField{Name: "$.n", Type: IndexFieldText, Weight: -1}, "negative weight"},
		{"on tag", IndexField{Name: "$.t", Type: IndexFieldTag, Weight: 2}, "only valid on text"},
		{"unknown type", IndexField{Name: "$.u", Type: IndexFieldType(42)}, "unknown type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := IndexDefinition{Name: "idx", Fields: []IndexField{tt.field}}
			err := def.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for s, want := range map[string]bool{
		"bazaarmkt:products": true,
		"a-b_c":              true,
		"":                   false,
		"has space":          false,
		"semi;colon":         false,
	} {
		if got := IsValidIdentifier(s); got != want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", s, got, want)
		}
	}
}
