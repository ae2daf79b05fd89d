package db

import "strings"

// IndexBuilder is a fluent builder for FT index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an FT index definition over JSON documents.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{
			Name:        name,
			StorageType: StorageJSON,
		},
	}
}

// OnHash sets the index storage type to HASH.
func (b *IndexBuilder) OnHash() *IndexBuilder {
	b.def.StorageType = StorageHash
	return b
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Text adds a TEXT field at path queried as alias.
func (b *IndexBuilder) Text(path, alias string) *IndexBuilder {
	return b.field(IndexField{Name: path, Alias: alias, Type: IndexFieldText})
}

// WeightedText adds a TEXT field whose matches count weight times as much.
func (b *IndexBuilder) WeightedText(path, alias string, weight float64) *IndexBuilder {
	return b.field(IndexField{Name: path, Alias: alias, Type: IndexFieldText, Weight: weight})
}

// Language sets the stemming language of the index.
func (b *IndexBuilder) Language(lang string) *IndexBuilder {
	b.def.Language = lang
	return b
}

// NoStopWords disables the store's stop-word list.
func (b *IndexBuilder) NoStopWords() *IndexBuilder {
	b.def.NoStopWords = true
	return b
}

// Tag adds a case-insensitive TAG field at path queried as alias.
func (b *IndexBuilder) Tag(path, alias string) *IndexBuilder {
	return b.field(IndexField{Name: path, Alias: alias, Type: IndexFieldTag})
}

// TagWithOpts adds a TAG field with custom separator and case sensitivity.
func (b *IndexBuilder) TagWithOpts(path, alias, separator string, caseSensitive bool) *IndexBuilder {
	return b.field(IndexField{
		Name:             path,
		Alias:            alias,
		Type:             IndexFieldTag,
		TagSeparator:     separator,
		TagCaseSensitive: caseSensitive,
	})
}

// Numeric adds a NUMERIC field at path queried as alias.
func (b *IndexBuilder) Numeric(path, alias string) *IndexBuilder {
	return b.field(IndexField{Name: path, Alias: alias, Type: IndexFieldNumeric})
}

// SortableNumeric adds a NUMERIC SORTABLE field.
func (b *IndexBuilder) SortableNumeric(path, alias string) *IndexBuilder {
	return b.field(IndexField{Name: path, Alias: alias, Type: IndexFieldNumeric, Sortable: true})
}

func (b *IndexBuilder) field(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns the FT.CREATE command the definition renders to.
func (idx *IndexDefinition) String() string {
	return "FT.CREATE " + strings.Join(idx.CreateArgs(), " ")
}
