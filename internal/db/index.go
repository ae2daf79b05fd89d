package db

import (
	"errors"
	"fmt"
	"strconv"
)

// StorageType defines the document storage backend for FT indexes.
type StorageType string

const (
	// StorageHash stores documents as Redis hashes.
	StorageHash StorageType = "HASH"
	// StorageJSON stores documents as JSON.
	StorageJSON StorageType = "JSON"
)

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is a tag field.
	IndexFieldTag
	// IndexFieldText is a text field.
	IndexFieldText
)

// IndexField describes a single field in an FT index schema. For JSON
// indexes Name is a JSONPath such as $.name or $.tags[*].
type IndexField struct {
	Name     string
	Alias    string // AS alias in FT.CREATE SCHEMA
	Type     IndexFieldType
	Sortable bool

	// Weight scales TEXT matches in the store's own relevance order, which
	// decides which candidates survive the fetch cap. 0 means the default 1.
	Weight float64

	// TAG options
	TagSeparator     string
	TagCaseSensitive bool
}

// Key is the name queries use for the field.
func (f *IndexField) Key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IndexDefinition is a complete FT index definition used by FT.CREATE.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Language    string // stemming language; empty keeps the store default
	NoStopWords bool   // index every word, so "the" or "and" in a product name still match
	Fields      []IndexField
}

// Field returns the field queried as key.
func (idx *IndexDefinition) Field(key string) (*IndexField, bool) {
	for i := range idx.Fields {
		if idx.Fields[i].Key() == key {
			return &idx.Fields[i], true
		}
	}
	return nil, false
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		key := f.Key()
		if seen[key] {
			return errors.New("duplicate field name: " + key)
		}
		seen[key] = true

		switch f.Type {
		case IndexFieldNumeric, IndexFieldTag, IndexFieldText:
		default:
			return fmt.Errorf("unknown type %d for field %s", f.Type, key)
		}
		if f.Sortable && f.Type == IndexFieldTag {
			return errors.New("tag field cannot be sortable: " + key)
		}
		if f.Weight < 0 {
			return errors.New("negative weight for field: " + key)
		}
		if f.Weight != 0 && f.Type != IndexFieldText {
			return errors.New("weight is only valid on text fields: " + key)
		}
	}

	return nil
}

// CreateArgs renders the FT.CREATE arguments after the command name.
// The definition must be valid.
func (idx *IndexDefinition) CreateArgs() []string {
	args := []string{idx.Name}

	storage := idx.StorageType
	if storage == "" {
		storage = StorageJSON
	}
	args = append(args, "ON", string(storage))

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	if idx.Language != "" {
		args = append(args, "LANGUAGE", idx.Language)
	}
	if idx.NoStopWords {
		args = append(args, "STOPWORDS", "0")
	}

	args = append(args, "SCHEMA")
	for i := range idx.Fields {
		args = append(args, idx.Fields[i].schemaArgs()...)
	}
	return args
}

func (f *IndexField) schemaArgs() []string {
	args := []string{f.Name}
	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case IndexFieldNumeric:
		args = append(args, "NUMERIC")
	case IndexFieldText:
		args = append(args, "TEXT")
		if f.Weight != 0 {
			args = append(args, "WEIGHT", strconv.FormatFloat(f.Weight, 'g', -1, 64))
		}
	case IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}
	return args
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
