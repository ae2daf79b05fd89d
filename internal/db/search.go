package db

import "github.com/bazaarmkt/bazaarmkt/internal/domain/filter"

// DocumentField is the return field holding the whole JSON document.
const DocumentField = "$"

// TextQuery pulls documents where any of TextFields holds a word starting with
// any of Terms. An empty Terms list matches every document passing Filters.
type TextQuery struct {
	IndexName    string
	Terms        []string
	TextFields   []string
	Filters      filter.Expression
	Limit        int
	ReturnFields []string
}

// ListQuery pages through documents passing Filters, optionally sorted by a
// sortable numeric field.
type ListQuery struct {
	IndexName    string
	Filters      filter.Expression
	SortBy       string
	Descending   bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
