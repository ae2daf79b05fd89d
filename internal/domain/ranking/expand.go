// Package ranking expands search words, scores product candidates and orders them.
package ranking

import (
	"strings"
	"unicode"
)

// Qualifiers are prefixed to every search word during expansion.
var qualifiers = [...]string{"fresh", "organic", "local", "artisan", "homemade"}

func defaultSynonyms() map[string][]string {
	return map[string][]string{
		"eggs":       {"egg", "fresh eggs", "farm eggs", "organic eggs", "chicken eggs"},
		"egg":        {"eggs", "fresh eggs", "farm eggs"},
		"bread":      {"loaf", "sourdough", "baguette", "artisan bread", "fresh bread"},
		"honey":      {"raw honey", "local honey", "organic honey", "wildflower honey"},
		"cheese":     {"aged cheese", "artisan cheese", "cheddar", "goat cheese"},
		"milk":       {"dairy", "fresh milk", "whole milk", "raw milk"},
		"tomatoes":   {"tomato", "heirloom tomatoes", "cherry tomatoes", "fresh tomatoes"},
		"tomato":     {"tomatoes", "heirloom tomato", "cherry tomato"},
		"apples":     {"apple", "organic apples", "fresh apples"},
		"vegetables": {"veggies", "produce", "fresh vegetables", "greens"},
		"fruit":      {"fruits", "fresh fruit", "berries"},
		"coffee":     {"coffee beans", "espresso", "roasted coffee", "ground coffee"},
		"jam":        {"preserves", "jelly", "marmalade", "fruit spread"},
		"meat":       {"beef", "pork", "chicken", "lamb"},
		"chicken":    {"poultry", "free range chicken", "whole chicken"},
		"beef":       {"grass fed beef", "ground beef", "steak"},
		"maple":      {"maple syrup", "syrup", "pure maple syrup"},
		"cookies":    {"cookie", "biscuits", "baked goods"},
		"pastry":     {"pastries", "croissant", "baked goods"},
		"butter":     {"fresh butter", "cultured butter"},
		"yogurt":     {"yoghurt", "greek yogurt"},
		"soap":       {"handmade soap", "natural soap", "bar soap"},
		"candles":    {"candle", "soy candles", "beeswax candles"},
		"pottery":    {"ceramics", "clay", "handmade pottery"},
	}
}

func defaultMisspellings() map[string][]string {
	return map[string][]string{
		"eggs":       {"egs", "eggz"},
		"cheese":     {"chese", "cheeze"},
		"tomatoes":   {"tomatos", "tomatoe"},
		"coffee":     {"cofee", "coffe"},
		"vegetables": {"vegtables", "vegetabels"},
		"bread":      {"bred"},
		"yogurt":     {"yogourt"},
		"pottery":    {"potery"},
		"sourdough":  {"sour dough"},
		"cookies":    {"cookeis"},
	}
}

// Expander derives lexical variants of search words. Its lookup tables are
// built once in NewExpander and never written afterwards.
type Expander struct {
	synonyms     map[string][]string
	misspellings map[string][]string
}

// NewExpander creates an Expander with the built-in food and craft tables.
func NewExpander() *Expander {
	return &Expander{
		synonyms:     defaultSynonyms(),
		misspellings: defaultMisspellings(),
	}
}

// Expand returns the deduplicated variants of a single word in insertion order:
// the word, its synonyms, the plural/singular toggle, qualifier-prefixed forms
// and known misspellings. A blank word yields nil.
func (e *Expander) Expand(term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	out := newOrderedSet()
	out.add(term)
	out.add(e.synonyms[term]...)
	out.add(pluralToggle(term))
	for _, q := range qualifiers {
		if q != term {
			out.add(q + " " + term)
		}
	}
	out.add(e.misspellings[term]...)
	return out.items
}

// ExpandAll merges the expansions of several words, keeping first-seen order.
func (e *Expander) ExpandAll(words []string) []string {
	out := newOrderedSet()
	for _, w := range words {
		out.add(e.Expand(w)...)
	}
	return out.items
}

// Tokenize lowercases a phrase and splits it into words with surrounding
// punctuation trimmed.
func Tokenize(phrase string) []string {
	fields := strings.Fields(strings.ToLower(phrase))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func pluralToggle(term string) string {
	if strings.HasSuffix(term, "s") {
		return strings.TrimSuffix(term, "s")
	}
	return term + "s"
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(vals ...string) {
	for _, v := range vals {
		if v == "" {
			continue
		}
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}
