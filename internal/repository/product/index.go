package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/bazaarmkt/bazaarmkt/internal/db"
	"github.com/bazaarmkt/bazaarmkt/internal/domain"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

// TextFields are the fields candidate terms are matched against.
var TextFields = []string{"name", "description", "tags_text", "category_text", "subcategory_text"}

// Store-side weights only order the candidate fetch; final ranking is done
// by the relevance scorer.
const (
	nameWeight = 5
	tagWeight  = 2
)

func keyPrefix() string {
	return domain.KeyPrefix + "product:"
}

func productKey(id string) string {
	return keyPrefix() + id
}

func indexName() string {
	return domain.KeyPrefix + "products:idx"
}

func buildIndex() (*db.IndexDefinition, error) {
	return db.NewIndex(indexName()).
		Prefix(keyPrefix()).
		Language("english").
		NoStopWords().
		WeightedText("$.name", "name", nameWeight).
		Text("$.description", "description").
		WeightedText("$.tags[*]", "tags_text", tagWeight).
		Text("$.category", "category_text").
		Text("$.subcategory", "subcategory_text").
		Tag("$.tags[*]", domprod.FieldTags).
		Tag("$.category", domprod.FieldCategory).
		Tag("$.subcategory", domprod.FieldSubcategory).
		Tag("$.status", domprod.FieldStatus).
		Tag("$.dietary[*]", domprod.FieldDietary).
		Tag("$.artisan.id", domprod.FieldArtisan).
		Numeric("$.price", domprod.FieldPrice).
		Numeric("$.stock", domprod.FieldStock).
		SortableNumeric("$.createdTs", domprod.FieldCreated).
		Build()
}

// EnsureIndex creates the product index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	def, err := buildIndex()
	if err != nil {
		return false, fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, storeErr("create index "+def.Name, err)
	}
	return true, nil
}
