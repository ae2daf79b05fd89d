package importer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/parquet-go/parquet-go"

	dombatch "github.com/bazaarmkt/bazaarmkt/internal/domain/batch"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

func ptr[T any](v T) *T { return &v }

// writeCatalog writes rows to dir/name as a parquet file.
func writeCatalog(t *testing.T, dir, name string, rows []catalogRow) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = f.Close() }()

	w := parquet.NewGenericWriter[catalogRow](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
}

func simpleRows(prefix string, n int) []catalogRow {
	rows := make([]catalogRow, n)
	for i := range rows {
		rows[i] = catalogRow{
			ID:    prefix + "-" + string(rune('a'+i)),
			Name:  "Product " + string(rune('A'+i)),
			Price: float64(i + 1),
		}
	}
	return rows
}

// recordingUpserter accepts every valid product and records batch sizes.
type recordingUpserter struct {
	mu      sync.Mutex
	batches []int
	ids     []string
}

func (u *recordingUpserter) Upsert(_ context.Context, items []domprod.Product) []dombatch.Result {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.batches = append(u.batches, len(items))
	results := make([]dombatch.Result, len(items))
	for i := range items {
		if err := items[i].Validate(); err != nil {
			results[i] = dombatch.NewInvalid(items[i].ID, err)
			continue
		}
		u.ids = append(u.ids, items[i].ID)
		results[i] = dombatch.NewOK(items[i].ID)
	}
	return results
}
