package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"

	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
)

const readBufferSize = 1000

// Reader streams catalog rows from the parquet files of a directory.
type Reader struct {
	files []string
}

// NewReader scans dataDir for *.parquet files. Files are read in name order.
func NewReader(dataDir string) (*Reader, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.parquet"))
	if err != nil {
		return nil, fmt.Errorf("glob parquet files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no parquet files found in %s", dataDir)
	}
	sort.Strings(files)
	return &Reader{files: files}, nil
}

// Files returns the files the reader will consume.
func (r *Reader) Files() []string { return r.files }

// RowFunc receives each converted product. Returning false stops the read.
type RowFunc func(p domprod.Product) bool

// SkipFunc receives the reason a row could not be converted.
type SkipFunc func(reason string)

// Read streams products from every file. maxRows=0 means no limit; skipped
// rows do not count toward it. Returns the number of products delivered.
func (r *Reader) Read(ctx context.Context, maxRows int, fn RowFunc, skip SkipFunc) (int, error) {
	delivered := 0
	for _, path := range r.files {
		n, stop, err := r.readFile(ctx, path, maxRows-delivered, maxRows > 0, fn, skip)
		delivered += n
		if err != nil {
			return delivered, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		if stop {
			break
		}
	}
	return delivered, nil
}

func (r *Reader) readFile(
	ctx context.Context, path string, remaining int, limited bool, fn RowFunc, skip SkipFunc,
) (n int, stop bool, err error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, false, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows := parquet.NewGenericReader[catalogRow](f)
	defer func() { _ = rows.Close() }()

	buf := make([]catalogRow, readBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return n, true, err
		}

		clear(buf)
		cnt, readErr := rows.Read(buf)
		for i := range cnt {
			p, reason := toProduct(&buf[i])
			if reason != "" {
				if skip != nil {
					skip(reason)
				}
				continue
			}
			if !fn(p) {
				return n, true, nil
			}
			n++
			if limited && n >= remaining {
				return n, true, nil
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return n, false, nil
			}
			return n, false, fmt.Errorf("read rows: %w", readErr)
		}
	}
}
