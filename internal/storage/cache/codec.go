// Package cache stores parsed tables next to their source CSV files so later
// loads can skip parsing.
//
// An entry never expires. When the CSV changes, the entry must be deleted by
// hand.
package cache

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/leengari/statsbench/internal/domain/errors"
	"github.com/leengari/statsbench/internal/domain/schema"
)

// Extension is the suffix of every cache entry
const Extension = ".table"

// SniffLen is the number of leading bytes Store reads to identify a codec
const SniffLen = 10

// File is the subset of afero.File a codec needs to decode an entry
type File interface {
	io.Reader
	io.ReaderAt
	Stat() (os.FileInfo, error)
}

// Codec serializes a table to and from a cache entry.
// Decode(Encode(t)) must reproduce t exactly: name, path, column order and
// types, cell values, NULLs and row order.
type Codec interface {
	Name() string
	// Sniff reports whether an entry starting with prefix was written by
	// this codec. prefix holds at most SniffLen bytes.
	Sniff(prefix []byte) bool
	Encode(w io.Writer, t *schema.Table) error
	Decode(src File) (*schema.Table, error)
}

// CodecByName returns the codec registered under name
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "parquet":
		return ParquetCodec{}, nil
	case "json":
		return JSONCodec{}, nil
	case "json+snappy":
		return JSONCodec{Compress: true}, nil
	default:
		return nil, errors.NewUnknownCodec(name)
	}
}

// EntryPath returns the cache entry path for a CSV file loaded with the
// given columns: <base>.<col1-col2-...>.table, or <base>.table when all
// columns are loaded.
func EntryPath(csvPath string, columns []string) string {
	base := strings.TrimSuffix(csvPath, filepath.Ext(csvPath))
	if len(columns) == 0 {
		return base + Extension
	}
	return base + "." + strings.Join(columns, "-") + Extension
}
