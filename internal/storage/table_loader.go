package storage

import (
	"log/slog"

	"github.com/spf13/afero"

	"github.com/leengari/statsbench/internal/domain/schema"
	"github.com/leengari/statsbench/internal/storage/cache"
	"github.com/leengari/statsbench/internal/storage/csvfile"
)

// TableRequest identifies one table to load
type TableRequest struct {
	Name    string   // table base name, e.g. "badges"
	Path    string   // CSV path
	Columns []string // empty loads all columns
}

// Loader produces a table for a request
type Loader interface {
	LoadTable(req TableRequest) (*schema.Table, error)
}

// FreshParseLoader always parses the CSV file
type FreshParseLoader struct {
	FS      afero.Fs
	Options csvfile.Options
	Logger  *slog.Logger
}

func NewFreshParseLoader(fsys afero.Fs, logger *slog.Logger) *FreshParseLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FreshParseLoader{
		FS:      fsys,
		Options: csvfile.DefaultOptions(),
		Logger:  logger,
	}
}

func (l *FreshParseLoader) LoadTable(req TableRequest) (*schema.Table, error) {
	opts := l.Options
	opts.Columns = req.Columns

	table, err := csvfile.ReadTable(l.FS, req.Name, req.Path, opts)
	if err != nil {
		return nil, err
	}

	l.Logger.Info("table loaded",
		slog.String("table", table.Name),
		slog.String("path", req.Path),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumColumns()),
	)
	return table, nil
}

// CacheBackedLoader serves tables from cache entries and falls back to Next
// when no entry exists, saving what Next returns
type CacheBackedLoader struct {
	Store *cache.Store
	Next  Loader
}

func NewCacheBackedLoader(store *cache.Store, next Loader) *CacheBackedLoader {
	return &CacheBackedLoader{Store: store, Next: next}
}

func (l *CacheBackedLoader) LoadTable(req TableRequest) (*schema.Table, error) {
	entryPath := cache.EntryPath(req.Path, req.Columns)

	exists, err := l.Store.Exists(entryPath)
	if err != nil {
		return nil, err
	}
	if exists {
		return l.Store.Load(entryPath)
	}

	table, err := l.Next.LoadTable(req)
	if err != nil {
		return nil, err
	}

	if err := l.Store.Save(entryPath, table); err != nil {
		return nil, err
	}
	return table, nil
}
