package stats

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/leengari/statsbench/internal/domain/errors"
	"github.com/leengari/statsbench/internal/domain/schema"
	"github.com/leengari/statsbench/internal/storage"
	"github.com/leengari/statsbench/internal/storage/cache"
)

// DefaultDataDir is where the STATS CSV files are expected by default
const DefaultDataDir = "./datasets/stats/"

// ColumnMode selects which columns of each table are loaded
type ColumnMode string

const (
	// ColumnsAll loads the predicate columns of each file
	ColumnsAll ColumnMode = "all"
	// ColumnsNone loads every column in the file
	ColumnsNone ColumnMode = "none"
)

// ParseColumnMode validates a column mode name
func ParseColumnMode(s string) (ColumnMode, error) {
	switch mode := ColumnMode(s); mode {
	case ColumnsAll, ColumnsNone:
		return mode, nil
	default:
		return "", errors.NewInvalidColumnMode(s)
	}
}

// LoadOptions configures Load, LoadTable and LoadAll
type LoadOptions struct {
	DataDir  string
	TryCache bool
	Columns  ColumnMode
	Codec    cache.Codec  // nil means parquet
	FS       afero.Fs     // nil means the OS filesystem
	Logger   *slog.Logger // nil means slog.Default()
}

// DefaultLoadOptions mirrors the benchmark's usual setup: predicate columns
// only, cache enabled
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		DataDir:  DefaultDataDir,
		TryCache: true,
		Columns:  ColumnsAll,
	}
}

// WantedColumns returns the columns to load from fileName under mode.
// An empty result means no restriction.
func WantedColumns(fileName string, mode ColumnMode) []string {
	if mode == ColumnsAll {
		return PredicateColumns(fileName)
	}
	return nil
}

// Load loads a single table when table is non-empty, otherwise every
// benchmark table. The result is keyed by table base name.
func Load(table string, opts LoadOptions) (map[string]*schema.Table, error) {
	if table == "" {
		return LoadAll(opts)
	}

	t, err := LoadTable(table, opts)
	if err != nil {
		return nil, err
	}
	return map[string]*schema.Table{t.Name: t}, nil
}

// LoadTable loads one table, e.g. "badges", from opts.DataDir
func LoadTable(table string, opts LoadOptions) (*schema.Table, error) {
	loader, err := newLoader(opts)
	if err != nil {
		return nil, err
	}
	return loadFile(loader, FileName(table), opts)
}

// LoadAll loads every table of the benchmark in file order
func LoadAll(opts LoadOptions) (map[string]*schema.Table, error) {
	loader, err := newLoader(opts)
	if err != nil {
		return nil, err
	}

	tables := make(map[string]*schema.Table, len(csvFiles))
	for _, fileName := range csvFiles {
		t, err := loadFile(loader, fileName, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to load table %s: %w", BaseName(fileName), err)
		}
		tables[BaseName(fileName)] = t
	}

	logger(opts).Info("benchmark tables loaded",
		slog.String("data_dir", opts.DataDir),
		slog.Int("table_count", len(tables)),
	)
	return tables, nil
}

func loadFile(loader storage.Loader, fileName string, opts LoadOptions) (*schema.Table, error) {
	return loader.LoadTable(storage.TableRequest{
		Name:    BaseName(fileName),
		Path:    filepath.Join(opts.DataDir, fileName),
		Columns: WantedColumns(fileName, opts.Columns),
	})
}

// newLoader validates opts and composes the loader chain
func newLoader(opts LoadOptions) (storage.Loader, error) {
	if _, err := ParseColumnMode(string(opts.Columns)); err != nil {
		return nil, err
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	log := logger(opts)

	var loader storage.Loader = storage.NewFreshParseLoader(fsys, log)
	if opts.TryCache {
		store := cache.NewStore(fsys, opts.Codec, log)
		loader = storage.NewCacheBackedLoader(store, loader)
	}
	return loader, nil
}

func logger(opts LoadOptions) *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return slog.Default()
}
