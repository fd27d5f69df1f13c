package cache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/leengari/statsbench/internal/domain/schema"
)

// Store reads and writes cache entries through one codec
type Store struct {
	FS     afero.Fs
	Codec  Codec
	Logger *slog.Logger
}

// NewStore creates a store over fsys; a nil codec means parquet
func NewStore(fsys afero.Fs, codec Codec, logger *slog.Logger) *Store {
	if codec == nil {
		codec = ParquetCodec{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{FS: fsys, Codec: codec, Logger: logger}
}

// Exists reports whether an entry written by the store's codec is present
// at path. An entry left by another codec counts as absent, so it is
// reparsed and overwritten instead of failing to decode.
func (s *Store) Exists(path string) (bool, error) {
	f, err := s.FS.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open cache entry %s: %w", path, err)
	}
	defer f.Close()

	prefix := make([]byte, SniffLen)
	n, err := io.ReadFull(f, prefix)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, fmt.Errorf("failed to read cache entry %s: %w", path, err)
	}

	if !s.Codec.Sniff(prefix[:n]) {
		s.Logger.Warn("ignoring cache entry from another codec",
			slog.String("path", path),
			slog.String("codec", s.Codec.Name()),
		)
		return false, nil
	}
	return true, nil
}

// Load decodes the entry at path
func (s *Store) Load(path string) (*schema.Table, error) {
	f, err := s.FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache entry %s: %w", path, err)
	}
	defer f.Close()

	table, err := s.Codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %s: %w", path, err)
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt cache entry %s: %w", path, err)
	}

	attrs := []any{
		slog.String("table", table.Name),
		slog.String("path", path),
		slog.String("codec", s.Codec.Name()),
		slog.Int("rows", table.NumRows()),
	}
	if info, err := f.Stat(); err == nil {
		attrs = append(attrs, slog.String("size", humanize.Bytes(uint64(info.Size()))))
	}
	s.Logger.Info("loaded parsed table", attrs...)

	return table, nil
}

// Save encodes t to path, replacing any existing entry.
// The entry is written to a temporary sibling and renamed into place, so
// concurrent writers race with last-writer-wins semantics.
func (s *Store) Save(path string, t *schema.Table) error {
	tmpPath := path + ".tmp"

	f, err := s.FS.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	if err := s.Codec.Encode(f, t); err != nil {
		_ = f.Close()
		_ = s.FS.Remove(tmpPath)
		return fmt.Errorf("failed to encode table %s: %w", t.Name, err)
	}

	if err := f.Close(); err != nil {
		_ = s.FS.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}

	if err := s.FS.Rename(tmpPath, path); err != nil {
		_ = s.FS.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp → %s: %w", path, err)
	}

	attrs := []any{
		slog.String("table", t.Name),
		slog.String("path", path),
		slog.String("codec", s.Codec.Name()),
		slog.Int("rows", t.NumRows()),
	}
	if info, err := s.FS.Stat(path); err == nil {
		attrs = append(attrs, slog.String("size", humanize.Bytes(uint64(info.Size()))))
	}
	s.Logger.Info("saved parsed table", attrs...)

	return nil
}
