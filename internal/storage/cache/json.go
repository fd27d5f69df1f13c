package cache

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/golang/snappy"

	"github.com/leengari/statsbench/internal/domain/errors"
	"github.com/leengari/statsbench/internal/domain/schema"
)

// TableMeta is the header of a JSON cache entry
type TableMeta struct {
	Name     string          `json:"name"`
	Path     string          `json:"path"`
	Columns  []schema.Column `json:"columns"`
	RowCount int64           `json:"row_count"`
}

// jsonEntry keeps cells as strings so every float, including NaN and
// infinities, survives the round trip bit for bit
type jsonEntry struct {
	Meta TableMeta   `json:"meta"`
	Data [][]*string `json:"data"`
}

// JSONCodec stores a table as a JSON document, optionally snappy framed
type JSONCodec struct {
	Compress bool
}

func (c JSONCodec) Name() string {
	if c.Compress {
		return "json+snappy"
	}
	return "json"
}

// snappyMagic is the stream identifier chunk that opens every framed stream
var snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")

func (c JSONCodec) Sniff(prefix []byte) bool {
	if c.Compress {
		return bytes.HasPrefix(prefix, snappyMagic)
	}
	return bytes.HasPrefix(prefix, []byte("{"))
}

func (c JSONCodec) Encode(w io.Writer, t *schema.Table) error {
	entry := jsonEntry{
		Meta: TableMeta{
			Name:     t.Name,
			Path:     t.Path,
			Columns:  t.Schema.Columns,
			RowCount: int64(t.NumRows()),
		},
		Data: make([][]*string, len(t.Data)),
	}

	for c, col := range t.Schema.Columns {
		cells := make([]*string, len(t.Data[c]))
		for r, v := range t.Data[c] {
			s, err := formatCell(col, v)
			if err != nil {
				return fmt.Errorf("row %d: %w", r, err)
			}
			cells[r] = s
		}
		entry.Data[c] = cells
	}

	out := w
	var sw *snappy.Writer
	if c.Compress {
		sw = snappy.NewBufferedWriter(w)
		out = sw
	}

	if err := json.NewEncoder(out).Encode(entry); err != nil {
		return fmt.Errorf("failed to marshal table %s: %w", t.Name, err)
	}

	if sw != nil {
		if err := sw.Close(); err != nil {
			return fmt.Errorf("failed to flush snappy stream for %s: %w", t.Name, err)
		}
	}
	return nil
}

func (c JSONCodec) Decode(src File) (*schema.Table, error) {
	var in io.Reader = bufio.NewReader(src)
	if c.Compress {
		in = snappy.NewReader(src)
	}

	var entry jsonEntry
	if err := json.NewDecoder(in).Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to parse table entry: %w", err)
	}

	meta := entry.Meta
	if len(entry.Data) != len(meta.Columns) {
		return nil, &errors.SchemaError{
			Table:  meta.Name,
			Reason: fmt.Sprintf("%d columns declared, %d stored", len(meta.Columns), len(entry.Data)),
		}
	}

	table := schema.NewTable(meta.Name, meta.Path, meta.Columns)
	for c, col := range meta.Columns {
		if int64(len(entry.Data[c])) != meta.RowCount {
			return nil, &errors.SchemaError{
				Table:  meta.Name,
				Column: col.Name,
				Reason: fmt.Sprintf("%d rows stored, expected %d", len(entry.Data[c]), meta.RowCount),
			}
		}

		values := make([]interface{}, len(entry.Data[c]))
		for r, s := range entry.Data[c] {
			v, err := parseCell(col, s)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", r, err)
			}
			values[r] = v
		}
		table.Data[c] = values
	}
	return table, nil
}

func formatCell(col schema.Column, value interface{}) (*string, error) {
	var s string
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int64:
		s = strconv.FormatInt(v, 10)
	case float64:
		s = strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		s = v
	default:
		return nil, fmt.Errorf("column %s: cannot store %T", col.Name, value)
	}
	return &s, nil
}

func parseCell(col schema.Column, s *string) (interface{}, error) {
	if s == nil {
		return nil, nil
	}
	switch col.Type {
	case schema.ColumnTypeInt:
		n, err := strconv.ParseInt(*s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		return n, nil
	case schema.ColumnTypeFloat:
		f, err := strconv.ParseFloat(*s, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		return f, nil
	case schema.ColumnTypeText:
		return *s, nil
	default:
		return nil, fmt.Errorf("column %s: unknown type %q", col.Name, col.Type)
	}
}
