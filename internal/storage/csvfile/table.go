package csvfile

import (
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/leengari/statsbench/internal/domain/errors"
	"github.com/leengari/statsbench/internal/domain/schema"
)

const utf8BOM = "\ufeff"

// Options controls how a CSV file becomes a table
type Options struct {
	Comma  rune
	Quote  rune
	Escape rune
	// Columns restricts and orders the loaded columns. Empty loads every
	// column in header order.
	Columns []string
}

// DefaultOptions returns comma delimited, double-quoted, backslash escaped parsing
func DefaultOptions() Options {
	return Options{
		Comma:  ',',
		Quote:  '"',
		Escape: '\\',
	}
}

// ReadTable parses the CSV file at path into a table called name
func ReadTable(fsys afero.Fs, name, path string, opts Options) (*schema.Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv %s: %w", path, err)
	}
	defer f.Close()

	table, err := Parse(f, name, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv %s: %w", path, err)
	}
	return table, nil
}

// Parse reads a header line followed by data records from r.
//
// Values are typed per column without any caller supplied casts: a column
// is INT when every non-empty cell is a base-10 integer, FLOAT when every
// non-empty cell is a number, TEXT otherwise. Empty cells are NULL, and a
// column with no non-empty cells is FLOAT.
func Parse(r io.Reader, name, path string, opts Options) (*schema.Table, error) {
	rd := NewReader(r)
	rd.Comma = opts.Comma
	rd.Quote = opts.Quote
	rd.Escape = opts.Escape

	header, err := rd.Read()
	if err == io.EOF {
		return nil, &errors.SchemaError{Table: name, Reason: "missing header line"}
	}
	if err != nil {
		return nil, err
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	header = dedupeHeader(header)

	indices, names, err := selectColumns(name, header, opts.Columns)
	if err != nil {
		return nil, err
	}

	raw := make([][]string, len(indices))
	for {
		record, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > len(header) {
			return nil, &ParseError{Line: rd.Line(), Err: ErrFieldCount}
		}

		for k, idx := range indices {
			// short records are padded with NULLs
			var v string
			if idx < len(record) {
				v = record[idx]
			}
			raw[k] = append(raw[k], v)
		}
	}

	columns := make([]schema.Column, len(names))
	for k, colName := range names {
		columns[k] = schema.Column{Name: colName, Type: InferType(raw[k])}
	}

	table := schema.NewTable(name, path, columns)
	for k, col := range columns {
		table.Data[k] = convert(raw[k], col.Type)
	}
	return table, nil
}

// dedupeHeader renames repeated names to name.1, name.2 and so on, skipping
// suffixes already taken by another header entry
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}

	seen := make(map[string]int, len(header))
	for i, h := range header {
		n, dup := seen[h]
		if !dup {
			seen[h] = 1
			out[i] = h
			continue
		}
		name := fmt.Sprintf("%s.%d", h, n)
		for taken[name] {
			n++
			name = fmt.Sprintf("%s.%d", h, n)
		}
		seen[h] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}

func selectColumns(table string, header, wanted []string) ([]int, []string, error) {
	if len(wanted) == 0 {
		indices := make([]int, len(header))
		for i := range header {
			indices[i] = i
		}
		names := make([]string, len(header))
		copy(names, header)
		return indices, names, nil
	}

	position := make(map[string]int, len(header))
	for i, h := range header {
		position[h] = i
	}

	indices := make([]int, len(wanted))
	for k, col := range wanted {
		idx, ok := position[col]
		if !ok {
			return nil, nil, errors.NewMissingColumn(table, col)
		}
		indices[k] = idx
	}
	names := make([]string, len(wanted))
	copy(names, wanted)
	return indices, names, nil
}

// InferType returns the narrowest column type that holds every non-empty
// value without loss. An integer that overflows int64 makes the column TEXT.
func InferType(values []string) schema.ColumnType {
	isInt, isFloat, seen := true, true, false

	for _, v := range values {
		if v == "" {
			continue
		}
		seen = true

		_, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			continue
		}
		if stderrors.Is(err, strconv.ErrRange) {
			return schema.ColumnTypeText
		}
		isInt = false
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			isFloat = false
		}
	}

	switch {
	case !seen:
		return schema.ColumnTypeFloat
	case isInt:
		return schema.ColumnTypeInt
	case isFloat:
		return schema.ColumnTypeFloat
	default:
		return schema.ColumnTypeText
	}
}

// convert assumes values were classified by InferType
func convert(values []string, typ schema.ColumnType) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		switch typ {
		case schema.ColumnTypeInt:
			n, _ := strconv.ParseInt(v, 10, 64)
			out[i] = n
		case schema.ColumnTypeFloat:
			f, _ := strconv.ParseFloat(v, 64)
			out[i] = f
		default:
			out[i] = v
		}
	}
	return out
}
