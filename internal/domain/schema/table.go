package schema

import (
	"fmt"

	"github.com/leengari/statsbench/internal/domain/data"
)

// Table is a columnar in-memory table.
// Data holds one slice per schema column; every slice has NumRows() entries.
// Cell values are int64, float64, string or nil (NULL).
type Table struct {
	Name   string
	Path   string // source CSV the table was parsed from
	Schema *TableSchema
	Data   [][]interface{}
}

// NewTable creates an empty table with the given columns
func NewTable(name, path string, columns []Column) *Table {
	cols := make([]Column, len(columns))
	copy(cols, columns)

	return &Table{
		Name: name,
		Path: path,
		Schema: &TableSchema{
			TableName: name,
			Columns:   cols,
		},
		Data: make([][]interface{}, len(cols)),
	}
}

// NumRows returns the number of rows in the table
func (t *Table) NumRows() int {
	if len(t.Data) == 0 {
		return 0
	}
	return len(t.Data[0])
}

// NumColumns returns the number of columns in the table
func (t *Table) NumColumns() int {
	return len(t.Schema.Columns)
}

// Column returns the values of the named column
func (t *Table) Column(name string) ([]interface{}, bool) {
	idx := t.Schema.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	return t.Data[idx], true
}

// AppendRow appends one value per column, in schema order
func (t *Table) AppendRow(values []interface{}) error {
	if len(values) != len(t.Schema.Columns) {
		return fmt.Errorf("table %s: expected %d values, got %d", t.Name, len(t.Schema.Columns), len(values))
	}
	for i, v := range values {
		t.Data[i] = append(t.Data[i], v)
	}
	return nil
}

// Row returns row i keyed by column name
func (t *Table) Row(i int) data.Row {
	values := make(map[string]interface{}, len(t.Schema.Columns))
	for c, col := range t.Schema.Columns {
		values[col.Name] = t.Data[c][i]
	}
	return data.NewRow(values)
}

// Validate checks that every column slice has the same length and that
// every cell matches its declared column type
func (t *Table) Validate() error {
	if len(t.Data) != len(t.Schema.Columns) {
		return fmt.Errorf("table %s: %d columns in schema, %d in data", t.Name, len(t.Schema.Columns), len(t.Data))
	}

	rows := t.NumRows()
	for c, col := range t.Schema.Columns {
		if len(t.Data[c]) != rows {
			return fmt.Errorf("table %s: column %s has %d rows, expected %d", t.Name, col.Name, len(t.Data[c]), rows)
		}
		for r, v := range t.Data[c] {
			if err := validateType(col, v); err != nil {
				return fmt.Errorf("table %s row %d: %w", t.Name, r, err)
			}
		}
	}
	return nil
}

// validateType validates that a value matches the expected column type
func validateType(col Column, value interface{}) error {
	if value == nil {
		return nil
	}
	switch col.Type {
	case ColumnTypeInt:
		if _, ok := value.(int64); !ok {
			return fmt.Errorf("column %s: expected INT, got %T", col.Name, value)
		}
	case ColumnTypeFloat:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("column %s: expected FLOAT, got %T", col.Name, value)
		}
	case ColumnTypeText:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("column %s: expected TEXT, got %T", col.Name, value)
		}
	default:
		return fmt.Errorf("column %s: unknown type %q", col.Name, col.Type)
	}
	return nil
}
