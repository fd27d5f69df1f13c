package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	domainerrors "github.com/leengari/statsbench/internal/domain/errors"
	"github.com/leengari/statsbench/internal/domain/schema"
)

// Key/value metadata stored in the parquet footer. Parquet orders group
// fields by name, so the table's own column order travels separately.
const (
	metaTableName = "statsbench.table"
	metaTablePath = "statsbench.path"
	metaColumns   = "statsbench.columns"
)

const parquetBatchSize = 1024

var parquetMagic = []byte("PAR1")

// ParquetCodec stores a table as a single parquet file with one optional
// leaf per column
type ParquetCodec struct{}

func (ParquetCodec) Name() string { return "parquet" }

func (ParquetCodec) Sniff(prefix []byte) bool {
	return bytes.HasPrefix(prefix, parquetMagic)
}

func (ParquetCodec) Encode(w io.Writer, t *schema.Table) error {
	group := make(parquet.Group, len(t.Schema.Columns))
	for _, col := range t.Schema.Columns {
		node, err := parquetNode(col)
		if err != nil {
			return err
		}
		group[col.Name] = parquet.Optional(node)
	}
	if len(group) != len(t.Schema.Columns) {
		return &domainerrors.SchemaError{Table: t.Name, Reason: "duplicate column names cannot be stored as parquet"}
	}
	pqSchema := parquet.NewSchema(t.Name, group)

	leafIndex := leafIndexes(pqSchema)
	positions := make([]int, len(t.Schema.Columns))
	for c, col := range t.Schema.Columns {
		idx, ok := leafIndex[col.Name]
		if !ok {
			return fmt.Errorf("column %s missing from parquet schema", col.Name)
		}
		positions[c] = idx
	}

	columnsJSON, err := json.Marshal(t.Schema.Columns)
	if err != nil {
		return fmt.Errorf("failed to marshal columns for %s: %w", t.Name, err)
	}

	writer := parquet.NewWriter(w, pqSchema,
		parquet.KeyValueMetadata(metaTableName, t.Name),
		parquet.KeyValueMetadata(metaTablePath, t.Path),
		parquet.KeyValueMetadata(metaColumns, string(columnsJSON)),
	)

	numRows := t.NumRows()
	batch := make([]parquet.Row, 0, parquetBatchSize)
	for r := 0; r < numRows; r++ {
		row := make(parquet.Row, len(t.Schema.Columns))
		for c, col := range t.Schema.Columns {
			v, err := parquetValue(col, t.Data[c][r])
			if err != nil {
				return fmt.Errorf("row %d: %w", r, err)
			}
			def := 1
			if v.IsNull() {
				def = 0
			}
			row[positions[c]] = v.Level(0, def, positions[c])
		}
		batch = append(batch, row)

		if len(batch) == cap(batch) {
			if _, err := writer.WriteRows(batch); err != nil {
				return fmt.Errorf("failed to write rows for %s: %w", t.Name, err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if _, err := writer.WriteRows(batch); err != nil {
			return fmt.Errorf("failed to write rows for %s: %w", t.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file for %s: %w", t.Name, err)
	}
	return nil
}

func (ParquetCodec) Decode(src File) (*schema.Table, error) {
	stat, err := src.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(src, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	name, _ := pqFile.Lookup(metaTableName)
	path, _ := pqFile.Lookup(metaTablePath)
	columnsJSON, ok := pqFile.Lookup(metaColumns)
	if !ok {
		return nil, &domainerrors.SchemaError{Table: name, Reason: "cache entry has no column metadata"}
	}

	var columns []schema.Column
	if err := json.Unmarshal([]byte(columnsJSON), &columns); err != nil {
		return nil, fmt.Errorf("failed to parse column metadata: %w", err)
	}

	// leaf index -> position in the table schema
	leafIndex := leafIndexes(pqFile.Schema())
	positionOf := make(map[int]int, len(columns))
	for c, col := range columns {
		if !col.Type.Valid() {
			return nil, &domainerrors.SchemaError{Table: name, Column: col.Name, Reason: fmt.Sprintf("unknown column type %q", col.Type)}
		}
		idx, ok := leafIndex[col.Name]
		if !ok {
			return nil, &domainerrors.SchemaError{Table: name, Column: col.Name, Reason: "column missing from parquet schema"}
		}
		positionOf[idx] = c
	}

	numRows := int(pqFile.NumRows())
	table := schema.NewTable(name, path, columns)

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	buf := make([]parquet.Row, parquetBatchSize)
	r := 0
	for {
		n, err := reader.ReadRows(buf)
		for _, row := range buf[:n] {
			if r >= numRows {
				return nil, fmt.Errorf("parquet file holds more rows than its footer reports (%d)", numRows)
			}
			values := make([]interface{}, len(columns))
			for _, v := range row {
				c, ok := positionOf[v.Column()]
				if !ok || v.IsNull() {
					continue
				}
				values[c] = fromParquetValue(columns[c].Type, v)
			}
			if err := table.AppendRow(values); err != nil {
				return nil, err
			}
			r++
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
	}

	if r != numRows {
		return nil, fmt.Errorf("read %d rows, expected %d", r, numRows)
	}
	return table, nil
}

func leafIndexes(s *parquet.Schema) map[string]int {
	index := make(map[string]int)
	for i, path := range s.Columns() {
		if len(path) > 0 {
			index[path[0]] = i
		}
	}
	return index
}

func parquetNode(col schema.Column) (parquet.Node, error) {
	switch col.Type {
	case schema.ColumnTypeInt:
		return parquet.Int(64), nil
	case schema.ColumnTypeFloat:
		return parquet.Leaf(parquet.DoubleType), nil
	case schema.ColumnTypeText:
		return parquet.String(), nil
	default:
		return nil, fmt.Errorf("column %s: unknown type %q", col.Name, col.Type)
	}
}

func parquetValue(col schema.Column, value interface{}) (parquet.Value, error) {
	if value == nil {
		return parquet.Value{}, nil
	}
	switch v := value.(type) {
	case int64:
		if col.Type == schema.ColumnTypeInt {
			return parquet.Int64Value(v), nil
		}
	case float64:
		if col.Type == schema.ColumnTypeFloat {
			return parquet.DoubleValue(v), nil
		}
	case string:
		if col.Type == schema.ColumnTypeText {
			return parquet.ByteArrayValue([]byte(v)), nil
		}
	}
	return parquet.Value{}, fmt.Errorf("column %s: cannot store %T as %s", col.Name, value, col.Type)
}

func fromParquetValue(typ schema.ColumnType, v parquet.Value) interface{} {
	switch typ {
	case schema.ColumnTypeInt:
		return v.Int64()
	case schema.ColumnTypeFloat:
		return v.Double()
	default:
		// ByteArray aliases the reader's buffers
		return string(v.ByteArray())
	}
}
