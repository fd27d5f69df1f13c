package errors

import (
	"fmt"
	"strings"
)

// ConfigError reports an invalid option value.
// It is always returned before any file is touched.
type ConfigError struct {
	Field  string      // option name, e.g. "columns"
	Value  interface{} // offending value (may be nil)
	Reason string      // human-readable explanation (optional)
}

func (e *ConfigError) Error() string {
	parts := []string{fmt.Sprintf("invalid configuration for %s", e.Field)}

	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

func NewInvalidColumnMode(value string) *ConfigError {
	return &ConfigError{
		Field:  "columns",
		Value:  value,
		Reason: "expected one of: all, none",
	}
}

func NewUnknownCodec(value string) *ConfigError {
	return &ConfigError{
		Field:  "codec",
		Value:  value,
		Reason: "expected one of: parquet, json, json+snappy",
	}
}

// FormatError describes a malformed record in a query file
type FormatError struct {
	Path    string // file path (empty when parsing an arbitrary reader)
	Line    int    // 1-based line number (0 if unknown)
	Segment string // "tables", "joins", "predicates", "cardinality" or "" for the record itself
	Reason  string
	Err     error // underlying cause (may be nil)
}

func (e *FormatError) Error() string {
	var parts []string

	location := "query file"
	if e.Path != "" {
		location = e.Path
	}
	if e.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, e.Line)
	}
	parts = append(parts, fmt.Sprintf("malformed query at %s", location))

	if e.Segment != "" {
		parts = append(parts, fmt.Sprintf("(%s)", e.Segment))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, " - ")
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// SchemaError reports a table whose columns do not match what was requested
type SchemaError struct {
	Table  string
	Column string // empty if table-level
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema error in %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("schema error in %s.%s: %s", e.Table, e.Column, e.Reason)
}

func NewMissingColumn(table, column string) *SchemaError {
	return &SchemaError{
		Table:  table,
		Column: column,
		Reason: "column not found in header",
	}
}
