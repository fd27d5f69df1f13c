package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/leengari/statsbench/internal/domain/schema"
)

// AssertRowCount checks if the table has the expected number of rows
func AssertRowCount(t *testing.T, table *schema.Table, expected int, context string) {
	t.Helper()
	if actual := table.NumRows(); actual != expected {
		t.Errorf("%s: expected %d rows, got %d", context, expected, actual)
	}
}

// AssertColumns checks the column names of a table, in order
func AssertColumns(t *testing.T, table *schema.Table, expected []string, context string) {
	t.Helper()
	if diff := cmp.Diff(expected, table.Schema.ColumnNames()); diff != "" {
		t.Errorf("%s: columns mismatch (-want +got):\n%s", context, diff)
	}
}

// AssertTablesEqual checks name, path, schema and every cell. Nil and
// empty column slices are treated as equal.
func AssertTablesEqual(t *testing.T, want, got *schema.Table, context string) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("%s: tables differ (-want +got):\n%s", context, diff)
	}
}

// AssertNoError checks that an error is nil
func AssertNoError(t *testing.T, err error, context string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: expected no error, got: %v", context, err)
	}
}

// AssertError checks that an error is not nil
func AssertError(t *testing.T, err error, context string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected an error, got nil", context)
	}
}

// AssertNullValue checks if a value is nil
func AssertNullValue(t *testing.T, value interface{}, context string) {
	t.Helper()
	if value != nil {
		t.Errorf("%s: expected NULL value, got: %v", context, value)
	}
}
