package parser

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/leengari/statsbench/internal/domain/errors"
	"github.com/leengari/statsbench/internal/parser/ast"
	"github.com/leengari/statsbench/internal/testutil"
)

func parseString(t *testing.T, input string, useAliasKeys bool) ([]*ast.Query, error) {
	t.Helper()
	return New(useAliasKeys).Parse(strings.NewReader(input))
}

func TestParseSingleLine(t *testing.T) {
	queries, err := parseString(t, "t,u#t.Id = u.Id#t.Score,>,5#42\n", true)
	testutil.AssertNoError(t, err, "Parse")

	if len(queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(queries))
	}
	q := queries[0]

	if q.TrueCardinality != 42 {
		t.Errorf("expected cardinality 42, got %d", q.TrueCardinality)
	}
	if diff := cmp.Diff([]string{"tags", "users"}, q.Tables); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string][]string{"t": {"Id"}, "u": {"Id"}}, q.Joins.Map()); diff != "" {
		t.Errorf("joins mismatch (-want +got):\n%s", diff)
	}

	wantPreds := map[string][]ast.Predicate{
		"tags": {{Column: "Score", Op: ">", Value: "5"}},
	}
	if diff := cmp.Diff(wantPreds, q.Predicates); diff != "" {
		t.Errorf("predicates mismatch (-want +got):\n%s", diff)
	}
	if q.Line != 1 {
		t.Errorf("expected line 1, got %d", q.Line)
	}
}

func TestParseJoinKeys(t *testing.T) {
	input := "comments as c,posts as p,users as u#c.UserId = u.Id,p.OwnerUserId = u.Id,c.PostId = p.Id#u.Reputation,>=,10#7\n"

	tests := []struct {
		name         string
		useAliasKeys bool
		want         map[string][]string
		wantKeys     []string
	}{
		{
			name:         "alias keys",
			useAliasKeys: true,
			want:         map[string][]string{"c": {"UserId", "PostId"}, "u": {"Id"}, "p": {"OwnerUserId", "Id"}},
			wantKeys:     []string{"c", "u", "p"},
		},
		{
			name:         "table keys",
			useAliasKeys: false,
			want:         map[string][]string{"comments": {"UserId", "PostId"}, "users": {"Id"}, "posts": {"OwnerUserId", "Id"}},
			wantKeys:     []string{"comments", "users", "posts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries, err := parseString(t, input, tt.useAliasKeys)
			testutil.AssertNoError(t, err, "Parse")
			q := queries[0]

			if diff := cmp.Diff(tt.want, q.Joins.Map()); diff != "" {
				t.Errorf("joins mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantKeys, q.Joins.Keys()); diff != "" {
				t.Errorf("key order mismatch (-want +got):\n%s", diff)
			}
			if len(q.JoinConditions) != 3 {
				t.Errorf("expected 3 join conditions, got %d", len(q.JoinConditions))
			}
			if q.Predicates["users"][0].Op != ">=" {
				t.Errorf("expected >= on users, got %v", q.Predicates["users"])
			}
		})
	}
}

func TestParseTableTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []ast.TableRef
	}{
		{"name alias", "badges b", []ast.TableRef{{Name: "badges", Alias: "b"}}},
		{"AS keyword", "badges AS b", []ast.TableRef{{Name: "badges", Alias: "b"}}},
		{"lowercase as", "badges as b", []ast.TableRef{{Name: "badges", Alias: "b"}}},
		{"bare alias", "ph", []ast.TableRef{{Name: "postHistory", Alias: "ph"}}},
		{"bare unknown name", "widgets", []ast.TableRef{{Name: "widgets", Alias: "widgets"}}},
		{"repeated alias takes latest name", "posts x,users y,tags x", []ast.TableRef{
			{Name: "tags", Alias: "x"},
			{Name: "users", Alias: "y"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries, err := parseString(t, tt.input+"###1\n", true)
			testutil.AssertNoError(t, err, "Parse")
			if diff := cmp.Diff(tt.want, queries[0].TableRefs); diff != "" {
				t.Errorf("table refs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseEmptyJoinsAndPredicates(t *testing.T) {
	queries, err := parseString(t, "users as u###1000\n", true)
	testutil.AssertNoError(t, err, "Parse")

	q := queries[0]
	if q.Joins.Len() != 0 {
		t.Errorf("expected no joins, got %s", q.Joins)
	}
	if q.PredicateCount() != 0 {
		t.Errorf("expected no predicates, got %d", q.PredicateCount())
	}
	if q.TrueCardinality != 1000 {
		t.Errorf("expected cardinality 1000, got %d", q.TrueCardinality)
	}
}

func TestParseKeepsPredicateValueRaw(t *testing.T) {
	input := "posts as p#p.Id = p.Id#p.CreationDate,>=,'2010-07-20 02:01:05'::timestamp,p.Score, <= ,3#5\n"
	queries, err := parseString(t, input, true)
	testutil.AssertNoError(t, err, "Parse")

	want := []ast.Predicate{
		{Column: "CreationDate", Op: ">=", Value: "'2010-07-20 02:01:05'::timestamp"},
		{Column: "Score", Op: "<=", Value: "3"},
	}
	if diff := cmp.Diff(want, queries[0].Predicates["posts"]); diff != "" {
		t.Errorf("predicates mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePreservesFileOrder(t *testing.T) {
	input := "b#b.Id = b.Id##1\n\nu###2\nc###3\n"
	queries, err := parseString(t, input, false)
	testutil.AssertNoError(t, err, "Parse")

	if len(queries) != 3 {
		t.Fatalf("expected 3 queries, got %d", len(queries))
	}
	for i, want := range []int64{1, 2, 3} {
		if queries[i].TrueCardinality != want {
			t.Errorf("query %d: expected cardinality %d, got %d", i, want, queries[i].TrueCardinality)
		}
	}
	if queries[2].Line != 4 {
		t.Errorf("blank line should still count, expected line 4, got %d", queries[2].Line)
	}
}

func TestParseFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		segment string
	}{
		{"three segments", "u###1\nb#b.Id = b.Id#2\n", 2, ""},
		{"five segments", "u####1\n", 1, ""},
		{"non-integer cardinality", "u###many\n", 1, segmentCardinality},
		{"missing cardinality", "u###\n", 1, segmentCardinality},
		{"segments split across lines", "u##u.Id,=\n#1\n", 1, ""},
		{"predicate triple count", "u##u.Id,=,1,u.Views#1\n", 1, segmentPredicates},
		{"unknown alias in join", "users u#x.Id = u.Id##1\n", 1, segmentJoins},
		{"unknown alias in predicate", "users u##x.Id,=,1#1\n", 1, segmentPredicates},
		{"malformed join", "users u#u.Id == u.Id##1\n", 1, segmentJoins},
		{"illegal table token", "users-u###1\n", 1, segmentTables},
		{"no tables", "###1\n", 1, segmentTables},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries, err := parseString(t, tt.input, true)
			if queries != nil {
				t.Errorf("expected no partial result, got %d queries", len(queries))
			}

			var fe *errors.FormatError
			if !stderrors.As(err, &fe) {
				t.Fatalf("expected FormatError, got %v", err)
			}
			if fe.Line != tt.line {
				t.Errorf("expected line %d, got %d (%v)", tt.line, fe.Line, err)
			}
			if fe.Segment != tt.segment {
				t.Errorf("expected segment %q, got %q (%v)", tt.segment, fe.Segment, err)
			}
		})
	}
}

func TestParseQueryFileFS(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testutil.WriteFile(t, fsys, "/queries/stats_CEB.txt", "t,u#t.Id = u.Id#t.Score,>,5#42\n")

	queries, err := ParseQueryFileFS(fsys, "/queries/stats_CEB.txt", true)
	testutil.AssertNoError(t, err, "ParseQueryFileFS")
	if len(queries) != 1 || len(queries[0].Tables) != 2 {
		t.Fatalf("unexpected result %v", queries)
	}

	_, err = ParseQueryFileFS(fsys, "/queries/missing.txt", true)
	testutil.AssertError(t, err, "missing file")

	testutil.WriteFile(t, fsys, "/queries/bad.txt", "u###1\nu##2\n")
	_, err = ParseQueryFileFS(fsys, "/queries/bad.txt", true)
	var fe *errors.FormatError
	if !stderrors.As(err, &fe) || fe.Path != "/queries/bad.txt" {
		t.Errorf("expected FormatError carrying the path, got %v", err)
	}
}
