package stats_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leengari/statsbench/internal/stats"
)

func TestResolveAlias(t *testing.T) {
	tests := []struct {
		alias string
		want  string
		ok    bool
	}{
		{"b", "badges", true},
		{"v", "votes", true},
		{"ph", "postHistory", true},
		{"p", "posts", true},
		{"u", "users", true},
		{"c", "comments", true},
		{"pl", "postLinks", true},
		{"t", "tags", true},
		{"x", "", false},
		{"badges", "", false},
	}
	for _, tt := range tests {
		got, ok := stats.ResolveAlias(tt.alias)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ResolveAlias(%q) = (%q, %v), want (%q, %v)", tt.alias, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAliasOfInvertsResolveAlias(t *testing.T) {
	for _, table := range stats.Tables() {
		alias := stats.AliasOf(table)
		if got, ok := stats.ResolveAlias(alias); !ok || got != table {
			t.Errorf("AliasOf(%q) = %q, which resolves to %q", table, alias, got)
		}
	}
	if stats.AliasOf("nope") != "" {
		t.Error("unknown table should have no alias")
	}
}

func TestCSVFilesOrder(t *testing.T) {
	want := []string{
		"badges.csv", "votes.csv", "postHistory.csv", "posts.csv",
		"users.csv", "comments.csv", "postLinks.csv", "tags.csv",
	}
	if diff := cmp.Diff(want, stats.CSVFiles()); diff != "" {
		t.Errorf("CSVFiles mismatch (-want +got):\n%s", diff)
	}
	if got := stats.Tables()[2]; got != "postHistory" {
		t.Errorf("expected postHistory third, got %q", got)
	}
}

func TestPredicateColumns(t *testing.T) {
	got := stats.PredicateColumns("badges.csv")
	if diff := cmp.Diff([]string{"Id", "UserId", "Date"}, got); diff != "" {
		t.Errorf("badges predicate columns (-want +got):\n%s", diff)
	}

	posts := stats.PredicateColumns("posts.csv")
	if len(posts) != 10 || posts[9] != "LastEditorUserId" {
		t.Errorf("unexpected posts predicate columns %v", posts)
	}

	unknown := stats.PredicateColumns("missing.csv")
	if unknown == nil || len(unknown) != 0 {
		t.Errorf("unknown file should yield an empty slice, got %#v", unknown)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	cols := stats.PredicateColumns("badges.csv")
	cols[0] = "mutated"
	if stats.PredicateColumns("badges.csv")[0] != "Id" {
		t.Error("PredicateColumns leaked its backing array")
	}

	files := stats.CSVFiles()
	files[0] = "mutated"
	if stats.CSVFiles()[0] != "badges.csv" {
		t.Error("CSVFiles leaked its backing array")
	}

	keys := stats.JoinKeys("postLinks")
	keys[0] = "mutated"
	if stats.JoinKeys("postLinks")[0] != "Id" {
		t.Error("JoinKeys leaked its backing array")
	}
}

func TestJoinKeys(t *testing.T) {
	if diff := cmp.Diff([]string{"Id", "PostId", "RelatedPostId"}, stats.JoinKeys("postLinks")); diff != "" {
		t.Errorf("postLinks join keys (-want +got):\n%s", diff)
	}
	if got := stats.JoinKeys("nope"); len(got) != 0 {
		t.Errorf("unknown table should have no join keys, got %v", got)
	}
}

func TestFileNames(t *testing.T) {
	if stats.FileName("postHistory") != "postHistory.csv" {
		t.Error("FileName")
	}
	if stats.BaseName("postHistory.csv") != "postHistory" {
		t.Error("BaseName")
	}
}
