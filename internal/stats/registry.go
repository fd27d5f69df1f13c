// Package stats describes the STATS benchmark schema and loads its tables.
//
// The registry values are fixed at compile time and are only exposed through
// accessors that return copies.
package stats

import "strings"

var aliasToTable = map[string]string{
	"b":  "badges",
	"v":  "votes",
	"ph": "postHistory",
	"p":  "posts",
	"u":  "users",
	"c":  "comments",
	"pl": "postLinks",
	"t":  "tags",
}

var csvFiles = []string{
	"badges.csv",
	"votes.csv",
	"postHistory.csv",
	"posts.csv",
	"users.csv",
	"comments.csv",
	"postLinks.csv",
	"tags.csv",
}

var predicateColumns = map[string][]string{
	"badges.csv":      {"Id", "UserId", "Date"},
	"votes.csv":       {"Id", "PostId", "VoteTypeId", "CreationDate", "UserId", "BountyAmount"},
	"postHistory.csv": {"Id", "PostHistoryTypeId", "PostId", "CreationDate", "UserId"},
	"posts.csv": {
		"Id", "PostTypeId", "CreationDate",
		"Score", "ViewCount", "OwnerUserId",
		"AnswerCount", "CommentCount", "FavoriteCount",
		"LastEditorUserId",
	},
	"users.csv":     {"Id", "Reputation", "CreationDate", "Views", "UpVotes", "DownVotes"},
	"comments.csv":  {"Id", "PostId", "Score", "CreationDate", "UserId"},
	"postLinks.csv": {"Id", "PostId", "Score", "CreationDate", "UserId"},
	"tags.csv":      {"Id", "Count", "ExcerptPostId"},
}

var joinKeys = map[string][]string{
	"badges":      {"Id", "UserId"},
	"votes":       {"Id", "PostId", "UserId"},
	"postHistory": {"Id", "PostId", "UserId"},
	"posts":       {"Id", "OwnerUserId"},
	"users":       {"Id"},
	"comments":    {"Id", "PostId", "UserId"},
	"postLinks":   {"Id", "PostId", "RelatedPostId"},
	"tags":        {"Id", "ExcerptPostId"},
}

// ResolveAlias returns the canonical table name for a query alias such as "u".
func ResolveAlias(alias string) (string, bool) {
	name, ok := aliasToTable[alias]
	return name, ok
}

// AliasOf returns the registered alias of a table, or "" if it has none.
func AliasOf(table string) string {
	for alias, name := range aliasToTable {
		if name == table {
			return alias
		}
	}
	return ""
}

// CSVFiles returns the benchmark file names in load order.
func CSVFiles() []string {
	return clone(csvFiles)
}

// Tables returns the table base names in load order.
func Tables() []string {
	names := make([]string, len(csvFiles))
	for i, f := range csvFiles {
		names[i] = BaseName(f)
	}
	return names
}

// FileName returns the CSV file name of a table.
func FileName(table string) string {
	return table + ".csv"
}

// BaseName strips the .csv extension from a file name.
func BaseName(fileName string) string {
	return strings.TrimSuffix(fileName, ".csv")
}

// PredicateColumns returns the filterable columns of a CSV file.
// Unknown file names yield an empty slice.
func PredicateColumns(fileName string) []string {
	return clone(predicateColumns[fileName])
}

// JoinKeys returns the columns of a table that may appear in equality joins.
// Unknown tables yield an empty slice.
func JoinKeys(table string) []string {
	return clone(joinKeys[table])
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
