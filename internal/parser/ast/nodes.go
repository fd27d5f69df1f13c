package ast

import (
	"bytes"
	"fmt"
	"strings"
)

// ColumnRef is a qualified column such as "u.Id"
type ColumnRef struct {
	Table  string // alias or table name as written
	Column string
}

func (c ColumnRef) String() string {
	return c.Table + "." + c.Column
}

// TableRef is one entry of the tables segment
type TableRef struct {
	Name  string // canonical table name
	Alias string
}

// JoinCondition is an equality join "Left = Right"
type JoinCondition struct {
	Left  ColumnRef
	Right ColumnRef
}

func (j JoinCondition) String() string {
	return j.Left.String() + " = " + j.Right.String()
}

// JoinGraph maps a table key (alias or canonical name) to the distinct
// columns it joins on, in first-seen order
type JoinGraph struct {
	keys    []string
	columns map[string][]string
}

func NewJoinGraph() *JoinGraph {
	return &JoinGraph{columns: make(map[string][]string)}
}

// Add records that key participates in a join on column
func (g *JoinGraph) Add(key, column string) {
	cols, seen := g.columns[key]
	if !seen {
		g.keys = append(g.keys, key)
	}
	for _, c := range cols {
		if c == column {
			return
		}
	}
	g.columns[key] = append(cols, column)
}

// Keys returns the join keys in first-seen order
func (g *JoinGraph) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Columns returns the join columns of key
func (g *JoinGraph) Columns(key string) []string {
	cols := g.columns[key]
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// Map returns a copy of the graph as a plain map
func (g *JoinGraph) Map() map[string][]string {
	out := make(map[string][]string, len(g.columns))
	for _, k := range g.keys {
		out[k] = g.Columns(k)
	}
	return out
}

func (g *JoinGraph) Len() int {
	return len(g.keys)
}

func (g *JoinGraph) String() string {
	var out bytes.Buffer
	for i, k := range g.keys {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(k)
		out.WriteString(":{")
		out.WriteString(strings.Join(g.columns[k], ","))
		out.WriteString("}")
	}
	return out.String()
}

// Predicate is a single filter "Column Op Value"
type Predicate struct {
	Column string
	Op     string
	Value  string
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %s", p.Column, p.Op, p.Value)
}

// Query is one parsed line of a query file
type Query struct {
	Line            int
	Tables          []string // canonical names, in order of appearance
	TableRefs       []TableRef
	Joins           *JoinGraph
	JoinConditions  []JoinCondition
	Predicates      map[string][]Predicate // keyed by canonical table name
	TrueCardinality int64
}

// PredicateCount returns the number of predicates across all tables
func (q *Query) PredicateCount() int {
	n := 0
	for _, preds := range q.Predicates {
		n += len(preds)
	}
	return n
}

func (q *Query) String() string {
	var out bytes.Buffer

	out.WriteString("tables=[")
	out.WriteString(strings.Join(q.Tables, ","))
	out.WriteString("] joins=[")
	if q.Joins != nil {
		out.WriteString(q.Joins.String())
	}
	out.WriteString("] predicates=")
	out.WriteString(fmt.Sprintf("%d", q.PredicateCount()))
	out.WriteString(fmt.Sprintf(" card=%d", q.TrueCardinality))

	return out.String()
}
