package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leengari/statsbench/internal/parser/ast"
	"github.com/leengari/statsbench/internal/parser/lexer"
	"github.com/leengari/statsbench/internal/stats"
)

// tableSet is the ordered alias -> table mapping of one query
type tableSet struct {
	refs    []ast.TableRef
	byAlias map[string]int
}

func (s *tableSet) add(ref ast.TableRef) {
	if i, ok := s.byAlias[ref.Alias]; ok {
		// a repeated alias keeps its position and takes the latest name
		s.refs[i].Name = ref.Name
		return
	}
	s.byAlias[ref.Alias] = len(s.refs)
	s.refs = append(s.refs, ref)
}

// resolve maps an alias, or failing that a declared table name, to the
// canonical table name
func (s *tableSet) resolve(ref string) (string, bool) {
	if i, ok := s.byAlias[ref]; ok {
		return s.refs[i].Name, true
	}
	for _, r := range s.refs {
		if r.Name == ref {
			return r.Name, true
		}
	}
	return "", false
}

func (s *tableSet) names() []string {
	out := make([]string, len(s.refs))
	for i, r := range s.refs {
		out[i] = r.Name
	}
	return out
}

// decodeTables accepts "name alias", "name AS alias" or a bare token. A bare
// token that is a known benchmark alias resolves to its table.
func decodeTables(tokens []string) (*tableSet, error) {
	set := &tableSet{byAlias: make(map[string]int)}

	for _, tok := range tokens {
		lexed, err := lexer.Tokenize(tok)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", tok, err)
		}

		var ref ast.TableRef
		switch {
		case matches(lexed, lexer.IDENTIFIER):
			name := lexed[0].Literal
			ref = ast.TableRef{Name: name, Alias: name}
			if table, ok := stats.ResolveAlias(name); ok {
				ref.Name = table
			}
		case matches(lexed, lexer.IDENTIFIER, lexer.IDENTIFIER):
			ref = ast.TableRef{Name: lexed[0].Literal, Alias: lexed[1].Literal}
		case matches(lexed, lexer.IDENTIFIER, lexer.AS, lexer.IDENTIFIER):
			ref = ast.TableRef{Name: lexed[0].Literal, Alias: lexed[2].Literal}
		default:
			return nil, fmt.Errorf("table %q: expected 'name alias' or 'alias'", tok)
		}
		set.add(ref)
	}

	if len(set.refs) == 0 {
		return nil, fmt.Errorf("no tables listed")
	}
	return set, nil
}

// decodeJoins parses "x.col = y.col" tokens. Graph keys are aliases when
// useAliasKeys is set, canonical table names otherwise.
func decodeJoins(tokens []string, tables *tableSet, useAliasKeys bool) (*ast.JoinGraph, []ast.JoinCondition, error) {
	graph := ast.NewJoinGraph()
	conditions := make([]ast.JoinCondition, 0, len(tokens))

	for _, tok := range tokens {
		lexed, err := lexer.Tokenize(tok)
		if err != nil {
			return nil, nil, fmt.Errorf("join %q: %w", tok, err)
		}
		if !matches(lexed,
			lexer.IDENTIFIER, lexer.DOT, lexer.IDENTIFIER,
			lexer.EQUALS,
			lexer.IDENTIFIER, lexer.DOT, lexer.IDENTIFIER) {
			return nil, nil, fmt.Errorf("join %q: expected 'x.col = y.col'", tok)
		}

		cond := ast.JoinCondition{
			Left:  ast.ColumnRef{Table: lexed[0].Literal, Column: lexed[2].Literal},
			Right: ast.ColumnRef{Table: lexed[4].Literal, Column: lexed[6].Literal},
		}

		for _, side := range []ast.ColumnRef{cond.Left, cond.Right} {
			table, ok := tables.resolve(side.Table)
			if !ok {
				return nil, nil, fmt.Errorf("join %q: unknown table %q", tok, side.Table)
			}
			key := table
			if useAliasKeys {
				key = side.Table
			}
			graph.Add(key, side.Column)
		}
		conditions = append(conditions, cond)
	}
	return graph, conditions, nil
}

// decodePredicates consumes tokens in (x.col, op, value) triples
func decodePredicates(tokens []string, tables *tableSet) (map[string][]ast.Predicate, error) {
	if len(tokens)%3 != 0 {
		return nil, fmt.Errorf("expected (column, operator, value) triples, got %d tokens", len(tokens))
	}

	predicates := make(map[string][]ast.Predicate)
	for i := 0; i < len(tokens); i += 3 {
		ref, err := decodeColumnRef(tokens[i])
		if err != nil {
			return nil, err
		}
		table, ok := tables.resolve(ref.Table)
		if !ok {
			return nil, fmt.Errorf("predicate %q: unknown table %q", tokens[i], ref.Table)
		}

		op := strings.TrimSpace(tokens[i+1])
		if op == "" {
			return nil, fmt.Errorf("predicate %q: missing operator", tokens[i])
		}

		predicates[table] = append(predicates[table], ast.Predicate{
			Column: ref.Column,
			Op:     op,
			Value:  tokens[i+2],
		})
	}
	return predicates, nil
}

func decodeColumnRef(tok string) (ast.ColumnRef, error) {
	lexed, err := lexer.Tokenize(tok)
	if err != nil {
		return ast.ColumnRef{}, fmt.Errorf("column %q: %w", tok, err)
	}
	if !matches(lexed, lexer.IDENTIFIER, lexer.DOT, lexer.IDENTIFIER) {
		return ast.ColumnRef{}, fmt.Errorf("column %q: expected 'x.col'", tok)
	}
	return ast.ColumnRef{Table: lexed[0].Literal, Column: lexed[2].Literal}, nil
}

func decodeCardinality(tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, fmt.Errorf("missing cardinality")
	}
	n, err := strconv.ParseInt(strings.TrimSpace(tokens[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cardinality %q is not an integer", tokens[0])
	}
	return n, nil
}

// matches reports whether the token types equal want exactly
func matches(tokens []lexer.Token, want ...lexer.TokenType) bool {
	if len(tokens) != len(want) {
		return false
	}
	for i, tok := range tokens {
		if tok.Type != want[i] {
			return false
		}
	}
	return true
}
