// Package parser decodes query files: one query per line, four '#'
// separated segments (tables, joins, predicates, true cardinality), each
// segment a comma separated list.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/leengari/statsbench/internal/domain/errors"
	"github.com/leengari/statsbench/internal/parser/ast"
)

const (
	segmentTables      = "tables"
	segmentJoins       = "joins"
	segmentPredicates  = "predicates"
	segmentCardinality = "cardinality"

	segmentCount = 4
)

type Parser struct {
	// UseAliasKeys keys the join graph by alias ("u") instead of by
	// canonical table name ("users")
	UseAliasKeys bool
	// Path is only used in error messages
	Path string
}

func New(useAliasKeys bool) *Parser {
	return &Parser{UseAliasKeys: useAliasKeys}
}

// ParseQueryFile parses the query file at path on the OS filesystem
func ParseQueryFile(path string, useAliasKeys bool) ([]*ast.Query, error) {
	return ParseQueryFileFS(afero.NewOsFs(), path, useAliasKeys)
}

// ParseQueryFileFS parses the query file at path on fsys
func ParseQueryFileFS(fsys afero.Fs, path string, useAliasKeys bool) ([]*ast.Query, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open query file: %w", err)
	}
	defer f.Close()

	p := New(useAliasKeys)
	p.Path = path
	return p.Parse(f)
}

// Parse reads every query from r in order. The first malformed line aborts
// parsing; no partial result is returned.
func (p *Parser) Parse(r io.Reader) ([]*ast.Query, error) {
	records := csv.NewReader(r)
	records.Comma = '#'
	records.LazyQuotes = true
	records.FieldsPerRecord = -1

	var queries []*ast.Query
	for {
		segments, err := records.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			if pe, ok := err.(*csv.ParseError); ok {
				line = pe.StartLine
			}
			return nil, &errors.FormatError{Path: p.Path, Line: line, Reason: "unreadable record", Err: err}
		}

		line, _ := records.FieldPos(0)
		q, err := p.parseRecord(segments, line)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func (p *Parser) parseRecord(segments []string, line int) (*ast.Query, error) {
	if len(segments) != segmentCount {
		return nil, p.formatError(line, "", "expected 4 '#' separated segments, got %d", len(segments))
	}

	tokens := make([][]string, segmentCount)
	for i, seg := range segments {
		fields, err := splitSegment(seg)
		if err != nil {
			return nil, &errors.FormatError{Path: p.Path, Line: line, Segment: segmentName(i), Err: err}
		}
		tokens[i] = fields
	}

	tables, err := decodeTables(tokens[0])
	if err != nil {
		return nil, p.wrap(line, segmentTables, err)
	}

	joins, conditions, err := decodeJoins(tokens[1], tables, p.UseAliasKeys)
	if err != nil {
		return nil, p.wrap(line, segmentJoins, err)
	}

	predicates, err := decodePredicates(tokens[2], tables)
	if err != nil {
		return nil, p.wrap(line, segmentPredicates, err)
	}

	card, err := decodeCardinality(tokens[3])
	if err != nil {
		return nil, p.wrap(line, segmentCardinality, err)
	}

	refs := make([]ast.TableRef, len(tables.refs))
	copy(refs, tables.refs)

	return &ast.Query{
		Line:            line,
		Tables:          tables.names(),
		TableRefs:       refs,
		Joins:           joins,
		JoinConditions:  conditions,
		Predicates:      predicates,
		TrueCardinality: card,
	}, nil
}

// splitSegment reads the first comma separated record of seg. An empty
// segment has no tokens.
func splitSegment(seg string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(seg))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func segmentName(i int) string {
	switch i {
	case 0:
		return segmentTables
	case 1:
		return segmentJoins
	case 2:
		return segmentPredicates
	default:
		return segmentCardinality
	}
}

func (p *Parser) wrap(line int, segment string, err error) error {
	return &errors.FormatError{Path: p.Path, Line: line, Segment: segment, Reason: err.Error()}
}

func (p *Parser) formatError(line int, segment, format string, args ...interface{}) error {
	return &errors.FormatError{Path: p.Path, Line: line, Segment: segment, Reason: fmt.Sprintf(format, args...)}
}
