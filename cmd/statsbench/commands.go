package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/leengari/statsbench/internal/config"
	"github.com/leengari/statsbench/internal/domain/schema"
	"github.com/leengari/statsbench/internal/parser"
	"github.com/leengari/statsbench/internal/parser/ast"
	"github.com/leengari/statsbench/internal/stats"
	"github.com/leengari/statsbench/internal/storage/cache"
)

func runLoad(cfg config.Config, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	dataDir := fs.String("data-dir", cfg.DataDir, "Directory holding the STATS CSV files")
	table := fs.String("table", "", "Load a single table (default: all tables)")
	columns := fs.String("columns", cfg.Columns, "Columns to load: all (predicate columns) or none (every column)")
	noCache := fs.Bool("no-cache", !cfg.TryCache, "Always parse the CSV and skip cache entries")
	codec := fs.String("codec", cfg.Codec, "Cache format: parquet, json, json+snappy")
	head := fs.Int("head", 0, "Print the first N rows of each table as JSON lines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *head < 0 {
		return fmt.Errorf("-head must be non-negative, got %d", *head)
	}

	cfg.DataDir = *dataDir
	cfg.Columns = *columns
	cfg.TryCache = !*noCache
	cfg.Codec = *codec

	opts, err := cfg.LoadOptions()
	if err != nil {
		return err
	}
	opts.Logger = logger

	tables, err := stats.Load(*table, opts)
	if err != nil {
		return err
	}

	names := orderedTableNames(tables)
	renderTables(os.Stdout, names, tables, opts)

	if *head > 0 {
		return printHead(os.Stdout, names, tables, *head)
	}
	return nil
}

func runQueries(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("queries", flag.ContinueOnError)
	file := fs.String("file", "", "Query file to parse")
	aliasKeys := fs.Bool("alias-keys", true, "Key join columns by alias instead of table name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("missing -file argument")
	}

	queries, err := parser.ParseQueryFile(*file, *aliasKeys)
	if err != nil {
		return err
	}

	logger.Info("query file parsed",
		slog.String("path", *file),
		slog.Int("queries", len(queries)),
	)

	renderQueries(os.Stdout, queries)
	return nil
}

func runSchema(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"table", "alias", "predicate columns", "join keys"})
	table.SetAutoWrapText(false)

	for _, name := range stats.Tables() {
		table.Append([]string{
			name,
			stats.AliasOf(name),
			strings.Join(stats.PredicateColumns(stats.FileName(name)), ", "),
			strings.Join(stats.JoinKeys(name), ", "),
		})
	}
	table.Render()
	return nil
}

// orderedTableNames lists registry tables first, in file order
func orderedTableNames(tables map[string]*schema.Table) []string {
	var names []string
	seen := make(map[string]bool, len(tables))
	for _, name := range stats.Tables() {
		if _, ok := tables[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}

	var rest []string
	for name := range tables {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func renderTables(w io.Writer, names []string, tables map[string]*schema.Table, opts stats.LoadOptions) {
	out := tablewriter.NewWriter(w)
	out.SetHeader([]string{"table", "rows", "columns", "types", "cache entry"})
	out.SetAutoWrapText(false)

	for _, name := range names {
		t := tables[name]

		types := make([]string, len(t.Schema.Columns))
		for i, col := range t.Schema.Columns {
			types[i] = string(col.Type)
		}

		entry := "-"
		if opts.TryCache {
			entry = cache.EntryPath(t.Path, stats.WantedColumns(stats.FileName(name), opts.Columns))
		}

		out.Append([]string{
			name,
			strconv.Itoa(t.NumRows()),
			strings.Join(t.Schema.ColumnNames(), ","),
			strings.Join(types, ","),
			entry,
		})
	}
	out.Render()
}

func printHead(w io.Writer, names []string, tables map[string]*schema.Table, n int) error {
	enc := json.NewEncoder(w)
	for _, name := range names {
		t := tables[name]
		limit := n
		if t.NumRows() < limit {
			limit = t.NumRows()
		}
		for i := 0; i < limit; i++ {
			if err := enc.Encode(t.Row(i)); err != nil {
				return fmt.Errorf("failed to encode row %d of %s: %w", i, name, err)
			}
		}
	}
	return nil
}

func renderQueries(w io.Writer, queries []*ast.Query) {
	out := tablewriter.NewWriter(w)
	out.SetHeader([]string{"line", "tables", "joins", "predicates", "cardinality"})
	out.SetAutoWrapText(false)

	for _, q := range queries {
		out.Append([]string{
			strconv.Itoa(q.Line),
			strings.Join(q.Tables, ","),
			q.Joins.String(),
			strconv.Itoa(q.PredicateCount()),
			strconv.FormatInt(q.TrueCardinality, 10),
		})
	}
	out.Render()
}
