package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/leengari/statsbench/internal/domain/schema"
	"github.com/leengari/statsbench/internal/stats"
)

// BadgesCSV exercises quoting, escaping and NULLs
const BadgesCSV = `Id,UserId,Name,Date
1,5,Teacher,2010-07-19 19:39:07
2,6,"Student, first",2010-07-19 19:39:07
3,,Supporter\,Gold,2010-07-19 19:39:08
`

// WriteFile writes content to path on fsys, creating parent directories
func WriteFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fsys, path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// WriteStatsFixture writes a small CSV for each of the 8 benchmark tables
// into dir. Every file carries its predicate columns plus an extra
// "Comment" text column.
func WriteStatsFixture(t *testing.T, fsys afero.Fs, dir string) {
	t.Helper()
	for _, file := range stats.CSVFiles() {
		content := BadgesCSV
		if file != "badges.csv" {
			content = genericCSV(stats.PredicateColumns(file))
		}
		WriteFile(t, fsys, filepath.Join(dir, file), content)
	}
}

func genericCSV(cols []string) string {
	var b strings.Builder

	header := append(append([]string{}, cols...), "Comment")
	b.WriteString(strings.Join(header, ","))
	b.WriteString("\n")

	for row := 1; row <= 3; row++ {
		fields := make([]string, 0, len(header))
		for i, col := range cols {
			switch {
			case col == "Id":
				fields = append(fields, fmt.Sprintf("%d", row))
			case strings.HasSuffix(col, "Date"):
				fields = append(fields, fmt.Sprintf("2011-0%d-01 00:00:00", row))
			case i == len(cols)-1 && row == 3:
				// NULL in the last column of the last row
				fields = append(fields, "")
			default:
				fields = append(fields, fmt.Sprintf("%d", row*10))
			}
		}
		fields = append(fields, fmt.Sprintf(`"said \"hi\" %d"`, row))
		b.WriteString(strings.Join(fields, ","))
		b.WriteString("\n")
	}
	return b.String()
}

// SampleTable returns a table with one column of each type and a NULL in each
func SampleTable() *schema.Table {
	t := schema.NewTable("sample", "/data/sample.csv", []schema.Column{
		{Name: "Id", Type: schema.ColumnTypeInt},
		{Name: "Score", Type: schema.ColumnTypeFloat},
		{Name: "Body", Type: schema.ColumnTypeText},
	})
	t.Data[0] = []interface{}{int64(1), int64(-2), nil, int64(9007199254740993)}
	t.Data[1] = []interface{}{0.1, nil, 1e300, -0.5}
	t.Data[2] = []interface{}{"plain", "comma, quote \" and\nnewline", "ünïcode", nil}
	return t
}
