package csvfile

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func readAll(t *testing.T, input string) [][]string {
	t.Helper()
	r := NewReader(strings.NewReader(input))
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return records
		}
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		records = append(records, rec)
	}
}

func TestReaderRecords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "plain",
			input: "a,b,c\n1,2,3\n",
			want:  [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			name:  "no trailing newline",
			input: "a,b\n1,2",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "crlf",
			input: "a,b\r\n1,2\r\n",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "quoted delimiter and doubled quote",
			input: `"x, y","say ""hi"""` + "\n",
			want:  [][]string{{"x, y", `say "hi"`}},
		},
		{
			name:  "backslash escapes outside quotes",
			input: `a\,b,c\\d` + "\n",
			want:  [][]string{{"a,b", `c\d`}},
		},
		{
			name:  "backslash escapes inside quotes",
			input: `"a\"b",c` + "\n",
			want:  [][]string{{`a"b`, "c"}},
		},
		{
			name:  "embedded newline",
			input: "\"line1\nline2\",x\n",
			want:  [][]string{{"line1\nline2", "x"}},
		},
		{
			name:  "empty fields",
			input: ",,\n",
			want:  [][]string{{"", "", ""}},
		},
		{
			name:  "blank lines skipped",
			input: "a\n\n\nb\n",
			want:  [][]string{{"a"}, {"b"}},
		},
		{
			name:  "quote inside unquoted field is literal",
			input: `ab"c,d` + "\n",
			want:  [][]string{{`ab"c`, "d"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readAll(t, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReaderUnterminatedQuote(t *testing.T) {
	r := NewReader(strings.NewReader("a,b\n\"open,c\n"))
	if _, err := r.Read(); err != nil {
		t.Fatalf("first record should parse: %v", err)
	}

	_, err := r.Read()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if !errors.Is(err, ErrUnterminatedQuote) {
		t.Errorf("expected ErrUnterminatedQuote, got %v", err)
	}
	if pe.Line != 2 {
		t.Errorf("expected error on line 2, got %d", pe.Line)
	}
}

func TestReaderEscapeDisabled(t *testing.T) {
	r := NewReader(strings.NewReader(`a\,b` + "\n"))
	r.Escape = 0

	rec, err := r.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if diff := cmp.Diff([]string{`a\`, "b"}, rec); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderLineTracking(t *testing.T) {
	r := NewReader(strings.NewReader("h\n\"a\nb\"\nc\n"))
	for i := 0; i < 3; i++ {
		if _, err := r.Read(); err != nil {
			t.Fatalf("Read %d failed: %v", i, err)
		}
	}
	if r.Line() != 4 {
		t.Errorf("expected 4 lines consumed, got %d", r.Line())
	}
}
