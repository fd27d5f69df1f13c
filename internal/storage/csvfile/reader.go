// Package csvfile reads delimiter separated files that use an escape
// character, which encoding/csv does not support.
package csvfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	ErrFieldCount        = errors.New("wrong number of fields")
)

// ParseError records the line a malformed record started on
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record on line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader splits its input into records.
//
// Inside and outside quotes, Escape makes the next rune literal. A doubled
// Quote inside a quoted field is a literal quote. Records end at LF or CRLF
// outside quotes. Blank lines are skipped.
type Reader struct {
	Comma  rune
	Quote  rune
	Escape rune // 0 disables escaping

	r    *bufio.Reader
	line int // line of the last rune consumed
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		Comma:  ',',
		Quote:  '"',
		Escape: '\\',
		r:      bufio.NewReader(r),
	}
}

// Line returns the number of lines consumed so far
func (r *Reader) Line() int {
	return r.line
}

// Read returns the next record, or io.EOF once the input is exhausted
func (r *Reader) Read() ([]string, error) {
	for {
		record, blank, err := r.readRecord()
		if err != nil {
			return nil, err
		}
		if blank {
			continue
		}
		return record, nil
	}
}

func (r *Reader) readRecord() ([]string, bool, error) {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
		quoted   bool // current field opened with a quote
		consumed bool
	)

	r.line++
	start := r.line

	for {
		ch, _, err := r.r.ReadRune()
		if err == io.EOF {
			if inQuotes {
				return nil, false, &ParseError{Line: start, Err: ErrUnterminatedQuote}
			}
			if !consumed {
				return nil, false, io.EOF
			}
			fields = append(fields, field.String())
			return fields, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		consumed = true

		switch {
		case r.Escape != 0 && ch == r.Escape:
			next, _, err := r.r.ReadRune()
			if err == io.EOF {
				// trailing escape is kept as-is
				field.WriteRune(ch)
				continue
			}
			if err != nil {
				return nil, false, err
			}
			if next == '\n' {
				r.line++
			}
			field.WriteRune(next)

		case inQuotes:
			if ch == r.Quote {
				next, _, err := r.r.ReadRune()
				if err == nil && next == r.Quote {
					field.WriteRune(r.Quote)
					continue
				}
				if err == nil {
					_ = r.r.UnreadRune()
				}
				inQuotes = false
				continue
			}
			if ch == '\n' {
				r.line++
			}
			field.WriteRune(ch)

		case ch == r.Quote && field.Len() == 0 && !quoted:
			inQuotes = true
			quoted = true

		case ch == r.Comma:
			fields = append(fields, field.String())
			field.Reset()
			quoted = false

		case ch == '\r':
			next, _, err := r.r.ReadRune()
			if err == nil && next != '\n' {
				_ = r.r.UnreadRune()
			}
			fallthrough

		case ch == '\n':
			if len(fields) == 0 && field.Len() == 0 && !quoted {
				return nil, true, nil
			}
			fields = append(fields, field.String())
			return fields, false, nil

		default:
			field.WriteRune(ch)
		}
	}
}
