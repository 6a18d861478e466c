// Package dataset reads tabular complaint exports (CSV or parquet) and
// normalizes rows into domain records.
package dataset

import (
	"io"
	"strings"
)

// Row is a single raw dataset row keyed by normalized column name.
type Row map[string]string

// Reader streams raw rows from a dataset file. Read returns io.EOF
// after the last row.
type Reader interface {
	Read() (Row, error)
	Close() error
}

// LimitReader caps the number of rows read from the wrapped reader.
// Useful for smoke-testing ingestion on a slice of a large export.
type LimitReader struct {
	inner Reader
	left  int
}

// NewLimitReader wraps r so that at most maxRows rows are returned.
func NewLimitReader(r Reader, maxRows int) *LimitReader {
	return &LimitReader{inner: r, left: maxRows}
}

func (l *LimitReader) Read() (Row, error) {
	if l.left <= 0 {
		return nil, io.EOF
	}
	row, err := l.inner.Read()
	if err != nil {
		return nil, err
	}
	l.left--
	return row, nil
}

func (l *LimitReader) Close() error { return l.inner.Close() }

// NormalizeHeader canonicalizes a column name: lowercased, trimmed,
// with space and hyphen runs replaced by single underscores.
// "Ticket #" becomes "ticket_#", "Date_month_year" becomes "date_month_year".
func NormalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-'
	})
	return strings.Join(fields, "_")
}
