package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CSVReader streams rows from a CSV file. The first record is the
// header; headers are normalized with NormalizeHeader.
type CSVReader struct {
	file    *os.File
	reader  *csv.Reader
	headers []string
}

// OpenCSV opens a CSV dataset and reads its header record.
func OpenCSV(path string) (*CSVReader, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}

	r := csv.NewReader(f)
	r.ReuseRecord = true
	// Ragged rows are a data error handled downstream: missing columns
	// leave fields absent and the normalizer skips the row, instead of
	// one malformed line aborting the whole run.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		_ = f.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("csv file %s is empty", path)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = NormalizeHeader(h)
	}

	return &CSVReader{file: f, reader: r, headers: headers}, nil
}

// Headers returns the normalized column names.
func (c *CSVReader) Headers() []string { return c.headers }

// Read returns the next row, or io.EOF after the last one.
func (c *CSVReader) Read() (Row, error) {
	record, err := c.reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read csv row: %w", err)
	}

	row := make(Row, len(c.headers))
	for i, h := range c.headers {
		if i < len(record) {
			row[h] = record[i]
		}
	}
	return row, nil
}

func (c *CSVReader) Close() error {
	return c.file.Close()
}
