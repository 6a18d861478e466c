package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// ParquetReader streams rows from a parquet file row group by row
// group. Leaf column names are normalized with NormalizeHeader.
type ParquetReader struct {
	file   *os.File
	pf     *parquet.File
	cols   map[int]string
	groups []parquet.RowGroup

	group  int
	rows   parquet.Rows
	buf    []parquet.Row
	bufPos int
	bufLen int
}

// OpenParquet opens a parquet dataset and resolves its column names.
func OpenParquet(path string) (*ParquetReader, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat parquet: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("parse parquet: %w", err)
	}

	cols := make(map[int]string)
	for i, path := range pf.Schema().Columns() {
		if len(path) == 0 {
			continue
		}
		cols[i] = NormalizeHeader(path[0])
	}

	return &ParquetReader{
		file:   f,
		pf:     pf,
		cols:   cols,
		groups: pf.RowGroups(),
		buf:    make([]parquet.Row, 256),
	}, nil
}

// Read returns the next row, or io.EOF after the last one.
func (p *ParquetReader) Read() (Row, error) {
	for {
		if p.bufPos < p.bufLen {
			row := p.rowToMap(p.buf[p.bufPos])
			p.bufPos++
			return row, nil
		}

		if p.rows == nil {
			if p.group >= len(p.groups) {
				return nil, io.EOF
			}
			p.rows = p.groups[p.group].Rows()
			p.group++
		}

		n, err := p.rows.ReadRows(p.buf)
		p.bufPos = 0
		p.bufLen = n
		if err != nil {
			if errors.Is(err, io.EOF) {
				_ = p.rows.Close()
				p.rows = nil
				continue
			}
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
}

func (p *ParquetReader) rowToMap(row parquet.Row) Row {
	out := make(Row, len(p.cols))
	for _, v := range row {
		name, ok := p.cols[v.Column()]
		if !ok || v.IsNull() {
			continue
		}
		out[name] = v.String()
	}
	return out
}

func (p *ParquetReader) Close() error {
	if p.rows != nil {
		_ = p.rows.Close()
		p.rows = nil
	}
	return p.file.Close()
}
