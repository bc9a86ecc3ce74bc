package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

// Frame is an in-memory column-ordered table of float64 values.
// Missing values are represented as NaN until the imputer runs.
type Frame struct {
	columns  []string
	colIndex map[string]int
	rows     [][]float64
}

// NewFrame builds a frame from an ordered column list and row-major data.
func NewFrame(columns []string, rows [][]float64) (*Frame, error) {
	colIndex := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := colIndex[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		colIndex[name] = i
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(columns))
		}
	}

	return &Frame{
		columns:  columns,
		colIndex: colIndex,
		rows:     rows,
	}, nil
}

// LoadFrame reads a CSV snapshot into a frame.
// Empty cells and the literals NaN/nan are treated as missing.
func LoadFrame(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("snapshot %s is empty", path)
	}

	header := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(header))
		for j, cell := range record {
			if cell == "" || cell == "NaN" || cell == "nan" {
				row[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("snapshot %s row %d column %q: %w", path, i+1, header[j], err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return NewFrame(header, rows)
}

// Columns returns the ordered column names.
func (f *Frame) Columns() []string {
	return f.columns
}

// HasColumn reports whether the frame contains the named column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.colIndex[name]
	return ok
}

// ColumnIndex returns the position of the named column.
func (f *Frame) ColumnIndex(name string) (int, bool) {
	idx, ok := f.colIndex[name]
	return idx, ok
}

// Column returns the values of one column in row order.
func (f *Frame) Column(name string) ([]float64, bool) {
	idx, ok := f.colIndex[name]
	if !ok {
		return nil, false
	}
	values := make([]float64, len(f.rows))
	for i, row := range f.rows {
		values[i] = row[idx]
	}
	return values, true
}

// Row returns one row by position.
func (f *Frame) Row(i int) []float64 {
	return f.rows[i]
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	return len(f.rows)
}

// Select returns a new frame holding the given rows (shared backing slices).
func (f *Frame) Select(rowIdx []int) *Frame {
	rows := make([][]float64, len(rowIdx))
	for i, r := range rowIdx {
		rows[i] = f.rows[r]
	}
	return &Frame{
		columns:  f.columns,
		colIndex: f.colIndex,
		rows:     rows,
	}
}
