// Package workbook wraps excelize to expose spreadsheet documents as plain
// 2-D cell grids. Parsers downstream work on raw row/column positions, so
// row order and blank rows are preserved exactly as stored in the file.
package workbook

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrMalformed indicates the payload could not be parsed as a spreadsheet
// at all. Sheet contents are never validated here.
var ErrMalformed = errors.New("malformed spreadsheet document")

// Workbook is an opened spreadsheet document.
type Workbook struct {
	f      *excelize.File
	sheets []string
}

// Open parses a spreadsheet from r. The caller must Close the returned
// workbook.
func Open(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &Workbook{f: f, sheets: f.GetSheetList()}, nil
}

// Sheets returns the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.sheets
}

// HasSheet reports whether the workbook contains a sheet with the given name.
func (w *Workbook) HasSheet(name string) bool {
	for _, s := range w.sheets {
		if s == name {
			return true
		}
	}
	return false
}

// Rows returns the full cell grid of a sheet: one slice per row, one raw
// string per cell, empty string for blank cells. Blank rows come back as
// empty slices rather than being dropped, so callers can rely on raw row
// indices when locating headers.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// Close releases the underlying file resources.
func (w *Workbook) Close() error {
	return w.f.Close()
}
