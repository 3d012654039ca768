package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"tradenet/models"
)

// LinksSheet is the worksheet links are written to.
const LinksSheet = "links"

// XLSXWriter streams link tables into a single-sheet workbook saved on Close.
type XLSXWriter struct {
	path    string
	file    *excelize.File
	stream  *excelize.StreamWriter
	row     int
	columns []string
}

// NewXLSXWriter prepares a workbook for path.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", LinksSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(LinksSheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: stream writer: %w", err)
	}

	return &XLSXWriter{path: path, file: f, stream: sw, row: 1}, nil
}

// Path returns the output file path.
func (x *XLSXWriter) Path() string {
	return x.path
}

func (x *XLSXWriter) setRow(values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	if err := x.stream.SetRow(cell, values); err != nil {
		return fmt.Errorf("xlsx: write row %d: %w", x.row, err)
	}
	x.row++
	return nil
}

// Write appends the table's rows, writing the header on first use.
func (x *XLSXWriter) Write(table *models.LinkTable) error {
	cols := table.Columns()
	if x.columns == nil {
		header := make([]any, len(cols))
		for i, c := range cols {
			header[i] = c
		}
		if err := x.setRow(header); err != nil {
			return err
		}
		x.columns = cols
	} else if len(cols) != len(x.columns) {
		return fmt.Errorf("xlsx: table layout %v does not match header %v", cols, x.columns)
	}

	for _, l := range table.Links {
		if err := x.setRow(cellRow(table, l)); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the stream and saves the workbook.
func (x *XLSXWriter) Close() error {
	defer x.file.Close()
	if err := x.stream.Flush(); err != nil {
		return fmt.Errorf("xlsx: flush: %w", err)
	}
	if err := x.file.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %s: %w", x.path, err)
	}
	return nil
}
