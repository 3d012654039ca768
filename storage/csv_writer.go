package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"tradenet/models"
)

// CSVWriter writes link tables to a comma-separated file.
// The header is taken from the first table written.
type CSVWriter struct {
	path    string
	file    *os.File
	writer  *csv.Writer
	columns []string
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{path: path, file: f, writer: csv.NewWriter(f)}, nil
}

// Path returns the output file path.
func (c *CSVWriter) Path() string {
	return c.path
}

// Write appends the table's rows, writing the header on first use.
func (c *CSVWriter) Write(table *models.LinkTable) error {
	cols := table.Columns()
	if c.columns == nil {
		if err := c.writer.Write(cols); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
		c.columns = cols
	} else if len(cols) != len(c.columns) {
		return fmt.Errorf("csv: table layout %v does not match header %v", cols, c.columns)
	}

	for _, l := range table.Links {
		if err := c.writer.Write(textRow(table, l)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		return err
	}
	return c.file.Close()
}
