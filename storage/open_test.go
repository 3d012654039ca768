package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileSinks(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		format string
		file   string
	}{
		{"", "bilateral_links.csv"},
		{"csv", "bilateral_links.csv"},
		{"XLSX", "bilateral_links.xlsx"},
		{"sqlite", "bilateral_links.db"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w, where, err := Open(Options{Format: tt.format, OutputDir: dir, RunID: "run"})
			require.NoError(t, err)
			assert.Contains(t, where, filepath.Join(dir, tt.file))
			require.NoError(t, w.Write(panelTable()))
			require.NoError(t, w.Close())
			assert.FileExists(t, filepath.Join(dir, tt.file))
		})
	}
}

func TestOpenUnknownFormat(t *testing.T) {
	_, _, err := Open(Options{Format: "parquet"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parquet")
}

func TestOpenStoreReadsRunBack(t *testing.T) {
	dir := t.TempDir()

	w, _, err := OpenStore(Options{Format: "sqlite", OutputDir: dir, RunID: "run-a"})
	require.NoError(t, err)
	require.NoError(t, w.Write(productTable()))
	require.NoError(t, w.Close())

	r, where, err := OpenStore(Options{Format: "SQLite", OutputDir: dir, RunID: "run-a"})
	require.NoError(t, err)
	defer r.Close()
	assert.Contains(t, where, "run-a")

	got, err := r.FetchRun("run-a")
	require.NoError(t, err)
	assert.Equal(t, productTable(), got)
}

func TestOpenStoreRejectsFileFormats(t *testing.T) {
	for _, format := range []string{"csv", "xlsx", ""} {
		_, _, err := OpenStore(Options{Format: format, OutputDir: t.TempDir()})
		assert.Error(t, err, format)
	}
}
