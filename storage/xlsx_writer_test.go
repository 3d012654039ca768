package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.xlsx")
	w, err := NewXLSXWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(productTable()))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(LinksSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"i", "j", "v", "k", "q", "year"}, rows[0])
	assert.Equal(t, "AFG", rows[1][0])
	assert.Equal(t, "090920", rows[1][3])
	assert.Equal(t, "2000", rows[2][5])
}
