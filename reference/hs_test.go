package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeConcordance(t *testing.T, path, sheet string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestQueryHSCodeByYears(t *testing.T) {
	r := loadTestRegistry(t)
	writeConcordance(t, filepath.Join(r.DataDir(), ConcordanceFile(2007, 1992)), ConversionSheet, [][]any{
		{"HS 2007", "HS 1992"},
		{"854140", "854140"},
		{"850231", "850230"},
		{"90920", 90910},
		{"", "010110"},
	})

	got, err := r.QueryHSCodeByYears(2007, 1992, []string{"850231", "90920", "123456", "10110"})
	require.NoError(t, err)
	assert.Equal(t, []string{"850230", "090910", "123456", "010110"}, got)
}

func TestReadConcordanceFallsBackToFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hs2012_hs1992.xlsx")
	writeConcordance(t, path, "Sheet A", [][]any{
		{"from", "to"},
		{"850231", "850230"},
	})

	c, err := ReadConcordance(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "850230", c.Map("850231"))
	assert.Equal(t, "999999", c.Map("999999"))
}

func TestLoadConcordanceMissing(t *testing.T) {
	r := loadTestRegistry(t)

	_, err := r.QueryHSCodeByYears(2017, 1992, []string{"850231"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestLoadConcordanceLegacyXLS(t *testing.T) {
	r := loadTestRegistry(t)
	require.NoError(t, os.WriteFile(filepath.Join(r.DataDir(), "hs2007_hs1992.xls"), []byte("legacy"), 0644))

	_, err := r.LoadConcordance(2007, 1992)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMisconfigured)
	assert.Contains(t, err.Error(), "legacy .xls")
}
