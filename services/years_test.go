package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLinksByYears(t *testing.T) {
	e, _ := newTestExtractor()
	q := Query{Sources: []string{"AFG", "DZA"}}
	opts := ExtractOptions{CompressProduct: true, CompressCountry: true}

	var progress []int
	e.Progress = func(done, total, year int) {
		assert.Equal(t, 2, total)
		progress = append(progress, year)
	}

	result, err := e.FetchLinksByYears([]int{2000, 2001}, q, opts)
	require.NoError(t, err)
	assert.Equal(t, []int{2000, 2001}, progress)
	assert.True(t, result.HasYear)
	assert.False(t, result.HasProduct)

	years := make(map[int]int)
	for _, l := range result.Links {
		years[l.Year]++
	}
	assert.Len(t, years, 2)

	offset := 0
	for _, year := range []int{2000, 2001} {
		single, err := e.CreateBilateralLinks(year, q, opts)
		require.NoError(t, err)
		require.Equal(t, len(single.Links), years[year])
		for i, l := range single.Links {
			got := result.Links[offset+i]
			assert.Equal(t, year, got.Year)
			got.Year = 0
			assert.Equal(t, l, got)
		}
		offset += len(single.Links)
	}
}

func TestFetchLinksByYearsKeepsProductColumns(t *testing.T) {
	e, _ := newTestExtractor()

	result, err := e.FetchLinksByYears([]int{2001}, Query{}, DefaultExtractOptions())
	require.NoError(t, err)
	assert.True(t, result.HasProduct)
	assert.Equal(t, []string{"i", "j", "v", "k", "q", "year"}, result.Columns())
}

func TestFetchLinksByYearsStopsOnMissingYear(t *testing.T) {
	e, _ := newTestExtractor()

	_, err := e.FetchLinksByYears([]int{2000, 1990}, Query{}, DefaultExtractOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFacetNotFound)
	assert.Contains(t, err.Error(), "1990")
}

func TestYearRange(t *testing.T) {
	assert.Equal(t, []int{2000, 2001, 2002}, YearRange(2000, 2002))
	assert.Equal(t, []int{2018}, YearRange(2018, 2018))
	assert.Empty(t, YearRange(2002, 2000))
}
