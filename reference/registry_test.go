package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"tradenet/utils"
)

const countriesCSV = `country_code,country_name_abbreviation,country_name_full,iso_2digit_alpha,iso_3digit_alpha
4,Afghanistan,Afghanistan,AF,AFG
12,Algeria,Algeria,DZ,DZA
156,China,China,CN,CHN
842,USA,United States of America,US,USA
not-a-code,Broken,Broken,XX,XXX
`

const productsCSV = `code,description
10110,"Horses: live, pure-bred breeding animals"
90920,Spices: seeds of coriander
090930,Spices: seeds of cumin
850231,Electric generating sets: wind-powered
`

// writeReferenceDir lays out a minimal data directory with GBK-encoded countries.
func writeReferenceDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	gbk, err := simplifiedchinese.GBK.NewEncoder().String(countriesCSV + "344,中国香港,China Hong Kong SAR,HK,HKG\n")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "country_codes_V202001.csv"), []byte(gbk), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "product_codes_HS92_V202001.csv"), []byte(productsCSV), 0644))
	return dir
}

func testOptions(dir string) Options {
	return Options{
		DataDir:              dir,
		CountryCodesFile:     "country_codes_V202001.csv",
		CountryCodesEncoding: "gbk",
		ProductCodesFile:     "product_codes_HS92_V202001.csv",
	}
}

func loadTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Load(testOptions(writeReferenceDir(t)), utils.NewNopLogger())
	require.NoError(t, err)
	return r
}

func TestLoadSkipsBadRows(t *testing.T) {
	r := loadTestRegistry(t)
	assert.Len(t, r.Countries(), 5)
}

func TestLoadDecodesGBK(t *testing.T) {
	r := loadTestRegistry(t)

	c, ok := r.QueryCountry("HKG")
	require.True(t, ok)
	assert.Equal(t, "中国香港", c.Abbr)
	assert.Equal(t, 344, c.Code)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load(testOptions(filepath.Join(t.TempDir(), "nope")), utils.NewNopLogger())
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestLoadEmptyDirectory(t *testing.T) {
	_, err := Load(testOptions(t.TempDir()), utils.NewNopLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMisconfigured)
	assert.Contains(t, err.Error(), "empty directory")
}

func TestLoadMissingProductTable(t *testing.T) {
	dir := writeReferenceDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "product_codes_HS92_V202001.csv")))

	_, err := Load(testOptions(dir), utils.NewNopLogger())
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestQueryCountryNumericRoundTrip(t *testing.T) {
	r := loadTestRegistry(t)

	for _, c := range r.Countries() {
		got, ok := r.QueryCountryCode(c.Code)
		require.True(t, ok, "code %d", c.Code)
		assert.Equal(t, c.Code, got.Code)
	}
}

func TestQueryCountryISO3(t *testing.T) {
	r := loadTestRegistry(t)

	tests := []struct {
		query string
		want  string
	}{
		{"AFG", "Afghanistan"},
		{"dza", "Algeria"},
		{" 842 ", "United States of America"},
		{"156", "China"},
	}

	for _, tt := range tests {
		c, ok := r.QueryCountry(tt.query)
		require.True(t, ok, "query %q", tt.query)
		assert.Equal(t, tt.want, c.Name)
	}
}

func TestQueryCountryISO3Unique(t *testing.T) {
	r := loadTestRegistry(t)

	for _, c := range r.Countries() {
		got, ok := r.QueryCountry(c.ISO3)
		require.True(t, ok)
		assert.Equal(t, c.ISO3, got.ISO3)
	}
}

func TestQueryCountryMiss(t *testing.T) {
	r := loadTestRegistry(t)

	_, ok := r.QueryCountry("ZZZ")
	assert.False(t, ok)
	_, ok = r.QueryCountry("999")
	assert.False(t, ok)
}

func TestQueryProduct(t *testing.T) {
	r := loadTestRegistry(t)

	p, ok := r.QueryProduct("90920")
	require.True(t, ok)
	assert.Equal(t, "090920", p.Code)
	assert.Equal(t, "Spices: seeds of coriander", p.Description)

	p, ok = r.QueryProduct("090930.0")
	require.True(t, ok)
	assert.Equal(t, "090930", p.Code)

	_, ok = r.QueryProduct("999999")
	assert.False(t, ok)
	_, ok = r.QueryProduct("spices")
	assert.False(t, ok)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry("", nil, nil, utils.NewNopLogger())
	_, ok := r.QueryCountry("AFG")
	assert.False(t, ok)
	assert.Empty(t, r.Countries())
}
