package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradenet/models"
	"tradenet/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"2.823", 2.823, true},
		{"  11.216 ", 11.216, true},
		{"0", 0, true},
		{"", 0, false},
		{"NA", 0, false},
		{"           NA", 0, false},
		{"NaN", 0, false},
		{"ten", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseAmount(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "parseAmount(%q)", tt.raw)
		assert.Equal(t, tt.want, got, "parseAmount(%q)", tt.raw)
	}
}

func TestCleanerNormalizesRows(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []models.RawTradeRow{
		{Line: 2, Year: "2000", Source: "4", Target: "12", Product: "90920", Value: "2.823", Quantity: "6.800"},
		{Line: 3, Year: "", Source: "4", Target: "12", Product: "090930", Value: "11.216", Quantity: "NA"},
	}

	got := c.Clean(raw, 2000)
	require.Len(t, got, 2)
	assert.Equal(t, models.TradeRecord{Year: 2000, Source: 4, Target: 12, Product: "090920", Value: 2.823, Quantity: 6.8}, got[0])
	assert.Equal(t, "090930", got[1].Product)
	assert.Equal(t, 2000, got[1].Year)
	assert.Zero(t, got[1].Quantity)
}

func TestCleanerDropsMalformedRows(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []models.RawTradeRow{
		{Line: 2, Source: "x", Target: "12", Product: "90920", Value: "1"},
		{Line: 3, Source: "4", Target: "", Product: "90920", Value: "1"},
		{Line: 4, Source: "4", Target: "12", Product: "spice", Value: "1"},
		{Line: 5, Source: "4", Target: "12", Product: "90920", Value: "NA"},
		{Line: 6, Year: "two", Source: "4", Target: "12", Product: "90920", Value: "1"},
		{Line: 7, Source: "4", Target: "12", Product: "90920", Value: "1"},
	}

	got := c.Clean(raw, 2001)
	require.Len(t, got, 1)
	assert.Equal(t, 2001, got[0].Year)
}
