package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const renewablesYAML = `wind:
  850231: wind-powered generating sets
  841280:
solar:
  - 854140
  - 850231
empty:
`

func TestParseCodebook(t *testing.T) {
	cb, err := ParseCodebook([]byte(renewablesYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"wind", "solar", "empty"}, cb.GroupNames())

	wind, ok := cb.Group("wind")
	require.True(t, ok)
	assert.Equal(t, []CodeEntry{
		{Code: "850231", Label: "wind-powered generating sets"},
		{Code: "841280"},
	}, wind)

	empty, ok := cb.Group("empty")
	require.True(t, ok)
	assert.Empty(t, empty)
}

func TestCodebookCodes(t *testing.T) {
	cb, err := ParseCodebook([]byte(renewablesYAML))
	require.NoError(t, err)

	all, err := cb.Codes()
	require.NoError(t, err)
	assert.Equal(t, []string{"850231", "841280", "854140"}, all)

	solar, err := cb.Codes("solar")
	require.NoError(t, err)
	assert.Equal(t, []string{"854140", "850231"}, solar)

	_, err = cb.Codes("hydro")
	assert.Error(t, err)
}

func TestParseCodebookErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"not a mapping", "- 850231\n"},
		{"bad code", "wind:\n  turbine: blades\n"},
		{"scalar group", "wind: 850231\n"},
		{"malformed yaml", "wind: [850231\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCodebook([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadCodebookMissing(t *testing.T) {
	_, err := LoadCodebook(filepath.Join(t.TempDir(), "code_book.yaml"))
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestLoadCodeFromYAML(t *testing.T) {
	r := loadTestRegistry(t)
	require.NoError(t, os.WriteFile(filepath.Join(r.DataDir(), "renew.yaml"), []byte(renewablesYAML), 0644))

	codes, err := r.LoadCodeFromYAML("renew.yaml")
	require.NoError(t, err)
	assert.Contains(t, codes, "wind")
	assert.Contains(t, codes, "solar")

	_, err = r.LoadCodeFromYAML("absent.yaml")
	assert.ErrorIs(t, err, ErrMisconfigured)
}
