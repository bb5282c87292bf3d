package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		expected  []string
		expectErr bool
	}{
		{
			name:     "json array",
			content:  `["amount", "population_city", "hour", "dow", "is_weekend", "dist_km", "cat_id", "gender"]`,
			expected: []string{"amount", "population_city", "hour", "dow", "is_weekend", "dist_km", "cat_id", "gender"},
		},
		{
			name:     "yaml list",
			content:  "- amount\n- dist_km\n",
			expected: []string{"amount", "dist_km"},
		},
		{name: "empty array", content: `[]`, expectErr: true},
		{name: "object instead of list", content: `{"features": ["amount"]}`, expectErr: true},
		{name: "duplicate", content: `["hour", "hour"]`, expectErr: true},
		{
			name:     "punctuated column names",
			content:  `["city-pop", "amt.log"]`,
			expected: []string{"city-pop", "amt.log"},
		},
		{name: "name with comma", content: `["lat,lon"]`, expectErr: true},
		{name: "blank name", content: `[" "]`, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.content))
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidManifest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.Features())
		})
	}
}

func TestManifest_Lookup(t *testing.T) {
	m, err := New([]string{"amount", "hour", "dist_km"})
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	assert.True(t, m.Equal([]string{"amount", "hour", "dist_km"}))
	assert.False(t, m.Equal([]string{"hour", "amount", "dist_km"}))

	// callers cannot mutate the manifest through the returned slice
	features := m.Features()
	features[0] = "changed"
	assert.Equal(t, "amount", m.Features()[0])
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.json")
	require.NoError(t, os.WriteFile(path, []byte(`["amount","dist_km"]`), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"amount", "dist_km"}, m.Features())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrInvalidManifest)
}
