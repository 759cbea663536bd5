package hsafgrib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "hsaf_grib", cfg.Reader.Name)
	assert.Equal(t, []string{"hsaf"}, cfg.Reader.Sensors)
	require.Contains(t, cfg.FileTypes, "hsafgrib")
	assert.Len(t, cfg.FileTypes["hsafgrib"].FilePatterns, 4)

	for _, name := range []string{"h03", "h03B", "h05", "h05B"} {
		ds, ok := cfg.Datasets[name]
		require.True(t, ok, name)
		assert.Equal(t, name, ds.Name, "name defaults to key")
		assert.Equal(t, "hsafgrib", ds.FileType)
	}
	assert.True(t, cfg.Datasets["h05B"].Accumulated)
	assert.False(t, cfg.Datasets["h03B"].Accumulated)
	assert.Equal(t, "rainfall_rate", cfg.Datasets["h03"].StandardName)
}

const minimalConfig = `
reader:
  name: test
file_types:
  ft:
    file_reader: hsaf_grib
    file_patterns: ['{product}.grb']
datasets:
  h03:
    file_type: ft
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, DatasetInfo{Name: "h03", FileType: "ft"}, cfg.Datasets["h03"])
}

func TestParseConfigExplicitName(t *testing.T) {
	cfg, err := ParseConfig([]byte(minimalConfig + "    name: H03\n"))
	require.NoError(t, err)
	assert.Equal(t, "H03", cfg.Datasets["h03"].Name)
}

func TestParseConfigErrors(t *testing.T) {
	cases := map[string]string{
		"not yaml":      "reader: [",
		"unknown field": minimalConfig + "    colour: blue\n",
		"no name":       "file_types: {ft: {file_patterns: [a]}}\n",
		"no file types": "reader: {name: test}\n",
		"no patterns":   "reader: {name: test}\nfile_types: {ft: {file_reader: x}}\n",
		"bad pattern":   "reader: {name: test}\nfile_types: {ft: {file_patterns: ['{a']}}\n",
		"bad ref":       minimalConfig + "  h05:\n    file_type: other\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalConfig), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Reader.Name)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte("reader: {}\n"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, path)
}
