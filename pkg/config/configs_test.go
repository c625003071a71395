// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

const extraCatalog = `
functions:
  - name: myFunc
    category: Custom
    params: [{name: n, type: int}]
    defaultParams: ["1"]
  - name: scale
    category: Custom
    params: [{name: factor, type: string}]
`

func TestLoad_include(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"metricq.yaml": `
include: [sub/more.yaml, metricq.yaml]
variables: {env: prod, region: east}
`,
		"sub/more.yaml": `
catalogs: [extra.yaml]
variables: {env: dev}
cache: {ttl: 5m, capacity: 10}
`,
		"sub/extra.yaml": extraCatalog,
	})
	main, more := filepath.Join(dir, "metricq.yaml"), filepath.Join(dir, "sub/more.yaml")
	configs, err := Load(main)
	require.NoError(t, err)
	assert.Equal(t, []string{main, more}, configs.Sources())
	assert.Equal(t, []string{filepath.Join(dir, "sub/extra.yaml")}, configs[more].Catalogs)

	// more.yaml sorts after metricq.yaml, its variables win.
	assert.Equal(t, map[string]string{"env": "dev", "region": "east"}, configs.Variables())

	ttl, capacity := configs.Cache()
	assert.Equal(t, 5*time.Minute, ttl)
	assert.Equal(t, uint64(10), capacity)

	c, err := configs.Catalog()
	require.NoError(t, err)
	d, ok := c.Get("myFunc")
	require.True(t, ok)
	assert.Equal(t, "Custom", d.Category)
	d, ok = c.Get("scale")
	require.True(t, ok)
	assert.Equal(t, "Custom", d.Category, "loaded catalog overrides built-in")
	_, ok = c.Get("sumSeries")
	assert.True(t, ok, "built-in functions are kept")
}

func TestLoad_url(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/config.yaml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("catalogs: [functions.yaml]\n"))
	})
	mux.HandleFunc("/functions.yaml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(extraCatalog))
	})
	s := httptest.NewServer(mux)
	defer s.Close()

	configs, err := Load(s.URL + "/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{s.URL + "/functions.yaml"}, configs[s.URL+"/config.yaml"].Catalogs)
	c, err := configs.Catalog()
	require.NoError(t, err)
	_, ok := c.Get("myFunc")
	assert.True(t, ok)
}

func TestLoad_errors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.yaml":     "nonsense: true\n",
		"include.yaml": "include: [missing.yaml]\n",
	})
	_, err := Load(filepath.Join(dir, "bad.yaml"))
	assert.ErrorContains(t, err, "bad.yaml")
	_, err = Load(filepath.Join(dir, "include.yaml"))
	assert.ErrorContains(t, err, "missing.yaml")
}

func TestConfigs_Catalog_errors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"invalid.yaml": "functions: [{name: f, params: [{name: p, type: nope}]}]\n",
		"good.yaml":    extraCatalog,
	})
	configs := Configs{"x": &Config{Catalogs: []string{
		filepath.Join(dir, "missing.yaml"),
		filepath.Join(dir, "invalid.yaml"),
		filepath.Join(dir, "good.yaml"),
	}}}
	c, err := configs.Catalog()
	assert.ErrorContains(t, err, "missing.yaml")
	assert.ErrorContains(t, err, `parameter "p" has unknown type "nope"`)
	_, ok := c.Get("myFunc")
	assert.True(t, ok, "good catalogs are still loaded")
	_, ok = c.Get("f")
	assert.False(t, ok)
}

func TestConfigs_defaults(t *testing.T) {
	configs := Configs{}
	ttl, capacity := configs.Cache()
	assert.Equal(t, DefaultCacheTTL, ttl)
	assert.Equal(t, uint64(DefaultCacheCapacity), capacity)
	assert.Empty(t, configs.Variables())
	c, err := configs.Catalog()
	require.NoError(t, err)
	assert.NotZero(t, c.Len())
}
