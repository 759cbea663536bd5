package hsafgrib

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products/h03B_20190603_1645_fdk.grb", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("GRIB...7777"))
	})
	mux.HandleFunc("/products/big.grb", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFetch(t *testing.T) {
	srv := productServer(t)
	c := NewClient()

	body, err := c.Fetch(context.Background(), srv.URL+"/products/h03B_20190603_1645_fdk.grb")
	require.NoError(t, err)
	assert.Equal(t, "GRIB...7777", string(body))

	_, err = c.Fetch(context.Background(), srv.URL+"/products/missing.grb")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestClientFetchTooLarge(t *testing.T) {
	srv := productServer(t)
	c := &Client{HTTPClient: srv.Client(), MaxBytes: 63}

	_, err := c.Fetch(context.Background(), srv.URL+"/products/big.grb")
	assert.ErrorIs(t, err, ErrTooLarge)

	c.MaxBytes = 64
	body, err := c.Fetch(context.Background(), srv.URL+"/products/big.grb")
	require.NoError(t, err)
	assert.Len(t, body, 64)
}

func TestClientFetchCancelled(t *testing.T) {
	srv := productServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient().Fetch(ctx, srv.URL+"/products/h03B_20190603_1645_fdk.grb")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientDownload(t *testing.T) {
	srv := productServer(t)
	dir := t.TempDir()

	path, err := NewClient().Download(context.Background(), srv.URL+"/products/h03B_20190603_1645_fdk.grb?token=abc", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "h03B_20190603_1645_fdk.grb"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GRIB...7777", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestClientDownloadErrors(t *testing.T) {
	srv := productServer(t)
	dir := t.TempDir()

	_, err := NewClient().Download(context.Background(), srv.URL+"/", dir)
	assert.ErrorContains(t, err, "names no file")

	_, err = NewClient().Download(context.Background(), srv.URL+"/products/..", dir)
	assert.ErrorContains(t, err, "names no file")

	_, err = NewClient().Download(context.Background(), srv.URL+"/products/missing.grb", dir)
	assert.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
