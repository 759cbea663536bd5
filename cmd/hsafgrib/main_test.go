package main

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/geal-ai/hsafgrib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLatLon(t *testing.T) {
	lat, lon, err := parseLatLon("41.9, 12.5")
	require.NoError(t, err)
	assert.Equal(t, 41.9, lat)
	assert.Equal(t, 12.5, lon)

	for _, s := range []string{"41.9", "x,1", "1,y", "91,0"} {
		_, _, err := parseLatLon(s)
		assert.Error(t, err, s)
	}
}

func TestSummarize(t *testing.T) {
	end := time.Date(2019, 6, 3, 16, 45, 0, 0, time.UTC)
	da := &hsafgrib.DataArray{
		Name:   "h05B",
		Values: []float64{math.NaN(), 2, 0.5, 7},
		Shape:  [2]int{2, 2},
		Attrs: hsafgrib.DatasetAttrs{
			Metadata:  hsafgrib.Metadata{Filename: "/data/h05B_20190603_1645_24_fdk.grb", Units: "kg m**-2"},
			StartTime: end.Add(-24 * time.Hour),
			EndTime:   end,
		},
	}

	ds := summarize(da, nil)
	assert.Equal(t, "h05B_20190603_1645_24_fdk.grb", ds.File)
	assert.Equal(t, 3, ds.Valid)
	require.NotNil(t, ds.Min)
	assert.Equal(t, 0.5, *ds.Min)
	assert.Equal(t, 7.0, *ds.Max)
	assert.Equal(t, "2019-06-02T16:45:00Z", ds.StartTime)
	assert.Nil(t, ds.Extent)
	assert.Nil(t, ds.Value)
}

func TestResolveInputs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/h03B_20190603_1645_fdk.grb" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("GRIB"))
	}))
	defer srv.Close()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	args := []string{"local.grb", srv.URL + "/h03B_20190603_1645_fdk.grb", srv.URL + "/missing.grb"}
	paths, cleanup, err := resolveInputs(context.Background(), args, time.Minute, logger)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "local.grb", paths[0])
	assert.Equal(t, "h03B_20190603_1645_fdk.grb", filepath.Base(paths[1]))
	_, err = os.Stat(paths[1])
	require.NoError(t, err)

	cleanup()
	_, err = os.Stat(paths[1])
	assert.ErrorIs(t, err, os.ErrNotExist)
}
