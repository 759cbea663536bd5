package hsafgrib

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataArray(t *testing.T) *DataArray {
	t.Helper()
	msg := newFakeMessage()
	msg.attrs["Nx"], msg.attrs["Ny"] = 4, 3
	msg.attrs["XpInGridLengths"], msg.attrs["YpInGridLengths"] = 2.0, 1.5
	area, err := areaFromMessage(msg)
	require.NoError(t, err)

	end := time.Date(2019, 6, 3, 16, 45, 0, 0, time.UTC)
	return &DataArray{
		Name:   "h05B",
		Values: []float64{0, 1, 2, 3, 4, math.NaN(), 6, 7, 8, 9, 10, 11},
		Shape:  [2]int{3, 4},
		Dims:   [2]string{"y", "x"},
		Attrs: DatasetAttrs{
			Metadata: Metadata{
				Filename:          "h05B_20190603_1645_24_fdk.grb",
				ShortName:         "acpcp",
				LongName:          "Accumulated precipitation",
				Units:             "kg m**-2",
				CentreDescription: "Rome",
			},
			StandardName: "precipitation_amount",
			StartTime:    end.Add(-24 * time.Hour),
			EndTime:      end,
		},
		Area: area,
	}
}

func TestWriteNetCDF(t *testing.T) {
	da := testDataArray(t)
	path := filepath.Join(t.TempDir(), "h05B.nc")
	require.NoError(t, WriteNetCDF(path, da))

	nc, err := netcdf.Open(path)
	require.NoError(t, err)
	defer nc.Close()

	v, err := nc.GetVariable("h05B")
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, v.Dimensions)
	rows, ok := v.Values.([][]float32)
	require.True(t, ok, "values are %T", v.Values)
	require.Len(t, rows, 3)
	assert.Equal(t, []float32{8, 9, 10, 11}, rows[2])
	assert.True(t, math.IsNaN(float64(rows[1][1])))

	units, ok := v.Attributes.Get("units")
	require.True(t, ok)
	assert.Equal(t, "kg m**-2", units)
	start, _ := v.Attributes.Get("start_time")
	assert.Equal(t, "2019-06-02T16:45:00Z", start)

	x, err := nc.GetVariable("x")
	require.NoError(t, err)
	assert.Equal(t, da.Area.ProjectionX(), x.Values)

	proj, ok := nc.Attributes().Get("proj4")
	require.True(t, ok)
	assert.Equal(t, da.Area.ProjString(), proj)
	inst, _ := nc.Attributes().Get("institution")
	assert.Equal(t, "Rome", inst)
}

func TestWriteNetCDFWithoutArea(t *testing.T) {
	da := testDataArray(t)
	da.Area = nil
	da.Attrs.CentreDescription = ""
	path := filepath.Join(t.TempDir(), "h05B.nc")
	require.NoError(t, WriteNetCDF(path, da))

	nc, err := netcdf.Open(path)
	require.NoError(t, err)
	defer nc.Close()

	_, err = nc.GetVariable("x")
	assert.Error(t, err)
	_, ok := nc.Attributes().Get("proj4")
	assert.False(t, ok)
	_, ok = nc.Attributes().Get("institution")
	assert.False(t, ok, "empty attribute written")
}

func TestWriteNetCDFRejectsShapeMismatch(t *testing.T) {
	da := testDataArray(t)
	da.Values = da.Values[:11]
	path := filepath.Join(t.TempDir(), "bad.nc")

	require.Error(t, WriteNetCDF(path, da))
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
