package hsafgrib

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

// WriteNetCDF writes da to a classic NetCDF file at path. The data
// variable is named after the dataset with dimensions (y, x) and NaN as
// fill value. When da carries an area, 1-D x and y variables hold the
// projection coordinates of the pixel centres and the global attributes
// record the projection.
func WriteNetCDF(path string, da *DataArray) (err error) {
	if da == nil || da.Shape[0]*da.Shape[1] != len(da.Values) {
		return errors.New("netcdf: data array shape does not match its values")
	}
	w, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("netcdf: %w", err)
	}
	defer func() {
		// Close writes the file out.
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	rows := make([][]float32, da.Shape[0])
	for y := range rows {
		rows[y] = make([]float32, da.Shape[1])
		for x := range rows[y] {
			rows[y][x] = float32(da.At(y, x))
		}
	}
	attrs, err := orderedAttrs(
		"units", da.Attrs.Units,
		"long_name", da.Attrs.LongName,
		"standard_name", da.Attrs.StandardName,
		"short_name", da.Attrs.ShortName,
		"_FillValue", float32(math.NaN()),
		"start_time", da.Attrs.StartTime.UTC().Format(time.RFC3339),
		"end_time", da.Attrs.EndTime.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	err = w.AddVar(da.Name, api.Variable{
		Values:     rows,
		Dimensions: []string{da.Dims[0], da.Dims[1]},
		Attributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("netcdf: variable %s: %w", da.Name, err)
	}

	global := []any{
		"Conventions", "CF-1.7",
		"source", da.Attrs.Filename,
		"institution", da.Attrs.CentreDescription,
	}
	if a := da.Area; a != nil {
		for _, c := range []struct {
			name string
			vals []float64
		}{
			{da.Dims[1], a.ProjectionX()},
			{da.Dims[0], a.ProjectionY()},
		} {
			cattrs, err := orderedAttrs("units", "m", "long_name", c.name+" coordinate of projection")
			if err != nil {
				return err
			}
			err = w.AddVar(c.name, api.Variable{
				Values:     c.vals,
				Dimensions: []string{c.name},
				Attributes: cattrs,
			})
			if err != nil {
				return fmt.Errorf("netcdf: coordinate %s: %w", c.name, err)
			}
		}
		global = append(global,
			"area_id", a.AreaID,
			"proj4", a.ProjString(),
			"area_extent", a.AreaExtent[:],
		)
	}
	gattrs, err := orderedAttrs(global...)
	if err != nil {
		return err
	}
	if err := w.AddGlobalAttrs(gattrs); err != nil {
		return fmt.Errorf("netcdf: global attributes: %w", err)
	}
	return nil
}

// orderedAttrs builds an attribute map from key/value pairs, dropping
// empty strings.
func orderedAttrs(kv ...any) (api.AttributeMap, error) {
	var keys []string
	vals := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k := kv[i].(string)
		if s, ok := kv[i+1].(string); ok && s == "" {
			continue
		}
		keys = append(keys, k)
		vals[k] = kv[i+1]
	}
	m, err := util.NewOrderedMap(keys, vals)
	if err != nil {
		return nil, fmt.Errorf("netcdf: attributes: %w", err)
	}
	return m, nil
}
