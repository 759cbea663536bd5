package grib1

// Parameter describes a GRIB1 parameter (code table 2 entry).
type Parameter struct {
	ShortName string
	Name      string
	Units     string
	CFName    string
}

type paramKey struct {
	centre    byte
	table     byte
	indicator byte
}

// localParameters override the WMO table for a producing centre. The H-SAF
// precipitation chain runs at CNMCA Rome (centre 80).
var localParameters = map[paramKey]Parameter{
	{80, 2, 59}: {"irrate", "Instantaneous rain rate", "kg m**-2 s**-1", "unknown"},
	{80, 2, 61}: {"tp", "Total precipitation", "kg m**-2", "precipitation_amount"},
	{80, 2, 65}: {"sf", "Snowfall water equivalent", "kg m**-2", "unknown"},
}

// wmoParameters is the subset of WMO code table 2 (versions 1-3) this
// decoder names.
var wmoParameters = map[byte]Parameter{
	1:  {"pres", "Pressure", "Pa", "air_pressure"},
	2:  {"prmsl", "Pressure reduced to MSL", "Pa", "air_pressure_at_sea_level"},
	7:  {"gh", "Geopotential height", "gpm", "geopotential_height"},
	11: {"t", "Temperature", "K", "air_temperature"},
	17: {"dpt", "Dew point temperature", "K", "dew_point_temperature"},
	33: {"u", "U component of wind", "m s**-1", "eastward_wind"},
	34: {"v", "V component of wind", "m s**-1", "northward_wind"},
	52: {"r", "Relative humidity", "%", "relative_humidity"},
	59: {"prate", "Precipitation rate", "kg m**-2 s**-1", "precipitation_flux"},
	61: {"tp", "Total precipitation", "kg m**-2", "precipitation_amount"},
	62: {"lsp", "Large scale precipitation", "kg m**-2", "large_scale_precipitation_amount"},
	63: {"acpcp", "Convective precipitation", "kg m**-2", "convective_precipitation_amount"},
	65: {"sf", "Water equivalent of accumulated snow depth", "kg m**-2", "unknown"},
	71: {"tcc", "Total cloud cover", "%", "cloud_area_fraction"},
}

// lookupParameter names a parameter; unknown ones get ecCodes-style
// placeholders.
func lookupParameter(centre, table, indicator byte) Parameter {
	if p, ok := localParameters[paramKey{centre, table, indicator}]; ok {
		return p
	}
	if table <= 3 {
		if p, ok := wmoParameters[indicator]; ok {
			return p
		}
	}
	return Parameter{ShortName: "unknown", Name: "unknown", Units: "unknown", CFName: "unknown"}
}

// centres is the subset of WMO common code table C-1 this decoder names.
var centres = map[byte]string{
	7:   "US National Weather Service - NCEP",
	34:  "Tokyo (RSMC), Japan Meteorological Agency",
	54:  "Montreal (RSMC)",
	74:  "U.K. Met Office - Exeter",
	78:  "Offenbach (RSMC)",
	80:  "Rome (RSMC)",
	85:  "French Weather Service - Toulouse",
	98:  "European Centre for Medium-Range Weather Forecasts",
	254: "EUMETSAT Operation Centre",
}

// centreDescription returns the C-1 description, or "" when unknown.
func centreDescription(c byte) string { return centres[c] }
