// Package aqi holds the air-quality policy constants: breakpoint tables,
// the PM2.5 to PM10-equivalent conversion factor, and per-parameter
// fallback values. The factor and the fallbacks are approximations
// inherited from the upstream data product, kept as named constants so
// they can be tuned without touching pipeline code.
package aqi

// Parameter names as they appear in measurement rows.
const (
	ParamPM10 = "pm10"
	ParamPM25 = "pm25"
)

// PM25ToPM10Factor converts a PM2.5 concentration into a rough PM10
// equivalent when a station reports only PM2.5. Approximation, not a
// physical constant.
const PM25ToPM10Factor = 1.5

// Default concentrations assumed when a live sensor exposes a parameter
// but carries no current measurement. Approximations.
var defaultValues = map[string]float64{
	ParamPM10: 25,
	ParamPM25: 15,
}

// DefaultValue returns the fallback concentration for a parameter, or 0
// for parameters the catalog does not track.
func DefaultValue(param string) float64 {
	return defaultValues[param]
}

// Severity levels, least to most severe.
const (
	LevelGood          = "good"
	LevelModerate      = "moderate"
	LevelUnhealthySens = "unhealthy-sensitive"
	LevelUnhealthy     = "unhealthy"
	LevelVeryUnhealthy = "very-unhealthy"
	LevelHazardous     = "hazardous"
)

type breakpoint struct {
	upper float64
	level string
}

// Fixed breakpoint tables. Classification is for display only; it never
// gates a record.
var (
	pm10Breakpoints = []breakpoint{
		{50, LevelGood},
		{100, LevelModerate},
		{150, LevelUnhealthySens},
		{200, LevelUnhealthy},
		{300, LevelVeryUnhealthy},
	}
	pm25Breakpoints = []breakpoint{
		{12, LevelGood},
		{35.4, LevelModerate},
		{55.4, LevelUnhealthySens},
		{150.4, LevelUnhealthy},
		{250.4, LevelVeryUnhealthy},
	}
)

// Classify buckets a concentration into a severity level using the
// breakpoint table for the given parameter. Unknown parameters use the
// PM10 table, which is what the derived pollution figure is expressed in.
func Classify(param string, value float64) string {
	table := pm10Breakpoints
	if param == ParamPM25 {
		table = pm25Breakpoints
	}
	for _, bp := range table {
		if value <= bp.upper {
			return bp.level
		}
	}
	return LevelHazardous
}
