package geo

import (
	"math"
	"strconv"
)

// FormatDistance renders a distance for display: whole meters below 1 km,
// one decimal below 100 km, whole kilometers beyond that.
// Negative and NaN distances render as "".
func FormatDistance(km float64) string {
	if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return ""
	}
	if km < 1 {
		m := math.Round(km * 1000)
		if m >= 1000 {
			return "1.0 km"
		}
		return strconv.FormatFloat(m, 'f', 0, 64) + " m"
	}
	if tenths := math.Round(km * 10); tenths < 1000 {
		return strconv.FormatFloat(tenths/10, 'f', 1, 64) + " km"
	}
	return strconv.FormatFloat(math.Round(km), 'f', 0, 64) + " km"
}
