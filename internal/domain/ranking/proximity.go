package ranking

import (
	"fmt"
	"math"
)

// DefaultRadiusKm is used when a query carries no usable proximity radius.
const DefaultRadiusKm = 10.0

// ProximityPolicy selects how a distance turns into proximity points.
type ProximityPolicy string

const (
	// ProximityDecay awards ProximityMax * exp(-distance/radius). No cutoff.
	ProximityDecay ProximityPolicy = "decay"
	// ProximityBands awards fixed points per distance band.
	//
	// Deprecated: bands ignore the requested radius and flatten ranking
	// inside each band. Kept only for config compatibility.
	ProximityBands ProximityPolicy = "bands"
)

// ParseProximityPolicy maps a config value to a policy. Empty means decay.
func ParseProximityPolicy(s string) (ProximityPolicy, error) {
	switch ProximityPolicy(s) {
	case "", ProximityDecay:
		return ProximityDecay, nil
	case ProximityBands:
		return ProximityBands, nil
	default:
		return "", fmt.Errorf("unknown proximity policy %q", s)
	}
}

// Points converts a distance to proximity points under the policy.
func (p ProximityPolicy) Points(distanceKm, radiusKm float64, w *Weights) float64 {
	if math.IsNaN(distanceKm) || distanceKm < 0 {
		return 0
	}
	switch p {
	case ProximityBands:
		for _, b := range w.ProximityBands {
			if distanceKm <= b.MaxKm {
				return b.Points
			}
		}
		return 0
	default:
		if radiusKm <= 0 || math.IsNaN(radiusKm) {
			radiusKm = DefaultRadiusKm
		}
		return w.ProximityMax * math.Exp(-distanceKm/radiusKm)
	}
}
