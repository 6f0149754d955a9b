// Package inference combines the cosmological model with observation data
// into the log-posterior surface the ensemble sampler explores.
package inference

import (
	"fmt"
	"math"

	"lvilc/domain/cosmo"
)

// Interval is a closed parameter bound.
type Interval struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether x lies inside the closed interval. NaN is never
// contained.
func (iv Interval) Contains(x float64) bool {
	return x >= iv.Min && x <= iv.Max
}

// Prior is a flat (uniform) prior over independent box constraints, one per
// sampling-space coordinate (H0_offset, log10(M_bh), t_fall). It is the sole
// gatekeeper of physical admissibility: no other component re-checks bounds.
type Prior struct {
	Bounds [cosmo.NDim]Interval
}

// DefaultPrior returns the study's box constraints: H0_offset within
// +/-50 km/s/Mpc, M_bh between 1e20 and 1e26 solar masses (flat in log
// space) and t_fall between 5 and 25 Gyr.
func DefaultPrior() Prior {
	return Prior{Bounds: [cosmo.NDim]Interval{
		{Min: -50, Max: 50},
		{Min: 20, Max: 26},
		{Min: 5, Max: 25},
	}}
}

// LogPrior returns a constant 0 inside the bounds and -Inf outside. Both
// positivity requirements of the model (M_bh > 0, t_fall > 0) are implied
// by the bounds, so vectors passed downstream are always in the model's
// domain of positive mass and time.
func (p Prior) LogPrior(v []float64) float64 {
	if !p.Contains(v) {
		return math.Inf(-1)
	}
	return 0
}

// Contains reports whether the sampling-space vector satisfies every bound.
func (p Prior) Contains(v []float64) bool {
	if len(v) != cosmo.NDim {
		return false
	}
	for i, x := range v {
		if !p.Bounds[i].Contains(x) {
			return false
		}
	}
	return true
}

// Describe renders the bounds for initialization-failure reports.
func (p Prior) Describe() string {
	s := ""
	for i, b := range p.Bounds {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s in [%g, %g]", cosmo.VectorNames[i], b.Min, b.Max)
	}
	return s
}
