// Package diagnostics computes convergence diagnostics from a completed
// (or cancelled) chain: integrated autocorrelation times, acceptance
// fractions and the derived reliability warnings. It never mutates the
// chain.
package diagnostics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// sokalWindowC is the automated windowing constant: the sum over lags is
	// cut at the smallest M with M >= c * tau(M).
	sokalWindowC = 5.0

	// ReliabilityFactor is the required chain length in units of the
	// integrated autocorrelation time. Shorter chains are flagged as
	// unreliable rather than silently reported.
	ReliabilityFactor = 50.0
)

// AutocorrResult is the per-parameter autocorrelation estimate.
type AutocorrResult struct {
	Name     string  `json:"name"`
	Tau      float64 `json:"tau"`
	Reliable bool    `json:"reliable"`
}

// IntegratedTime estimates the integrated autocorrelation time of a series
// using the normalized autocorrelation function with Sokal's automated
// windowing. The series is typically the ensemble-mean trajectory of one
// parameter.
func IntegratedTime(x []float64) (float64, error) {
	n := len(x)
	if n < 8 {
		return 0, fmt.Errorf("series too short for autocorrelation estimate: %d points", n)
	}
	mean := stat.Mean(x, nil)

	var denom float64
	centered := make([]float64, n)
	for i, v := range x {
		centered[i] = v - mean
		denom += centered[i] * centered[i]
	}
	if denom == 0 {
		return 0, fmt.Errorf("series is constant; autocorrelation undefined")
	}

	tau := 1.0
	for lag := 1; lag < n; lag++ {
		var num float64
		for i := 0; i < n-lag; i++ {
			num += centered[i] * centered[i+lag]
		}
		rho := num / denom
		tau += 2 * rho
		if float64(lag) >= sokalWindowC*tau {
			break
		}
	}
	if tau < 1 {
		tau = 1 // estimator noise can push below the iid floor
	}
	return tau, nil
}

// CheckLength flags a chain shorter than ReliabilityFactor times the
// estimated autocorrelation time.
func CheckLength(steps int, tau float64) bool {
	return float64(steps) >= ReliabilityFactor*tau
}

// isFinite reports whether v is a usable estimate.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
