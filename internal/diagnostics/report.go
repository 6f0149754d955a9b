package diagnostics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"lvilc/domain/chain"
)

// Acceptance target band for stretch-move ensembles. Means far outside it
// indicate a poorly scaled problem; surfaced as a warning, never fatal.
const (
	TargetAcceptanceLow  = 0.2
	TargetAcceptanceHigh = 0.5
)

// AcceptanceSummary reports per-walker acceptance fractions with ensemble
// mean and spread.
type AcceptanceSummary struct {
	Fractions []float64 `json:"fractions"`
	Mean      float64   `json:"mean"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	InBand    bool      `json:"in_band"`
}

// Report bundles every convergence diagnostic of one run.
type Report struct {
	Steps      int               `json:"steps"`
	Walkers    int               `json:"walkers"`
	Autocorr   []AutocorrResult  `json:"autocorr"`
	Acceptance AcceptanceSummary `json:"acceptance"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// Compute derives the full diagnostics report from a chain. Numerical
// problems (short chains, low acceptance) become warnings in the report;
// the run still completes.
func Compute(c *chain.Chain, paramNames []string) Report {
	rep := Report{Steps: c.Steps, Walkers: c.Walkers}

	for dim := 0; dim < c.Dim; dim++ {
		name := fmt.Sprintf("param_%d", dim)
		if dim < len(paramNames) {
			name = paramNames[dim]
		}
		tau, err := IntegratedTime(c.ParamSeries(dim))
		if err != nil || !isFinite(tau) {
			rep.Autocorr = append(rep.Autocorr, AutocorrResult{Name: name, Tau: 0, Reliable: false})
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("autocorrelation time for %s could not be estimated", name))
			continue
		}
		reliable := CheckLength(c.Steps, tau)
		rep.Autocorr = append(rep.Autocorr, AutocorrResult{Name: name, Tau: tau, Reliable: reliable})
		if !reliable {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf(
				"chain too short for %s: %d steps < %.0f x tau (tau=%.1f); estimates unreliable",
				name, c.Steps, ReliabilityFactor, tau))
		}
	}

	fr := c.AcceptanceFractions()
	acc := AcceptanceSummary{Fractions: fr, Min: 1, Max: 0}
	if len(fr) > 0 {
		acc.Mean = stat.Mean(fr, nil)
		for _, f := range fr {
			if f < acc.Min {
				acc.Min = f
			}
			if f > acc.Max {
				acc.Max = f
			}
		}
	}
	acc.InBand = acc.Mean >= TargetAcceptanceLow && acc.Mean <= TargetAcceptanceHigh
	if !acc.InBand {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf(
			"mean acceptance fraction %.3f outside target band [%.1f, %.1f]",
			acc.Mean, TargetAcceptanceLow, TargetAcceptanceHigh))
	}
	rep.Acceptance = acc
	return rep
}
