package inference

import (
	"fmt"
	"math"

	"lvilc/domain/cosmo"
	"lvilc/domain/probe"
	"lvilc/ports"
)

// Likelihood evaluates the Gaussian chi-square log-likelihood of a
// parameter vector against a fixed observation table. It is pure and
// deterministic: no hidden mutable state, so a fixed seed reproduces
// bit-identical chains.
type Likelihood struct {
	model ports.ExpansionModel
	table probe.Table
}

// NewLikelihood binds a model family to an observation table.
func NewLikelihood(model ports.ExpansionModel, table probe.Table) *Likelihood {
	return &Likelihood{model: model, table: table}
}

// Table returns the bound observation table.
func (l *Likelihood) Table() probe.Table { return l.table }

// ChiSquare sums ((predicted-observed)/sigma)^2 over every included probe
// class. Empty probe classes contribute zero. A model domain failure is
// returned as an error for callers that need it (goodness of fit); the
// sampler path goes through LogLikelihood, which absorbs it.
func (l *Likelihood) ChiSquare(p cosmo.Params) (float64, error) {
	total := 0.0
	for _, kind := range l.table.Kinds() {
		series := l.table.Series(kind)
		predicted, err := l.model.Predict(p, series.Redshifts(), kind)
		if err != nil {
			return 0, fmt.Errorf("predict %s: %w", kind, err)
		}
		for i, rec := range series {
			r := (predicted[i] - rec.Value) / rec.TotalSigma()
			total += r * r
		}
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: non-finite chi-square", cosmo.ErrUnphysical)
	}
	return total, nil
}

// LogLikelihood returns -0.5 * chi-square. Samplers propose invalid vectors
// by construction, so any domain or numerical failure is absorbed here as
// -Inf rather than surfaced as an error into the stepping loop.
func (l *Likelihood) LogLikelihood(p cosmo.Params) float64 {
	chi2, err := l.ChiSquare(p)
	if err != nil {
		return math.Inf(-1)
	}
	return -0.5 * chi2
}

// DegreesOfFreedom is the observation count minus the number of fitted
// parameters.
func (l *Likelihood) DegreesOfFreedom() int {
	return l.table.Len() - cosmo.NDim
}
