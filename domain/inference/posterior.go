package inference

import (
	"math"

	"lvilc/domain/cosmo"
)

// LikelihoodFunc is the log-likelihood evaluated at physical parameters.
type LikelihoodFunc func(p cosmo.Params) float64

// Posterior combines the prior and likelihood into the log-posterior
// surface over sampling-space vectors.
type Posterior struct {
	prior Prior
	like  LikelihoodFunc
}

// NewPosterior wires a prior and a likelihood together.
func NewPosterior(prior Prior, like LikelihoodFunc) *Posterior {
	return &Posterior{prior: prior, like: like}
}

// Prior returns the wired prior.
func (p *Posterior) Prior() Prior { return p.prior }

// LogProb returns log_prior(v) + log_likelihood(v). When the prior is -Inf
// the likelihood is never evaluated: the vector may be outside the model's
// domain and evaluating it would be wasted work at best.
func (p *Posterior) LogProb(v []float64) float64 {
	lp := p.prior.LogPrior(v)
	if math.IsInf(lp, -1) {
		return lp
	}
	return lp + p.like(cosmo.FromVector(v))
}
