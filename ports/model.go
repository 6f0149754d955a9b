package ports

import (
	"lvilc/domain/cosmo"
	"lvilc/domain/probe"
)

// ExpansionModel is the capability set a cosmological model family must
// provide to the inference pipeline. Alternative expansion histories can be
// substituted without touching the sampler or likelihood.
type ExpansionModel interface {
	// Predict computes the predicted observable for one probe class at each
	// redshift. A vector outside the model's domain yields an error wrapped
	// around cosmo.ErrUnphysical, never a silent NaN.
	Predict(p cosmo.Params, zs []float64, kind probe.Kind) ([]float64, error)

	// ValidDomain reports whether the model can be evaluated at p.
	ValidDomain(p cosmo.Params) error
}
