package analysis

import (
	"fmt"

	"lvilc/domain/cosmo"
	"lvilc/domain/inference"
)

// GoodnessOfFit reports the chi-square of the best-fit (posterior median)
// parameters against the observation table.
type GoodnessOfFit struct {
	ChiSquare        float64 `json:"chi_square"`
	DegreesOfFreedom int     `json:"degrees_of_freedom"`
	ReducedChiSquare float64 `json:"reduced_chi_square"`
}

// Fit evaluates the goodness of fit at the given physical parameters.
func Fit(like *inference.Likelihood, p cosmo.Params) (GoodnessOfFit, error) {
	chi2, err := like.ChiSquare(p)
	if err != nil {
		return GoodnessOfFit{}, fmt.Errorf("goodness of fit at %+v: %w", p, err)
	}
	dof := like.DegreesOfFreedom()
	g := GoodnessOfFit{ChiSquare: chi2, DegreesOfFreedom: dof}
	if dof > 0 {
		g.ReducedChiSquare = chi2 / float64(dof)
	}
	return g, nil
}
