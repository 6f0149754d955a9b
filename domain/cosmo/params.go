package cosmo

import (
	"fmt"
	"math"
)

// NDim is the dimensionality of the parameter space, fixed for the lifetime
// of the pipeline.
const NDim = 3

// ParamNames are the physical parameter names in vector order.
var ParamNames = [NDim]string{"H0_offset", "M_bh", "t_fall"}

// VectorNames are the names of the sampling-space coordinates. The mass is
// sampled in log10 space because it spans several orders of magnitude.
var VectorNames = [NDim]string{"H0_offset", "log10_M_bh", "t_fall"}

// Params is the LVILC parameter vector: an expansion-rate offset in
// km/s/Mpc (may be negative), the collapse mass in solar masses (positive)
// and the characteristic infall time in Gyr (positive).
type Params struct {
	H0Offset float64
	MBh      float64
	TFall    float64
}

// ErrUnphysical marks parameter vectors outside the model's domain. The
// likelihood boundary converts it to a -Inf log-probability; it must never
// surface as a crash.
var ErrUnphysical = fmt.Errorf("unphysical parameters")

// Validate rejects vectors the model cannot be evaluated at.
func (p Params) Validate() error {
	if math.IsNaN(p.H0Offset) || math.IsInf(p.H0Offset, 0) {
		return fmt.Errorf("%w: H0_offset must be finite, got %v", ErrUnphysical, p.H0Offset)
	}
	if !(p.MBh > 0) || math.IsInf(p.MBh, 0) {
		return fmt.Errorf("%w: M_bh must be positive and finite, got %v", ErrUnphysical, p.MBh)
	}
	if !(p.TFall > 0) || math.IsInf(p.TFall, 0) {
		return fmt.Errorf("%w: t_fall must be positive and finite, got %v", ErrUnphysical, p.TFall)
	}
	return nil
}

// Vector maps the parameters into sampling space:
// (H0_offset, log10(M_bh), t_fall).
func (p Params) Vector() []float64 {
	return []float64{p.H0Offset, math.Log10(p.MBh), p.TFall}
}

// FromVector is the inverse of Vector. It does not validate; callers gate
// admissibility through the prior.
func FromVector(v []float64) Params {
	return Params{
		H0Offset: v[0],
		MBh:      math.Pow(10, v[1]),
		TFall:    v[2],
	}
}
