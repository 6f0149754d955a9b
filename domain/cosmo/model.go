package cosmo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"lvilc/domain/probe"
)

// Quadrature orders for the comoving-distance integral. The integrand
// c/H(z) is smooth and monotone, so fixed-order Gauss-Legendre converges to
// better than 1e-10 relative error at these orders.
const (
	quadOrderNear = 64  // z <= 10
	quadOrderFar  = 256 // recombination-scale integrals
)

// Model evaluates the LVILC expansion history at a fixed parameter vector.
// It is a pure function of (parameters, redshift); no state is mutated
// after construction.
//
// The expansion rate combines a matter-like infall term set by t_fall with
// a horizon dilation factor set by the Schwarzschild radius of the collapse
// mass M_bh, shifted by the constant offset H0_offset:
//
//	H(z) = H0_offset + (2/(3 t_fall)) (1+z)^{3/2} sqrt(1 + (r_s/(c t_fall))(1+z))
type Model struct {
	p Params

	// precomputed at construction
	rateScale float64 // (2/(3 t_fall)) in km/s/Mpc
	dilation  float64 // r_s / (c * t_fall), dimensionless
}

// New builds a model, rejecting vectors outside the physical domain:
// non-positive M_bh or t_fall, and histories that are not expanding today.
// Bound checks beyond that belong to the prior, which should reject such
// vectors before the model is asked.
func New(p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rs := SchwarzschildRadiusSunMpc * p.MBh
	m := &Model{
		p:         p,
		rateScale: 2.0 / (3.0 * p.TFall) * KmSMpcPerInvGyr,
		dilation:  rs / (SpeedOfLightMpcGyr * p.TFall),
	}
	if err := m.CheckExpansion(); err != nil {
		return nil, err
	}
	return m, nil
}

// Params returns the parameter vector the model was built with.
func (m *Model) Params() Params { return m.p }

// HubbleParameter returns H(z) in km/s/Mpc.
func (m *Model) HubbleParameter(z float64) float64 {
	a := 1 + z
	return m.p.H0Offset + m.rateScale*a*math.Sqrt(a)*math.Sqrt(1+m.dilation*a)
}

// CheckExpansion verifies the expansion rate is positive over the full
// integration range. H(z) is strictly increasing in z, so positivity at
// z=0 is sufficient.
func (m *Model) CheckExpansion() error {
	if h0 := m.HubbleParameter(0); !(h0 > 0) {
		return fmt.Errorf("%w: H(0) = %.4g km/s/Mpc is not positive", ErrUnphysical, h0)
	}
	return nil
}

// ComovingDistance integrates c/H from 0 to z, in Mpc.
func (m *Model) ComovingDistance(z float64) (float64, error) {
	if math.IsNaN(z) || z < 0 {
		return 0, fmt.Errorf("%w: redshift must be >= 0, got %v", ErrUnphysical, z)
	}
	if z == 0 {
		return 0, nil
	}
	order := quadOrderNear
	if z > 10 {
		order = quadOrderFar
	}
	d := quad.Fixed(func(zp float64) float64 {
		return SpeedOfLightKmS / m.HubbleParameter(zp)
	}, 0, z, order, nil, 0)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("%w: comoving distance diverged at z=%g", ErrUnphysical, z)
	}
	return d, nil
}

// LuminosityDistance returns D_L(z) = (1+z) D_C(z) in Mpc.
func (m *Model) LuminosityDistance(z float64) (float64, error) {
	dc, err := m.ComovingDistance(z)
	if err != nil {
		return 0, err
	}
	return (1 + z) * dc, nil
}

// AngularDiameterDistance returns D_A(z) = D_C(z)/(1+z) in Mpc.
func (m *Model) AngularDiameterDistance(z float64) (float64, error) {
	dc, err := m.ComovingDistance(z)
	if err != nil {
		return 0, err
	}
	return dc / (1 + z), nil
}

// DistanceModulus returns mu(z) = 5 log10(D_L/Mpc) + 25.
func (m *Model) DistanceModulus(z float64) (float64, error) {
	dl, err := m.LuminosityDistance(z)
	if err != nil {
		return 0, err
	}
	if !(dl > 0) {
		return 0, fmt.Errorf("%w: distance modulus undefined at D_L=%g Mpc (z=%g)", ErrUnphysical, dl, z)
	}
	return 5*math.Log10(dl) + 25, nil
}

// DilationVolumeDistance returns the BAO dilation scale
// D_V(z) = (D_C^2 * c z / H(z))^{1/3} in Mpc.
func (m *Model) DilationVolumeDistance(z float64) (float64, error) {
	dc, err := m.ComovingDistance(z)
	if err != nil {
		return 0, err
	}
	dv := math.Cbrt(dc * dc * SpeedOfLightKmS * z / m.HubbleParameter(z))
	if !(dv > 0) {
		return 0, fmt.Errorf("%w: D_V undefined at z=%g", ErrUnphysical, z)
	}
	return dv, nil
}

// Predict computes the observable for one probe class at each redshift:
// distance modulus for supernovae, D_V/r_d for BAO and 100*r_d/D_C for the
// CMB distance prior. Any domain failure aborts with an ErrUnphysical
// wrapped error; NaN is never returned silently.
func (m *Model) Predict(zs []float64, kind probe.Kind) ([]float64, error) {
	out := make([]float64, len(zs))
	for i, z := range zs {
		var v float64
		var err error
		switch kind {
		case probe.Supernova:
			v, err = m.DistanceModulus(z)
		case probe.BAO:
			var dv float64
			dv, err = m.DilationVolumeDistance(z)
			v = dv / SoundHorizonMpc
		case probe.CMB:
			var dc float64
			dc, err = m.ComovingDistance(z)
			if err == nil && !(dc > 0) {
				err = fmt.Errorf("%w: CMB angular scale undefined at z=%g", ErrUnphysical, z)
			}
			v = 100 * SoundHorizonMpc / dc
		default:
			return nil, fmt.Errorf("unknown probe kind %q", kind)
		}
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// LVILC is the stateless model family: the capability set
// {Predict, ValidDomain} over explicit parameter vectors, so the sampler
// never touches model internals and alternative expansion histories can be
// substituted.
type LVILC struct{}

// Predict evaluates the model family at the given parameters.
func (LVILC) Predict(p Params, zs []float64, kind probe.Kind) ([]float64, error) {
	m, err := New(p)
	if err != nil {
		return nil, err
	}
	return m.Predict(zs, kind)
}

// ValidDomain reports whether the model can be evaluated at p.
func (LVILC) ValidDomain(p Params) error {
	_, err := New(p)
	return err
}
