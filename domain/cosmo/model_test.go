package cosmo

import (
	"errors"
	"math"
	"testing"

	"lvilc/domain/probe"
)

func fiducial() Params {
	return Params{H0Offset: -6.7, MBh: 1e23, TFall: 13.8}
}

func TestNew_RejectsUnphysicalParams(t *testing.T) {
	cases := []struct {
		name string
		p    Params
	}{
		{"zero mass", Params{H0Offset: 0, MBh: 0, TFall: 13.8}},
		{"negative mass", Params{H0Offset: 0, MBh: -1e23, TFall: 13.8}},
		{"zero fall time", Params{H0Offset: 0, MBh: 1e23, TFall: 0}},
		{"negative fall time", Params{H0Offset: 0, MBh: 1e23, TFall: -5}},
		{"NaN offset", Params{H0Offset: math.NaN(), MBh: 1e23, TFall: 13.8}},
		{"contracting today", Params{H0Offset: -1e6, MBh: 1e23, TFall: 13.8}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.p); !errors.Is(err, ErrUnphysical) {
				t.Errorf("New(%+v) error = %v, want ErrUnphysical", tc.p, err)
			}
		})
	}
}

func TestHubbleParameter_PositiveAndIncreasing(t *testing.T) {
	m, err := New(fiducial())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	prev := m.HubbleParameter(0)
	if prev <= 0 {
		t.Fatalf("H(0) = %v, want > 0", prev)
	}
	for _, z := range []float64{0.1, 0.5, 1, 2, 10, 1089.8} {
		h := m.HubbleParameter(z)
		if h <= prev {
			t.Errorf("H(%v) = %v not greater than H at lower redshift %v", z, h, prev)
		}
		prev = h
	}
}

func TestComovingDistance_MonotoneInRedshift(t *testing.T) {
	m, err := New(fiducial())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var prev float64
	for _, z := range []float64{0.01, 0.1, 0.5, 1, 2} {
		d, err := m.ComovingDistance(z)
		if err != nil {
			t.Fatalf("ComovingDistance(%v): %v", z, err)
		}
		if d <= prev {
			t.Errorf("D_C(%v) = %v not greater than %v", z, d, prev)
		}
		prev = d
	}
}

func TestComovingDistance_ZeroAtZeroRedshift(t *testing.T) {
	m, err := New(fiducial())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d, err := m.ComovingDistance(0)
	if err != nil {
		t.Fatalf("ComovingDistance(0): %v", err)
	}
	if math.Abs(d) > 1e-9 {
		t.Errorf("D_C(0) = %v, want 0", d)
	}
}

func TestLuminosityDistance_DilationFactor(t *testing.T) {
	m, err := New(fiducial())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	z := 1.0
	dc, err := m.ComovingDistance(z)
	if err != nil {
		t.Fatalf("ComovingDistance: %v", err)
	}
	dl, err := m.LuminosityDistance(z)
	if err != nil {
		t.Fatalf("LuminosityDistance: %v", err)
	}
	want := (1 + z) * dc
	if math.Abs(dl-want) > 1e-9*want {
		t.Errorf("D_L(1) = %v, want (1+z)*D_C = %v", dl, want)
	}
	da, err := m.AngularDiameterDistance(z)
	if err != nil {
		t.Fatalf("AngularDiameterDistance: %v", err)
	}
	want = dc / (1 + z)
	if math.Abs(da-want) > 1e-9*want {
		t.Errorf("D_A(1) = %v, want D_C/(1+z) = %v", da, want)
	}
}

func TestDistanceModulus_PlausibleRange(t *testing.T) {
	m, err := New(fiducial())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mu, err := m.DistanceModulus(0.1)
	if err != nil {
		t.Fatalf("DistanceModulus: %v", err)
	}
	// Any viable expansion history puts a z=0.1 source tens of magnitudes out.
	if mu < 30 || mu > 45 {
		t.Errorf("mu(0.1) = %v, outside plausible [30, 45]", mu)
	}
}

func TestPredict_DispatchesByProbeKind(t *testing.T) {
	m, err := New(fiducial())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	zs := []float64{0.2, 0.5}

	mus, err := m.Predict(zs, probe.Supernova)
	if err != nil {
		t.Fatalf("Predict supernova: %v", err)
	}
	mu, err := m.DistanceModulus(0.2)
	if err != nil {
		t.Fatalf("DistanceModulus: %v", err)
	}
	if mus[0] != mu {
		t.Errorf("supernova prediction %v != distance modulus %v", mus[0], mu)
	}

	dvs, err := m.Predict(zs, probe.BAO)
	if err != nil {
		t.Fatalf("Predict bao: %v", err)
	}
	dv, err := m.DilationVolumeDistance(0.2)
	if err != nil {
		t.Fatalf("DilationVolumeDistance: %v", err)
	}
	want := dv / SoundHorizonMpc
	if math.Abs(dvs[0]-want) > 1e-12*want {
		t.Errorf("bao prediction %v, want D_V/r_d = %v", dvs[0], want)
	}

	thetas, err := m.Predict([]float64{RecombinationRedshift}, probe.CMB)
	if err != nil {
		t.Fatalf("Predict cmb: %v", err)
	}
	if thetas[0] <= 0 {
		t.Errorf("cmb prediction %v, want > 0", thetas[0])
	}
}

func TestLVILC_ValidDomain(t *testing.T) {
	var family LVILC
	if err := family.ValidDomain(fiducial()); err != nil {
		t.Errorf("ValidDomain(fiducial) = %v, want nil", err)
	}
	bad := Params{H0Offset: -1e6, MBh: 1e23, TFall: 13.8}
	if err := family.ValidDomain(bad); !errors.Is(err, ErrUnphysical) {
		t.Errorf("ValidDomain(contracting) = %v, want ErrUnphysical", err)
	}
}

func TestParams_VectorRoundTrip(t *testing.T) {
	p := fiducial()
	got := FromVector(p.Vector())
	if math.Abs(got.H0Offset-p.H0Offset) > 1e-12 {
		t.Errorf("H0Offset round trip: %v -> %v", p.H0Offset, got.H0Offset)
	}
	if math.Abs(got.MBh/p.MBh-1) > 1e-12 {
		t.Errorf("MBh round trip: %v -> %v", p.MBh, got.MBh)
	}
	if math.Abs(got.TFall-p.TFall) > 1e-12 {
		t.Errorf("TFall round trip: %v -> %v", p.TFall, got.TFall)
	}
	if p.Vector()[1] != math.Log10(p.MBh) {
		t.Errorf("vector mass coordinate %v, want log10(M_bh) = %v", p.Vector()[1], math.Log10(p.MBh))
	}
}
