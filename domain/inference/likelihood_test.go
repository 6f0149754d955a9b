package inference

import (
	"fmt"
	"math"
	"testing"

	"lvilc/domain/cosmo"
	"lvilc/domain/probe"
)

// stubModel predicts a fixed value per probe class and counts calls, so
// tests can assert when the likelihood is (not) evaluated.
type stubModel struct {
	value float64
	err   error
	calls int
}

func (m *stubModel) Predict(p cosmo.Params, zs []float64, kind probe.Kind) ([]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]float64, len(zs))
	for i := range out {
		out[i] = m.value
	}
	return out, nil
}

func (m *stubModel) ValidDomain(p cosmo.Params) error { return nil }

func singleRecordTable(t *testing.T, value, sigma float64) probe.Table {
	t.Helper()
	table, err := probe.NewTable(map[probe.Kind]probe.Series{
		probe.Supernova: {{Z: 0.5, Value: value, Sigma: sigma}},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func TestChiSquare_SingleTerm(t *testing.T) {
	// Observed 40 +/- 2, predicted 44: ((44-40)/2)^2 = 4.
	table := singleRecordTable(t, 40, 2)
	like := NewLikelihood(&stubModel{value: 44}, table)
	chi2, err := like.ChiSquare(cosmo.Params{H0Offset: 0, MBh: 1e23, TFall: 13.8})
	if err != nil {
		t.Fatalf("ChiSquare: %v", err)
	}
	if math.Abs(chi2-4) > 1e-12 {
		t.Errorf("chi-square = %v, want 4", chi2)
	}
}

func TestChiSquare_UsesTotalSigma(t *testing.T) {
	table, err := probe.NewTable(map[probe.Kind]probe.Series{
		probe.Supernova: {{Z: 0.5, Value: 40, Sigma: 3, Syst: 4}},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	like := NewLikelihood(&stubModel{value: 45}, table)
	chi2, err := like.ChiSquare(cosmo.Params{MBh: 1e23, TFall: 13.8})
	if err != nil {
		t.Fatalf("ChiSquare: %v", err)
	}
	// ((45-40)/5)^2 with sigma_total = sqrt(9+16) = 5.
	if math.Abs(chi2-1) > 1e-12 {
		t.Errorf("chi-square = %v, want 1", chi2)
	}
}

func TestLogLikelihood_EmptyTableIsZero(t *testing.T) {
	like := NewLikelihood(&stubModel{value: 1}, probe.Table{})
	if got := like.LogLikelihood(cosmo.Params{MBh: 1e23, TFall: 13.8}); got != 0 {
		t.Errorf("LogLikelihood(empty table) = %v, want exactly 0", got)
	}
}

func TestLogLikelihood_AbsorbsDomainErrors(t *testing.T) {
	table := singleRecordTable(t, 40, 2)
	like := NewLikelihood(&stubModel{err: fmt.Errorf("outside domain: %w", cosmo.ErrUnphysical)}, table)
	if got := like.LogLikelihood(cosmo.Params{MBh: 1e23, TFall: 13.8}); !math.IsInf(got, -1) {
		t.Errorf("LogLikelihood(domain error) = %v, want -Inf", got)
	}
}

func TestChiSquare_RejectsNonFinitePredictions(t *testing.T) {
	table := singleRecordTable(t, 40, 2)
	like := NewLikelihood(&stubModel{value: math.Inf(1)}, table)
	if _, err := like.ChiSquare(cosmo.Params{MBh: 1e23, TFall: 13.8}); err == nil {
		t.Error("ChiSquare accepted a non-finite prediction")
	}
}

func TestLogLikelihood_PeaksAtTruth(t *testing.T) {
	// Generate exact synthetic observations from the model at truth; the
	// log-likelihood must then be maximal (chi-square zero) at truth and
	// strictly worse anywhere else.
	truth := cosmo.Params{H0Offset: -6.7, MBh: 1e23, TFall: 13.8}
	var family cosmo.LVILC
	zs := []float64{0.1, 0.3, 0.5, 1.0, 1.5}
	mus, err := family.Predict(truth, zs, probe.Supernova)
	if err != nil {
		t.Fatalf("Predict at truth: %v", err)
	}
	series := make(probe.Series, len(zs))
	for i := range zs {
		series[i] = probe.Record{Z: zs[i], Value: mus[i], Sigma: 0.1}
	}
	table, err := probe.NewTable(map[probe.Kind]probe.Series{probe.Supernova: series})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	like := NewLikelihood(family, table)

	atTruth := like.LogLikelihood(truth)
	if math.Abs(atTruth) > 1e-9 {
		t.Errorf("LogLikelihood(truth) = %v, want 0", atTruth)
	}
	perturbed := truth
	perturbed.TFall += 1
	if got := like.LogLikelihood(perturbed); got >= atTruth {
		t.Errorf("LogLikelihood(perturbed) = %v, want < %v", got, atTruth)
	}
}

func TestDegreesOfFreedom(t *testing.T) {
	table := singleRecordTable(t, 40, 2)
	like := NewLikelihood(&stubModel{value: 40}, table)
	if got := like.DegreesOfFreedom(); got != 1-cosmo.NDim {
		t.Errorf("DegreesOfFreedom = %d, want %d", got, 1-cosmo.NDim)
	}
}
