package app

import (
	"math"
	"testing"

	"lvilc/adapters/tabular"
	"lvilc/domain/cosmo"
	"lvilc/domain/probe"
)

func modelService() *ModelService {
	return NewModelService(cosmo.LVILC{}, tabular.NewAutoReader(), nil, quietLogger())
}

func TestPredict_GridShape(t *testing.T) {
	p := cosmo.Params{H0Offset: -6.7, MBh: 1e23, TFall: 13.8}
	pred, err := modelService().Predict(p, probe.Supernova, 0.01, 2.0, 25)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(pred.Redshifts) != 25 || len(pred.Values) != 25 {
		t.Fatalf("grid lengths %d/%d, want 25/25", len(pred.Redshifts), len(pred.Values))
	}
	if pred.Redshifts[0] != 0.01 || pred.Redshifts[24] != 2.0 {
		t.Errorf("grid edges %v..%v, want 0.01..2", pred.Redshifts[0], pred.Redshifts[24])
	}
	for i := 1; i < len(pred.Values); i++ {
		if pred.Values[i] <= pred.Values[i-1] {
			t.Errorf("distance modulus not increasing at grid point %d", i)
		}
	}
}

func TestPredict_RejectsBadGrid(t *testing.T) {
	p := cosmo.Params{H0Offset: -6.7, MBh: 1e23, TFall: 13.8}
	svc := modelService()
	if _, err := svc.Predict(p, probe.Supernova, 0.01, 2.0, 1); err == nil {
		t.Error("accepted a single-point grid")
	}
	if _, err := svc.Predict(p, probe.Supernova, 2.0, 0.01, 10); err == nil {
		t.Error("accepted an inverted grid")
	}
	if _, err := svc.Predict(p, probe.Supernova, 0, 2.0, 10); err == nil {
		t.Error("accepted a zero lower edge")
	}
}

func TestCompare_DeltaIsModelMinusReference(t *testing.T) {
	p := cosmo.Params{H0Offset: -6.7, MBh: 1e23, TFall: 13.8}
	cmp, err := modelService().Compare(p, 0.1, 1.0, 10, "")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	for i := range cmp.Delta {
		want := cmp.Model[i] - cmp.Reference[i]
		if math.Abs(cmp.Delta[i]-want) > 1e-12 {
			t.Errorf("delta[%d] = %v, want %v", i, cmp.Delta[i], want)
		}
	}
	if cmp.PlotPath != "" {
		t.Errorf("plot path %q set without an output directory", cmp.PlotPath)
	}
}

func TestSensitivity_BuiltInTable(t *testing.T) {
	p := cosmo.Params{H0Offset: -6.7, MBh: 1e23, TFall: 13.8}
	results, err := modelService().Sensitivity(p, "", probe.Kinds(), 0.001)
	if err != nil {
		t.Fatalf("Sensitivity: %v", err)
	}
	if len(results) != cosmo.NDim {
		t.Fatalf("got %d results, want %d", len(results), cosmo.NDim)
	}
	for _, r := range results {
		if r.Step <= 0 {
			t.Errorf("%s: step %v, want > 0", r.Name, r.Step)
		}
		if math.IsNaN(r.Derivative) || math.IsInf(r.Derivative, 0) {
			t.Errorf("%s: non-finite derivative %v", r.Name, r.Derivative)
		}
		if r.ChiSquare < 0 {
			t.Errorf("%s: negative chi-square %v", r.Name, r.ChiSquare)
		}
	}
}

func TestSensitivity_RejectsBadStep(t *testing.T) {
	p := cosmo.Params{H0Offset: -6.7, MBh: 1e23, TFall: 13.8}
	if _, err := modelService().Sensitivity(p, "", probe.Kinds(), 0); err == nil {
		t.Error("accepted a zero step")
	}
	if _, err := modelService().Sensitivity(p, "", probe.Kinds(), -0.1); err == nil {
		t.Error("accepted a negative step")
	}
}
