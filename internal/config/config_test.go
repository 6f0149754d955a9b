package config

import (
	"math"
	"testing"

	"lvilc/domain/cosmo"
	"lvilc/domain/probe"
	"lvilc/internal/errors"
)

func TestDefaultRun_Valid(t *testing.T) {
	if err := DefaultRun().Validate(); err != nil {
		t.Errorf("DefaultRun failed validation: %v", err)
	}
}

func TestValidate_Taxonomy(t *testing.T) {
	mutate := func(f func(*Run)) Run {
		r := DefaultRun()
		f(&r)
		return r
	}
	cases := []struct {
		name string
		cfg  Run
	}{
		{"zero steps", mutate(func(r *Run) { r.Steps = 0 })},
		{"negative steps", mutate(func(r *Run) { r.Steps = -10 })},
		{"too few walkers", mutate(func(r *Run) { r.Walkers = 2 })},
		{"one below walker minimum", mutate(func(r *Run) { r.Walkers = 2*cosmo.NDim - 1 })},
		{"negative burn-in", mutate(func(r *Run) { r.BurnIn = -1 })},
		{"burn-in equals steps", mutate(func(r *Run) { r.BurnIn = r.Steps })},
		{"NaN guess", mutate(func(r *Run) { r.Initial.H0Offset = math.NaN() })},
		{"non-positive mass", mutate(func(r *Run) { r.Initial.MBh = 0 })},
		{"non-positive fall time", mutate(func(r *Run) { r.Initial.TFall = -1 })},
		{"no probes", mutate(func(r *Run) { r.Probes = nil })},
		{"unknown probe", mutate(func(r *Run) { r.Probes = []probe.Kind{"quasar"} })},
		{"duplicate probe", mutate(func(r *Run) { r.Probes = []probe.Kind{probe.BAO, probe.BAO} })},
		{"negative workers", mutate(func(r *Run) { r.Workers = -1 })},
		{"empty out dir", mutate(func(r *Run) { r.OutDir = "" })},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted an invalid configuration")
			}
			if code := errors.GetCode(err); code != errors.CodeConfigInvalid {
				t.Errorf("error code = %q, want %q", code, errors.CodeConfigInvalid)
			}
		})
	}
}

func TestParseInitial(t *testing.T) {
	p, err := ParseInitial("-6.7, 1e23, 13.8")
	if err != nil {
		t.Fatalf("ParseInitial: %v", err)
	}
	want := cosmo.Params{H0Offset: -6.7, MBh: 1e23, TFall: 13.8}
	if p != want {
		t.Errorf("ParseInitial = %+v, want %+v", p, want)
	}

	for _, bad := range []string{"", "1,2", "1,2,3,4", "a,b,c"} {
		if _, err := ParseInitial(bad); err == nil {
			t.Errorf("ParseInitial(%q) accepted", bad)
		}
	}
}

func TestParseProbes(t *testing.T) {
	kinds, err := ParseProbes("supernova, bao")
	if err != nil {
		t.Fatalf("ParseProbes: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != probe.Supernova || kinds[1] != probe.BAO {
		t.Errorf("ParseProbes = %v, want [supernova bao]", kinds)
	}
	for _, bad := range []string{"", "  ", "supernova,quasar"} {
		if _, err := ParseProbes(bad); err == nil {
			t.Errorf("ParseProbes(%q) accepted", bad)
		}
	}
}

func TestChainDSN(t *testing.T) {
	r := DefaultRun()
	r.StoreDSN = "postgres://localhost/chains"
	if got := r.ChainDSN(); got != "postgres://localhost/chains" {
		t.Errorf("explicit DSN not honored: %q", got)
	}
	r.StoreDSN = ""
	r.OutDir = "/tmp/out/"
	if got := r.ChainDSN(); got != "file:/tmp/out/chains.db" {
		t.Errorf("derived DSN = %q, want file:/tmp/out/chains.db", got)
	}
}
