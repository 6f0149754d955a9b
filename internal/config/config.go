// Package config holds the fully resolved run configuration. There are no
// ambient globals: every inference session gets its own Config, so multiple
// independent sessions can run in one process.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"lvilc/domain/cosmo"
	"lvilc/domain/probe"
	"lvilc/internal/errors"
)

// Run is the resolved configuration of one sampling run. Validate must pass
// before any model evaluation happens.
type Run struct {
	Walkers int   `json:"walkers"`
	Steps   int   `json:"steps"`
	BurnIn  int   `json:"burn_in"`
	Seed    int64 `json:"seed"`

	// Initial is the starting guess in physical units:
	// (H0_offset km/s/Mpc, M_bh M_sun, t_fall Gyr).
	Initial cosmo.Params `json:"initial"`

	// Probes selects the observation classes entering the likelihood.
	Probes []probe.Kind `json:"probes"`

	// DataPath points at a user-supplied .csv or .xlsx observation table;
	// empty means the built-in sample datasets.
	DataPath string `json:"data_path,omitempty"`

	OutDir   string `json:"out_dir"`
	StoreDSN string `json:"store_dsn"`
	Plots    bool   `json:"plots"`

	// Workers bounds concurrent posterior evaluations per step; 0 means one
	// per CPU.
	Workers     int `json:"workers,omitempty"`
	ReportEvery int `json:"report_every,omitempty"`
}

// DefaultRun returns the study defaults: the fiducial LVILC guess on the
// built-in datasets.
func DefaultRun() Run {
	return Run{
		Walkers:     32,
		Steps:       5000,
		BurnIn:      1000,
		Seed:        42,
		Initial:     cosmo.Params{H0Offset: -6.7, MBh: 1e23, TFall: 13.8},
		Probes:      probe.Kinds(),
		OutDir:      envOrDefault("LVILC_OUT", "./results"),
		StoreDSN:    os.Getenv("LVILC_DB"), // empty: sqlite file inside OutDir
		Plots:       true,
		ReportEvery: 100,
	}
}

// Validate applies the configuration error taxonomy: every violation is
// reported with the offending value before sampling starts.
func (r Run) Validate() error {
	if r.Steps <= 0 {
		return errors.ConfigInvalid("number of steps must be positive, got %d", r.Steps)
	}
	if r.Walkers < 2*cosmo.NDim {
		return errors.ConfigInvalid("need at least %d walkers (2x the %d parameters), got %d",
			2*cosmo.NDim, cosmo.NDim, r.Walkers)
	}
	if r.BurnIn < 0 {
		return errors.ConfigInvalid("burn-in must be >= 0, got %d", r.BurnIn)
	}
	if r.BurnIn >= r.Steps {
		return errors.ConfigInvalid("burn-in %d must be strictly less than the number of steps %d", r.BurnIn, r.Steps)
	}
	for _, v := range []float64{r.Initial.H0Offset, r.Initial.MBh, r.Initial.TFall} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.ConfigInvalid("initial guess must be finite, got %v", r.Initial)
		}
	}
	if r.Initial.MBh <= 0 {
		return errors.ConfigInvalid("initial M_bh must be positive, got %g", r.Initial.MBh)
	}
	if r.Initial.TFall <= 0 {
		return errors.ConfigInvalid("initial t_fall must be positive, got %g", r.Initial.TFall)
	}
	if len(r.Probes) == 0 {
		return errors.ConfigInvalid("at least one probe class must be included")
	}
	seen := map[probe.Kind]bool{}
	for _, k := range r.Probes {
		if _, err := probe.ParseKind(string(k)); err != nil {
			return errors.ConfigInvalid("%v", err)
		}
		if seen[k] {
			return errors.ConfigInvalid("probe %q listed twice", k)
		}
		seen[k] = true
	}
	if r.Workers < 0 {
		return errors.ConfigInvalid("workers must be >= 0, got %d", r.Workers)
	}
	if r.OutDir == "" {
		return errors.ConfigInvalid("output directory must not be empty")
	}
	return nil
}

// ParseInitial parses a comma-separated "H0,M_bh,t_fall" flag value.
func ParseInitial(s string) (cosmo.Params, error) {
	parts := strings.Split(s, ",")
	if len(parts) != cosmo.NDim {
		return cosmo.Params{}, errors.ConfigInvalid("initial guess needs %d comma-separated values, got %q", cosmo.NDim, s)
	}
	vals := make([]float64, cosmo.NDim)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return cosmo.Params{}, errors.ConfigInvalid("initial guess component %q is not a number", p)
		}
		vals[i] = v
	}
	return cosmo.Params{H0Offset: vals[0], MBh: vals[1], TFall: vals[2]}, nil
}

// ParseProbes parses a comma-separated probe list flag value.
func ParseProbes(s string) ([]probe.Kind, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.ConfigInvalid("probe list must not be empty")
	}
	var kinds []probe.Kind
	for _, part := range strings.Split(s, ",") {
		k, err := probe.ParseKind(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.ConfigInvalid("%v", err)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// ChainDSN resolves the chain-store DSN: an explicit DSN wins, otherwise a
// sqlite file inside the output directory.
func (r Run) ChainDSN() string {
	if r.StoreDSN != "" {
		return r.StoreDSN
	}
	return fmt.Sprintf("file:%s/chains.db", strings.TrimRight(r.OutDir, "/"))
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
