package app

import (
	"math"

	"lvilc/domain/cosmo"
	"lvilc/domain/inference"
	"lvilc/domain/probe"
	"lvilc/internal"
	"lvilc/internal/errors"
	"lvilc/ports"
)

// ModelService exposes model predictions directly, without sampling:
// prediction grids, comparison against a fiducial reference expansion, and
// parameter sensitivity of the fit.
type ModelService struct {
	model   ports.ExpansionModel
	reader  ports.TableReader
	plotter ports.Plotter
	logger  *internal.Logger
}

func NewModelService(model ports.ExpansionModel, reader ports.TableReader, plotter ports.Plotter, logger *internal.Logger) *ModelService {
	return &ModelService{model: model, reader: reader, plotter: plotter, logger: logger}
}

// Prediction is one model evaluation on a redshift grid.
type Prediction struct {
	Kind      probe.Kind `json:"probe"`
	Redshifts []float64  `json:"z"`
	Values    []float64  `json:"values"`
}

// Predict evaluates the model observable for one probe class on a uniform
// redshift grid.
func (s *ModelService) Predict(p cosmo.Params, kind probe.Kind, zMin, zMax float64, n int) (*Prediction, error) {
	zs, err := grid(zMin, zMax, n)
	if err != nil {
		return nil, err
	}
	values, err := s.model.Predict(p, zs, kind)
	if err != nil {
		return nil, err
	}
	return &Prediction{Kind: kind, Redshifts: zs, Values: values}, nil
}

// Comparison holds distance moduli of the model and a flat matter-free
// reference expansion on a shared grid.
type Comparison struct {
	Redshifts []float64 `json:"z"`
	Model     []float64 `json:"model_mu"`
	Reference []float64 `json:"reference_mu"`
	Delta     []float64 `json:"delta_mu"`
	PlotPath  string    `json:"plot,omitempty"`
}

// Compare evaluates model and reference distance moduli on a grid and,
// when outDir is non-empty, renders the comparison plot.
func (s *ModelService) Compare(p cosmo.Params, zMin, zMax float64, n int, outDir string) (*Comparison, error) {
	zs, err := grid(zMin, zMax, n)
	if err != nil {
		return nil, err
	}
	model, err := s.model.Predict(p, zs, probe.Supernova)
	if err != nil {
		return nil, err
	}
	reference := make([]float64, len(zs))
	for i, z := range zs {
		reference[i] = referenceDistanceModulus(z)
	}
	delta := make([]float64, len(zs))
	for i := range zs {
		delta[i] = model[i] - reference[i]
	}
	cmp := &Comparison{Redshifts: zs, Model: model, Reference: reference, Delta: delta}

	if outDir != "" && s.plotter != nil {
		path, err := s.plotter.ComparisonPlot(zs, model, reference, "LVILC", "reference", outDir)
		if err != nil {
			return nil, err
		}
		cmp.PlotPath = path
	}
	return cmp, nil
}

// SensitivityResult reports the local response of the fit to each sampled
// parameter near a reference point.
type SensitivityResult struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Step       float64 `json:"step"`
	ChiSquare  float64 `json:"chi_square"`
	Derivative float64 `json:"d_chi_square"` // central difference in sampling space
}

// Sensitivity computes central-difference derivatives of chi-square with
// respect to each sampling-space coordinate at p, using the given table
// path (or the built-in samples when empty). relStep scales each
// coordinate's finite-difference step.
func (s *ModelService) Sensitivity(p cosmo.Params, dataPath string, probes []probe.Kind, relStep float64) ([]SensitivityResult, error) {
	if relStep <= 0 || !isFinite(relStep) {
		return nil, errors.InvalidInput("sensitivity step must be positive and finite")
	}
	table := probe.SampleTable()
	if dataPath != "" {
		var err error
		table, err = s.reader.Read(dataPath)
		if err != nil {
			return nil, err
		}
	}
	table = table.Restrict(probes)
	like := inference.NewLikelihood(s.model, table)

	base := p.Vector()
	chi0, err := like.ChiSquare(p)
	if err != nil {
		return nil, errors.Wrap(err, "chi-square at reference point")
	}

	out := make([]SensitivityResult, cosmo.NDim)
	for i := 0; i < cosmo.NDim; i++ {
		step := relStep * math.Max(math.Abs(base[i]), 1)
		lo, hi := clone(base), clone(base)
		lo[i] -= step
		hi[i] += step
		chiLo, errLo := like.ChiSquare(cosmo.FromVector(lo))
		chiHi, errHi := like.ChiSquare(cosmo.FromVector(hi))
		if errLo != nil || errHi != nil {
			return nil, errors.InvalidInput("sensitivity step left the model's valid domain for " + cosmo.VectorNames[i])
		}
		out[i] = SensitivityResult{
			Name:       cosmo.VectorNames[i],
			Value:      base[i],
			Step:       step,
			ChiSquare:  chi0,
			Derivative: (chiHi - chiLo) / (2 * step),
		}
	}
	return out, nil
}

// referenceDistanceModulus is the low-order flat expansion
// d_L = (c/H0) z (1 + z/2) with H0 = 100 km/s/Mpc, kept deliberately
// simple so the comparison isolates the model's late-time shape.
func referenceDistanceModulus(z float64) float64 {
	const hubbleDistanceMpc = cosmo.SpeedOfLightKmS / 100.0
	dl := hubbleDistanceMpc * z * (1 + z/2)
	return 5*math.Log10(dl) + 25
}

func grid(zMin, zMax float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, errors.InvalidInput("grid needs at least 2 points")
	}
	if !(zMin > 0) || !(zMax > zMin) || !isFinite(zMax) {
		return nil, errors.InvalidInput("grid requires 0 < zMin < zMax, both finite")
	}
	zs := make([]float64, n)
	step := (zMax - zMin) / float64(n-1)
	for i := range zs {
		zs[i] = zMin + float64(i)*step
	}
	zs[n-1] = zMax
	return zs, nil
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
