// Package analysis consumes the trimmed posterior sample set and produces
// credible intervals and goodness-of-fit statistics. It has no feedback
// into sampling.
package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	gstat "gonum.org/v1/gonum/stat"

	"lvilc/domain/chain"
)

// ParameterSummary is the per-parameter posterior report: the median with
// a 68% (16th-84th percentile) credible interval.
type ParameterSummary struct {
	Name   string  `json:"name"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	P16    float64 `json:"p16"`
	P84    float64 `json:"p84"`
}

func (s ParameterSummary) String() string {
	return fmt.Sprintf("%s: %.3e +%.3e -%.3e (median +84th -16th)",
		s.Name, s.Median, s.P84-s.Median, s.Median-s.P16)
}

// Summarize computes the posterior summary of one parameter's flattened
// samples.
func Summarize(name string, samples []float64) (ParameterSummary, error) {
	if len(samples) == 0 {
		return ParameterSummary{}, fmt.Errorf("no samples for %s", name)
	}
	median, err := stats.Median(samples)
	if err != nil {
		return ParameterSummary{}, err
	}
	mean, _ := stats.Mean(samples)
	std, _ := stats.StandardDeviation(samples)
	p16, err := stats.Percentile(samples, 16)
	if err != nil {
		return ParameterSummary{}, err
	}
	p84, err := stats.Percentile(samples, 84)
	if err != nil {
		return ParameterSummary{}, err
	}
	return ParameterSummary{Name: name, Median: median, Mean: mean, Std: std, P16: p16, P84: p84}, nil
}

// PosteriorMedians returns the per-coordinate medians of the sample set, in
// sampling space.
func PosteriorMedians(set *chain.SampleSet) ([]float64, error) {
	out := make([]float64, set.Dim)
	for d := 0; d < set.Dim; d++ {
		m, err := stats.Median(set.FlatParam(d))
		if err != nil {
			return nil, err
		}
		out[d] = m
	}
	return out, nil
}

// Covariance estimates the posterior covariance matrix over the sampling
// coordinates from the flattened sample set.
func Covariance(set *chain.SampleSet) *mat.SymDense {
	flat := set.Flat()
	data := mat.NewDense(len(flat), set.Dim, nil)
	for i, row := range flat {
		data.SetRow(i, row)
	}
	cov := mat.NewSymDense(set.Dim, nil)
	gstat.CovarianceMatrix(cov, data, nil)
	return cov
}

// TransformSamples applies f to every sample; used to map log10-mass
// samples back to physical masses before summarizing.
func TransformSamples(samples []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = f(v)
	}
	return out
}

// Pow10 maps a log10 sample to the physical scale.
func Pow10(x float64) float64 { return math.Pow(10, x) }
