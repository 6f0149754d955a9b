// Package chain holds the raw MCMC chain state and its derived posterior
// sample set. The chain is owned exclusively by the sampler while stepping
// and read-only to diagnostics and analysis afterwards.
package chain

import "fmt"

// Chain is the full step x walker x parameter history of an ensemble run,
// together with each walker's log-posterior at every step and the count of
// accepted moves per walker.
type Chain struct {
	Steps   int
	Walkers int
	Dim     int

	// Positions is indexed [step][walker][dim].
	Positions [][][]float64
	// LogProb is indexed [step][walker].
	LogProb [][]float64
	// Accepted counts accepted moves per walker over all steps.
	Accepted []int
}

// New preallocates a chain for the given run shape.
func New(steps, walkers, dim int) (*Chain, error) {
	if steps <= 0 || walkers <= 0 || dim <= 0 {
		return nil, fmt.Errorf("chain shape must be positive, got (%d, %d, %d)", steps, walkers, dim)
	}
	c := &Chain{
		Steps:     steps,
		Walkers:   walkers,
		Dim:       dim,
		Positions: make([][][]float64, steps),
		LogProb:   make([][]float64, steps),
		Accepted:  make([]int, walkers),
	}
	for s := 0; s < steps; s++ {
		c.Positions[s] = make([][]float64, walkers)
		c.LogProb[s] = make([]float64, walkers)
		for w := 0; w < walkers; w++ {
			c.Positions[s][w] = make([]float64, dim)
		}
	}
	return c, nil
}

// Record stores a walker's position and log-posterior at one step.
func (c *Chain) Record(step, walker int, pos []float64, logProb float64) {
	copy(c.Positions[step][walker], pos)
	c.LogProb[step][walker] = logProb
}

// Truncate shortens the chain to the first n completed steps. Used when a
// run is cancelled between steps so partial results stay usable.
func (c *Chain) Truncate(n int) {
	if n < 0 || n >= c.Steps {
		return
	}
	c.Steps = n
	c.Positions = c.Positions[:n]
	c.LogProb = c.LogProb[:n]
}

// ParamSeries returns the ensemble-mean trajectory of one parameter, one
// value per step. Diagnostics estimate autocorrelation time from it.
func (c *Chain) ParamSeries(dim int) []float64 {
	out := make([]float64, c.Steps)
	for s := 0; s < c.Steps; s++ {
		sum := 0.0
		for w := 0; w < c.Walkers; w++ {
			sum += c.Positions[s][w][dim]
		}
		out[s] = sum / float64(c.Walkers)
	}
	return out
}

// WalkerSeries returns one walker's trajectory for one parameter.
func (c *Chain) WalkerSeries(walker, dim int) []float64 {
	out := make([]float64, c.Steps)
	for s := 0; s < c.Steps; s++ {
		out[s] = c.Positions[s][walker][dim]
	}
	return out
}

// AcceptanceFractions returns each walker's fraction of accepted moves.
func (c *Chain) AcceptanceFractions() []float64 {
	out := make([]float64, c.Walkers)
	if c.Steps == 0 {
		return out
	}
	for w, n := range c.Accepted {
		out[w] = float64(n) / float64(c.Steps)
	}
	return out
}

// Trim discards the first burnIn steps of every walker and returns the
// posterior sample set. burnIn must be in [0, Steps).
func (c *Chain) Trim(burnIn int) (*SampleSet, error) {
	if burnIn < 0 {
		return nil, fmt.Errorf("burn-in must be >= 0, got %d", burnIn)
	}
	if burnIn >= c.Steps {
		return nil, fmt.Errorf("burn-in %d must be strictly less than chain length %d", burnIn, c.Steps)
	}
	return &SampleSet{
		Steps:     c.Steps - burnIn,
		Walkers:   c.Walkers,
		Dim:       c.Dim,
		Positions: c.Positions[burnIn:],
		LogProb:   c.LogProb[burnIn:],
	}, nil
}

// SampleSet is the burn-in-trimmed view of a chain. It aliases the chain's
// storage and is never mutated after creation.
type SampleSet struct {
	Steps   int
	Walkers int
	Dim     int

	Positions [][][]float64
	LogProb   [][]float64
}

// Len is the number of retained samples across all walkers.
func (s *SampleSet) Len() int { return s.Steps * s.Walkers }

// FlatParam flattens one parameter's samples across steps and walkers.
func (s *SampleSet) FlatParam(dim int) []float64 {
	out := make([]float64, 0, s.Len())
	for step := 0; step < s.Steps; step++ {
		for w := 0; w < s.Walkers; w++ {
			out = append(out, s.Positions[step][w][dim])
		}
	}
	return out
}

// Flat returns all samples as a Len() x Dim matrix in row-major order,
// suitable for covariance estimation and corner plots.
func (s *SampleSet) Flat() [][]float64 {
	out := make([][]float64, 0, s.Len())
	for step := 0; step < s.Steps; step++ {
		for w := 0; w < s.Walkers; w++ {
			row := make([]float64, s.Dim)
			copy(row, s.Positions[step][w])
			out = append(out, row)
		}
	}
	return out
}
