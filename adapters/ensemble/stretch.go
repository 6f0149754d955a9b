// Package ensemble implements the affine-invariant stretch-move sampler
// (Goodman & Weare 2010) behind the ports.PosteriorSampler interface.
package ensemble

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"lvilc/domain/chain"
	"lvilc/ports"
)

// Sampler drives an ensemble of walkers with stretch moves. All random
// draws come sequentially from one seeded source, so a fixed seed plus a
// fixed configuration reproduces bit-identical chains regardless of how
// many workers evaluate the posterior.
type Sampler struct {
	seed        int64
	stretch     float64
	workers     int
	reportEvery int
	progress    ports.ProgressSink
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithStretch overrides the stretch-move scale parameter (default 2.0).
func WithStretch(a float64) Option {
	return func(s *Sampler) { s.stretch = a }
}

// WithWorkers bounds the number of concurrent posterior evaluations within
// a step (default: number of CPUs).
func WithWorkers(n int) Option {
	return func(s *Sampler) { s.workers = n }
}

// WithProgress attaches a progress sink, reported every reportEvery steps.
func WithProgress(sink ports.ProgressSink, reportEvery int) Option {
	return func(s *Sampler) {
		s.progress = sink
		s.reportEvery = reportEvery
	}
}

// New builds a sampler for the given seed.
func New(seed int64, opts ...Option) *Sampler {
	s := &Sampler{
		seed:        seed,
		stretch:     2.0,
		workers:     runtime.NumCPU(),
		reportEvery: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// proposal holds one walker's pre-drawn randomness and candidate position
// for a step.
type proposal struct {
	pos     []float64
	lnZ     float64 // log of the stretch factor
	lnU     float64 // log of the acceptance uniform
	logProb float64 // filled by the parallel evaluation phase
}

// Sample runs the ensemble for the requested number of steps.
//
// Each step is a three-phase transition. First, every walker's stretch
// factor, complementary-half partner and acceptance uniform are drawn
// sequentially from the seeded source, with proposals formed against the
// snapshot of positions taken at the start of the step. Second, the
// proposals' log-posteriors are evaluated concurrently across walkers.
// Third, accepted updates commit together before the next step begins.
//
// Cancellation is honored between steps only; the partial chain is returned
// alongside the context error.
func (s *Sampler) Sample(ctx context.Context, logProb ports.LogProbFunc, initial [][]float64, steps int) (*chain.Chain, error) {
	nw := len(initial)
	if steps <= 0 {
		return nil, fmt.Errorf("number of steps must be positive, got %d", steps)
	}
	if nw < 4 {
		return nil, fmt.Errorf("need at least 4 walkers for complementary-half proposals, got %d", nw)
	}
	ndim := len(initial[0])
	for w, pos := range initial {
		if len(pos) != ndim {
			return nil, fmt.Errorf("walker %d has dimension %d, want %d", w, len(pos), ndim)
		}
	}

	ch, err := chain.New(steps, nw, ndim)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(uint64(s.seed)))
	safeLogProb := func(v []float64) float64 {
		lp := logProb(v)
		if math.IsNaN(lp) {
			return math.Inf(-1)
		}
		return lp
	}

	cur := make([][]float64, nw)
	for w := range cur {
		cur[w] = make([]float64, ndim)
		copy(cur[w], initial[w])
	}
	curLP := make([]float64, nw)
	if err := s.evalParallel(ctx, safeLogProb, cur, curLP); err != nil {
		return nil, err
	}

	half := nw / 2
	props := make([]proposal, nw)
	for w := range props {
		props[w].pos = make([]float64, ndim)
	}

	windowAccepted := 0
	for step := 0; step < steps; step++ {
		select {
		case <-ctx.Done():
			ch.Truncate(step)
			return ch, ctx.Err()
		default:
		}

		// Phase 1: sequential randomness against the step-start snapshot.
		positions := make([][]float64, nw)
		for w := range positions {
			positions[w] = props[w].pos
		}
		for w := 0; w < nw; w++ {
			lo, hi := half, nw // complementary half for the first half
			if w >= half {
				lo, hi = 0, half
			}
			partner := cur[lo+rng.Intn(hi-lo)]

			u := rng.Float64()
			z := (s.stretch - 1) * u
			z = (z + 1) * (z + 1) / s.stretch

			for i := 0; i < ndim; i++ {
				props[w].pos[i] = partner[i] + z*(cur[w][i]-partner[i])
			}
			props[w].lnZ = math.Log(z)
			props[w].lnU = math.Log(rng.Float64())
		}

		// Phase 2: parallel posterior evaluation.
		lps := make([]float64, nw)
		if err := s.evalParallel(ctx, safeLogProb, positions, lps); err != nil {
			ch.Truncate(step)
			return ch, err
		}
		for w := range props {
			props[w].logProb = lps[w]
		}

		// Phase 3: commit accepted moves together.
		for w := 0; w < nw; w++ {
			lnpdiff := float64(ndim-1)*props[w].lnZ + props[w].logProb - curLP[w]
			if lnpdiff > props[w].lnU { // NaN (both -Inf) compares false: reject
				copy(cur[w], props[w].pos)
				curLP[w] = props[w].logProb
				ch.Accepted[w]++
				windowAccepted++
			}
			ch.Record(step, w, cur[w], curLP[w])
		}

		if s.progress != nil && (step+1)%s.reportEvery == 0 {
			mean := 0.0
			for _, lp := range curLP {
				mean += lp
			}
			mean /= float64(nw)
			window := float64(windowAccepted) / float64(s.reportEvery*nw)
			s.progress.SamplerProgress(step+1, steps, mean, window)
			windowAccepted = 0
		}
	}
	return ch, nil
}

// evalParallel fills lps[i] = logProb(positions[i]) using up to s.workers
// goroutines. Evaluations are pure, so scheduling order cannot affect the
// result.
func (s *Sampler) evalParallel(ctx context.Context, logProb ports.LogProbFunc, positions [][]float64, lps []float64) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for w := range positions {
		w := w
		g.Go(func() error {
			lps[w] = logProb(positions[w])
			return nil
		})
	}
	return g.Wait()
}
