package ports

import (
	"context"

	"lvilc/domain/chain"
)

// LogProbFunc is the log-posterior surface the sampler explores. It must be
// a pure, deterministic function of the position vector; invalid positions
// return math.Inf(-1), never an error or a panic.
type LogProbFunc func(position []float64) float64

// PosteriorSampler drives an ensemble of walkers through parameter space.
// Implementations must be bit-reproducible for a fixed seed, configuration
// and initial ensemble, and must honor cancellation between steps (never
// mid-step), returning the partial chain alongside the context error.
type PosteriorSampler interface {
	Sample(ctx context.Context, logProb LogProbFunc, initial [][]float64, steps int) (*chain.Chain, error)
}

// ProgressSink receives periodic sampler progress. Purely observational;
// implementations must not feed back into sampling.
type ProgressSink interface {
	SamplerProgress(step, totalSteps int, meanLogProb, windowAcceptance float64)
}

// SamplerFactory builds a seeded sampler per run, so independent inference
// sessions in one process never share random state.
type SamplerFactory interface {
	New(seed int64, workers, reportEvery int, sink ProgressSink) PosteriorSampler
}
