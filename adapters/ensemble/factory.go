package ensemble

import (
	"lvilc/ports"
)

// Factory implements ports.SamplerFactory for the stretch-move sampler.
type Factory struct{}

// New builds a seeded sampler. workers <= 0 means one per CPU;
// reportEvery <= 0 disables progress reporting.
func (Factory) New(seed int64, workers, reportEvery int, sink ports.ProgressSink) ports.PosteriorSampler {
	opts := []Option{}
	if workers > 0 {
		opts = append(opts, WithWorkers(workers))
	}
	if sink != nil && reportEvery > 0 {
		opts = append(opts, WithProgress(sink, reportEvery))
	}
	return New(seed, opts...)
}
