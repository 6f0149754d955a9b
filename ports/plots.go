package ports

import (
	"lvilc/domain/chain"
)

// Plotter renders image artifacts from sampling results. Implementations
// consume chains and sample sets read-only.
type Plotter interface {
	TracePlots(c *chain.Chain, names []string, outDir string) ([]string, error)
	CornerPlot(set *chain.SampleSet, names []string, outDir string) (string, error)
	ComparisonPlot(zs, model, reference []float64, modelName, referenceName, outDir string) (string, error)
}
