package app

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"lvilc/domain/chain"
	"lvilc/domain/cosmo"
	"lvilc/domain/inference"
	"lvilc/domain/probe"
	"lvilc/internal"
	"lvilc/internal/analysis"
	"lvilc/internal/config"
	"lvilc/internal/diagnostics"
	"lvilc/internal/errors"
	"lvilc/ports"
)

// InferenceService orchestrates one sampling run end to end: configuration
// validation, data loading, walker initialization, sampling, diagnostics,
// analysis and artifact persistence. Services hold no run state, so
// multiple independent sessions can share one service.
type InferenceService struct {
	model    ports.ExpansionModel
	samplers ports.SamplerFactory
	reader   ports.TableReader
	store    ports.ChainStore
	plotter  ports.Plotter
	logger   *internal.Logger

	// progressSink overrides the default log-backed sink; tests use it to
	// observe and steer a run.
	progressSink ports.ProgressSink
}

// NewInferenceService wires the service's collaborators. store and plotter
// may be nil to disable persistence and image artifacts.
func NewInferenceService(model ports.ExpansionModel, samplers ports.SamplerFactory, reader ports.TableReader, store ports.ChainStore, plotter ports.Plotter, logger *internal.Logger) *InferenceService {
	return &InferenceService{
		model:    model,
		samplers: samplers,
		reader:   reader,
		store:    store,
		plotter:  plotter,
		logger:   logger,
	}
}

// RunResult is everything a completed (or cancelled) run produced.
type RunResult struct {
	RunID       string                      `json:"run_id"`
	Record      ports.RunRecord             `json:"record"`
	Cancelled   bool                        `json:"cancelled,omitempty"`
	Diagnostics diagnostics.Report          `json:"diagnostics"`
	Parameters  []analysis.ParameterSummary `json:"parameters"`
	Covariance  [][]float64                 `json:"covariance"` // sampling space
	Fit         analysis.GoodnessOfFit      `json:"fit"`
	ChainShape  [3]int                      `json:"chain_shape"`  // steps, walkers, dim
	SampleShape [3]int                      `json:"sample_shape"` // post burn-in
	Artifacts   []string                    `json:"artifacts,omitempty"`
}

// Run executes a full inference session for the given configuration.
func (s *InferenceService) Run(ctx context.Context, cfg config.Run) (*RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table, err := loadTable(s.reader, cfg)
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		s.logger.Warn("observation table is empty; likelihood will be identically zero")
	}

	prior := inference.DefaultPrior()
	like := inference.NewLikelihood(s.model, table)
	post := inference.NewPosterior(prior, like.LogLikelihood)

	initSrc := rand.NewSource(uint64(cfg.Seed) + 1)
	walkers, err := inference.InitWalkers(cfg.Initial, prior, cfg.Walkers, inference.DefaultInitScales(), initSrc)
	if err != nil {
		return nil, errors.InitFailed(err)
	}

	s.logger.Info("sampling: %d walkers, %d steps, seed %d, %d observations",
		cfg.Walkers, cfg.Steps, cfg.Seed, table.Len())
	var sink ports.ProgressSink = &logProgress{logger: s.logger}
	if s.progressSink != nil {
		sink = s.progressSink
	}
	sampler := s.samplers.New(cfg.Seed, cfg.Workers, cfg.ReportEvery, sink)

	started := time.Now()
	ch, err := sampler.Sample(ctx, post.LogProb, walkers, cfg.Steps)
	cancelled := false
	switch {
	case err == nil:
	case stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded):
		if ch == nil || ch.Steps == 0 {
			return nil, errors.Wrap(err, "run cancelled before any step completed")
		}
		cancelled = true
		s.logger.Warn("run cancelled after %d of %d steps; keeping partial chain", ch.Steps, cfg.Steps)
	default:
		return nil, errors.Wrap(err, "sampling failed")
	}
	s.logger.Info("sampling finished in %s", time.Since(started).Round(time.Millisecond))

	burnIn := cfg.BurnIn
	if burnIn >= ch.Steps {
		burnIn = ch.Steps / 2
		s.logger.Warn("configured burn-in %d exceeds completed steps %d; trimming %d instead",
			cfg.BurnIn, ch.Steps, burnIn)
	}

	result, err := s.report(ch, burnIn, like, cfg)
	if err != nil {
		return nil, err
	}
	result.Cancelled = cancelled

	runID, record, err := s.persist(ctx, cfg, ch)
	if err != nil {
		return nil, err
	}
	result.RunID = runID
	result.Record = record

	if err := s.writeArtifacts(result, ch, burnIn, cfg); err != nil {
		return nil, err
	}
	return result, nil
}

// loadTable resolves the observation table: user file or built-in samples,
// restricted to the configured probe classes.
func loadTable(reader ports.TableReader, cfg config.Run) (probe.Table, error) {
	table := probe.SampleTable()
	if cfg.DataPath != "" {
		var err error
		table, err = reader.Read(cfg.DataPath)
		if err != nil {
			return probe.Table{}, err
		}
	}
	return table.Restrict(cfg.Probes), nil
}

// report computes diagnostics and posterior summaries from the chain.
func (s *InferenceService) report(ch *chain.Chain, burnIn int, like *inference.Likelihood, cfg config.Run) (*RunResult, error) {
	rep := diagnostics.Compute(ch, cosmo.VectorNames[:])
	for _, w := range rep.Warnings {
		s.logger.Warn("%s", w)
	}

	set, err := ch.Trim(burnIn)
	if err != nil {
		return nil, errors.Wrap(err, "burn-in trim failed")
	}

	summaries, err := summarizeSet(set)
	if err != nil {
		return nil, errors.Wrap(err, "posterior summary failed")
	}

	medians, err := analysis.PosteriorMedians(set)
	if err != nil {
		return nil, errors.Wrap(err, "posterior medians failed")
	}
	fit, err := analysis.Fit(like, cosmo.FromVector(medians))
	if err != nil {
		// The median of a prior-bounded posterior should always be
		// evaluable; surface it rather than report a bogus fit.
		return nil, errors.Wrap(err, "goodness of fit failed")
	}

	return &RunResult{
		Diagnostics: rep,
		Parameters:  summaries,
		Covariance:  covarianceRows(set),
		Fit:         fit,
		ChainShape:  [3]int{ch.Steps, ch.Walkers, ch.Dim},
		SampleShape: [3]int{set.Steps, set.Walkers, set.Dim},
	}, nil
}

// covarianceRows renders the posterior covariance matrix as nested slices
// for the JSON summary.
func covarianceRows(set *chain.SampleSet) [][]float64 {
	cov := analysis.Covariance(set)
	out := make([][]float64, set.Dim)
	for i := range out {
		out[i] = make([]float64, set.Dim)
		for j := range out[i] {
			out[i][j] = cov.At(i, j)
		}
	}
	return out
}

// summarizeSet reports physical parameters: mass samples are mapped back
// from log10 space before summarizing.
func summarizeSet(set *chain.SampleSet) ([]analysis.ParameterSummary, error) {
	columns := []struct {
		name    string
		samples []float64
	}{
		{cosmo.ParamNames[0], set.FlatParam(0)},
		{cosmo.ParamNames[1], analysis.TransformSamples(set.FlatParam(1), analysis.Pow10)},
		{cosmo.ParamNames[2], set.FlatParam(2)},
	}
	out := make([]analysis.ParameterSummary, 0, len(columns))
	for _, col := range columns {
		sum, err := analysis.Summarize(col.name, col.samples)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}

// persist stores the chain when a store is configured.
func (s *InferenceService) persist(ctx context.Context, cfg config.Run, ch *chain.Chain) (string, ports.RunRecord, error) {
	runID := uuid.NewString()
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", ports.RunRecord{}, errors.Wrap(err, "encode run config")
	}
	record := ports.RunRecord{
		ID:        runID,
		CreatedAt: time.Now().UTC(),
		Seed:      cfg.Seed,
		Walkers:   cfg.Walkers,
		Steps:     ch.Steps,
		BurnIn:    cfg.BurnIn,
		Config:    string(cfgJSON),
	}
	if s.store == nil {
		return runID, record, nil
	}
	if err := s.store.SaveRun(ctx, record, ch); err != nil {
		return "", ports.RunRecord{}, err
	}
	s.logger.Info("chain persisted as run %s", runID)
	return runID, record, nil
}

// writeArtifacts writes the summary JSON and, when configured, the plots.
func (s *InferenceService) writeArtifacts(result *RunResult, ch *chain.Chain, burnIn int, cfg config.Run) error {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return errors.IOError(cfg.OutDir, err)
	}

	summaryPath := filepath.Join(cfg.OutDir, fmt.Sprintf("summary_%s.json", result.RunID))
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode summary")
	}
	if err := os.WriteFile(summaryPath, data, 0o644); err != nil {
		return errors.IOError(summaryPath, err)
	}
	result.Artifacts = append(result.Artifacts, summaryPath)

	if !cfg.Plots || s.plotter == nil {
		return nil
	}
	traces, err := s.plotter.TracePlots(ch, cosmo.VectorNames[:], cfg.OutDir)
	if err != nil {
		return errors.Wrap(err, "trace plots")
	}
	result.Artifacts = append(result.Artifacts, traces...)

	set, err := ch.Trim(burnIn)
	if err != nil {
		return errors.Wrap(err, "burn-in trim for corner plot")
	}
	corner, err := s.plotter.CornerPlot(set, cosmo.VectorNames[:], cfg.OutDir)
	if err != nil {
		return errors.Wrap(err, "corner plot")
	}
	result.Artifacts = append(result.Artifacts, corner)
	return nil
}

// logProgress adapts the leveled logger to the sampler's progress sink, in
// the spirit of a periodic acceptance-rate report line.
type logProgress struct {
	logger *internal.Logger
}

func (p *logProgress) SamplerProgress(step, totalSteps int, meanLogProb, windowAcceptance float64) {
	p.logger.Info("step %d/%d: mean log-posterior %.4f, window acceptance %.1f%%",
		step, totalSteps, meanLogProb, 100*windowAcceptance)
}
