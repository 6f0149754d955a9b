package app

import (
	"context"
	"encoding/json"
	"os"

	"lvilc/domain/cosmo"
	"lvilc/domain/inference"
	"lvilc/internal"
	"lvilc/internal/analysis"
	"lvilc/internal/config"
	"lvilc/internal/diagnostics"
	"lvilc/internal/errors"
	"lvilc/ports"
)

// AnalysisService re-derives diagnostics and posterior summaries from a
// persisted chain, so burn-in choices can be revisited without resampling.
type AnalysisService struct {
	model   ports.ExpansionModel
	reader  ports.TableReader
	store   ports.ChainStore
	plotter ports.Plotter
	logger  *internal.Logger
}

// NewAnalysisService wires the service's collaborators; plotter may be nil
// to disable image artifacts.
func NewAnalysisService(model ports.ExpansionModel, reader ports.TableReader, store ports.ChainStore, plotter ports.Plotter, logger *internal.Logger) *AnalysisService {
	return &AnalysisService{model: model, reader: reader, store: store, plotter: plotter, logger: logger}
}

// AnalysisResult mirrors RunResult for a stored chain.
type AnalysisResult struct {
	Record      ports.RunRecord             `json:"record"`
	BurnIn      int                         `json:"burn_in"`
	Diagnostics diagnostics.Report          `json:"diagnostics"`
	Parameters  []analysis.ParameterSummary `json:"parameters"`
	Covariance  [][]float64                 `json:"covariance"`
	Fit         analysis.GoodnessOfFit      `json:"fit"`
	Artifacts   []string                    `json:"artifacts,omitempty"`
}

// Analyze loads run id and recomputes the report. A negative burnIn keeps
// the burn-in recorded with the run; a non-empty outDir re-renders the
// trace and corner plots there.
func (s *AnalysisService) Analyze(ctx context.Context, id string, burnIn int, outDir string) (*AnalysisResult, error) {
	if s.store == nil {
		return nil, errors.ConfigInvalid("no chain store configured")
	}
	record, ch, err := s.store.LoadRun(ctx, id)
	if err != nil {
		return nil, err
	}

	if burnIn < 0 {
		burnIn = record.BurnIn
	}
	if burnIn >= ch.Steps {
		adjusted := ch.Steps / 2
		s.logger.Warn("burn-in %d exceeds stored steps %d; trimming %d instead", burnIn, ch.Steps, adjusted)
		burnIn = adjusted
	}

	var cfg config.Run
	if err := json.Unmarshal([]byte(record.Config), &cfg); err != nil {
		return nil, errors.Wrap(err, "decode stored run config")
	}
	table, err := loadTable(s.reader, cfg)
	if err != nil {
		return nil, err
	}
	like := inference.NewLikelihood(s.model, table)

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
		return nil, errors.Wrap(err, "goodness of fit failed")
	}

	result := &AnalysisResult{
		Record:      record,
		BurnIn:      burnIn,
		Diagnostics: rep,
		Parameters:  summaries,
		Covariance:  covarianceRows(set),
		Fit:         fit,
	}

	if outDir != "" && s.plotter != nil {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, errors.IOError(outDir, err)
		}
		traces, err := s.plotter.TracePlots(ch, cosmo.VectorNames[:], outDir)
		if err != nil {
			return nil, errors.Wrap(err, "trace plots")
		}
		result.Artifacts = append(result.Artifacts, traces...)
		corner, err := s.plotter.CornerPlot(set, cosmo.VectorNames[:], outDir)
		if err != nil {
			return nil, errors.Wrap(err, "corner plot")
		}
		result.Artifacts = append(result.Artifacts, corner)
	}
	return result, nil
}

// List returns stored run records, newest first.
func (s *AnalysisService) List(ctx context.Context) ([]ports.RunRecord, error) {
	if s.store == nil {
		return nil, errors.ConfigInvalid("no chain store configured")
	}
	return s.store.ListRuns(ctx)
}
