package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lvilc/adapters/ensemble"
	"lvilc/adapters/plotting"
	"lvilc/adapters/store"
	"lvilc/adapters/tabular"
	"lvilc/app"
	"lvilc/domain/cosmo"
	"lvilc/domain/probe"
	"lvilc/internal"
	"lvilc/internal/config"
	"lvilc/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Missing .env is fine; environment stays as-is.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "lvilc",
		Short: "Parameter estimation for the LVILC expansion model",
		Long: `lvilc fits the three-parameter LVILC expansion history against
supernova, BAO and CMB observations with an affine-invariant ensemble
sampler, and reports posterior summaries, convergence diagnostics and
goodness of fit.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newAnalyzeCmd(),
		newListRunsCmd(),
		newPredictCmd(),
		newCompareCmd(),
		newSensitivityCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	cfg := config.DefaultRun()
	var initialStr, probesStr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sample the posterior and report the fit",
		Long: `Run a full inference session: initialize the walker ensemble around
the starting guess, sample the posterior, then report convergence
diagnostics, parameter summaries and goodness of fit.

Example: lvilc run --steps 5000 --walkers 32 --seed 42 --initial "-6.7,1e23,13.8"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg.Initial, err = config.ParseInitial(initialStr); err != nil {
				return err
			}
			if cfg.Probes, err = config.ParseProbes(probesStr); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := internal.NewDefaultLogger("run")
			st, err := store.Open(cmd.Context(), cfg.ChainDSN())
			if err != nil {
				return err
			}
			defer st.Close()

			svc := app.NewInferenceService(
				cosmo.LVILC{},
				ensemble.Factory{},
				tabular.NewAutoReader(),
				st,
				&plotting.Renderer{},
				logger,
			)
			result, err := svc.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Walkers, "walkers", cfg.Walkers, "Number of ensemble walkers (at least 2x the parameter count)")
	f.IntVar(&cfg.Steps, "steps", cfg.Steps, "Number of sampling steps")
	f.IntVar(&cfg.BurnIn, "burn-in", cfg.BurnIn, "Steps discarded before summarizing")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for deterministic runs")
	f.StringVar(&initialStr, "initial", defaultInitialString(cfg.Initial), "Starting guess as H0_offset,M_bh,t_fall")
	f.StringVar(&probesStr, "probes", probesString(cfg.Probes), "Comma-separated probe classes (supernova,bao,cmb)")
	f.StringVar(&cfg.DataPath, "data", "", "Observation table (.csv or .xlsx); built-in samples when empty")
	f.StringVar(&cfg.OutDir, "out", cfg.OutDir, "Directory for summaries and plots")
	f.StringVar(&cfg.StoreDSN, "db", cfg.StoreDSN, "Chain store DSN (postgres:// or sqlite file:); defaults to sqlite inside --out")
	f.BoolVar(&cfg.Plots, "plots", cfg.Plots, "Render trace and corner plots")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent posterior evaluations per step (0 = one per CPU)")
	f.IntVar(&cfg.ReportEvery, "report-every", cfg.ReportEvery, "Progress report interval in steps")

	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var burnIn int
	var dsn, outDir string

	cmd := &cobra.Command{
		Use:   "analyze [run-id]",
		Short: "Recompute diagnostics, summaries and plots for a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := internal.NewDefaultLogger("analyze")
			st, err := openStore(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			svc := app.NewAnalysisService(cosmo.LVILC{}, tabular.NewAutoReader(), st, &plotting.Renderer{}, logger)
			result, err := svc.Analyze(cmd.Context(), args[0], burnIn, outDir)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().IntVar(&burnIn, "burn-in", -1, "Override the stored burn-in (-1 keeps the run's value)")
	cmd.Flags().StringVar(&dsn, "db", "", "Chain store DSN; defaults to sqlite under LVILC_OUT")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory for re-rendered plots (no plots when empty)")
	return cmd
}

func newListRunsCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "list-runs",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := internal.NewDefaultLogger("list-runs")
			st, err := openStore(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			svc := app.NewAnalysisService(cosmo.LVILC{}, tabular.NewAutoReader(), st, nil, logger)
			runs, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Printf("%s  %s  walkers=%d steps=%d burn-in=%d seed=%d\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Walkers, r.Steps, r.BurnIn, r.Seed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "db", "", "Chain store DSN; defaults to sqlite under LVILC_OUT")
	return cmd
}

func newPredictCmd() *cobra.Command {
	var initialStr, kindStr string
	var zMin, zMax float64
	var points int

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Evaluate the model observable on a redshift grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.ParseInitial(initialStr)
			if err != nil {
				return err
			}
			kind, err := probe.ParseKind(kindStr)
			if err != nil {
				return err
			}
			logger := internal.NewDefaultLogger("predict")
			svc := app.NewModelService(cosmo.LVILC{}, tabular.NewAutoReader(), nil, logger)
			pred, err := svc.Predict(p, kind, zMin, zMax, points)
			if err != nil {
				return err
			}
			return printJSON(pred)
		},
	}

	cmd.Flags().StringVar(&initialStr, "params", defaultInitialString(config.DefaultRun().Initial), "Parameters as H0_offset,M_bh,t_fall")
	cmd.Flags().StringVar(&kindStr, "probe", "supernova", "Probe class to predict (supernova,bao,cmb)")
	cmd.Flags().Float64Var(&zMin, "z-min", 0.01, "Lower edge of the redshift grid")
	cmd.Flags().Float64Var(&zMax, "z-max", 2.0, "Upper edge of the redshift grid")
	cmd.Flags().IntVar(&points, "points", 50, "Number of grid points")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var initialStr, outDir string
	var zMin, zMax float64
	var points int

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare model distance moduli against a flat reference expansion",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.ParseInitial(initialStr)
			if err != nil {
				return err
			}
			logger := internal.NewDefaultLogger("compare")
			var plotter ports.Plotter
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
				plotter = &plotting.Renderer{}
			}
			svc := app.NewModelService(cosmo.LVILC{}, tabular.NewAutoReader(), plotter, logger)
			cmp, err := svc.Compare(p, zMin, zMax, points, outDir)
			if err != nil {
				return err
			}
			return printJSON(cmp)
		},
	}

	cmd.Flags().StringVar(&initialStr, "params", defaultInitialString(config.DefaultRun().Initial), "Parameters as H0_offset,M_bh,t_fall")
	cmd.Flags().Float64Var(&zMin, "z-min", 0.01, "Lower edge of the redshift grid")
	cmd.Flags().Float64Var(&zMax, "z-max", 2.0, "Upper edge of the redshift grid")
	cmd.Flags().IntVar(&points, "points", 50, "Number of grid points")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory for the comparison plot (no plot when empty)")
	return cmd
}

func newSensitivityCmd() *cobra.Command {
	var initialStr, probesStr, dataPath string
	var relStep float64

	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "Report the local chi-square response to each parameter",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.ParseInitial(initialStr)
			if err != nil {
				return err
			}
			probes, err := config.ParseProbes(probesStr)
			if err != nil {
				return err
			}
			logger := internal.NewDefaultLogger("sensitivity")
			svc := app.NewModelService(cosmo.LVILC{}, tabular.NewAutoReader(), nil, logger)
			results, err := svc.Sensitivity(p, dataPath, probes, relStep)
			if err != nil {
				return err
			}
			return printJSON(results)
		},
	}

	cmd.Flags().StringVar(&initialStr, "params", defaultInitialString(config.DefaultRun().Initial), "Reference point as H0_offset,M_bh,t_fall")
	cmd.Flags().StringVar(&probesStr, "probes", probesString(config.DefaultRun().Probes), "Comma-separated probe classes")
	cmd.Flags().StringVar(&dataPath, "data", "", "Observation table (.csv or .xlsx); built-in samples when empty")
	cmd.Flags().Float64Var(&relStep, "step", 0.01, "Relative finite-difference step in sampling space")
	return cmd
}

// openStore resolves the DSN like `run` does when --db is not given.
func openStore(ctx context.Context, dsn string) (ports.ChainStore, error) {
	if dsn == "" {
		dsn = config.DefaultRun().ChainDSN()
	}
	return store.Open(ctx, dsn)
}

func defaultInitialString(p cosmo.Params) string {
	return fmt.Sprintf("%g,%g,%g", p.H0Offset, p.MBh, p.TFall)
}

func probesString(kinds []probe.Kind) string {
	s := ""
	for i, k := range kinds {
		if i > 0 {
			s += ","
		}
		s += string(k)
	}
	return s
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
