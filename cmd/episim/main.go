package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/episim/internal/config"
	"github.com/san-kum/episim/internal/epidemic"
	"github.com/san-kum/episim/internal/logging"
	"github.com/san-kum/episim/internal/viz"
	"github.com/spf13/cobra"
)

var logger = logging.NewNop()

var (
	dataDir  string
	logLevel string

	// SIR parameters
	population      float64
	initialInfected float64
	beta            float64
	gamma           float64
	dt              float64
	steps           int
	configFile      string
	preset          string

	// Phase plot axes
	xAxis string
	yAxis string
	// SVG output
	outFile string
	// Sweep grid
	betaFrom, betaTo, betaStep    float64
	gammaFrom, gammaTo, gammaStep float64
	workers                       int
	// Server
	listenAddr string
	redisAddr  string
)

// main registers the episim commands and opens the interactive view when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "episim",
		Short:         "SIR epidemic model lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = logging.New(level)
			slog.SetDefault(logger)
			return nil
		},
		RunE: runInteractive,
	}
	addParamFlags(rootCmd)

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate the model and save the run",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addParamFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot S, I and R of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of two compartments",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "S", "compartment on the x axis (S, I or R)")
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "I", "compartment on the y axis (S, I or R)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export run chart to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a grid of transmission and recovery rates",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addParamFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&betaFrom, "beta-from", 0.5, "first transmission rate")
	sweepCmd.Flags().Float64Var(&betaTo, "beta-to", 4.0, "last transmission rate")
	sweepCmd.Flags().Float64Var(&betaStep, "beta-step", 0.5, "transmission rate increment")
	sweepCmd.Flags().Float64Var(&gammaFrom, "gamma-from", 0.1, "first recovery rate")
	sweepCmd.Flags().Float64Var(&gammaTo, "gamma-to", 0.5, "last recovery rate")
	sweepCmd.Flags().Float64Var(&gammaStep, "gamma-step", 0.1, "recovery rate increment")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "concurrent computations")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve trajectories over HTTP",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	addParamFlags(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for the trajectory cache (empty disables caching)")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive slider view",
		Args:  cobra.NoArgs,
		RunE:  runInteractive,
	}
	addParamFlags(tuiCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, sweepCmd, presetsCmd, serveCmd, tuiCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&population, "population", config.DefaultPopulation, "total population N")
	cmd.Flags().Float64Var(&initialInfected, "i0", config.DefaultInitialInfected, "initially infected")
	cmd.Flags().Float64Var(&beta, "beta", config.DefaultTransmissionRate, "transmission rate")
	cmd.Flags().Float64Var(&gamma, "gamma", config.DefaultRecoveryRate, "recovery rate")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultStepSize, "step size")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultMaxSteps, "maximum number of steps")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig applies defaults, then the preset, then the config file, then
// any flag set explicitly on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p, err := config.Preset(preset)
		if err != nil {
			return nil, err
		}
		p.LogLevel, p.DataDir = cfg.LogLevel, cfg.DataDir
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Overlay(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("population") {
		cfg.Population = population
	}
	if flags.Changed("i0") {
		cfg.InitialInfected = initialInfected
	}
	if flags.Changed("beta") {
		cfg.TransmissionRate = beta
	}
	if flags.Changed("gamma") {
		cfg.RecoveryRate = gamma
	}
	if flags.Changed("dt") {
		cfg.StepSize = dt
	}
	if flags.Changed("steps") {
		cfg.MaxSteps = steps
	}
	if f := cmd.Flag("data"); f != nil && f.Changed {
		cfg.DataDir = dataDir
	}
	if f := cmd.Flag("redis"); f != nil && f.Changed {
		cfg.RedisAddr = redisAddr
	}

	return cfg, nil
}

func resolveParams(cmd *cobra.Command) (*config.Config, epidemic.Params, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, epidemic.Params{}, err
	}
	p, err := epidemic.Build(cfg.Request())
	if err != nil {
		return nil, epidemic.Params{}, err
	}
	if p.MaxSteps != cfg.MaxSteps {
		logger.Warn("max steps clamped", "requested", cfg.MaxSteps, "limit", epidemic.MaxStepsLimit)
	}
	return cfg, p, nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	_, p, err := resolveParams(cmd)
	if err != nil {
		return err
	}
	return viz.RunInteractive(p)
}
