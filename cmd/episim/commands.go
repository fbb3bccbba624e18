package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/san-kum/episim/internal/api"
	"github.com/san-kum/episim/internal/cache"
	"github.com/san-kum/episim/internal/config"
	"github.com/san-kum/episim/internal/epidemic"
	"github.com/san-kum/episim/internal/export"
	"github.com/san-kum/episim/internal/storage"
	"github.com/san-kum/episim/internal/sweep"
	"github.com/san-kum/episim/internal/viz"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, p, err := resolveParams(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	start := time.Now()
	tr, err := epidemic.ComputeTrajectory(cmd.Context(), p)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	logger.Debug("trajectory computed", "key", p.Key(), "elapsed", elapsed)

	runID, err := st.Save(p, tr)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("R0: %s\n", epidemic.FormatR0(p.R0()))
	fmt.Printf("steps: %d valid: %d\n", tr.Len(), tr.ValidLength)
	if tr.Truncated() {
		fmt.Printf("stopped early at step %d: a compartment went negative\n", tr.ValidLength-1)
	}
	fmt.Printf("elapsed: %v\n", elapsed.Round(time.Microsecond))
	printMetrics(tr.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("metrics:")
	for _, name := range names {
		fmt.Printf("  %-18s %.6g\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tN\tI0\tBETA\tGAMMA\tDT\tSTEPS\tVALID\tR0")

	for _, run := range runs {
		p := run.Params
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%g\t%g\t%d\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			p.Population,
			p.InitialInfected,
			p.TransmissionRate,
			p.RecoveryRate,
			p.StepSize,
			p.MaxSteps,
			run.ValidLength,
			epidemic.FormatR0(p.R0()),
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *epidemic.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, tr, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if tr.ValidLength == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("R0: %s\n", epidemic.FormatR0(meta.Params.R0()))
	fmt.Printf("samples: %d of %d\n\n", tr.ValidLength, tr.Len())
	fmt.Println(viz.Plot(tr, 80, 15))
	fmt.Println("\nblue: susceptible  red: infected  green: recovered/removed")
	return nil
}

func compartment(tr *epidemic.Trajectory, name string) ([]float64, error) {
	v := tr.Valid()
	switch strings.ToUpper(name) {
	case "S":
		return v.S, nil
	case "I":
		return v.I, nil
	case "R":
		return v.R, nil
	}
	return nil, fmt.Errorf("unknown compartment %q (want S, I or R)", name)
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	xs, err := compartment(tr, xAxis)
	if err != nil {
		return err
	}
	ys, err := compartment(tr, yAxis)
	if err != nil {
		return err
	}
	if len(xs) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("phase portrait: %s\n", meta.ID)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", strings.ToUpper(xAxis), strings.ToUpper(yAxis))
	fmt.Print(viz.PhasePortrait(xs, ys, 70, 20))
	fmt.Printf("\nLegend: . = early, o = middle, ● = late\n")
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(csv.NewWriter(os.Stdout), tr)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, tr)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	svg := export.TrajectoryToSVG(tr, meta.Params.Population, 800, 500)
	if outFile == "" {
		_, err := fmt.Print(svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	betas, err := sweep.Range(betaFrom, betaTo, betaStep)
	if err != nil {
		return err
	}
	gammas, err := sweep.Range(gammaFrom, gammaTo, gammaStep)
	if err != nil {
		return err
	}
	grid := sweep.Grid{Transmission: betas, Recovery: gammas}

	logger.Info("sweep started", "cells", grid.Size(), "workers", workers)
	start := time.Now()
	points, err := sweep.Run(cmd.Context(), cfg.Request(), grid, workers)
	if err != nil {
		return err
	}
	logger.Info("sweep finished", "elapsed", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BETA\tGAMMA\tR0\tPEAK I\tPEAK STEP\tFINAL R\tVALID")
	for _, pt := range points {
		valid := fmt.Sprintf("%d", pt.ValidLength)
		if pt.Truncated {
			valid += "*"
		}
		fmt.Fprintf(w, "%.3g\t%.3g\t%s\t%.4f\t%d\t%.4f\t%s\n",
			pt.Transmission,
			pt.Recovery,
			epidemic.FormatR0(pt.R0),
			pt.PeakInfected,
			pt.PeakStep,
			pt.FinalRecovered,
			valid,
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tN\tI0\tBETA\tGAMMA\tDT\tSTEPS\tR0")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		r0 := epidemic.ReproductionRatio(p.TransmissionRate, p.RecoveryRate)
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\t%d\t%s\n",
			name, p.Population, p.InitialInfected, p.TransmissionRate, p.RecoveryRate, p.StepSize, p.MaxSteps,
			epidemic.FormatR0(r0))
	}
	return w.Flush()
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := epidemic.Build(cfg.Request()); err != nil {
		return fmt.Errorf("invalid server defaults: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var c cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, "", 0)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			return fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		c = rc
		logger.Info("trajectory cache enabled", "redis", cfg.RedisAddr)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr: listenAddr,
		Handler: api.NewHandler(api.Options{
			Defaults: cfg,
			Cache:    c,
			Registry: reg,
			Logger:   logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", listenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
