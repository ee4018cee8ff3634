// Command optimizer runs the timetable genetic algorithm from the command
// line, against either a JSON snapshot file or a live Postgres term, and
// prints the resulting chromosome and, optionally, one section's CSV grid.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/optimizer"
	"github.com/noah-isme/uni-timetable-api/internal/schedule"
	"github.com/noah-isme/uni-timetable-api/internal/snapshot"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	"github.com/noah-isme/uni-timetable-api/pkg/database"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
)

// runFlags collects the run subcommand's flags: the snapshot source, the
// tuning overrides runOptimize copies into optimizer.RunConfig, an overall
// timeout, and the section whose CSV grid is printed.
type runFlags struct {
	snapshotPath string
	termID       string
	population   int
	generations  int
	elitism      int
	earlyStop    float64
	mutationBase float64
	mutationGrow float64
	seed         int64
	timeout      time.Duration
	section      int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "optimizer",
		Short: "Run and validate timetable genetic-algorithm optimizations",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	return root
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one optimization and print the resulting schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.snapshotPath, "snapshot", "", "path to a JSON snapshot file (mutually exclusive with --term)")
	cmd.Flags().StringVar(&flags.termID, "term", "", "term ID to load from Postgres (mutually exclusive with --snapshot)")
	cmd.Flags().IntVar(&flags.population, "population", 0, "population size (0 uses the built-in default)")
	cmd.Flags().IntVar(&flags.generations, "generations", 0, "generation count (0 uses the built-in default)")
	cmd.Flags().IntVar(&flags.elitism, "elitism", 0, "elite count carried unchanged each generation")
	cmd.Flags().Float64Var(&flags.earlyStop, "early-stop", 0, "fitness threshold that ends the run early")
	cmd.Flags().Float64Var(&flags.mutationBase, "mutation-base", 0, "base mutation rate")
	cmd.Flags().Float64Var(&flags.mutationGrow, "mutation-growth", 0, "mutation rate growth per 100 generations")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "RNG seed (0 auto-seeds from wall clock)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "overall run timeout (0 means no deadline)")
	cmd.Flags().IntVar(&flags.section, "section", 0, "section ID to print a CSV grid for after the run completes")

	return cmd
}

func newValidateCmd() *cobra.Command {
	var snapshotPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a JSON snapshot file without running an optimization",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := loadSnapshotFile(snapshotPath)
			if err != nil {
				return err
			}
			if err := validator.New().Struct(input); err != nil {
				return fmt.Errorf("snapshot failed validation: %w", err)
			}
			if _, err := optimizer.Build(input); err != nil {
				return fmt.Errorf("snapshot failed build: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "snapshot OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "path to a JSON snapshot file")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func runOptimize(cmd *cobra.Command, flags *runFlags) error {
	input, err := resolveSnapshot(cmd, flags)
	if err != nil {
		return err
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	sink := optimizer.ProgressFunc(func(e optimizer.GenerationEvent) {
		fmt.Fprintf(cmd.ErrOrStderr(), "generation %d: best fitness %.4f\n", e.Generation, e.BestFitness)
	})

	cfg := optimizer.RunConfig{
		PopulationSize:   flags.population,
		Generations:      flags.generations,
		Elitism:          flags.elitism,
		EarlyStopFitness: flags.earlyStop,
		MutationBase:     flags.mutationBase,
		MutationGrowth:   flags.mutationGrow,
		RNGSeed:          flags.seed,
		ProgressSink:     sink,
	}

	result := optimizer.Run(ctx, input, cfg, logger)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

	if flags.section != 0 && result.Status != optimizer.StatusFailed {
		snap, err := optimizer.Build(input)
		if err != nil {
			return fmt.Errorf("rebuild snapshot for schedule: %w", err)
		}
		sched := schedule.Build(snap, result.Genes)
		body, err := sched.ToCSV(export.NewCSVExporter(), flags.section)
		if err != nil {
			return fmt.Errorf("render schedule csv: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
	}

	if result.Status == optimizer.StatusFailed {
		return fmt.Errorf("run failed: %s", result.Failure.Error())
	}
	return nil
}

func resolveSnapshot(cmd *cobra.Command, flags *runFlags) (optimizer.SnapshotInput, error) {
	switch {
	case flags.snapshotPath != "" && flags.termID != "":
		return optimizer.SnapshotInput{}, fmt.Errorf("--snapshot and --term are mutually exclusive")
	case flags.termID != "":
		return loadSnapshotFromPostgres(cmd.Context(), flags.termID)
	case flags.snapshotPath != "":
		return loadSnapshotFile(flags.snapshotPath)
	default:
		return optimizer.SnapshotInput{}, fmt.Errorf("one of --snapshot or --term is required")
	}
}

func loadSnapshotFile(path string) (optimizer.SnapshotInput, error) {
	var input optimizer.SnapshotInput
	raw, err := os.ReadFile(path)
	if err != nil {
		return input, fmt.Errorf("read snapshot file %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return input, fmt.Errorf("parse snapshot file %s: %w", path, err)
	}
	return input, nil
}

func loadSnapshotFromPostgres(ctx context.Context, termID string) (optimizer.SnapshotInput, error) {
	var input optimizer.SnapshotInput
	cfg, err := config.Load()
	if err != nil {
		return input, fmt.Errorf("load config: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return input, fmt.Errorf("connect to postgres: %w", err)
	}
	defer db.Close()

	loader := snapshot.NewPostgresLoader(db)
	return loader.Load(ctx, termID)
}
