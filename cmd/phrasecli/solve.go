package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"crosswarped.com/phrasefinder"
	"crosswarped.com/phrasefinder/internal/wordsource"
	"crosswarped.com/phrasefinder/pkg/stats"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve every phrase of the phrases file",
	Long: `Loads the corpus and the secret phrases, solves each phrase against its own
oracle, prints the probes each one needed and finishes with the per-phase
report. A phrase that fails does not stop the others.`,
	Args: cobra.NoArgs,
	RunE: runSolve,
}

type outcome struct {
	phrase string
	result phrasefinder.Result
	err    error
}

var errWrongPhrase = errors.New("solved to a different phrase")

func runSolve(cmd *cobra.Command, args []string) error {
	if cfg.PhrasesPath == "" {
		return errors.New("no phrases file: set phrases_path or --phrases")
	}
	ctx := cmd.Context()

	corpus, err := loadCorpus(ctx)
	if err != nil {
		return err
	}
	phrases, err := wordsource.LoadFile(ctx, cfg.PhrasesPath)
	if err != nil {
		return fmt.Errorf("loading phrases: %w", err)
	}
	logger.Info("loaded",
		zap.Int("words", corpus.Len()),
		zap.Int("phrases", len(phrases)),
		zap.Int("parallelism", cfg.Parallelism),
	)

	solver := phrasefinder.NewSolver(corpus, phrasefinder.SolverParams{
		Logger:  logger,
		Confirm: cfg.Confirm,
	})
	collector := stats.NewCollector()

	outcomes := make([]outcome, len(phrases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)
	for i, phrase := range phrases {
		g.Go(func() error {
			outcomes[i] = solveOne(gctx, solver, phrase)
			collector.Add(outcomes[i].result.Trace, outcomes[i].err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.err != nil {
			fmt.Fprintf(os.Stdout, "%s\tFAILED: %v\n", o.phrase, o.err)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s\t%d\n", o.phrase, o.result.Probes())
	}
	fmt.Fprintln(os.Stdout)
	if err := collector.Report(os.Stdout); err != nil {
		return err
	}

	if cfg.MetricsPath != "" {
		if err := collector.WriteMetrics(cfg.MetricsPath); err != nil {
			return err
		}
		logger.Info("metrics written", zap.String("path", cfg.MetricsPath))
	}
	return nil
}

func solveOne(ctx context.Context, solver *phrasefinder.Solver, phrase string) outcome {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := solver.Solve(ctx, phrasefinder.NewSecret(phrase))
	if err == nil && res.Phrase != phrase {
		err = fmt.Errorf("%w: %q", errWrongPhrase, res.Phrase)
	}
	if err != nil {
		logger.Warn("solve failed", zap.String("phrase", phrase), zap.Error(err))
	} else {
		logger.Info("solve done",
			zap.String("phrase", phrase),
			zap.Int("probes", res.Probes()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return outcome{phrase: phrase, result: res, err: err}
}
