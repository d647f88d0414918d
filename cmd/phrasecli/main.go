package main

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"crosswarped.com/phrasefinder/internal/config"
	"crosswarped.com/phrasefinder/internal/wordsource"
	"crosswarped.com/phrasefinder/pkg/primitives"
)

var (
	configPath string

	profile           bool
	profileFile       string
	memoryProfileFile string

	logger *zap.Logger
	cfg    config.Config

	stopProfile func()
)

var rootCmd = &cobra.Command{
	Use:   "phrasecli",
	Short: "Recover three-word phrases from match counts",
	Long: `phrasecli solves a list of three-word phrases against an in-process
oracle that only reports how many positions and how many characters of a
probe agree with the phrase, and reports how many probes each phase needed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = loadConfig(cmd); err != nil {
			return err
		}

		zc := zap.NewProductionConfig()
		if cfg.Verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if logger, err = zc.Build(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if profile {
			if stopProfile, err = startProfile(profileFile, memoryProfileFile); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "phrasefinder.yaml", "The YAML config file")
	flags.String("words", "", "The file to load words from")
	flags.String("phrases", "", "The file to load secret phrases from")
	flags.String("metrics-file", "", "The file to write Prometheus metrics to")
	flags.String("bq-project", "", "The BigQuery project to load words from")
	flags.String("bq-table", "", "The BigQuery table to load words from")
	flags.String("bq-scope", "", "The word scope to select from the BigQuery table")
	flags.Int("parallelism", 0, "The number of phrases solved at once")
	flags.Duration("timeout", 0, "The timeout for a single phrase")
	flags.BoolP("verbose", "v", false, "Log every probe")
	flags.Bool("confirm", false, "Confirm phrases resolved without an exact answer")

	flags.BoolVar(&profile, "profile", false, "Profile the solver")
	flags.StringVar(&profileFile, "profile-file", "cpu.pprof", "The file to write the CPU profile to")
	flags.StringVar(&memoryProfileFile, "memory-profile-file", "mem.pprof", "The file to write the memory profile to")

	rootCmd.AddCommand(solveCmd, statsCmd)
}

// loadConfig reads the config file and lets explicitly set flags override it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return c, err
	}

	flags := cmd.Flags()
	if flags.Changed("words") {
		c.WordsPath, _ = flags.GetString("words")
	}
	if flags.Changed("phrases") {
		c.PhrasesPath, _ = flags.GetString("phrases")
	}
	if flags.Changed("metrics-file") {
		c.MetricsPath, _ = flags.GetString("metrics-file")
	}
	if flags.Changed("bq-project") {
		c.BigQuery.Project, _ = flags.GetString("bq-project")
	}
	if flags.Changed("bq-table") {
		c.BigQuery.Table, _ = flags.GetString("bq-table")
	}
	if flags.Changed("bq-scope") {
		c.BigQuery.Scope, _ = flags.GetString("bq-scope")
	}
	if flags.Changed("parallelism") {
		c.Parallelism, _ = flags.GetInt("parallelism")
	}
	if flags.Changed("timeout") {
		c.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("verbose") {
		c.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("confirm") {
		c.Confirm, _ = flags.GetBool("confirm")
	}
	return c, c.Validate()
}

func startProfile(cpuPath, memPath string) (func(), error) {
	f, err := os.Create(cpuPath)
	if err != nil {
		return nil, fmt.Errorf("creating profile file: %w", err)
	}
	mf, err := os.Create(memPath)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating memory profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		mf.Close()
		return nil, fmt.Errorf("starting CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
		if err := pprof.WriteHeapProfile(mf); err != nil {
			logger.Warn("writing heap profile", zap.Error(err))
		}
		mf.Close()
	}, nil
}

// loadCorpus builds the root corpus from BigQuery when a table is configured,
// and from the words file otherwise.
func loadCorpus(ctx context.Context) (*primitives.Corpus, error) {
	var words []string
	var err error
	if cfg.BigQuery.Table != "" {
		logger.Info("loading words from BigQuery", zap.String("table", cfg.BigQuery.Table), zap.String("scope", cfg.BigQuery.Scope))
		words, err = wordsource.LoadBigQuery(ctx, wordsource.BigQueryParams{
			Project:  cfg.BigQuery.Project,
			Table:    cfg.BigQuery.Table,
			Scope:    cfg.BigQuery.Scope,
			Location: cfg.BigQuery.Location,
		})
	} else {
		logger.Info("loading words from file", zap.String("path", cfg.WordsPath))
		words, err = wordsource.LoadFile(ctx, cfg.WordsPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading words: %w", err)
	}

	corpus := primitives.NewCorpus(words)
	if !corpus.Valid() {
		logger.Warn("corpus contains words with characters other than lowercase letters")
	}
	return corpus, nil
}

// cleanup stops the profile and flushes the logger. Cobra skips post-run
// hooks when a command fails, so run calls it on every path.
func cleanup() {
	if stopProfile != nil {
		stopProfile()
		stopProfile = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

func run(args []string) error {
	rootCmd.SetArgs(args)
	defer cleanup()
	return rootCmd.Execute()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
