package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/emotive/internal/classifier"
	"github.com/JaimeStill/emotive/internal/config"
	"github.com/JaimeStill/emotive/internal/dataset"
	"github.com/JaimeStill/emotive/internal/emotions"
	"github.com/JaimeStill/emotive/internal/infrastructure"
	"github.com/JaimeStill/emotive/internal/reports"
	"github.com/JaimeStill/emotive/internal/workflow"
	"github.com/JaimeStill/emotive/pkg/lifecycle"
)

type runOptions struct {
	configDir      string
	input          string
	out            string
	textColumn     string
	categoryColumn string
	categories     []string
	instructions   string
	backend        string
	workers        int
	timeout        time.Duration
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Classify a headline CSV and write report artifacts",
		Long: `Loads the dataset, assigns every headline its most probable emotion,
aggregates the assignments pooled and per category, and writes
all_table.csv, separate_table.csv, all_plot.svg, and separate_plot.svg
into the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configDir, "config-dir", ".", "directory holding config.toml")
	f.StringVarP(&opts.input, "input", "i", "", "headline CSV file")
	f.StringVarP(&opts.out, "out", "o", "out", "output directory for artifacts")
	f.StringVar(&opts.textColumn, "text-column", "", "CSV column holding the headline text")
	f.StringVar(&opts.categoryColumn, "category-column", "", "CSV column holding the secondary category")
	f.StringSliceVar(&opts.categories, "categories", nil, "expected categories; declared but empty ones are reported")
	f.StringVar(&opts.instructions, "instructions", "", "file with classifier instructions for LLM backends")
	f.StringVar(&opts.backend, "backend", "", "classifier backend: inference, agent, or anthropic")
	f.IntVar(&opts.workers, "workers", 0, "concurrent classifier calls (0 uses the configured value)")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-item classification timeout (0 uses the configured value)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runPipeline(cmd *cobra.Command, opts *runOptions) error {
	ctx := cmd.Context()

	cfg, err := config.LoadPipeline(opts.configDir)
	if err != nil {
		return err
	}
	opts.apply(cfg)
	if err := cfg.Classifier.Validate(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}

	logger := infrastructure.NewLogger()

	file, err := os.Open(opts.input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	items, err := dataset.Load(file, cfg.Dataset)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.input, err)
	}

	prompter := classifier.StaticPrompter("")
	if opts.instructions != "" {
		data, err := os.ReadFile(opts.instructions)
		if err != nil {
			return fmt.Errorf("read instructions: %w", err)
		}
		prompter = classifier.StaticPrompter(string(data))
	}

	store, err := infrastructure.OpenCache(&cfg.Cache, logger)
	if err != nil {
		return err
	}
	if store != nil {
		lc := lifecycle.New()
		if err := store.Start(lc); err != nil {
			return err
		}
		defer lc.Shutdown(cfg.ShutdownTimeoutDuration())
	}

	c, err := classifier.New(&cfg.Classifier, classifier.Deps{
		Agent:    cfg.Agent,
		Prompter: prompter,
		Cache:    store,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	rt := &workflow.Runtime{
		Classifier: c,
		Sink:       reports.DirSink(opts.out),
		Options: emotions.Options{
			Workers: cfg.Classifier.Workers,
			Timeout: cfg.Classifier.TimeoutDuration(),
			Labels:  cfg.Classifier.Labels,
		},
		Logger: logger,
	}

	// "." keeps the artifacts directly in the output directory.
	result, err := workflow.Execute(ctx, rt, workflow.Input{
		RunID:      uuid.New(),
		Items:      items,
		Categories: opts.categories,
		Prefix:     ".",
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	reports.WriteText(w, reports.UnconditionalTable(result.Unconditional))
	fmt.Fprintln(w)
	reports.WriteText(w, reports.ConditionalTable(result.Conditional))

	if len(result.Conditional.Absent) > 0 {
		fmt.Fprintf(w, "\nno items for declared categories: %v\n", result.Conditional.Absent)
	}
	fmt.Fprintf(w, "\n%d artifacts written to %s\n", len(result.Artifacts), opts.out)

	return nil
}

// apply layers explicitly set flags over the loaded configuration.
func (o *runOptions) apply(cfg *config.Config) {
	if o.textColumn != "" {
		cfg.Dataset.TextColumn = o.textColumn
	}
	if o.categoryColumn != "" {
		cfg.Dataset.CategoryColumn = o.categoryColumn
	}
	if o.backend != "" {
		cfg.Classifier.Backend = o.backend
	}
	if o.workers > 0 {
		cfg.Classifier.Workers = o.workers
	}
	if o.timeout > 0 {
		cfg.Classifier.Timeout = o.timeout.String()
	}
}
