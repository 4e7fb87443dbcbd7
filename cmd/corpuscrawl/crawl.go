package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BCJonkhout/nlp-project/internal/config"
	"github.com/BCJonkhout/nlp-project/internal/crawler"
	"github.com/BCJonkhout/nlp-project/internal/log"
	"github.com/BCJonkhout/nlp-project/internal/pipeline"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl a domain and aggregate its text into a corpus file",
		Long: `Crawl fetches the seed URLs and follows in-domain links breadth-first,
extracting the visible text of every HTML and PDF page. The aggregated
text is written to a delimited corpus file.

The crawl is bounded by a page cap, a link depth, a worker pool, and a
minimum delay between request submissions. It never leaves the domain of
the first seed, even through redirects.

Passing --config more than once crawls each configuration file as its own
domain, a bounded number of them concurrently, and writes one corpus file
per domain.

Examples:
  # Crawl a site starting from one seed
  corpuscrawl crawl https://example.com/articles

  # Multiple seeds, custom bounds
  corpuscrawl crawl -p 1000 -d 2 https://example.com/a https://example.com/b

  # Seeds and settings from a config file (supports seed templates)
  corpuscrawl crawl -c sites.yaml

  # Crawl several domains, one config file each
  corpuscrawl crawl -c siteA.yaml -c siteB.yaml

  # JSON summary written to a file
  corpuscrawl crawl --json --report-file summary.json https://example.com/

Configuration file (.corpuscrawl) example:
  seedTemplates:
    - template: "https://example.com/search/page/{page}"
      from: 1
      to: 57
  maxPages: 5000
  maxDepth: 1
  workers: 5
  throttle: 200ms`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl bounds
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of distinct URLs to fetch")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link depth from any seed (seeds are depth 0)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent fetch workers")
	cmd.Flags().Duration("throttle", config.DefaultThrottle,
		"Minimum delay between request submissions")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request attempt")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Bool("respect-robots", false,
		"Check robots.txt before fetching each URL")

	// Configuration files
	cmd.Flags().StringSliceP("config", "c", nil,
		"Configuration file path, repeatable for batch crawling (default: .corpuscrawl in current or home directory)")
	cmd.Flags().Int("batch-concurrency", 2,
		"Number of domains crawled concurrently in batch mode")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Corpus output file (default: <domain>_corpus.txt)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("report-file", "r", "",
		"Write the summary to the specified file instead of stdout")
	cmd.Flags().Bool("no-db", false,
		"Do not persist the crawl session to the database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	configPaths, err := cmd.Flags().GetStringSlice("config")
	if err != nil {
		return err
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// SIGINT/SIGTERM cancel the crawl; in-flight pages are still
	// collected and all completed work is written out.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(configPaths) > 1 {
		if len(args) > 0 {
			return errors.New("positional seeds cannot be combined with multiple config files")
		}
		return runCrawlBatch(ctx, cmd, configPaths, logger)
	}

	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	return runCrawl(ctx, cmd, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildCrawlConfig resolves the single-domain configuration: defaults,
// then the optional YAML file, then explicitly set CLI flags, which win
// over both.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	configPaths, err := cmd.Flags().GetStringSlice("config")
	if err != nil {
		return nil, err
	}
	configPath := ""
	if len(configPaths) > 0 {
		configPath = configPaths[0]
	}

	cfg := config.NewConfig()

	// An explicitly named config file must exist; the default lookup is
	// allowed to find nothing.
	found := config.FindConfigFile(configPath)
	if found != "" {
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", found, err)
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	// Positional seeds replace whatever the file provided.
	if len(args) > 0 {
		cfg.Seeds = args
	}

	if err := applyTuningFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("output") {
		if cfg.OutputFile, err = cmd.Flags().GetString("output"); err != nil {
			return nil, err
		}
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("report-file"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyTuningFlags copies explicitly set crawl-tuning flags onto the
// config, so file values survive when the user did not set a flag. The
// report and persistence toggles always apply.
func applyTuningFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	if cmd.Flags().Changed("max-pages") {
		if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("depth") {
		if cfg.MaxDepth, err = cmd.Flags().GetInt("depth"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("workers") {
		if cfg.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("throttle") {
		if cfg.Throttle, err = cmd.Flags().GetDuration("throttle"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("user-agent") {
		if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("respect-robots") {
		if cfg.RespectRobots, err = cmd.Flags().GetBool("respect-robots"); err != nil {
			return err
		}
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noDB
	cfg.Verbose = getVerboseFlag(cmd)

	return nil
}

// runCrawl executes the single-domain crawl pipeline.
func runCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	start := time.Now()

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewCrawlStep(crawler.NewHTTPClient(), pipeline.WithCrawlLogger(logger)),
		pipeline.NewCorpusStep(),
		pipeline.NewReportStep(cmd.OutOrStdout(), getVersion()),
		pipeline.NewPersistStep(),
	)

	run := &pipeline.Run{
		Config:     cfg,
		BaseDomain: cfg.BaseDomain(),
	}

	if err := p.Execute(ctx, run); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nAll extracted text saved to: %s\n", run.CorpusPath)
	fmt.Fprintf(out, "Number of unique sources processed: %d\n", len(run.Result.Visited))
	if run.SessionID > 0 {
		fmt.Fprintf(out, "Session saved with ID %d\n", run.SessionID)
	}
	fmt.Fprintf(out, "Total time taken: %.2f seconds\n", time.Since(start).Seconds())

	return nil
}

// buildBatchConfig resolves one batch entry: the named file is required,
// shared tuning flags apply on top of it. The output path comes from the
// file or the per-domain default, never from --output, so the batch's
// corpus files cannot clobber each other.
func buildBatchConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg := config.NewConfig()

	found := config.FindConfigFile(path)
	if found == "" {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}
	file, err := config.LoadConfigFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	if err := file.Apply(cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", found, err)
	}

	if err := applyTuningFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error in %s: %w", found, err)
	}
	return cfg, nil
}

// runCrawlBatch crawls one domain per configuration file, a bounded
// number of them concurrently. Summaries are written sequentially after
// all runs finish so their output does not interleave.
func runCrawlBatch(ctx context.Context, cmd *cobra.Command, paths []string, logger *slog.Logger) error {
	start := time.Now()

	configs := make([]*config.Config, 0, len(paths))
	for _, path := range paths {
		cfg, err := buildBatchConfig(cmd, path)
		if err != nil {
			return err
		}
		configs = append(configs, cfg)
	}

	concurrency, err := cmd.Flags().GetInt("batch-concurrency")
	if err != nil {
		return err
	}

	client := crawler.NewHTTPClient()
	factory := func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddSteps(
			pipeline.NewCrawlStep(client, pipeline.WithCrawlLogger(logger)),
			pipeline.NewCorpusStep(),
			pipeline.NewPersistStep(),
		)
		return p
	}

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithBatchLogger(logger),
		pipeline.WithConcurrency(concurrency),
	)

	runs, batchErr := bp.Process(ctx, configs)
	sort.Slice(runs, func(i, j int) bool { return runs[i].BaseDomain < runs[j].BaseDomain })

	out := cmd.OutOrStdout()
	failed := 0
	reportStep := pipeline.NewReportStep(out, getVersion())
	for _, run := range runs {
		fmt.Fprintf(out, "\n=== %s ===\n", run.BaseDomain)
		if run.Err != nil {
			failed++
			fmt.Fprintf(out, "crawl failed: %v\n", run.Err)
			continue
		}
		if err := reportStep.Do(context.WithoutCancel(ctx), run); err != nil {
			return err
		}
		fmt.Fprintf(out, "All extracted text saved to: %s\n", run.CorpusPath)
	}

	fmt.Fprintf(out, "\nBatch finished: %d domains, %d failed, %.2f seconds\n",
		len(runs), failed, time.Since(start).Seconds())

	if batchErr != nil {
		return batchErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d crawls failed", failed, len(runs))
	}
	return nil
}
