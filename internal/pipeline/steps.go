package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/BCJonkhout/nlp-project/internal/corpus"
	"github.com/BCJonkhout/nlp-project/internal/crawler"
	"github.com/BCJonkhout/nlp-project/internal/database"
	"github.com/BCJonkhout/nlp-project/internal/report"
	"github.com/BCJonkhout/nlp-project/internal/robots"
)

// CrawlStep runs the crawl itself and fills Run.Result and Run.Summary.
// It is the first step of every run; later steps consume its output.
type CrawlStep struct {
	// client is the shared HTTP client for all workers.
	client *http.Client

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates the crawl step. A nil client falls back to the
// package default transport.
func NewCrawlStep(client *http.Client, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		client: client,
		logger: slog.Default(),
	}
	if s.client == nil {
		s.client = crawler.NewHTTPClient()
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl and records the result and summary on the run.
func (s *CrawlStep) Do(ctx context.Context, run *Run) error {
	cfg := run.Config

	opts := []crawler.Option{
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithThrottle(cfg.Throttle),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithRetry(cfg.RetryAttempts, cfg.RetryBackoff),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithLogger(s.logger),
	}
	if cfg.RespectRobots {
		agent := robots.NewAgent(s.client, cfg.UserAgent, robots.WithLogger(s.logger))
		opts = append(opts, crawler.WithRobots(agent))
	}

	c := crawler.New(s.client, opts...)

	result, err := c.Crawl(ctx, cfg.Seeds)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", run.BaseDomain, err)
	}

	summary := result.Summary()
	summary.Settings = c.Settings(len(cfg.Seeds))

	run.Result = result
	run.Summary = summary
	return nil
}

// CorpusStep writes the aggregated corpus file.
type CorpusStep struct{}

// NewCorpusStep creates the corpus writing step.
func NewCorpusStep() *CorpusStep {
	return &CorpusStep{}
}

// Name returns the step name.
func (s *CorpusStep) Name() string {
	return "corpus"
}

// Do writes the corpus file and records its path on the run.
func (s *CorpusStep) Do(_ context.Context, run *Run) error {
	if run.Result == nil || run.Summary == nil {
		return fmt.Errorf("corpus step requires a completed crawl")
	}

	path := run.Config.OutputFile
	if path == "" {
		path = corpus.DefaultFilename(run.Result.BaseDomain)
	}

	if err := corpus.WriteFile(path, run.Result, run.Summary.Settings); err != nil {
		return err
	}

	run.CorpusPath = path
	return nil
}

// ReportStep writes the post-crawl summary in the configured format.
type ReportStep struct {
	// out receives the summary when no report file is configured.
	out io.Writer

	// version is embedded in JSON output.
	version string
}

// NewReportStep creates the report step. The writer receives the
// summary when the configuration does not name a report file.
func NewReportStep(out io.Writer, version string) *ReportStep {
	if out == nil {
		out = os.Stdout
	}
	return &ReportStep{out: out, version: version}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do writes the summary report.
func (s *ReportStep) Do(_ context.Context, run *Run) error {
	if run.Summary == nil {
		return fmt.Errorf("report step requires a completed crawl")
	}

	out := s.out
	if run.Config.ReportFile != "" {
		f, err := os.Create(run.Config.ReportFile)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var w report.Writer
	switch {
	case run.Config.JSONReport:
		w = report.NewJSONWriter(out, s.version, report.WithPrettyPrint())
	case run.Config.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(run.Config.Verbose))
	}

	if _, err := w.Write(run.Summary); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// PersistStep saves the crawl session to the SQLite database.
type PersistStep struct{}

// NewPersistStep creates the persistence step.
func NewPersistStep() *PersistStep {
	return &PersistStep{}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do stores the session and its pages, recording the session ID on the
// run. A disabled database makes this a no-op.
func (s *PersistStep) Do(ctx context.Context, run *Run) error {
	if !run.Config.SaveToDB {
		return nil
	}
	if run.Result == nil || run.Summary == nil {
		return fmt.Errorf("persist step requires a completed crawl")
	}

	cdb, err := database.Open(run.Config.DBDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer cdb.Close()

	id, err := cdb.SaveSession(ctx, run.Result, run.Summary.Settings)
	if err != nil {
		return err
	}

	run.SessionID = id
	return nil
}
