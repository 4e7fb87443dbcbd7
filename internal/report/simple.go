package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BCJonkhout/nlp-project/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display after a crawl finishes.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the settings section in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output including the crawl settings.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.CrawlSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	if w.verbose {
		w.writeSettings(&sb, summary)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Base Domain: %s\n", summary.BaseDomain))
	sb.WriteString(fmt.Sprintf("Started:     %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:    %s\n", summary.Duration.Round(10*time.Millisecond)))
	sb.WriteString("\n")
}

// writeCounts writes the result counts section.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RESULTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages with text: %d\n", summary.PagesFetched))
	sb.WriteString(fmt.Sprintf("  URLs visited:    %d\n", summary.URLsVisited))
	sb.WriteString(fmt.Sprintf("  Errors/skips:    %d\n", summary.ErrorCount))
	sb.WriteString("\n")
}

// writeSettings echoes the tuning parameters the crawl ran with.
func (w *SimpleWriter) writeSettings(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SETTINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	s := summary.Settings
	sb.WriteString(fmt.Sprintf("  Seeds:     %d\n", s.Seeds))
	sb.WriteString(fmt.Sprintf("  Max Pages: %d\n", s.MaxPages))
	sb.WriteString(fmt.Sprintf("  Max Depth: %d\n", s.MaxDepth))
	sb.WriteString(fmt.Sprintf("  Workers:   %d\n", s.Workers))
	sb.WriteString(fmt.Sprintf("  Throttle:  %s\n", s.Throttle))
	sb.WriteString("\n")
}
