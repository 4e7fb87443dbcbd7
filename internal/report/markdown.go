package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/BCJonkhout/nlp-project/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeResults(md, summary)
	w.writeSettings(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H1("Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base Domain", "`" + summary.BaseDomain + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration.String()},
		},
	})
	md.PlainText("")
}

// writeResults writes the counts section with a distribution chart.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Results")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages with text", strconv.Itoa(summary.PagesFetched)},
			{"URLs visited", strconv.Itoa(summary.URLsVisited)},
			{"Errors/skips", strconv.Itoa(summary.ErrorCount)},
		},
	})
	md.PlainText("")

	if summary.PagesFetched > 0 || summary.ErrorCount > 0 {
		w.writePieChart(md, summary)
	}

	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of crawl outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.CrawlSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Crawl Outcome Distribution"),
		piechart.WithShowData(true),
	)

	if summary.PagesFetched > 0 {
		chart.LabelAndIntValue("Pages with text", uint64(summary.PagesFetched))
	}
	if summary.ErrorCount > 0 {
		chart.LabelAndIntValue("Errors/skips", uint64(summary.ErrorCount))
	}
	if other := summary.URLsVisited - summary.PagesFetched - summary.ErrorCount; other > 0 {
		chart.LabelAndIntValue("No text", uint64(other))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the outcome counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.CrawlSummary) {
	switch {
	case summary.PagesFetched == 0:
		md.Warningf(
			"No pages produced text. %d URL(s) were visited; check the error section of the corpus file.",
			summary.URLsVisited,
		)
	case summary.ErrorCount > summary.PagesFetched:
		md.Importantf(
			"More failures than successes: %d error(s) against %d page(s).",
			summary.ErrorCount, summary.PagesFetched,
		)
	case summary.ErrorCount > 0:
		md.Notef("%d URL(s) failed or were skipped.", summary.ErrorCount)
	default:
		md.Tip("All visited URLs produced corpus text.")
	}
	md.PlainText("")
}

// writeSettings echoes the tuning parameters the crawl ran with.
func (w *MarkdownWriter) writeSettings(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Settings")
	md.PlainText("")

	s := summary.Settings
	md.Table(markdown.TableSet{
		Header: []string{"Parameter", "Value"},
		Rows: [][]string{
			{"Seeds", strconv.Itoa(s.Seeds)},
			{"Max Pages", strconv.Itoa(s.MaxPages)},
			{"Max Depth", strconv.Itoa(s.MaxDepth)},
			{"Workers", strconv.Itoa(s.Workers)},
			{"Throttle", s.Throttle.String()},
		},
	})
	md.PlainText("")
}
