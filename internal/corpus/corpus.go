// Package corpus turns crawl results into the delimited text corpus and
// writes the aggregate output file.
//
// The delimiter contract is load-bearing: downstream converters split
// the corpus on the exact "--- Content from: <url> ---" markers, so the
// format must not drift.
package corpus

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BCJonkhout/nlp-project/internal/model"
)

// bannerPad is the run of '=' on each side of a section banner.
const bannerPad = 50

// DefaultFilename derives the corpus file name from the crawled domain.
func DefaultFilename(baseDomain string) string {
	return baseDomain + "_corpus.txt"
}

// Block renders one page as a delimited corpus block.
func Block(page *model.PageResult) string {
	return fmt.Sprintf("\n\n--- Content from: %s ---\n%s\n--- End of content from: %s ---\n",
		page.URL, page.Text, page.URL)
}

// Aggregate concatenates the delimited blocks of every page that
// produced text, in completion order, with surrounding whitespace
// trimmed. Pages with empty text contribute nothing.
func Aggregate(result *model.CrawlResult) string {
	var b strings.Builder
	for i := range result.Pages {
		if result.Pages[i].Text == "" {
			continue
		}
		b.WriteString(Block(&result.Pages[i]))
	}
	return strings.TrimSpace(b.String())
}

// banner renders a section heading framed by '=' runs.
func banner(title string) string {
	pad := strings.Repeat("=", bannerPad)
	return pad + " " + title + " " + pad + "\n"
}

// Write renders the full corpus file: a settings header, the sorted
// source list, the aggregated text, and the error lines when any
// occurred.
func Write(w io.Writer, result *model.CrawlResult, settings model.CrawlSettings) error {
	header := fmt.Sprintf("Data crawled from a list of %d URLs.\n", settings.Seeds)
	header += fmt.Sprintf("Settings: Workers=%d, Throttle=%s, Depth=%d, Max Pages=%d\n\n",
		settings.Workers, settings.Throttle, settings.MaxDepth, settings.MaxPages)

	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("write corpus header: %w", err)
	}

	if _, err := io.WriteString(w, banner("CRAWLED SOURCES")); err != nil {
		return fmt.Errorf("write corpus sources: %w", err)
	}
	for _, source := range result.SortedVisited() {
		if _, err := fmt.Fprintf(w, "- %s\n", source); err != nil {
			return fmt.Errorf("write corpus sources: %w", err)
		}
	}

	if _, err := io.WriteString(w, "\n\n"+banner("AGGREGATED TEXT")); err != nil {
		return fmt.Errorf("write corpus text: %w", err)
	}
	if _, err := io.WriteString(w, Aggregate(result)); err != nil {
		return fmt.Errorf("write corpus text: %w", err)
	}

	if len(result.Errors) > 0 {
		if _, err := io.WriteString(w, "\n\n"+banner("ERRORS")); err != nil {
			return fmt.Errorf("write corpus errors: %w", err)
		}
		for _, line := range result.Errors {
			if _, err := fmt.Fprintf(w, "- %s\n", line); err != nil {
				return fmt.Errorf("write corpus errors: %w", err)
			}
		}
	}

	return nil
}

// WriteFile writes the corpus to path, creating or truncating it.
func WriteFile(path string, result *model.CrawlResult, settings model.CrawlSettings) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create corpus file: %w", err)
	}

	if err := Write(f, result, settings); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close corpus file: %w", err)
	}
	return nil
}
