package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BCJonkhout/nlp-project/internal/model"
)

func sampleResult() *model.CrawlResult {
	return &model.CrawlResult{
		BaseDomain: "example.test",
		Pages: []model.PageResult{
			{URL: "https://example.test/b", Title: "B", Text: "second page text"},
			{URL: "https://example.test/a", Title: "A", Text: "first page text"},
		},
		Visited: []string{
			"https://example.test/b",
			"https://example.test/a",
			"https://example.test/broken",
		},
		Errors: []string{"request failed for https://example.test/broken: server returned status 500"},
	}
}

func TestBlock(t *testing.T) {
	t.Parallel()

	page := &model.PageResult{URL: "https://example.test/p", Text: "body text"}
	got := Block(page)

	want := "\n\n--- Content from: https://example.test/p ---\nbody text\n--- End of content from: https://example.test/p ---\n"
	if got != want {
		t.Errorf("Block() = %q, want %q", got, want)
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	t.Run("preserves completion order", func(t *testing.T) {
		t.Parallel()

		got := Aggregate(sampleResult())

		first := strings.Index(got, "second page text")
		second := strings.Index(got, "first page text")
		if first == -1 || second == -1 || first > second {
			t.Errorf("blocks out of completion order:\n%s", got)
		}
		if strings.HasPrefix(got, "\n") || strings.HasSuffix(got, "\n") {
			t.Error("aggregate not trimmed")
		}
	})

	t.Run("skips empty-text pages", func(t *testing.T) {
		t.Parallel()

		result := &model.CrawlResult{
			Pages: []model.PageResult{
				{URL: "https://example.test/empty", Text: ""},
				{URL: "https://example.test/full", Text: "content"},
			},
		}
		got := Aggregate(result)
		if strings.Contains(got, "example.test/empty") {
			t.Errorf("empty page leaked into corpus:\n%s", got)
		}
	})

	t.Run("no pages yields empty corpus", func(t *testing.T) {
		t.Parallel()

		if got := Aggregate(&model.CrawlResult{}); got != "" {
			t.Errorf("Aggregate(empty) = %q, want empty", got)
		}
	})
}

func TestWrite(t *testing.T) {
	t.Parallel()

	settings := model.CrawlSettings{
		Seeds:    3,
		MaxPages: 5000,
		MaxDepth: 1,
		Workers:  5,
		Throttle: 200 * time.Millisecond,
	}

	var b strings.Builder
	if err := Write(&b, sampleResult(), settings); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := b.String()

	if !strings.HasPrefix(out, "Data crawled from a list of 3 URLs.\n") {
		t.Errorf("missing header line:\n%s", out)
	}
	if !strings.Contains(out, "Settings: Workers=5, Throttle=200ms, Depth=1, Max Pages=5000") {
		t.Errorf("missing settings line:\n%s", out)
	}

	pad := strings.Repeat("=", 50)
	for _, section := range []string{"CRAWLED SOURCES", "AGGREGATED TEXT", "ERRORS"} {
		if !strings.Contains(out, pad+" "+section+" "+pad) {
			t.Errorf("missing %s banner:\n%s", section, out)
		}
	}

	// Sources are sorted even though the crawl visited them out of order.
	a := strings.Index(out, "- https://example.test/a\n")
	broken := strings.Index(out, "- https://example.test/broken\n")
	bURL := strings.Index(out, "- https://example.test/b\n")
	if a == -1 || broken == -1 || bURL == -1 || !(a < bURL && bURL < broken) {
		t.Errorf("sources not listed in sorted order:\n%s", out)
	}

	if !strings.Contains(out, "- request failed for https://example.test/broken") {
		t.Errorf("missing error line:\n%s", out)
	}
}

func TestWriteOmitsErrorSectionWhenClean(t *testing.T) {
	t.Parallel()

	result := sampleResult()
	result.Errors = nil

	var b strings.Builder
	if err := Write(&b, result, model.CrawlSettings{Seeds: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if strings.Contains(b.String(), "ERRORS") {
		t.Errorf("ERRORS banner present without errors:\n%s", b.String())
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFilename("example.test"))
	if err := WriteFile(path, sampleResult(), model.CrawlSettings{Seeds: 2}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "--- Content from: https://example.test/a ---") {
		t.Errorf("corpus file missing delimiter block:\n%s", data)
	}
}

func TestDefaultFilename(t *testing.T) {
	t.Parallel()

	if got := DefaultFilename("example.test"); got != "example.test_corpus.txt" {
		t.Errorf("DefaultFilename() = %q", got)
	}
}
