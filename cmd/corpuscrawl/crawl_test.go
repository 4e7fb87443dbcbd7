package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BCJonkhout/nlp-project/internal/config"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [seed-url...]" {
			t.Errorf("expected use 'crawl [seed-url...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has crawl bound flags", func(t *testing.T) {
		t.Parallel()
		for name, shorthand := range map[string]string{
			"max-pages": "p",
			"depth":     "d",
			"workers":   "w",
			"timeout":   "t",
			"output":    "o",
			"json":      "j",
			"markdown":  "m",
			"config":    "c",
		} {
			flag := cmd.Flags().Lookup(name)
			if flag == nil {
				t.Fatalf("expected %s flag", name)
			}
			if flag.Shorthand != shorthand {
				t.Errorf("expected %s shorthand %q, got %q", name, shorthand, flag.Shorthand)
			}
		}
	})

	t.Run("has throttle flag with default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("throttle")
		if flag == nil {
			t.Fatal("expected throttle flag")
		}
		if flag.DefValue != "200ms" {
			t.Errorf("expected default '200ms', got %q", flag.DefValue)
		}
	})

	t.Run("has no-db flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("no-db") == nil {
			t.Error("expected no-db flag")
		}
	})

	t.Run("has batch-concurrency flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch-concurrency")
		if flag == nil {
			t.Fatal("expected batch-concurrency flag")
		}
		if flag.DefValue != "2" {
			t.Errorf("expected default '2', got %q", flag.DefValue)
		}
	})
}

// TestBuildCrawlConfig tests configuration resolution from flags and files.
func TestBuildCrawlConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults with positional seed", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg, err := buildCrawlConfig(cmd, []string{"https://example.test/"})
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}

		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://example.test/" {
			t.Errorf("unexpected seeds: %v", cfg.Seeds)
		}
		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("expected default max pages %d, got %d", config.DefaultMaxPages, cfg.MaxPages)
		}
		if cfg.Throttle != config.DefaultThrottle {
			t.Errorf("expected default throttle %v, got %v", config.DefaultThrottle, cfg.Throttle)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to default to true")
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		args := []string{"-p", "100", "-d", "3", "-w", "2", "--throttle", "50ms", "--no-db"}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg, err := buildCrawlConfig(cmd, []string{"https://example.test/"})
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}

		if cfg.MaxPages != 100 {
			t.Errorf("expected max pages 100, got %d", cfg.MaxPages)
		}
		if cfg.MaxDepth != 3 {
			t.Errorf("expected depth 3, got %d", cfg.MaxDepth)
		}
		if cfg.Workers != 2 {
			t.Errorf("expected 2 workers, got %d", cfg.Workers)
		}
		if cfg.Throttle != 50*time.Millisecond {
			t.Errorf("expected throttle 50ms, got %v", cfg.Throttle)
		}
		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false with --no-db")
		}
	})

	t.Run("config file provides seeds and bounds", func(t *testing.T) {
		t.Parallel()

		configFile := filepath.Join(t.TempDir(), "sites.yaml")
		content := `seeds:
  - https://example.test/start
maxPages: 42
workers: 3
throttle: 100ms
`
		if err := os.WriteFile(configFile, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"--config", configFile}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg, err := buildCrawlConfig(cmd, nil)
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}

		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://example.test/start" {
			t.Errorf("unexpected seeds: %v", cfg.Seeds)
		}
		if cfg.MaxPages != 42 {
			t.Errorf("expected max pages 42, got %d", cfg.MaxPages)
		}
		if cfg.Throttle != 100*time.Millisecond {
			t.Errorf("expected throttle 100ms, got %v", cfg.Throttle)
		}
	})

	t.Run("explicit flags win over the config file", func(t *testing.T) {
		t.Parallel()

		configFile := filepath.Join(t.TempDir(), "sites.yaml")
		content := `seeds:
  - https://example.test/start
maxPages: 42
`
		if err := os.WriteFile(configFile, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"--config", configFile, "-p", "7"}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg, err := buildCrawlConfig(cmd, nil)
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}
		if cfg.MaxPages != 7 {
			t.Errorf("expected max pages 7, got %d", cfg.MaxPages)
		}
	})

	t.Run("positional seeds replace file seeds", func(t *testing.T) {
		t.Parallel()

		configFile := filepath.Join(t.TempDir(), "sites.yaml")
		if err := os.WriteFile(configFile, []byte("seeds:\n  - https://example.test/file\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"--config", configFile}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg, err := buildCrawlConfig(cmd, []string{"https://example.test/cli"})
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://example.test/cli" {
			t.Errorf("unexpected seeds: %v", cfg.Seeds)
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"--config", "/nonexistent/config.yaml"}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		_, err := buildCrawlConfig(cmd, []string{"https://example.test/"})
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
		if !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestRunCrawlCmd runs the full command against a local test site.
func TestRunCrawlCmd(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><title>Start</title></head><body>
			<p>start page text</p><a href="%s/leaf">leaf</a></body></html>`, server.URL)
	})
	mux.HandleFunc("/leaf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Leaf</title></head><body><p>leaf page text</p></body></html>`)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	corpusPath := filepath.Join(t.TempDir(), "corpus.txt")

	var buf bytes.Buffer
	cmd := NewCrawlCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{
		server.URL + "/",
		"-o", corpusPath,
		"--throttle", "0s",
		"--no-db",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "CRAWL SUMMARY") {
		t.Errorf("expected summary in output, got %q", output)
	}
	if !strings.Contains(output, "All extracted text saved to: "+corpusPath) {
		t.Errorf("expected corpus path in output, got %q", output)
	}
	if !strings.Contains(output, "Number of unique sources processed: 2") {
		t.Errorf("expected 2 unique sources, got %q", output)
	}

	corpus, err := os.ReadFile(corpusPath)
	if err != nil {
		t.Fatalf("failed to read corpus: %v", err)
	}
	if !strings.Contains(string(corpus), "start page text") {
		t.Error("expected corpus to contain start page text")
	}
	if !strings.Contains(string(corpus), "leaf page text") {
		t.Error("expected corpus to contain leaf page text")
	}
	if !strings.Contains(string(corpus), "--- Content from: "+server.URL+"/leaf ---") {
		t.Error("expected corpus to contain leaf delimiter block")
	}
}

// newBatchSite starts a one-page test server and writes a config file
// pointing at it, returning the config path and the corpus output path.
func newBatchSite(t *testing.T, dir, name, text string) (configPath, corpusPath string) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><title>%s</title></head><body><p>%s</p></body></html>`, name, text)
	}))
	t.Cleanup(srv.Close)

	corpusPath = filepath.Join(dir, name+"_corpus.txt")
	configPath = filepath.Join(dir, name+".yaml")
	content := fmt.Sprintf("seeds:\n  - %s/\noutput: %s\n", srv.URL, corpusPath)
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath, corpusPath
}

// TestRunCrawlCmdBatch crawls two config files in one invocation.
func TestRunCrawlCmdBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configA, corpusA := newBatchSite(t, dir, "alpha", "alpha page text")
	configB, corpusB := newBatchSite(t, dir, "beta", "beta page text")

	var buf bytes.Buffer
	cmd := NewCrawlCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{
		"-c", configA,
		"-c", configB,
		"--throttle", "0s",
		"--no-db",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Batch finished: 2 domains, 0 failed") {
		t.Errorf("expected batch summary, got %q", output)
	}
	if !strings.Contains(output, "All extracted text saved to: "+corpusA) {
		t.Errorf("expected corpus path for alpha, got %q", output)
	}

	for corpus, want := range map[string]string{corpusA: "alpha page text", corpusB: "beta page text"} {
		data, err := os.ReadFile(corpus)
		if err != nil {
			t.Fatalf("failed to read corpus %s: %v", corpus, err)
		}
		if !strings.Contains(string(data), want) {
			t.Errorf("corpus %s missing %q", corpus, want)
		}
	}
}

// TestRunCrawlCmdBatchFailure reports per-domain failures without
// aborting the other runs.
func TestRunCrawlCmdBatchFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configA, corpusA := newBatchSite(t, dir, "alpha", "alpha page text")

	// Second config writes its corpus into a directory that does not
	// exist, which fails that run after the crawl step.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><p>doomed page text</p></body></html>`)
	}))
	t.Cleanup(srv.Close)
	configBad := filepath.Join(dir, "bad.yaml")
	content := fmt.Sprintf("seeds:\n  - %s/\noutput: %s\n",
		srv.URL, filepath.Join(dir, "missing", "nested", "bad_corpus.txt"))
	if err := os.WriteFile(configBad, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var buf bytes.Buffer
	cmd := NewCrawlCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{
		"-c", configA,
		"-c", configBad,
		"--throttle", "0s",
		"--no-db",
	})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "1 of 2 crawls failed") {
		t.Fatalf("expected one failed crawl, got %v", err)
	}

	if _, statErr := os.Stat(corpusA); statErr != nil {
		t.Errorf("healthy domain's corpus missing: %v", statErr)
	}
}

// TestRunCrawlCmdBatchRejectsSeeds verifies that positional seeds and
// multiple config files are mutually exclusive.
func TestRunCrawlCmdBatchRejectsSeeds(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configA, _ := newBatchSite(t, dir, "alpha", "alpha page text")
	configB, _ := newBatchSite(t, dir, "beta", "beta page text")

	cmd := NewCrawlCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"-c", configA, "-c", configB, "https://example.test/"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "cannot be combined") {
		t.Fatalf("expected combination error, got %v", err)
	}
}

// TestRunCrawlCmdNoSeeds verifies that a crawl without seeds fails validation.
func TestRunCrawlCmdNoSeeds(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--no-db"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error without seeds")
	}
	if !strings.Contains(err.Error(), "configuration error") {
		t.Errorf("unexpected error: %v", err)
	}
}
