// Package main provides the entry point for the corpuscrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for corpuscrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpuscrawl",
		Short: "Politeness-bounded site crawler producing a text corpus",
		Long: `corpuscrawl crawls one domain breadth-first from a list of seed URLs and
aggregates the visible text of every page into a single delimited corpus file.

The crawl never leaves the domain of the first seed, respects a configurable
submission throttle, and retries transient failures with exponential backoff.
HTML and PDF pages are supported.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
