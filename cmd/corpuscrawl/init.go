package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/BCJonkhout/nlp-project/internal/config"
)

//go:embed templates/corpuscrawl.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new corpuscrawl configuration file",
		Long: `Initialize creates a new .corpuscrawl configuration file in the current directory.

The generated file includes:
- Default settings for crawl bounds, workers and throttling
- A commented seed-template example for paginated sites
- Documentation for all available options

Examples:
  # Create .corpuscrawl in current directory
  corpuscrawl init

  # Create config file at a specific path
  corpuscrawl init -o sites.yaml

  # Force overwrite existing file
  corpuscrawl init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/corpuscrawl.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure crawl settings such as:")
	fmt.Fprintln(out, "  - Seed URLs and paginated seed templates")
	fmt.Fprintln(out, "  - Page cap, depth and worker count")
	fmt.Fprintln(out, "  - Throttling and robots.txt behavior")

	return nil
}
