package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".corpuscrawl"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .corpuscrawl configuration file.
// Every field is optional; zero values leave the corresponding Config
// default untouched.
type File struct {
	// Seeds are literal seed URLs, crawled in order before any
	// template-expanded seeds.
	Seeds []string `yaml:"seeds,omitempty"`

	// SeedTemplates are expanded into additional seeds; see SeedTemplate.
	SeedTemplates []SeedTemplate `yaml:"seedTemplates,omitempty"`

	// MaxPages, MaxDepth, Workers and Throttle override the crawl
	// tuning parameters. MaxDepth is a pointer because 0 (seeds-only
	// crawl) is a valid setting, distinct from "not set".
	MaxPages int      `yaml:"maxPages,omitempty"`
	MaxDepth *int     `yaml:"maxDepth,omitempty"`
	Workers  int      `yaml:"workers,omitempty"`
	Throttle Duration `yaml:"throttle,omitempty"`

	// Timeout overrides the per-request timeout.
	Timeout Duration `yaml:"timeout,omitempty"`

	// UserAgent overrides the client signature.
	UserAgent string `yaml:"userAgent,omitempty"`

	// RespectRobots enables robots.txt checks.
	RespectRobots bool `yaml:"respectRobots,omitempty"`

	// Output overrides the corpus output path.
	Output string `yaml:"output,omitempty"`
}

// LoadConfigFile loads crawl settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; callers
// decide whether that is fatal based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .corpuscrawl in the current directory
//  3. Look for .corpuscrawl in the user's home directory
//
// Returns the path if found, or an empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply merges file values into the config. File values only replace
// defaults; CLI flags are applied afterwards and win over both.
func (cf *File) Apply(c *Config) error {
	seeds, err := cf.ExpandSeeds()
	if err != nil {
		return err
	}
	if len(seeds) > 0 {
		c.Seeds = seeds
	}
	if cf.MaxPages > 0 {
		c.MaxPages = cf.MaxPages
	}
	if cf.MaxDepth != nil {
		c.MaxDepth = *cf.MaxDepth
	}
	if cf.Workers > 0 {
		c.Workers = cf.Workers
	}
	if !cf.Throttle.IsZero() {
		c.Throttle = cf.Throttle.Duration
	}
	if !cf.Timeout.IsZero() {
		c.Timeout = cf.Timeout.Duration
	}
	if cf.UserAgent != "" {
		c.UserAgent = cf.UserAgent
	}
	if cf.RespectRobots {
		c.RespectRobots = true
	}
	if cf.Output != "" {
		c.OutputFile = cf.Output
	}
	return nil
}
