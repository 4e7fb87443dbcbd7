package config

import (
	"errors"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all
// expected default values. This serves as living documentation of the
// defaults; changes to them must be intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxPages is 5000", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 5000 {
			t.Errorf("expected MaxPages 5000, got %d", cfg.MaxPages)
		}
	})

	t.Run("default MaxDepth is 1", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxDepth != 1 {
			t.Errorf("expected MaxDepth 1, got %d", cfg.MaxDepth)
		}
	})

	t.Run("default Workers is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != 5 {
			t.Errorf("expected Workers 5, got %d", cfg.Workers)
		}
	})

	t.Run("default Throttle is 200ms", func(t *testing.T) {
		t.Parallel()
		if cfg.Throttle != 200*time.Millisecond {
			t.Errorf("expected Throttle 200ms, got %v", cfg.Throttle)
		}
	})

	t.Run("default Timeout is 20s", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 20*time.Second {
			t.Errorf("expected Timeout 20s, got %v", cfg.Timeout)
		}
	})

	t.Run("default RetryAttempts is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.RetryAttempts != 5 {
			t.Errorf("expected RetryAttempts 5, got %d", cfg.RetryAttempts)
		}
	})

	t.Run("database saving is on by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to default to true")
		}
	})

	t.Run("robots checks are off by default", func(t *testing.T) {
		t.Parallel()
		if cfg.RespectRobots {
			t.Error("expected RespectRobots to default to false")
		}
	})
}

// TestConfigValidate exercises every validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Seeds = []string{"https://example.test/start"}
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "empty seeds",
			mutate:  func(c *Config) { c.Seeds = nil },
			wantErr: ErrNoSeeds,
		},
		{
			name:    "first seed without host",
			mutate:  func(c *Config) { c.Seeds = []string{"relative/path/only"} },
			wantErr: ErrInvalidSeed,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: ErrInvalidWorkers,
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.MaxPages = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "negative max depth",
			mutate:  func(c *Config) { c.MaxDepth = -1 },
			wantErr: ErrInvalidMaxDepth,
		},
		{
			name:    "negative throttle",
			mutate:  func(c *Config) { c.Throttle = -time.Second },
			wantErr: ErrInvalidThrottle,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative body size",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestBaseDomain verifies domain derivation from the first seed.
func TestBaseDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		seeds []string
		want  string
	}{
		{"plain host", []string{"https://example.test/a"}, "example.test"},
		{"host with port", []string{"https://example.test:8443/a"}, "example.test"},
		{"no seeds", nil, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.Seeds = tt.seeds
			if got := cfg.BaseDomain(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
