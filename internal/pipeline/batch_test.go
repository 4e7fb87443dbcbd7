package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/BCJonkhout/nlp-project/internal/config"
)

// countingStep tracks peak concurrency across batch runs.
type countingStep struct {
	mu     sync.Mutex
	active int
	peak   int
	fail   bool
}

func (s *countingStep) Name() string { return "counting" }

func (s *countingStep) Do(_ context.Context, run *Run) error {
	s.mu.Lock()
	s.active++
	if s.active > s.peak {
		s.peak = s.active
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	if s.fail {
		return errors.New("step failed")
	}
	return nil
}

func batchConfigs(n int) []*config.Config {
	configs := make([]*config.Config, 0, n)
	for i := 0; i < n; i++ {
		cfg := config.NewConfig()
		cfg.Seeds = []string{"https://example.test/"}
		configs = append(configs, cfg)
	}
	return configs
}

func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("processes every config", func(t *testing.T) {
		t.Parallel()

		var made atomic.Int32
		step := &countingStep{}
		bp := NewBatchProcessor(func() *Pipeline {
			made.Add(1)
			p := New()
			p.AddStep(step)
			return p
		}, WithConcurrency(3))

		runs, err := bp.Process(context.Background(), batchConfigs(7))
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(runs) != 7 {
			t.Errorf("got %d runs, want 7", len(runs))
		}
		if made.Load() != 7 {
			t.Errorf("factory called %d times, want 7", made.Load())
		}
		if step.peak > 3 {
			t.Errorf("peak concurrency %d exceeds limit 3", step.peak)
		}
	})

	t.Run("per-run failures do not abort the batch", func(t *testing.T) {
		t.Parallel()

		step := &countingStep{fail: true}
		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(step)
			return p
		})

		runs, err := bp.Process(context.Background(), batchConfigs(3))
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("got %d runs, want 3", len(runs))
		}
		for _, run := range runs {
			if run.Err == nil {
				t.Error("failed run carries no error")
			}
		}
	})
}
