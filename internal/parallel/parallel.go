// Package parallel splits row-wise kernels across worker goroutines.
package parallel

import (
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// Sequential returns a Config that always runs on the calling goroutine.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// ParseConfig parses a comma separated list of options on top of DefaultConfig:
//
//	sequential     disable parallelism
//	workers=N      number of worker goroutines
//	chunk=N        minimum items per goroutine
//
// An empty string returns DefaultConfig.
func ParseConfig(s string) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range strings.Split(s, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if opt == "sequential" {
			cfg.Enabled = false
			continue
		}
		key, value, found := strings.Cut(opt, "=")
		if !found {
			return cfg, errors.Errorf("invalid option %q, expected key=value", opt)
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return cfg, errors.Errorf("invalid value %q for %q, expected a positive integer", value, key)
		}
		switch key {
		case "workers":
			cfg.NumWorkers = n
			cfg.Enabled = n > 1
		case "chunk":
			cfg.MinChunkSize = n
		default:
			return cfg, errors.Errorf("unknown option %q", key)
		}
	}
	return cfg, nil
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
// f must only write state owned by index i.
//
// A panic in f is re-raised on the calling goroutine once every chunk has
// finished, as in the sequential case.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)

	var (
		g         errgroup.Group
		panicOnce sync.Once
		recovered any
	)
	g.SetLimit(cfg.NumWorkers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { recovered = r })
				}
			}()
			for i := start; i < end; i++ {
				f(i)
			}
			return nil
		})
	}
	_ = g.Wait()
	if recovered != nil {
		panic(recovered)
	}
}
