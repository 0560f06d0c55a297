// Package config loads the TOML settings shared by the previewer and the
// evaluation engine.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// Eval controls per-sample evaluation.
type Eval struct {
	MaxDepth      int     `toml:"max_depth"`      // recursion limit for one request
	ErrorValue    float64 `toml:"error_value"`    // produced when the limit trips
	Memoize       bool    `toml:"memoize"`        // per-sample memo of node outputs
	AllowFeedback bool    `toml:"allow_feedback"` // accept links that close a cycle
}

// Render controls preview sampling.
type Render struct {
	Width   int     `toml:"width"`
	Height  int     `toml:"height"`
	Workers int     `toml:"workers"` // 0 = GOMAXPROCS
	Blur    float64 `toml:"blur"`
}

// Log controls the process logger.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Config is the root of the TOML document.
type Config struct {
	Eval   Eval   `toml:"eval"`
	Render Render `toml:"render"`
	Log    Log    `toml:"log"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Eval: Eval{
			MaxDepth: 256,
			Memoize:  true,
		},
		Render: Render{
			Width:  128,
			Height: 128,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Marshal renders cfg as TOML.
func Marshal(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Eval.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("eval.max_depth must be >= 1, got %d", c.Eval.MaxDepth))
	}
	if c.Render.Width < 1 || c.Render.Height < 1 {
		errs = append(errs, fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height))
	}
	if c.Render.Workers < 0 {
		errs = append(errs, fmt.Errorf("render.workers must be >= 0, got %d", c.Render.Workers))
	}
	if c.Render.Blur < 0 {
		errs = append(errs, fmt.Errorf("render.blur must be >= 0, got %g", c.Render.Blur))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// WorkerCount resolves Workers, substituting GOMAXPROCS for zero.
func (r Render) WorkerCount() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}
