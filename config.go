package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"binpack_go/bpp"
	"binpack_go/colgen"
	"binpack_go/pricing"
)

// Config mirrors the TOML file:
//
//	[solver]
//	oracle = "auto"
//	epsilon = 1e-6
//	scale = 1e6
//	max_iterations = 0
//	node_limit = 100000
//	timeout = "30s"
type Config struct {
	Solver SolverConfig `toml:"solver"`
}

type SolverConfig struct {
	Oracle        string  `toml:"oracle"`
	Epsilon       float64 `toml:"epsilon"`
	Scale         float64 `toml:"scale"`
	MaxIterations int     `toml:"max_iterations"`
	NodeLimit     int     `toml:"node_limit"`
	Timeout       string  `toml:"timeout"`
}

func DefaultConfig() Config {
	return Config{Solver: SolverConfig{
		Oracle:  "auto",
		Epsilon: pricing.DefaultEpsilon,
		Scale:   pricing.DefaultScale,
	}}
}

// LoadConfig overlays the file at path on the defaults. Unknown keys are
// rejected so a typo does not silently fall back to a default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: config %s: %v", bpp.ErrInput, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: config %s: unknown keys %s", bpp.ErrInput, path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Options converts the solver section into controller options.
func (c SolverConfig) Options() (colgen.Options, error) {
	oracle, err := pricing.ByName(c.Oracle)
	if err != nil {
		return colgen.Options{}, fmt.Errorf("%w: %v", bpp.ErrInput, err)
	}
	if c.Epsilon < 0 || c.Scale < 0 || c.MaxIterations < 0 || c.NodeLimit < 0 {
		return colgen.Options{}, fmt.Errorf("%w: solver settings must not be negative", bpp.ErrInput)
	}
	var timeout time.Duration
	if c.Timeout != "" {
		timeout, err = time.ParseDuration(c.Timeout)
		if err != nil {
			return colgen.Options{}, fmt.Errorf("%w: timeout: %v", bpp.ErrInput, err)
		}
	}
	return colgen.Options{
		Epsilon:       c.Epsilon,
		Scale:         c.Scale,
		MaxIterations: c.MaxIterations,
		Timeout:       timeout,
		NodeLimit:     c.NodeLimit,
		Oracle:        oracle,
	}, nil
}
