// Package config is the YAML configuration of the accumulator command line tool
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/iotaledger/accumulator.go/bench"
	"github.com/iotaledger/accumulator.go/hashing"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Hash  string      `yaml:"hash"`
	Log   LogConfig   `yaml:"log"`
	Bench BenchConfig `yaml:"bench"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type BenchConfig struct {
	Leaves      int   `yaml:"leaves"`
	RecordSize  int   `yaml:"record_size"`
	Seed        int64 `yaml:"seed"`
	Concurrency int   `yaml:"concurrency"`
}

func Default() *Config {
	return &Config{
		Hash: hashing.Default.Name(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Bench: BenchConfig{
			Leaves:     100_000,
			RecordSize: 32,
			Seed:       1,
		},
	}
}

// Load reads the file over the defaults. Values absent in the file keep default values
func Load(fname string) (*Config, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	ret := Default()
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Config) Validate() error {
	if _, err := hashing.ByName(c.Hash); err != nil {
		return err
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format '%s', must be 'text' or 'json'", c.Log.Format)
	}
	return c.BenchConfig().Validate()
}

// BenchConfig is the benchmark run configuration
func (c *Config) BenchConfig() *bench.Config {
	return &bench.Config{
		Leaves:      c.Bench.Leaves,
		RecordSize:  c.Bench.RecordSize,
		Seed:        c.Bench.Seed,
		Hash:        c.Hash,
		Concurrency: c.Bench.Concurrency,
	}
}

func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

func (l *LogConfig) level() (slog.Level, error) {
	var ret slog.Level
	if err := ret.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("wrong log level: %w", err)
	}
	return ret, nil
}

// NewLogger creates logger writing to w with the configured level and format
func (l *LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
