// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads waitqbench settings from flags, WAITQ_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"code.hybscloud.com/waitq"
	"code.hybscloud.com/waitq/internal/bench"
)

// Config is the full benchmark configuration.
type Config struct {
	Variants   []bench.Variant
	Producers  int
	Produces   int
	Capacity   int
	Policy     waitq.Policy
	Throttle   time.Duration
	Jitter     time.Duration
	Grace      time.Duration
	Iterations int
	Trace      bool
	Progress   bool
	JSONFile   string
	ChartFile  string
	LogLevel   slog.Level
}

// Load parses args (without the program name) and merges the other sources.
// Returns pflag.ErrHelp, wrapped, when -h/--help was given.
func Load(args []string) (Config, error) {
	fs := pflag.NewFlagSet("waitqbench", pflag.ContinueOnError)
	fs.String("config", "", "config file (default ./waitq.{yaml,toml,ini,json} if present)")
	fs.StringSlice("variant", []string{string(bench.NonBlocking), string(bench.Locking)}, "queue variants to run")
	fs.Int("producers", 50, "producer goroutines")
	fs.Int("produces", 200000, "values pushed per producer")
	fs.Int("capacity", 0, "queue capacity, 0 for unbounded")
	fs.String("policy", waitq.Reject.String(), "full-queue policy: reject or retry")
	fs.Duration("throttle", 100*time.Millisecond, "consumer sleep before each wait")
	fs.Duration("jitter", 100*time.Nanosecond, "max random producer sleep before each push")
	fs.Duration("grace", 500*time.Millisecond, "drain grace period after producers finish")
	fs.Int("iterations", 1, "runs per variant")
	fs.Bool("trace", false, "record diagnostic events and dump them after each run")
	fs.Bool("progress", false, "show a progress bar")
	fs.String("json", "", "append results to this JSON file")
	fs.String("chart", "", "write a throughput chart to this file (.png or .svg)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("WAITQ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("config: bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("waitq")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	policy, err := ParsePolicy(v.GetString("policy"))
	if err != nil {
		return Config{}, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		return Config{}, fmt.Errorf("config: log-level: %w", err)
	}

	cfg := Config{
		Producers:  v.GetInt("producers"),
		Produces:   v.GetInt("produces"),
		Capacity:   v.GetInt("capacity"),
		Policy:     policy,
		Throttle:   v.GetDuration("throttle"),
		Jitter:     v.GetDuration("jitter"),
		Grace:      v.GetDuration("grace"),
		Iterations: v.GetInt("iterations"),
		Trace:      v.GetBool("trace"),
		Progress:   v.GetBool("progress"),
		JSONFile:   v.GetString("json"),
		ChartFile:  v.GetString("chart"),
		LogLevel:   level,
	}
	// Env and config-file strings arrive unsplit on commas.
	for _, item := range v.GetStringSlice("variant") {
		for _, name := range strings.Split(item, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			variant, err := bench.ParseVariant(name)
			if err != nil {
				return Config{}, fmt.Errorf("config: %w", err)
			}
			cfg.Variants = append(cfg.Variants, variant)
		}
	}
	return cfg, cfg.Validate()
}

// ParsePolicy maps a policy name to a waitq.Policy.
func ParsePolicy(s string) (waitq.Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case waitq.Reject.String():
		return waitq.Reject, nil
	case waitq.Retry.String():
		return waitq.Retry, nil
	default:
		return 0, fmt.Errorf("config: unknown policy %q", s)
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case len(c.Variants) == 0:
		return errors.New("config: no variants selected")
	case c.Producers < 1:
		return fmt.Errorf("config: producers must be >= 1, got %d", c.Producers)
	case c.Produces < 0:
		return fmt.Errorf("config: produces must be >= 0, got %d", c.Produces)
	case c.Capacity < 0:
		return fmt.Errorf("config: capacity must be >= 0, got %d", c.Capacity)
	case c.Iterations < 1:
		return fmt.Errorf("config: iterations must be >= 1, got %d", c.Iterations)
	case c.Throttle < 0 || c.Jitter < 0 || c.Grace < 0:
		return errors.New("config: durations must be >= 0")
	}
	return nil
}

// Bench returns the per-run settings for one variant.
func (c Config) Bench(variant bench.Variant) bench.Config {
	return bench.Config{
		Variant:   variant,
		Producers: c.Producers,
		Produces:  c.Produces,
		Capacity:  c.Capacity,
		Policy:    c.Policy,
		Throttle:  c.Throttle,
		Jitter:    c.Jitter,
		Grace:     c.Grace,
	}
}
