// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command waitqbench compares the NonBlockingQueue and LockingQueue
// variants under one consumer and many producers.
//
//	waitqbench --producers 50 --produces 200000 --iterations 3 --json results.json
//
// Settings may also come from WAITQ_* environment variables or a waitq.yaml
// file. SIGINT and SIGTERM stop the producers and shut the run down cleanly.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"code.hybscloud.com/waitq"
	"code.hybscloud.com/waitq/internal/bench"
	"code.hybscloud.com/waitq/internal/config"
	"code.hybscloud.com/waitq/internal/report"
	"code.hybscloud.com/waitq/trace"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("waitqbench failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep := report.New(report.Gather())
	logger.Info("session",
		"id", rep.SessionID,
		"cpus", rep.System.NumCPU,
		"cpu", rep.System.CPUModel,
		"producers", cfg.Producers,
		"produces", cfg.Produces,
		"capacity", cfg.Capacity,
		"policy", cfg.Policy)

	var bar *progress
	if cfg.Progress {
		bar = newProgress(cfg.Iterations*len(cfg.Variants), os.Stderr, logger)
	}

	log := trace.New(trace.WithEnabled(cfg.Trace), trace.WithLogger(logger))

runs:
	for i := range cfg.Iterations {
		for _, variant := range cfg.Variants {
			if ctx.Err() != nil {
				break runs
			}
			bc := cfg.Bench(variant)
			tok := waitq.NewToken()
			q := bench.NewQueue(bc, tok)

			res := bench.Run(ctx, bc, q, tok, log, logger)
			rep.Add(res)
			logger.Debug("run done", "iteration", i, "variant", variant, "elapsed", res.Elapsed)

			if cfg.Trace {
				if _, err := log.Dump(os.Stdout); err != nil {
					return err
				}
				if n := log.Dropped(); n > 0 {
					logger.Warn("trace events dropped", "count", n)
				}
			}
			bar.step()
		}
	}
	if bar != nil {
		bar.finish()
		fmt.Fprintln(os.Stderr)
	}

	for _, res := range rep.Results {
		logger.Info("result",
			"variant", res.Variant,
			"pushed", res.Pushed,
			"rejected", res.Rejected,
			"popped", res.Popped,
			"remaining", res.Remaining,
			"elapsed", res.Elapsed,
			"throughput", fmt.Sprintf("%.0f msgs/sec", res.Throughput),
			"starved", res.Starved)
	}
	variants, medians := rep.Median()
	for i, v := range variants {
		fmt.Printf("%-12s median %.0f msgs/sec\n", v, medians[i])
	}

	if cfg.JSONFile != "" {
		if err := rep.AppendJSON(cfg.JSONFile); err != nil {
			return err
		}
		logger.Info("wrote results", "file", cfg.JSONFile)
	}
	if cfg.ChartFile != "" && len(rep.Results) > 0 {
		if err := rep.Chart(cfg.ChartFile); err != nil {
			return err
		}
		logger.Info("wrote chart", "file", cfg.ChartFile)
	}
	return nil
}
