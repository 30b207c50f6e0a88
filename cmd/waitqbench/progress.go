// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// progress counts finished runs on an optional bar. A nil *progress is a
// no-op. Render errors only affect the display and are logged at debug.
type progress struct {
	bar    *progressbar.ProgressBar
	logger *slog.Logger
}

func newProgress(total int, w io.Writer, logger *slog.Logger) *progress {
	return &progress{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("runs"),
			progressbar.OptionShowCount(),
		),
		logger: logger,
	}
}

func (p *progress) step() {
	if p == nil {
		return
	}
	if err := p.bar.Add(1); err != nil {
		p.logger.Debug("progress bar update failed", "err", err)
	}
}

func (p *progress) finish() {
	if p == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		p.logger.Debug("progress bar finish failed", "err", err)
	}
}
