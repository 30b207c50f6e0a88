// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestProgressNilIsNoop(t *testing.T) {
	var p *progress
	assert.NotPanics(t, func() {
		p.step()
		p.finish()
	})
}

func TestProgressRenders(t *testing.T) {
	var out bytes.Buffer
	p := newProgress(2, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.step()
	p.step()
	p.finish()
	assert.Contains(t, out.String(), "runs")
}

func TestProgressWriteErrorDoesNotStopRun(t *testing.T) {
	var log bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&log, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := newProgress(2, failWriter{}, logger)
	assert.NotPanics(t, func() {
		p.step()
		p.step()
		p.finish()
	})
	assert.NotContains(t, log.String(), "level=ERROR")
}
