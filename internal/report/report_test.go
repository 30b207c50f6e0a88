// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package report

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/waitq/internal/bench"
)

func sampleReport() *Report {
	r := New(Gather())
	r.Add(bench.Result{Variant: bench.NonBlocking, Producers: 4, Pushed: 100, Popped: 100, Elapsed: time.Second, Throughput: 300})
	r.Add(bench.Result{Variant: bench.NonBlocking, Producers: 4, Pushed: 100, Popped: 100, Elapsed: time.Second, Throughput: 100})
	r.Add(bench.Result{Variant: bench.NonBlocking, Producers: 4, Pushed: 100, Popped: 100, Elapsed: time.Second, Throughput: 200})
	r.Add(bench.Result{Variant: bench.Locking, Producers: 4, Pushed: 100, Popped: 100, Elapsed: time.Second, Throughput: 50})
	r.Add(bench.Result{Variant: bench.Locking, Producers: 4, Pushed: 100, Popped: 100, Elapsed: time.Second, Throughput: 70})
	return r
}

func TestGather(t *testing.T) {
	info := Gather()
	assert.Equal(t, runtime.NumCPU(), info.NumCPU)
	assert.Equal(t, runtime.GOARCH, info.GOARCH)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestNewStampsSession(t *testing.T) {
	a, b := New(SystemInfo{}), New(SystemInfo{})
	assert.NotEqual(t, uuid.Nil, a.SessionID)
	assert.NotEqual(t, a.SessionID, b.SessionID)
	_, err := time.Parse(time.RFC3339, a.SessionTime)
	assert.NoError(t, err)
}

func TestMedian(t *testing.T) {
	variants, medians := sampleReport().Median()
	require.Equal(t, []bench.Variant{bench.Locking, bench.NonBlocking}, variants)
	assert.InDelta(t, 60.0, medians[0], 1e-9)
	assert.InDelta(t, 200.0, medians[1], 1e-9)
}

func TestAppendJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")

	first := sampleReport()
	require.NoError(t, first.AppendJSON(path))
	second := New(SystemInfo{NumCPU: 1})
	second.Add(bench.Result{Variant: bench.Locking, Popped: 7})
	require.NoError(t, second.AppendJSON(path))

	sessions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.SessionID, sessions[0].SessionID)
	assert.Len(t, sessions[0].Results, 5)
	assert.Equal(t, second.SessionID, sessions[1].SessionID)
	assert.Equal(t, int64(7), sessions[1].Results[0].Popped)
	assert.Equal(t, time.Second, sessions[0].Results[0].Elapsed)
}

func TestAppendJSONRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.ErrorContains(t, sampleReport().AppendJSON(path), "decode")
}

func TestChart(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"chart.png", "chart.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, sampleReport().Chart(path))
		st, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, st.Size())
	}
}

func TestChartEmpty(t *testing.T) {
	err := New(SystemInfo{}).Chart(filepath.Join(t.TempDir(), "chart.png"))
	assert.Error(t, err)
}
