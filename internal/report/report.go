// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package report collects benchmark sessions, appends them to a JSON
// history file and renders throughput charts.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"code.hybscloud.com/waitq/internal/bench"
)

// SystemInfo describes the machine a session ran on.
type SystemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH      string  `json:"go_arch"`
	GoVersion   string  `json:"go_version"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
}

// Gather collects CPU and memory details. Fields gopsutil cannot read on
// this platform are left zero.
func Gather() SystemInfo {
	info := SystemInfo{
		NumCPU:    runtime.NumCPU(),
		GOARCH:    runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

// Report is one benchmark session.
type Report struct {
	SessionID   uuid.UUID      `json:"session_id"`
	SessionTime string         `json:"session_time"`
	System      SystemInfo     `json:"system_info"`
	Results     []bench.Result `json:"results"`
}

// New starts a session stamped with a fresh ID and the current time.
func New(system SystemInfo) *Report {
	return &Report{
		SessionID:   uuid.New(),
		SessionTime: time.Now().Format(time.RFC3339),
		System:      system,
	}
}

// Add appends a run result.
func (r *Report) Add(res bench.Result) {
	r.Results = append(r.Results, res)
}

// AppendJSON appends r to the JSON array stored at path, creating the
// file if needed.
func (r *Report) AppendJSON(path string) error {
	var sessions []Report
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("report: read %s: %w", path, err)
	case len(data) > 0:
		if err := json.Unmarshal(data, &sessions); err != nil {
			return fmt.Errorf("report: decode %s: %w", path, err)
		}
	}
	sessions = append(sessions, *r)

	out, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

// Load reads every session stored at path.
func Load(path string) ([]Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: read %s: %w", path, err)
	}
	var sessions []Report
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("report: decode %s: %w", path, err)
	}
	return sessions, nil
}

// Median returns the median throughput per variant, variants sorted by name.
func (r *Report) Median() ([]bench.Variant, []float64) {
	byVariant := make(map[bench.Variant][]float64)
	for _, res := range r.Results {
		byVariant[res.Variant] = append(byVariant[res.Variant], res.Throughput)
	}
	variants := make([]bench.Variant, 0, len(byVariant))
	for v := range byVariant {
		variants = append(variants, v)
	}
	slices.Sort(variants)

	medians := make([]float64, len(variants))
	for i, v := range variants {
		medians[i] = median(byVariant[v])
	}
	return variants, medians
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := slices.Clone(xs)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// Chart writes a bar chart of median throughput per variant. The format
// follows the extension of path (.png, .svg, .pdf, ...).
func (r *Report) Chart(path string) error {
	variants, medians := r.Median()
	if len(variants) == 0 {
		return errors.New("report: no results to chart")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Median throughput, %d CPU(s)", r.System.NumCPU)
	p.Y.Label.Text = "msgs/sec"
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(plotter.Values(medians), vg.Points(40))
	if err != nil {
		return fmt.Errorf("report: bar chart: %w", err)
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)

	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = string(v)
	}
	p.NominalX(names...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}
