// Package pacing measures the rate at which the bridge completes update
// cycles. The skeleton tracker paces the engine, so the cycle rate is the
// effective skeleton rate seen by subscribers.
package pacing

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowSize is the number of samples kept by a Window.
const WindowSize = 128

// Window is a fixed ring buffer of float samples (cycle intervals in
// milliseconds, dispatch latencies). It is not safe for concurrent use; the
// bridge only touches it from the update goroutine.
type Window struct {
	Samples [WindowSize]float64
	Count   int
	Index   int
}

// AddSample stores v, overwriting the oldest sample once full.
func (w *Window) AddSample(v float64) {
	w.Samples[w.Index] = v
	w.Index = (w.Index + 1) % len(w.Samples)
	if w.Count < len(w.Samples) {
		w.Count++
	}
}

// Values returns a copy of the stored samples, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, 0, w.Count)
	start := 0
	if w.Count == len(w.Samples) {
		start = w.Index
	}
	for i := 0; i < w.Count; i++ {
		out = append(out, w.Samples[(start+i)%len(w.Samples)])
	}
	return out
}

// GetStats returns mean, 95th percentile and max of the stored samples.
// All three are zero for an empty window.
func (w *Window) GetStats() (mean, p95, max float64) {
	if w.Count == 0 {
		return 0, 0, 0
	}
	vals := w.Values()
	sort.Float64s(vals)
	mean = stat.Mean(vals, nil)
	p95 = stat.Quantile(0.95, stat.Empirical, vals, nil)
	max = vals[len(vals)-1]
	return mean, p95, max
}

// Reset drops every sample.
func (w *Window) Reset() {
	*w = Window{}
}
