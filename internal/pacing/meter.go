package pacing

import "time"

// Snapshot is a point-in-time view of a Meter.
type Snapshot struct {
	Rate RateStats

	// Interval between consecutive cycle completions, milliseconds.
	IntervalMeanMS float64
	IntervalP95MS  float64
	IntervalMaxMS  float64

	// Duration of one Update call (wait plus hooks), milliseconds.
	UpdateMeanMS float64
	UpdateP95MS  float64
	UpdateMaxMS  float64
}

// Meter tracks the most recent WindowSize cycles.
type Meter struct {
	times     []time.Time
	intervals Window
	update    Window
}

// NewMeter returns an empty meter.
func NewMeter() *Meter {
	return &Meter{times: make([]time.Time, 0, WindowSize)}
}

// Mark records a completed cycle at t.
func (m *Meter) Mark(t time.Time) {
	if n := len(m.times); n > 0 {
		m.intervals.AddSample(float64(t.Sub(m.times[n-1])) / float64(time.Millisecond))
	}
	if len(m.times) == WindowSize {
		copy(m.times, m.times[1:])
		m.times = m.times[:WindowSize-1]
	}
	m.times = append(m.times, t)
}

// ObserveUpdate records the duration of one Update call.
func (m *Meter) ObserveUpdate(d time.Duration) {
	m.update.AddSample(float64(d) / float64(time.Millisecond))
}

// Snapshot computes statistics over the current window.
func (m *Meter) Snapshot() Snapshot {
	var s Snapshot
	if n := len(m.times); n > 1 {
		// n marks span n-1 intervals; scale so RateMean is per interval.
		span := m.times[n-1].Sub(m.times[0])
		s.Rate = CalculateRateStats(m.times, span*time.Duration(n)/time.Duration(n-1))
	} else {
		s.Rate.Cycles = n
	}
	s.IntervalMeanMS, s.IntervalP95MS, s.IntervalMaxMS = m.intervals.GetStats()
	s.UpdateMeanMS, s.UpdateP95MS, s.UpdateMaxMS = m.update.GetStats()
	return s
}

// Reset forgets every sample.
func (m *Meter) Reset() {
	m.times = m.times[:0]
	m.intervals.Reset()
	m.update.Reset()
}
