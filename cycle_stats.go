package sensorbridge

import (
	"time"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/pacing"
)

// CycleStats describes the update rate over the most recent cycles.
//
// The skeleton tracker paces Update, so RateMean is the effective skeleton
// rate seen by subscribers. A series is stable when the rate stddev is under
// 15% of the mean and the mean jitter is under 20% of the expected interval.
type CycleStats struct {
	// Cycles is the number of cycles in the window.
	Cycles   int
	Duration time.Duration

	RateMean   float64 // cycles per second
	RateStdDev float64
	RateMin    float64
	RateMax    float64

	JitterMean   float64 // seconds
	JitterStdDev float64
	JitterMax    float64

	IsStable bool

	IntervalMeanMS float64
	IntervalP95MS  float64
	IntervalMaxMS  float64

	UpdateMeanMS float64
	UpdateP95MS  float64
	UpdateMaxMS  float64
}

// CalculateCycleStats computes rate statistics from cycle completion times.
//
// This is a public wrapper around internal/pacing.CalculateRateStats, used
// by callers that time their own loops.
func CalculateCycleStats(times []time.Time, total time.Duration) CycleStats {
	return fromRate(pacing.CalculateRateStats(times, total))
}

func fromRate(r pacing.RateStats) CycleStats {
	return CycleStats{
		Cycles:       r.Cycles,
		Duration:     r.Duration,
		RateMean:     r.RateMean,
		RateStdDev:   r.RateStdDev,
		RateMin:      r.RateMin,
		RateMax:      r.RateMax,
		JitterMean:   r.JitterMean,
		JitterStdDev: r.JitterStdDev,
		JitterMax:    r.JitterMax,
		IsStable:     r.IsStable,
	}
}

func fromSnapshot(s pacing.Snapshot) CycleStats {
	cs := fromRate(s.Rate)
	cs.IntervalMeanMS = s.IntervalMeanMS
	cs.IntervalP95MS = s.IntervalP95MS
	cs.IntervalMaxMS = s.IntervalMaxMS
	cs.UpdateMeanMS = s.UpdateMeanMS
	cs.UpdateP95MS = s.UpdateP95MS
	cs.UpdateMaxMS = s.UpdateMaxMS
	return cs
}
