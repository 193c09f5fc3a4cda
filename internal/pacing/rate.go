package pacing

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// rateStabilityThreshold is the maximum rate stddev as a fraction of the
	// mean rate. 30 Hz mean is stable below 4.5 Hz stddev.
	rateStabilityThreshold = 0.15

	// jitterStabilityThreshold is the maximum mean jitter as a fraction of
	// the expected cycle interval.
	jitterStabilityThreshold = 0.20
)

// RateStats summarizes cycle completion times.
type RateStats struct {
	Cycles       int
	Duration     time.Duration
	RateMean     float64 // cycles per second over Duration
	RateStdDev   float64
	RateMin      float64
	RateMax      float64
	JitterMean   float64 // seconds
	JitterStdDev float64
	JitterMax    float64
	IsStable     bool
}

// CalculateRateStats computes rate and jitter statistics from cycle
// completion times. A series is stable when the instantaneous rate stddev is
// under 15% of the mean and the mean jitter is under 20% of the expected
// interval.
func CalculateRateStats(times []time.Time, total time.Duration) RateStats {
	n := len(times)
	if n == 0 || total <= 0 {
		return RateStats{Cycles: n, Duration: total}
	}

	rateMean := float64(n) / total.Seconds()

	instant := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		if iv := times[i].Sub(times[i-1]).Seconds(); iv > 0 {
			instant = append(instant, 1.0/iv)
		}
	}
	if len(instant) == 0 {
		return RateStats{Cycles: n, Duration: total, RateMean: rateMean}
	}

	// Spread is measured around the overall rate, not the mean of the
	// instantaneous rates.
	var sq float64
	for _, r := range instant {
		d := r - rateMean
		sq += d * d
	}
	rateStdDev := math.Sqrt(sq / float64(len(instant)))

	expected := 1.0 / rateMean
	jitters := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		jitters = append(jitters, math.Abs(times[i].Sub(times[i-1]).Seconds()-expected))
	}
	jitterMean, jitterStdDev := stat.PopMeanStdDev(jitters, nil)

	return RateStats{
		Cycles:       n,
		Duration:     total,
		RateMean:     rateMean,
		RateStdDev:   rateStdDev,
		RateMin:      floats.Min(instant),
		RateMax:      floats.Max(instant),
		JitterMean:   jitterMean,
		JitterStdDev: jitterStdDev,
		JitterMax:    floats.Max(jitters),
		IsStable:     rateStdDev < rateMean*rateStabilityThreshold && jitterMean < expected*jitterStabilityThreshold,
	}
}
