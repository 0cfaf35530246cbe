// Package stats tracks running query-latency statistics for the batch
// dispatcher's diagnostics output, using Welford's online algorithm exactly
// as apps/poller/internal/metrics.WelfordState does for vehicle-position
// baselines.
package stats

import "math"

// QueryLatency holds running statistics over a stream of per-request
// processing durations, in O(1) time and space per observation.
type QueryLatency struct {
	count int
	mean  float64
	m2    float64
}

// Observe folds one new duration (in seconds) into the running statistics.
func (q *QueryLatency) Observe(seconds float64) {
	q.count++
	delta := seconds - q.mean
	q.mean += delta / float64(q.count)
	delta2 := seconds - q.mean
	q.m2 += delta * delta2
}

// Count returns the number of observations folded in so far.
func (q *QueryLatency) Count() int {
	return q.count
}

// Mean returns the running mean duration in seconds.
func (q *QueryLatency) Mean() float64 {
	return q.mean
}

// StdDev returns the population standard deviation in seconds. Returns 0
// for fewer than two observations.
func (q *QueryLatency) StdDev() float64 {
	if q.count < 2 {
		return 0
	}
	return math.Sqrt(q.m2 / float64(q.count))
}
