package workload

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Result summarizes one load or run phase.
type Result struct {
	RunID      string
	Phase      string
	Operations int64
	Errors     int64
	NotFound   int64
	TotalTime  time.Duration
	Throughput float64

	AverageLatency time.Duration
	P95Latency     time.Duration
	P99Latency     time.Duration

	// StatusCounts holds per-status operation totals keyed by status name.
	StatusCounts map[string]int64
}

// ErrorRate returns the fraction of operations that reported ERROR.
func (r *Result) ErrorRate() float64 {
	if r.Operations == 0 {
		return 0
	}
	return float64(r.Errors) / float64(r.Operations)
}

// String renders the result as a multi-line summary for stdout.
func (r *Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] run=%s\n", strings.ToUpper(r.Phase), r.RunID)
	fmt.Fprintf(&b, "  operations:  %d\n", r.Operations)
	fmt.Fprintf(&b, "  errors:      %d (%.2f%%)\n", r.Errors, r.ErrorRate()*100)
	fmt.Fprintf(&b, "  not_found:   %d\n", r.NotFound)
	fmt.Fprintf(&b, "  total_time:  %s\n", r.TotalTime.Round(time.Millisecond))
	fmt.Fprintf(&b, "  throughput:  %.1f ops/sec\n", r.Throughput)
	fmt.Fprintf(&b, "  avg_latency: %s\n", r.AverageLatency.Round(time.Microsecond))
	fmt.Fprintf(&b, "  p95_latency: %s\n", r.P95Latency.Round(time.Microsecond))
	fmt.Fprintf(&b, "  p99_latency: %s", r.P99Latency.Round(time.Microsecond))
	return b.String()
}

// summarize folds raw per-operation latencies and status counts into a
// Result.
func summarize(runID, phase string, latencies []time.Duration, statusCounts map[string]int64, total time.Duration) *Result {
	r := &Result{
		RunID:        runID,
		Phase:        phase,
		Operations:   int64(len(latencies)),
		TotalTime:    total,
		StatusCounts: statusCounts,
	}
	r.Errors = statusCounts["ERROR"]
	r.NotFound = statusCounts["NOT_FOUND"]

	if total > 0 {
		r.Throughput = float64(r.Operations) / total.Seconds()
	}
	if len(latencies) == 0 {
		return r
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	r.AverageLatency = sum / time.Duration(len(sorted))
	r.P95Latency = percentile(sorted, 0.95)
	r.P99Latency = percentile(sorted, 0.99)
	return r
}

// percentile picks the nearest-rank percentile from an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p*float64(len(sorted))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
