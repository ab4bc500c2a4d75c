// Package stats aggregates exchange latencies into HDR histogram summaries.
package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// Values are recorded in microseconds, from 1µs to 1 hour.
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// Recorder collects per-exchange results. It is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	total     *hdrhistogram.Histogram
	ttfb      *hdrhistogram.Histogram
	statuses  map[int]int64
	errors    int64
	bytes     int64
	startTime time.Time
}

// NewRecorder creates an empty Recorder. The wall clock starts now.
func NewRecorder() *Recorder {
	return &Recorder{
		total:     hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		ttfb:      hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		statuses:  make(map[int]int64),
		startTime: time.Now(),
	}
}

// Sample is the outcome of one exchange.
type Sample struct {
	StatusCode      int
	Total           time.Duration
	TimeToFirstByte time.Duration
	BodyBytes       int
}

// Record adds a completed exchange.
func (r *Recorder) Record(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Out-of-range values are clamped rather than dropped.
	r.total.RecordValue(clamp(s.Total.Microseconds()))
	if s.TimeToFirstByte > 0 {
		r.ttfb.RecordValue(clamp(s.TimeToFirstByte.Microseconds()))
	}
	r.statuses[s.StatusCode]++
	r.bytes += int64(s.BodyBytes)
}

// RecordError counts an exchange that failed before a response was read.
func (r *Recorder) RecordError() {
	r.mu.Lock()
	r.errors++
	r.mu.Unlock()
}

func clamp(us int64) int64 {
	if us < histogramMin {
		return histogramMin
	}
	if us > histogramMax {
		return histogramMax
	}
	return us
}

// Latency is a distribution summary.
type Latency struct {
	Min    time.Duration `json:"min" yaml:"min"`
	Mean   time.Duration `json:"mean" yaml:"mean"`
	StdDev time.Duration `json:"stdDev" yaml:"stdDev"`
	P50    time.Duration `json:"p50" yaml:"p50"`
	P90    time.Duration `json:"p90" yaml:"p90"`
	P99    time.Duration `json:"p99" yaml:"p99"`
	Max    time.Duration `json:"max" yaml:"max"`
}

// Summary is a point-in-time snapshot of a Recorder.
type Summary struct {
	Requests        int64         `json:"requests" yaml:"requests"`
	Errors          int64         `json:"errors" yaml:"errors"`
	StatusCodes     map[int]int64 `json:"statusCodes" yaml:"statusCodes"`
	BodyBytes       int64         `json:"bodyBytes" yaml:"bodyBytes"`
	Elapsed         time.Duration `json:"elapsed" yaml:"elapsed"`
	Latency         Latency       `json:"latency" yaml:"latency"`
	TimeToFirstByte Latency       `json:"timeToFirstByte" yaml:"timeToFirstByte"`
}

// RequestsPerSecond is the completed-exchange rate over the elapsed time.
func (s Summary) RequestsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Requests) / s.Elapsed.Seconds()
}

// Summary snapshots the recorded values.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	codes := make(map[int]int64, len(r.statuses))
	for code, n := range r.statuses {
		codes[code] = n
	}

	return Summary{
		Requests:        r.total.TotalCount(),
		Errors:          r.errors,
		StatusCodes:     codes,
		BodyBytes:       r.bytes,
		Elapsed:         time.Since(r.startTime),
		Latency:         summarize(r.total),
		TimeToFirstByte: summarize(r.ttfb),
	}
}

func summarize(h *hdrhistogram.Histogram) Latency {
	if h.TotalCount() == 0 {
		return Latency{}
	}
	return Latency{
		Min:    time.Duration(h.Min()) * time.Microsecond,
		Mean:   time.Duration(h.Mean()) * time.Microsecond,
		StdDev: time.Duration(h.StdDev()) * time.Microsecond,
		P50:    time.Duration(h.ValueAtQuantile(50)) * time.Microsecond,
		P90:    time.Duration(h.ValueAtQuantile(90)) * time.Microsecond,
		P99:    time.Duration(h.ValueAtQuantile(99)) * time.Microsecond,
		Max:    time.Duration(h.Max()) * time.Microsecond,
	}
}
