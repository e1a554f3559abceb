// Package metrics keeps per-route request latency histograms.
package metrics

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/trucksigns/truck-signs-api/app/api"
)

const (
	// Latencies are recorded in microseconds, up to one minute.
	minLatency = 1
	maxLatency = int64(time.Minute / time.Microsecond)
	sigFigs    = 3

	unmatchedRoute = "unmatched"
)

// Latency is the summary of one route, in milliseconds.
type Latency struct {
	Route string  `json:"route"`
	Count int64   `json:"count"`
	Mean  float64 `json:"mean_ms"`
	P50   float64 `json:"p50_ms"`
	P95   float64 `json:"p95_ms"`
	P99   float64 `json:"p99_ms"`
	Max   float64 `json:"max_ms"`
}

type Recorder struct {
	mu     sync.Mutex
	routes map[string]*hdrhistogram.Histogram
}

func NewRecorder() *Recorder {
	return &Recorder{routes: make(map[string]*hdrhistogram.Histogram)}
}

// Record adds one observation for route. Values outside the histogram range are clamped.
func (rec *Recorder) Record(route string, d time.Duration) {
	v := max(int64(d/time.Microsecond), minLatency)
	v = min(v, maxLatency)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	h, ok := rec.routes[route]
	if !ok {
		h = hdrhistogram.New(minLatency, maxLatency, sigFigs)
		rec.routes[route] = h
	}
	_ = h.RecordValue(v)
}

// Snapshot returns the current summaries sorted by route.
func (rec *Recorder) Snapshot() []Latency {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	out := make([]Latency, 0, len(rec.routes))
	for route, h := range rec.routes {
		out = append(out, Latency{
			Route: route,
			Count: h.TotalCount(),
			Mean:  h.Mean() / 1000,
			P50:   ms(h.ValueAtQuantile(50)),
			P95:   ms(h.ValueAtQuantile(95)),
			P99:   ms(h.ValueAtQuantile(99)),
			Max:   ms(h.Max()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

func ms(us int64) float64 {
	return float64(us) / 1000
}

// Middleware times every request under the pattern the mux matched.
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		rec.Record(route, time.Since(start))
	})
}

func (rec *Recorder) HandleLatency(w http.ResponseWriter, r *http.Request) {
	api.OKResponse(w, http.StatusOK, map[string][]Latency{"routes": rec.Snapshot()})
}
