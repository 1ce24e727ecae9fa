package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu             sync.Mutex
	requestCount   map[string]int64
	requestNanos   map[string]int64
	errorCount     map[string]int64
	coverageChecks map[string]int64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Requests        map[string]int64 `json:"requests"`
	RequestAvgMilli map[string]int64 `json:"request_avg_ms"`
	Errors          map[string]int64 `json:"errors"`
	CoverageChecks  map[string]int64 `json:"coverage_checks"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:   make(map[string]int64),
		requestNanos:   make(map[string]int64),
		errorCount:     make(map[string]int64),
		coverageChecks: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestNanos[key] += duration.Nanoseconds()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordCoverageCheck counts a coverage validation outcome for a shift type.
func (m *Metrics) RecordCoverageCheck(shiftType string, valid bool) {
	if m == nil {
		return
	}
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coverageChecks[shiftType+"|"+outcome]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Requests:        map[string]int64{},
		RequestAvgMilli: map[string]int64{},
		Errors:          map[string]int64{},
		CoverageChecks:  map[string]int64{},
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		snap.Requests[k] = v
		if v > 0 {
			snap.RequestAvgMilli[k] = time.Duration(m.requestNanos[k] / v).Milliseconds()
		}
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	for k, v := range m.coverageChecks {
		snap.CoverageChecks[k] = v
	}
	return snap
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
