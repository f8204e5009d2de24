package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	requestTime  map[string]time.Duration
	errorCount   map[string]int64
	eventCount   map[string]int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Requests      map[string]int64 `json:"requests"`
	AvgLatencyMs  map[string]int64 `json:"avg_latency_ms"`
	Errors        map[string]int64 `json:"errors"`
	Events        map[string]int64 `json:"events"`
	TotalRequests int64            `json:"total_requests"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		requestTime:  make(map[string]time.Duration),
		errorCount:   make(map[string]int64),
		eventCount:   make(map[string]int64),
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
	m.requestTime[key] += duration
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

// RecordEvent increments the counter of a published domain event.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventCount[eventType]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Requests:     map[string]int64{},
		AvgLatencyMs: map[string]int64{},
		Errors:       map[string]int64{},
		Events:       map[string]int64{},
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		snap.Requests[k] = v
		snap.TotalRequests += v
		if v > 0 {
			snap.AvgLatencyMs[k] = (m.requestTime[k] / time.Duration(v)).Milliseconds()
		}
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	for k, v := range m.eventCount {
		snap.Events[k] = v
	}
	return snap
}

// ErrorKeys lists recorded error keys in sorted order.
func (s MetricsSnapshot) ErrorKeys() []string {
	keys := make([]string, 0, len(s.Errors))
	for k := range s.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
