package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// maxSamples bounds each timing ring so long-running processes stay flat.
const maxSamples = 1000

type sample struct {
	label    string
	duration time.Duration
}

// Collector gathers request counters and duration samples and renders them in
// Prometheus text exposition format. It is safe for concurrent use.
type Collector struct {
	mu sync.Mutex

	apiDurations   []sample
	spikeDurations []sample
	requestCounts  map[string]int64
	errorCounts    map[string]int64
	startedAt      time.Time
}

// NewCollector builds an empty collector.
func NewCollector() *Collector {
	return &Collector{
		requestCounts: map[string]int64{},
		errorCounts:   map[string]int64{},
		startedAt:     time.Now(),
	}
}

// RecordAPIDuration records one handler response time.
func (c *Collector) RecordAPIDuration(endpoint string, d time.Duration) {
	c.mu.Lock()
	c.apiDurations = appendSample(c.apiDurations, sample{label: endpoint, duration: d})
	c.mu.Unlock()
}

// RecordDetectionDuration records one spike/anomaly detection run.
func (c *Collector) RecordDetectionDuration(method string, d time.Duration) {
	c.mu.Lock()
	c.spikeDurations = appendSample(c.spikeDurations, sample{label: method, duration: d})
	c.mu.Unlock()
}

// IncRequest counts one request against the endpoint.
func (c *Collector) IncRequest(endpoint string) {
	c.mu.Lock()
	c.requestCounts[endpoint]++
	c.mu.Unlock()
}

// IncError counts one failure against the endpoint and error kind.
func (c *Collector) IncError(endpoint, kind string) {
	c.mu.Lock()
	c.errorCounts[endpoint+":"+kind]++
	c.mu.Unlock()
}

func appendSample(ring []sample, s sample) []sample {
	ring = append(ring, s)
	if len(ring) > maxSamples {
		ring = ring[len(ring)-maxSamples:]
	}
	return ring
}

// Render produces the Prometheus text format for all collected series.
func (c *Collector) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder

	writeSummary(&b, "api_response_time_seconds", "API handler response time", c.apiDurations)
	writeSummary(&b, "spike_detection_time_seconds", "Spike detection run time", c.spikeDurations)

	b.WriteString("# HELP request_count_total Total requests per endpoint\n")
	b.WriteString("# TYPE request_count_total counter\n")
	for _, k := range sortedKeys(c.requestCounts) {
		fmt.Fprintf(&b, "request_count_total{endpoint=%q} %d\n", k, c.requestCounts[k])
	}

	b.WriteString("# HELP error_count_total Total errors per endpoint and kind\n")
	b.WriteString("# TYPE error_count_total counter\n")
	for _, k := range sortedKeys(c.errorCounts) {
		endpoint, kind, _ := strings.Cut(k, ":")
		fmt.Fprintf(&b, "error_count_total{endpoint=%q,error_type=%q} %d\n", endpoint, kind, c.errorCounts[k])
	}

	b.WriteString("# HELP service_uptime_seconds Seconds since process start\n")
	b.WriteString("# TYPE service_uptime_seconds gauge\n")
	fmt.Fprintf(&b, "service_uptime_seconds %.0f\n", time.Since(c.startedAt).Seconds())

	return b.String()
}

func writeSummary(b *strings.Builder, name, help string, samples []sample) {
	var (
		sum float64
		max float64
	)
	// Summarize over the most recent 100 samples, mirroring a short window.
	window := samples
	if len(window) > 100 {
		window = window[len(window)-100:]
	}
	for _, s := range window {
		secs := s.duration.Seconds()
		sum += secs
		if secs > max {
			max = secs
		}
	}
	avg := 0.0
	if len(window) > 0 {
		avg = sum / float64(len(window))
	}

	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s summary\n", name)
	fmt.Fprintf(b, "%s{quantile=\"0.5\"} %g\n", name, avg)
	fmt.Fprintf(b, "%s{quantile=\"0.95\"} %g\n", name, max)
	fmt.Fprintf(b, "%s_count %d\n", name, len(window))
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
