package observability

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// fetchWindow bounds how many fetch durations the collector keeps for
// percentile calculation. The serve daemon runs for days; an unbounded
// sample would grow with every probe cycle.
const fetchWindow = 1024

// StatsCollector aggregates in-process counters for the status page. It is
// safe for concurrent use. Construct with NewStatsCollector.
type StatsCollector struct {
	mu sync.Mutex

	fetches        int64
	fetchErrors    int64
	fetchesByScope map[string]int64
	durations      []time.Duration
	cursor         int

	interceptHits   map[string]int64
	interceptPassed int64

	resolutions     map[string]int64
	warnings        map[string]int64
	schemaFallbacks int64
}

func NewStatsCollector() *StatsCollector {
	return &StatsCollector{
		fetchesByScope: make(map[string]int64),
		interceptHits:  make(map[string]int64),
		resolutions:    make(map[string]int64),
		warnings:       make(map[string]int64),
	}
}

// RecordFetch records one completed upstream fetch under its scope.
func (c *StatsCollector) RecordFetch(scope string, duration time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fetches++
	c.fetchesByScope[scope]++
	if !ok {
		c.fetchErrors++
	}
	if len(c.durations) < fetchWindow {
		c.durations = append(c.durations, duration)
		return
	}
	// Window full: overwrite the oldest sample.
	c.durations[c.cursor] = duration
	c.cursor = (c.cursor + 1) % fetchWindow
}

// RecordInterceptHit records a request answered by a virtual endpoint.
func (c *StatsCollector) RecordInterceptHit(endpoint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interceptHits[endpoint]++
}

// RecordInterceptPass records a request forwarded to the real network.
func (c *StatsCollector) RecordInterceptPass() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interceptPassed++
}

// RecordResolution records the outcome of a build configuration resolution:
// resolved, not_provisioned, skipped, or failed.
func (c *StatsCollector) RecordResolution(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolutions[outcome]++
}

// RecordWarning records an absorbed warning by category.
func (c *StatsCollector) RecordWarning(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings[category]++
}

// RecordSchemaFallback records a metadata schema degraded to the empty
// document.
func (c *StatsCollector) RecordSchemaFallback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemaFallbacks++
}

// GetSnapshot returns a copy of the current counters together with fetch
// duration percentiles over the retained window.
func (c *StatsCollector) GetSnapshot() StatsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := StatsSnapshot{
		TotalFetches:         c.fetches,
		FetchErrors:          c.fetchErrors,
		FetchesByScope:       maps.Clone(c.fetchesByScope),
		InterceptHits:        maps.Clone(c.interceptHits),
		InterceptPassed:      c.interceptPassed,
		ResolutionsByOutcome: maps.Clone(c.resolutions),
		WarningsByCategory:   maps.Clone(c.warnings),
		SchemaFallbacks:      c.schemaFallbacks,
	}
	if len(c.durations) == 0 {
		return snap
	}

	sorted := slices.Clone(c.durations)
	slices.Sort(sorted)
	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	snap.AvgFetchDuration = total / time.Duration(len(sorted))
	snap.P50FetchDuration = percentile(sorted, 50)
	snap.P95FetchDuration = percentile(sorted, 95)
	snap.P99FetchDuration = percentile(sorted, 99)
	return snap
}

// percentile reads the pth percentile from an already sorted sample.
func percentile(sorted []time.Duration, p int) time.Duration {
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// StatsSnapshot is a point-in-time copy of the collector's counters.
type StatsSnapshot struct {
	TotalFetches         int64
	FetchErrors          int64
	FetchesByScope       map[string]int64
	AvgFetchDuration     time.Duration
	P50FetchDuration     time.Duration
	P95FetchDuration     time.Duration
	P99FetchDuration     time.Duration
	InterceptHits        map[string]int64
	InterceptPassed      int64
	ResolutionsByOutcome map[string]int64
	WarningsByCategory   map[string]int64
	SchemaFallbacks      int64
}

// FormatStats renders the snapshot as the plain-text block embedded in the
// status page. Map sections are key-sorted so consecutive renders are
// directly comparable.
func (s StatsSnapshot) FormatStats() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Fetches: %d total, %d failed", s.TotalFetches, s.FetchErrors)
	if s.TotalFetches > 0 {
		fmt.Fprintf(&b, " (%.1f%% error rate)", float64(s.FetchErrors)/float64(s.TotalFetches)*100)
	}
	b.WriteByte('\n')
	writeCounts(&b, "Fetches by scope", s.FetchesByScope)
	if s.TotalFetches > 0 {
		fmt.Fprintf(&b, "Fetch durations: avg %v, p50 %v, p95 %v, p99 %v\n",
			s.AvgFetchDuration, s.P50FetchDuration, s.P95FetchDuration, s.P99FetchDuration)
	}
	writeCounts(&b, "Virtual endpoint hits", s.InterceptHits)
	fmt.Fprintf(&b, "Forwarded to network: %d\n", s.InterceptPassed)
	writeCounts(&b, "Resolutions", s.ResolutionsByOutcome)
	writeCounts(&b, "Warnings", s.WarningsByCategory)
	fmt.Fprintf(&b, "Schema fallbacks: %d\n", s.SchemaFallbacks)

	return b.String()
}

func writeCounts(b *strings.Builder, label string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}
	b.WriteString(label)
	b.WriteString(":\n")
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(b, "  %s: %d\n", k, counts[k])
	}
}

var globalStats = NewStatsCollector()

// GetStatsCollector returns the process-wide collector.
func GetStatsCollector() *StatsCollector {
	return globalStats
}
