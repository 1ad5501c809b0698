package observability

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRecordFetchAggregates(t *testing.T) {
	c := NewStatsCollector()
	c.RecordFetch("docsets", 10*time.Millisecond, true)
	c.RecordFetch("docsets", 20*time.Millisecond, false)
	c.RecordFetch("markdown_rules", 30*time.Millisecond, true)

	snap := c.GetSnapshot()
	if snap.TotalFetches != 3 {
		t.Errorf("TotalFetches = %d, want 3", snap.TotalFetches)
	}
	if snap.FetchErrors != 1 {
		t.Errorf("FetchErrors = %d, want 1", snap.FetchErrors)
	}
	if snap.FetchesByScope["docsets"] != 2 {
		t.Errorf("docsets fetches = %d, want 2", snap.FetchesByScope["docsets"])
	}
	if snap.FetchesByScope["markdown_rules"] != 1 {
		t.Errorf("markdown_rules fetches = %d, want 1", snap.FetchesByScope["markdown_rules"])
	}
	if snap.AvgFetchDuration != 20*time.Millisecond {
		t.Errorf("AvgFetchDuration = %v, want 20ms", snap.AvgFetchDuration)
	}
	if snap.P50FetchDuration != 20*time.Millisecond {
		t.Errorf("P50FetchDuration = %v, want 20ms", snap.P50FetchDuration)
	}
	if snap.P95FetchDuration != 30*time.Millisecond {
		t.Errorf("P95FetchDuration = %v, want 30ms", snap.P95FetchDuration)
	}
	if snap.P99FetchDuration != 30*time.Millisecond {
		t.Errorf("P99FetchDuration = %v, want 30ms", snap.P99FetchDuration)
	}
}

func TestFetchWindowBounded(t *testing.T) {
	c := NewStatsCollector()
	for i := 0; i < fetchWindow+10; i++ {
		c.RecordFetch("docsets", time.Duration(i)*time.Microsecond, true)
	}

	if len(c.durations) != fetchWindow {
		t.Errorf("retained %d duration samples, want %d", len(c.durations), fetchWindow)
	}
	// Counters keep the full tally; only the percentile window is bounded.
	if got := c.GetSnapshot().TotalFetches; got != int64(fetchWindow+10) {
		t.Errorf("TotalFetches = %d, want %d", got, fetchWindow+10)
	}
}

func TestInterceptCounters(t *testing.T) {
	c := NewStatsCollector()
	c.RecordInterceptHit("markdown_rules")
	c.RecordInterceptHit("markdown_rules")
	c.RecordInterceptHit("metadata_schema")
	c.RecordInterceptPass()

	snap := c.GetSnapshot()
	if snap.InterceptHits["markdown_rules"] != 2 {
		t.Errorf("markdown_rules hits = %d, want 2", snap.InterceptHits["markdown_rules"])
	}
	if snap.InterceptHits["metadata_schema"] != 1 {
		t.Errorf("metadata_schema hits = %d, want 1", snap.InterceptHits["metadata_schema"])
	}
	if snap.InterceptPassed != 1 {
		t.Errorf("InterceptPassed = %d, want 1", snap.InterceptPassed)
	}
}

func TestDegradationCounters(t *testing.T) {
	c := NewStatsCollector()
	c.RecordResolution("resolved")
	c.RecordResolution("not_provisioned")
	c.RecordWarning("validation")
	c.RecordSchemaFallback()

	snap := c.GetSnapshot()
	if snap.ResolutionsByOutcome["resolved"] != 1 {
		t.Errorf("resolved outcomes = %d, want 1", snap.ResolutionsByOutcome["resolved"])
	}
	if snap.ResolutionsByOutcome["not_provisioned"] != 1 {
		t.Errorf("not_provisioned outcomes = %d, want 1", snap.ResolutionsByOutcome["not_provisioned"])
	}
	if snap.WarningsByCategory["validation"] != 1 {
		t.Errorf("validation warnings = %d, want 1", snap.WarningsByCategory["validation"])
	}
	if snap.SchemaFallbacks != 1 {
		t.Errorf("SchemaFallbacks = %d, want 1", snap.SchemaFallbacks)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	c := NewStatsCollector()
	c.RecordInterceptHit("markdown_rules")

	snap := c.GetSnapshot()
	snap.InterceptHits["markdown_rules"] = 99

	if got := c.GetSnapshot().InterceptHits["markdown_rules"]; got != 1 {
		t.Errorf("collector count = %d after snapshot mutation, want 1", got)
	}
}

func TestFormatStats(t *testing.T) {
	c := NewStatsCollector()
	c.RecordFetch("markdown_rules", 10*time.Millisecond, true)
	c.RecordFetch("docsets", 20*time.Millisecond, true)
	c.RecordInterceptHit("metadata_schema")
	c.RecordInterceptPass()
	c.RecordResolution("resolved")
	c.RecordWarning("validation")
	c.RecordSchemaFallback()

	out := c.GetSnapshot().FormatStats()
	for _, want := range []string{
		"Fetches: 2 total, 0 failed",
		"docsets: 1",
		"markdown_rules: 1",
		"Fetch durations:",
		"Virtual endpoint hits:",
		"metadata_schema: 1",
		"Forwarded to network: 1",
		"resolved: 1",
		"validation: 1",
		"Schema fallbacks: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Index(out, "docsets") > strings.Index(out, "markdown_rules") {
		t.Errorf("scope counts are not key-sorted:\n%s", out)
	}
}

func TestFormatStatsEmpty(t *testing.T) {
	out := NewStatsCollector().GetSnapshot().FormatStats()
	if !strings.Contains(out, "Fetches: 0 total, 0 failed") {
		t.Errorf("output missing zero fetch line:\n%s", out)
	}
	if strings.Contains(out, "Fetch durations") {
		t.Errorf("empty snapshot should omit duration percentiles:\n%s", out)
	}
}

func TestConcurrentRecording(t *testing.T) {
	c := NewStatsCollector()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				c.RecordFetch("docsets", time.Millisecond, true)
				c.RecordInterceptPass()
			}
		}()
	}
	wg.Wait()

	snap := c.GetSnapshot()
	if snap.TotalFetches != 200 {
		t.Errorf("TotalFetches = %d, want 200", snap.TotalFetches)
	}
	if snap.InterceptPassed != 200 {
		t.Errorf("InterceptPassed = %d, want 200", snap.InterceptPassed)
	}
}

func TestGetStatsCollectorStable(t *testing.T) {
	if GetStatsCollector() != GetStatsCollector() {
		t.Error("expected a single process-wide collector")
	}
}
