package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserversBeforeInitAreNoops(t *testing.T) {
	if reportGenerateTotal != nil {
		t.Skip("metrics already initialised")
	}
	ObserveReportGenerate("billing", nil, time.Millisecond)
	IncCacheLookup(true)
	ObserveHTTP("GET", 200, time.Millisecond)
}

func TestCounters(t *testing.T) {
	Init(nil)

	before := testutil.ToFloat64(reportGenerateTotal.WithLabelValues("billing", ResultError))
	ObserveReportGenerate("billing", errors.New("boom"), 5*time.Millisecond)
	if got := testutil.ToFloat64(reportGenerateTotal.WithLabelValues("billing", ResultError)); got != before+1 {
		t.Fatalf("report errors = %v, want %v", got, before+1)
	}

	hits := testutil.ToFloat64(reportCacheLookups.WithLabelValues("hit"))
	IncCacheLookup(true)
	if got := testutil.ToFloat64(reportCacheLookups.WithLabelValues("hit")); got != hits+1 {
		t.Fatalf("cache hits = %v", got)
	}

	ObserveHTTP("POST", 503, time.Millisecond)
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("POST", "5xx")); got < 1 {
		t.Fatalf("5xx requests = %v", got)
	}

	IncExportJob("", nil)
	if got := testutil.ToFloat64(exportJobsTotal.WithLabelValues("unknown", ResultSuccess)); got < 1 {
		t.Fatalf("unknown stage not recorded: %v", got)
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 422: "4xx", 500: "5xx"}
	for status, want := range tests {
		if got := statusClass(status); got != want {
			t.Errorf("statusClass(%d) = %s, want %s", status, got, want)
		}
	}
}
