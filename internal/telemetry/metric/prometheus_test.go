package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("registry field is nil")
	}
	if r.RequestsTotal == nil || r.RequestDuration == nil || r.RateLimited == nil || r.RehashRequests == nil {
		t.Error("request metrics should be initialised")
	}
}

func TestGlobal(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() should return the same instance")
	}
	if Handler() == nil {
		t.Error("Handler() returned nil")
	}
}

func TestHandler_RuntimeMetrics(t *testing.T) {
	body := scrape(t, NewRegistry())
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
}

func TestRequestMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordRequest("http", "GET", "200")
	r.RecordRequest("http", "GET", "200")
	r.RecordRequest("redis", "SET", "OK")
	r.ObserveRequestDuration("http", "GET", 0.005)
	r.ObserveRequestDuration("redis", "SET", 0.001)
	r.IncRateLimited("http")
	r.RecordRehash(true)
	r.RecordRehash(false)

	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("http", "GET", "200")); got != 2 {
		t.Errorf("requests_total{http,GET,200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.RateLimited.WithLabelValues("http")); got != 1 {
		t.Errorf("rate_limited_total{http} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.RehashRequests.WithLabelValues("error")); got != 1 {
		t.Errorf("rehash_requests_total{error} = %v, want 1", got)
	}

	body := scrape(t, r)
	for _, want := range []string{
		"hashguard_requests_total",
		"hashguard_request_duration_seconds_bucket",
		"hashguard_rate_limited_total",
		"hashguard_rehash_requests_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in output", want)
		}
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.RecordRequest("http", "GET", "200")
				r.ObserveRequestDuration("http", "GET", 0.001)
			}
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("http", "GET", "200")); got != 1000 {
		t.Errorf("requests_total = %v, want 1000", got)
	}
}
