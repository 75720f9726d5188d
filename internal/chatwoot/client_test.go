package chatwoot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchCount(t *testing.T) {
	var gotPath, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("api_access_token")
		if r.URL.Query().Get("metric") != string(MetricOutgoing) {
			t.Errorf("metric = %q", r.URL.Query().Get("metric"))
		}
		if r.URL.Query().Get("type") != "account" {
			t.Errorf("type = %q", r.URL.Query().Get("type"))
		}
		_, _ = w.Write([]byte(`[{"value":5,"timestamp":1000},{"value":7,"timestamp":2000}]`))
	}))
	defer server.Close()

	client := New(server.URL+"/api/v2/accounts/1", "secret-token")
	buckets, errFetch := client.FetchCount(context.Background(), MetricOutgoing, 0, 3000)
	if errFetch != nil {
		t.Fatalf("FetchCount: %v", errFetch)
	}
	if gotPath != "/api/v2/accounts/1/reports" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotToken != "secret-token" {
		t.Fatalf("token header = %q", gotToken)
	}
	if len(buckets) != 2 || buckets[1].Value != 7 {
		t.Fatalf("buckets = %+v", buckets)
	}
}

func TestFetchCountStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, errFetch := New(server.URL, "t").FetchCount(context.Background(), MetricIncoming, 0, 1)
	var statusErr *StatusError
	if !errors.As(errFetch, &statusErr) {
		t.Fatalf("error = %v, want StatusError", errFetch)
	}
	if statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", statusErr.Code)
	}
}

func TestFetchCountRetriesOnceOnTimeout(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			// Outlast the client timeout so the first attempt fails.
			time.Sleep(200 * time.Millisecond)
			return
		}
		_, _ = w.Write([]byte(`[{"value":3,"timestamp":1000}]`))
	}))
	defer server.Close()

	client := NewWithHTTPClient(server.URL, "t", &http.Client{Timeout: 50 * time.Millisecond})
	buckets, errFetch := client.FetchCount(context.Background(), MetricOutgoing, 0, 1)
	if errFetch != nil {
		t.Fatalf("FetchCount: %v", errFetch)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
	if len(buckets) != 1 || buckets[0].Value != 3 {
		t.Fatalf("buckets = %+v", buckets)
	}
}

func TestFetchCountDoesNotRetryStatusErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, errFetch := New(server.URL, "t").FetchCount(context.Background(), MetricIncoming, 0, 1)
	var statusErr *StatusError
	if !errors.As(errFetch, &statusErr) {
		t.Fatalf("error = %v, want StatusError", errFetch)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want single attempt", got)
	}
}

func TestFetchContactTotalUsesMetaCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{"count":120},"payload":[{},{}]}`))
	}))
	defer server.Close()

	total, errFetch := New(server.URL, "t").FetchContactTotal(context.Background())
	if errFetch != nil {
		t.Fatalf("FetchContactTotal: %v", errFetch)
	}
	if total != 120 {
		t.Fatalf("total = %d, want 120", total)
	}
}

func TestFetchContactTotalFallsBackToPayloadLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"payload":[{},{},{}]}`))
	}))
	defer server.Close()

	total, errFetch := New(server.URL, "t").FetchContactTotal(context.Background())
	if errFetch != nil {
		t.Fatalf("FetchContactTotal: %v", errFetch)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
}

func TestFetchContactTotalSwapsToV1(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"meta":{"count":1}}`))
	}))
	defer server.Close()

	client := New(server.URL+"/api/v2/accounts/7", "t")
	if _, errFetch := client.FetchContactTotal(context.Background()); errFetch != nil {
		t.Fatalf("FetchContactTotal: %v", errFetch)
	}
	if gotPath != "/api/v1/accounts/7/contacts" {
		t.Fatalf("path = %q, want /api/v1/accounts/7/contacts", gotPath)
	}
}
