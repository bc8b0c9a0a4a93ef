package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/cricket-api/internal/fetcher"
	"github.com/rohmanhakim/cricket-api/internal/metadata"
	"github.com/rohmanhakim/cricket-api/pkg/limiter"
	"github.com/rohmanhakim/cricket-api/pkg/retry"
	"github.com/rohmanhakim/cricket-api/pkg/timeutil"
)

// mockMetadataSink is a test double for metadata.MetadataSink
type mockMetadataSink struct {
	fetchEvents []fetchEvent
	errorEvents []errorEvent
	cacheEvents []string
}

type fetchEvent struct {
	fetchUrl    string
	httpStatus  int
	duration    time.Duration
	contentType string
	retryCount  int
}

type errorEvent struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
}

func (m *mockMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.errorEvents = append(m.errorEvents, errorEvent{
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     details,
	})
}

func (m *mockMetadataSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
	m.fetchEvents = append(m.fetchEvents, fetchEvent{
		fetchUrl:    fetchUrl,
		httpStatus:  httpStatus,
		duration:    duration,
		contentType: contentType,
		retryCount:  retryCount,
	})
}

func (m *mockMetadataSink) RecordCacheEvent(key string, event metadata.CacheEvent) {
	m.cacheEvents = append(m.cacheEvents, key+":"+string(event))
}

func singleAttemptParam() retry.RetryParam {
	return retry.NewRetryParam(
		0,
		42,
		1,
		timeutil.NewBackoffParam(1*time.Millisecond, 2.0, 10*time.Millisecond),
	)
}

func multiAttemptParam(attempts int) retry.RetryParam {
	return retry.NewRetryParam(
		0,
		42,
		attempts,
		timeutil.NewBackoffParam(1*time.Millisecond, 2.0, 10*time.Millisecond),
	)
}

func newTestFetcher(sink metadata.MetadataSink, timeout time.Duration, retryParam retry.RetryParam) *fetcher.PageFetcher {
	return fetcher.NewPageFetcher(
		sink,
		limiter.NewConcurrentRateLimiter(),
		timeout,
		nil,
		retryParam,
	)
}

func mustParam(t *testing.T, rawURL string) fetcher.FetchParam {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse %q: %v", rawURL, err)
	}
	return fetcher.NewFetchParam(*parsed)
}

func TestFetch_SuccessReturnsBody(t *testing.T) {
	const page = "<html><body><h1>IND vs AUS</h1></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := newTestFetcher(sink, 2*time.Second, singleAttemptParam())

	result, err := f.Fetch(context.Background(), mustParam(t, server.URL))
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if string(result.Body()) != page {
		t.Errorf("body mismatch: got %q", string(result.Body()))
	}
	if result.Code() != http.StatusOK {
		t.Errorf("status = %d, want 200", result.Code())
	}
	if len(sink.fetchEvents) != 1 {
		t.Fatalf("expected 1 fetch event, got %d", len(sink.fetchEvents))
	}
	if sink.fetchEvents[0].httpStatus != http.StatusOK {
		t.Errorf("fetch event status = %d, want 200", sink.fetchEvents[0].httpStatus)
	}
	if len(sink.errorEvents) != 0 {
		t.Errorf("unexpected error events: %+v", sink.errorEvents)
	}
}

func TestFetch_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotCacheControl string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCacheControl = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	f := newTestFetcher(&metadata.NoopSink{}, 2*time.Second, singleAttemptParam())

	_, err := f.Fetch(context.Background(), mustParam(t, server.URL))
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}

	known := false
	for _, ua := range fetcher.DefaultUserAgents {
		if gotUA == ua {
			known = true
			break
		}
	}
	if !known {
		t.Errorf("User-Agent %q not from the default pool", gotUA)
	}
	if gotCacheControl != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", gotCacheControl)
	}
}

func TestFetch_NotFoundStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := newTestFetcher(sink, 2*time.Second, singleAttemptParam())

	_, err := f.Fetch(context.Background(), mustParam(t, server.URL))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var fetchErr *fetcher.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetcher.FetchError, got %T", err)
	}
	if fetchErr.Cause != fetcher.ErrCauseHTTPStatus {
		t.Errorf("cause = %q, want %q", fetchErr.Cause, fetcher.ErrCauseHTTPStatus)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("status code = %d, want 404", fetchErr.StatusCode)
	}
	if fetchErr.IsRetryable() {
		t.Error("404 must not be retryable")
	}
	if len(sink.errorEvents) != 1 || sink.errorEvents[0].cause != metadata.CauseNotFound {
		t.Errorf("expected one error event with cause not_found, got %+v", sink.errorEvents)
	}
}

func TestFetch_ServerErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := newTestFetcher(&metadata.NoopSink{}, 2*time.Second, singleAttemptParam())

	_, err := f.Fetch(context.Background(), mustParam(t, server.URL))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var fetchErr *fetcher.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetcher.FetchError, got %T", err)
	}
	if fetchErr.Cause != fetcher.ErrCauseHTTPStatus {
		t.Errorf("cause = %q, want %q", fetchErr.Cause, fetcher.ErrCauseHTTPStatus)
	}
	if fetchErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status code = %d, want 500", fetchErr.StatusCode)
	}
	if !fetchErr.IsRetryable() {
		t.Error("5xx should be retryable")
	}
}

func TestFetch_NonHTMLContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not":"html"}`))
	}))
	defer server.Close()

	f := newTestFetcher(&metadata.NoopSink{}, 2*time.Second, singleAttemptParam())

	_, err := f.Fetch(context.Background(), mustParam(t, server.URL))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var fetchErr *fetcher.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetcher.FetchError, got %T", err)
	}
	if fetchErr.Cause != fetcher.ErrCauseContentTypeInvalid {
		t.Errorf("cause = %q, want %q", fetchErr.Cause, fetcher.ErrCauseContentTypeInvalid)
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	f := newTestFetcher(&metadata.NoopSink{}, 30*time.Millisecond, singleAttemptParam())

	_, err := f.Fetch(context.Background(), mustParam(t, server.URL))
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}

	var fetchErr *fetcher.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetcher.FetchError, got %T", err)
	}
	if fetchErr.Cause != fetcher.ErrCauseTimeout {
		t.Errorf("cause = %q, want %q", fetchErr.Cause, fetcher.ErrCauseTimeout)
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	f := newTestFetcher(&metadata.NoopSink{}, 500*time.Millisecond, singleAttemptParam())

	_, err := f.Fetch(context.Background(), mustParam(t, serverURL))
	if err == nil {
		t.Fatal("expected network error, got nil")
	}

	var fetchErr *fetcher.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetcher.FetchError, got %T", err)
	}
	if fetchErr.Cause != fetcher.ErrCauseNetworkFailure {
		t.Errorf("cause = %q, want %q", fetchErr.Cause, fetcher.ErrCauseNetworkFailure)
	}
}

func TestFetch_RetriesServerErrorsWhenConfigured(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	f := newTestFetcher(&metadata.NoopSink{}, 2*time.Second, multiAttemptParam(3))

	result, err := f.Fetch(context.Background(), mustParam(t, server.URL))
	if err != nil {
		t.Fatalf("expected success after retries, got: %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("server hits = %d, want 3", got)
	}
	if !strings.Contains(string(result.Body()), "ok") {
		t.Errorf("unexpected body: %q", string(result.Body()))
	}
}

func TestFetch_NotFoundIsNeverRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := newTestFetcher(&metadata.NoopSink{}, 2*time.Second, multiAttemptParam(3))

	_, err := f.Fetch(context.Background(), mustParam(t, server.URL))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestFetch_SingleAttemptDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := newTestFetcher(&metadata.NoopSink{}, 2*time.Second, singleAttemptParam())

	_, err := f.Fetch(context.Background(), mustParam(t, server.URL))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want exactly 1 (no retry by default)", got)
	}
}
