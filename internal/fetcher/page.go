package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rohmanhakim/cricket-api/internal/metadata"
	"github.com/rohmanhakim/cricket-api/pkg/failure"
	"github.com/rohmanhakim/cricket-api/pkg/limiter"
	"github.com/rohmanhakim/cricket-api/pkg/retry"
)

/*
Responsibilities

- Perform HTTP requests against the upstream site
- Apply browser-like headers and a fixed timeout
- Keep request spacing per host
- Classify responses

Fetch Semantics

- Only successful HTML responses are returned
- Non-HTML content is discarded
- One outbound call per attempt; retries are off unless configured
- All responses are logged with metadata

The fetcher never parses content; it only returns bytes and metadata.
*/

type PageFetcher struct {
	metadataSink metadata.MetadataSink
	rateLimiter  limiter.RateLimiter
	httpClient   *http.Client
	retryParam   retry.RetryParam
	userAgents   []string
	rngMu        sync.Mutex
	rng          *rand.Rand
}

var _ Fetcher = (*PageFetcher)(nil)

func NewPageFetcher(
	metadataSink metadata.MetadataSink,
	rateLimiter limiter.RateLimiter,
	timeout time.Duration,
	userAgents []string,
	retryParam retry.RetryParam,
) *PageFetcher {
	if len(userAgents) == 0 {
		userAgents = DefaultUserAgents
	}
	return &PageFetcher{
		metadataSink: metadataSink,
		rateLimiter:  rateLimiter,
		httpClient:   &http.Client{Timeout: timeout},
		retryParam:   retryParam,
		userAgents:   userAgents,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *PageFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "PageFetcher.Fetch"
	startTime := time.Now()

	result, err := retry.Retry(ctx, p.retryParam, func(ctx context.Context) (FetchResult, failure.ClassifiedError) {
		return p.performFetch(ctx, fetchParam.fetchUrl)
	})

	duration := time.Since(startTime)

	var statusCode int
	var contentType string
	var retryCount int

	if err != nil {
		var retryErr *retry.RetryError
		if errors.As(err, &retryErr) {
			retryCount = p.retryParam.MaxAttempts
		}
	} else {
		statusCode = result.Code()
		contentType = extractContentType(result.Headers())
	}

	p.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		contentType,
		retryCount,
	)

	if err != nil {
		p.recordError(callerMethod, fetchParam.fetchUrl, err)
		return FetchResult{}, err
	}

	return result, nil
}

func (p *PageFetcher) recordError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	cause := metadata.CauseUnknown
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		cause = mapFetchErrorToMetadataCause(fetchError)
	}
	p.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			metadata.NewAttr(metadata.AttrHost, fetchUrl.Host),
		},
	)
}

func (p *PageFetcher) performFetch(ctx context.Context, fetchUrl url.URL) (FetchResult, failure.ClassifiedError) {
	host := fetchUrl.Host

	// Respect the per-host spacing before touching the network.
	if delay := p.rateLimiter.ResolveDelay(host); delay > 0 {
		select {
		case <-ctx.Done():
			return FetchResult{}, &FetchError{
				Message:   fmt.Sprintf("cancelled while waiting for host slot: %v", ctx.Err()),
				Retryable: false,
				Cause:     ErrCauseTimeout,
			}
		case <-time.After(delay):
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	// Apply browser-like headers
	headers := requestHeaders(p.nextUserAgent())
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := p.httpClient.Do(req)
	p.rateLimiter.MarkLastFetchAsNow(host)
	if err != nil {
		if isTimeout(err) {
			return FetchResult{}, &FetchError{
				Message:   fmt.Sprintf("request timed out: %v", err),
				Retryable: true,
				Cause:     ErrCauseTimeout,
			}
		}
		// Network/transport errors are retryable
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	// Handle HTTP status codes
	switch {
	case resp.StatusCode >= 500:
		// Server errors (5xx) are retryable; back the host off
		p.rateLimiter.Backoff(host)
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("server error: %d", resp.StatusCode),
			Retryable:  true,
			Cause:      ErrCauseHTTPStatus,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode == http.StatusTooManyRequests:
		p.rateLimiter.Backoff(host)
		return FetchResult{}, &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseHTTPStatus,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode == http.StatusNotFound:
		return FetchResult{}, &FetchError{
			Message:    "page not found (404)",
			Retryable:  false,
			Cause:      ErrCauseHTTPStatus,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Other client errors are not retryable
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("client error: %d", resp.StatusCode),
			Retryable:  false,
			Cause:      ErrCauseHTTPStatus,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		// Redirects are followed by http.Client; landing here means the
		// redirect limit was exceeded
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("redirect error: %d", resp.StatusCode),
			Retryable:  false,
			Cause:      ErrCauseHTTPStatus,
			StatusCode: resp.StatusCode,
		}
	}

	// Check Content-Type for HTML
	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContent(contentType) {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("non-HTML content type: %s", contentType),
			Retryable: false,
			Cause:     ErrCauseContentTypeInvalid,
		}
	}

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to read response body: %v", err),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}

	p.rateLimiter.ResetBackoff(host)

	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	result := FetchResult{
		url:  fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			transferredSizeByte: uint64(len(body)),
			responseHeaders:     responseHeaders,
		},
	}

	return result, nil
}

// nextUserAgent picks a random agent from the pool for each request.
func (p *PageFetcher) nextUserAgent() string {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return p.userAgents[p.rng.Intn(len(p.userAgents))]
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func extractContentType(headers map[string]string) string {
	if ct, ok := headers["Content-Type"]; ok {
		return ct
	}
	return ""
}

func isHTMLContent(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Cache-Control":   "no-cache",
		"DNT":             "1",
		"Connection":      "keep-alive",
	}
}
