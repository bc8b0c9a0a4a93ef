package metadata

import (
	"log/slog"
	"time"
)

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Cache lookup outcomes
- Failure classifications

Logging Goals
- Debuggable scrape behavior
- Failure diagnostics
- Visibility into how often the upstream site is actually hit

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Status codes
- Durations
- Identifiers (match id, cache key)

Determinism guarantees:
 - Metadata does not affect control flow
 - Errors do not change what callers receive
 - Output is stable given identical inputs

Metadata is write-only.
No component may read metadata to influence serving decisions.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
	)

	RecordCacheEvent(key string, event CacheEvent)
}

/*
Recorder captures structured scrape events on a slog logger.
It must not:
- affect control flow
- be read back by any component
Ordering guarantees:
- Events are recorded synchronously in the order they are received by a single goroutine.
- No global ordering across request handlers is guaranteed.
- Ordering is provided for debuggability, not causality.
*/
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		logger: logger,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	args := make([]any, 0, 2*(len(attrs)+4))
	args = append(args,
		slog.Time("observed_at", observedAt),
		slog.String("package", packageName),
		slog.String("action", action),
		slog.String("cause", cause.String()),
	)
	for _, attr := range attrs {
		args = append(args, slog.String(string(attr.Key), attr.Value))
	}
	r.logger.Error(details, args...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
	r.logger.Info("upstream fetch",
		slog.String("url", fetchUrl),
		slog.Int("status", httpStatus),
		slog.Duration("duration", duration),
		slog.String("content_type", contentType),
		slog.Int("retries", retryCount),
	)
}

func (r *Recorder) RecordCacheEvent(key string, event CacheEvent) {
	r.logger.Debug("cache event",
		slog.String("key", key),
		slog.String("event", string(event)),
	)
}

// NoopSink, struct that implements metadata.MetadataSink but does nothing
// Callers (or tests) can decide whether to inject Recorder or NoopSink
// Purpose is to make metadata orthogonal

type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
}

func (n *NoopSink) RecordCacheEvent(key string, event CacheEvent) {}

// CacheMetrics adapts a MetadataSink to the cache's Metrics interface
// without the cache package importing metadata.
type CacheMetrics struct {
	sink MetadataSink
}

func NewCacheMetrics(sink MetadataSink) *CacheMetrics {
	return &CacheMetrics{sink: sink}
}

func (m *CacheMetrics) Hit(key string)     { m.sink.RecordCacheEvent(key, CacheHit) }
func (m *CacheMetrics) Miss(key string)    { m.sink.RecordCacheEvent(key, CacheMiss) }
func (m *CacheMetrics) Expired(key string) { m.sink.RecordCacheEvent(key, CacheExpired) }
func (m *CacheMetrics) Stored(key string)  { m.sink.RecordCacheEvent(key, CacheStored) }
func (m *CacheMetrics) Evicted(key string) { m.sink.RecordCacheEvent(key, CacheEvicted) }
