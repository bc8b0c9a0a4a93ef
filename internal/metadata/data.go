package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - Any use of metadata.ErrorCause outside logging, metrics, or reporting is a design violation.
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.
	Non-goals:
	 - ErrorCause does not encode severity.
	 - ErrorCause does not imply retryability.
	 - ErrorCause does not imply correctness of downstream behavior.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

Meaning:
  - The failure does not map cleanly to any known category.
  - Used as a safe fallback.

Examples:
  - Unexpected internal errors
  - Unclassified third-party library failures

# CauseNetworkFailure

Meaning:
  - Failure caused by network transport or remote availability.

Examples:
  - TCP timeouts
  - DNS resolution failures
  - Connection resets

# CauseUpstreamStatus

Meaning:
  - The upstream site answered, but with a status that prevented scraping.

Examples:
  - HTTP 403 / 429 access denial or throttling
  - HTTP 5xx server errors

# CauseContentInvalid

Meaning:
  - Content was fetched but could not be processed meaningfully.

Examples:
  - Non-HTML responses
  - Empty or unextractable document bodies
  - Pages with none of the expected scorecard structure

# CauseNotFound

Meaning:
  - The requested match does not exist upstream.

Examples:
  - HTTP 404 for a match page
  - Syntactically invalid match ids rejected before fetching

# CauseInvariantViolation

Meaning:
  - A system-level invariant was violated.

Examples:
  - A score record leaving the extractor with an unpopulated field
  - Internal consistency checks failing

# CauseStorageFailure

Meaning:
  - Local disk I/O failed while persisting diagnostic output.

Examples:
  - Snapshot directory not writable
  - Disk full while writing a failure snapshot
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseUpstreamStatus
	CauseContentInvalid
	CauseNotFound
	CauseInvariantViolation
	CauseStorageFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseUpstreamStatus:
		return "upstream_status"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseNotFound:
		return "not_found"
	case CauseInvariantViolation:
		return "invariant_violation"
	case CauseStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// CacheEvent labels a single cache lookup outcome or store.
type CacheEvent string

const (
	CacheHit     CacheEvent = "hit"
	CacheMiss    CacheEvent = "miss"
	CacheExpired CacheEvent = "expired"
	CacheStored  CacheEvent = "stored"
	CacheEvicted CacheEvent = "evicted"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrEndpoint   AttributeKey = "endpoint"
	AttrMatchID    AttributeKey = "match_id"
	AttrCacheKey   AttributeKey = "cache_key"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
)
