package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/cricket-api/internal/metadata"
	"github.com/rohmanhakim/cricket-api/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseHTTPStatus            FetchErrorCause = "http status"
	ErrCauseContentTypeInvalid    FetchErrorCause = "non-HTML content"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
)

// FetchError classifies a failed page fetch. StatusCode is only set for
// ErrCauseHTTPStatus so callers can tell a missing match (404) apart from
// an upstream outage.
type FetchError struct {
	Message    string
	Retryable  bool
	Cause      FetchErrorCause
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseReadResponseBodyError:
		return metadata.CauseNetworkFailure
	case ErrCauseHTTPStatus:
		if err.StatusCode == 404 {
			return metadata.CauseNotFound
		}
		return metadata.CauseUpstreamStatus
	case ErrCauseContentTypeInvalid:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
