package livescore

import (
	"fmt"

	"github.com/rohmanhakim/cricket-api/internal/metadata"
	"github.com/rohmanhakim/cricket-api/pkg/failure"
)

type ServiceErrorCause string

const (
	// ErrCauseInvalidMatchID means the caller-supplied id is not a
	// decimal number and was rejected before any fetch.
	ErrCauseInvalidMatchID ServiceErrorCause = "invalid match id"
	// ErrCauseMatchNotFound means the upstream site has no page for the
	// match, either as an HTTP 404 or as a page without any scorecard.
	ErrCauseMatchNotFound ServiceErrorCause = "match not found"
	// ErrCauseAborted means the request context ended before the lookup
	// completed.
	ErrCauseAborted ServiceErrorCause = "aborted"
)

type ServiceError struct {
	Message   string
	Retryable bool
	Cause     ServiceErrorCause
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("livescore error: %s: %s", e.Cause, e.Message)
}

func (e *ServiceError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ServiceError) IsRetryable() bool {
	return e.Retryable
}

func mapServiceErrorToMetadataCause(err *ServiceError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseInvalidMatchID, ErrCauseMatchNotFound:
		return metadata.CauseNotFound
	default:
		return metadata.CauseUnknown
	}
}
