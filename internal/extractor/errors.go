package extractor

import (
	"fmt"

	"github.com/rohmanhakim/cricket-api/internal/metadata"
	"github.com/rohmanhakim/cricket-api/pkg/failure"
)

// ParseErrorCause distinguishes the handful of ways a page can be
// unusable as a whole. Individual missing fields are never errors; they
// degrade to the Sentinel instead.
type ParseErrorCause string

const (
	// ErrCauseNotHTML means the payload could not be parsed as an HTML
	// document at all.
	ErrCauseNotHTML ParseErrorCause = "not an HTML document"
	// ErrCauseNoContainer means the document parsed but carried none of
	// the structures the extractor recognizes.
	ErrCauseNoContainer ParseErrorCause = "no recognizable container"
)

// ParseError reports a total extraction failure. Pages that merely lack
// some fields do not produce one.
type ParseError struct {
	Message   string
	Retryable bool
	Cause     ParseErrorCause
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ParseError) IsRetryable() bool {
	return e.Retryable
}

func mapParseErrorToMetadataCause(err *ParseError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML, ErrCauseNoContainer:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
