package cache

import (
	"fmt"

	"github.com/rohmanhakim/cricket-api/pkg/failure"
)

// TypeMismatchError reports a cached value whose type differs from what
// the caller expects. Two call sites are colliding on one key.
type TypeMismatchError struct {
	Key string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cache error: value under key %q has unexpected type", e.Key)
}

func (e *TypeMismatchError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *TypeMismatchError) IsRetryable() bool {
	return false
}
