package storage_test

import (
	"testing"
	"time"

	"github.com/rohmanhakim/cricket-api/internal/metadata"
	"github.com/rohmanhakim/cricket-api/internal/storage"
)

// mockMetadataSink is a test spy that captures recorded errors
type mockMetadataSink struct {
	metadata.NoopSink
	errors []recordedError
}

type recordedError struct {
	PackageName string
	Action      string
	Cause       metadata.ErrorCause
	ErrorString string
	Attrs       []metadata.Attribute
}

func (m *mockMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	errorString string,
	attrs []metadata.Attribute,
) {
	m.errors = append(m.errors, recordedError{
		PackageName: packageName,
		Action:      action,
		Cause:       cause,
		ErrorString: errorString,
		Attrs:       attrs,
	})
}

func (m *mockMetadataSink) attrValue(key metadata.AttributeKey) string {
	for _, rec := range m.errors {
		for _, attr := range rec.Attrs {
			if attr.Key == key {
				return attr.Value
			}
		}
	}
	return ""
}

func setupSink(t *testing.T, dir string) (*storage.LocalSink, *mockMetadataSink) {
	t.Helper()
	sink := &mockMetadataSink{}
	localSink := storage.NewLocalSink(dir, "", sink)
	return &localSink, sink
}
