package extractor_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/cricket-api/internal/extractor"
	"github.com/rohmanhakim/cricket-api/internal/metadata"
)

// fixtureDir returns the path to the fixture directory
func fixtureDir() string {
	return filepath.Join(".", "fixture")
}

// loadFixture reads a fixture file and returns its contents as bytes.
// This is used for black box testing via the public extraction methods.
func loadFixture(t *testing.T, filename string) []byte {
	t.Helper()
	path := filepath.Join(fixtureDir(), filename)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", filename, err)
	}
	return data
}

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
	})
}

func setupExtractor() (*extractor.PageExtractor, *mockMetadataSink) {
	sink := &mockMetadataSink{}
	ext := extractor.NewPageExtractor(sink)
	return &ext, sink
}
