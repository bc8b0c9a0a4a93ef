package storage

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rohmanhakim/cricket-api/internal/metadata"
	"github.com/rohmanhakim/cricket-api/pkg/failure"
	"github.com/rohmanhakim/cricket-api/pkg/fileutil"
	"github.com/rohmanhakim/cricket-api/pkg/hashutil"
)

/*
Responsibilities
- Persist the markup of pages the extractor could not read
- Ensure deterministic filenames

Output Characteristics
- One file per page URL, named by URL hash
- Overwrite-safe reruns: a snapshot always holds the latest failing page

A snapshot is diagnostic output. When selectors stop matching the live
site, the stored file shows what the markup actually looked like.
*/

// snapshotNameLength is the number of hash characters used for the
// snapshot filename. Twelve hex characters keep names short while
// collisions across a handful of page URLs stay implausible.
const snapshotNameLength = 12

type Sink interface {
	Write(pageURL string, markup []byte) (WriteResult, failure.ClassifiedError)
}

// Compile-time interface check
var _ Sink = (*LocalSink)(nil)

type LocalSink struct {
	dir          string
	hashAlgo     hashutil.HashAlgo
	metadataSink metadata.MetadataSink
}

// NewLocalSink builds a sink writing snapshots under dir. An empty
// hashAlgo selects BLAKE3.
func NewLocalSink(
	dir string,
	hashAlgo hashutil.HashAlgo,
	metadataSink metadata.MetadataSink,
) LocalSink {
	if hashAlgo == "" {
		hashAlgo = hashutil.HashAlgoBLAKE3
	}
	return LocalSink{
		dir:          dir,
		hashAlgo:     hashAlgo,
		metadataSink: metadataSink,
	}
}

func (s *LocalSink) Write(pageURL string, markup []byte) (WriteResult, failure.ClassifiedError) {
	writeResult, err := s.write(pageURL, markup)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(storageError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageURL),
				metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}
	return writeResult, nil
}

func (s *LocalSink) write(pageURL string, markup []byte) (WriteResult, failure.ClassifiedError) {
	urlHashFull, err := hashutil.HashBytes([]byte(pageURL), s.hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashFailure,
			Path:      "",
		}
	}
	urlHash := urlHashFull[:snapshotNameLength]

	if err := fileutil.EnsureDir(s.dir); err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Path:      s.dir,
		}
	}

	fullPath := filepath.Join(s.dir, urlHash+".html")
	if err := os.WriteFile(fullPath, markup, 0644); err != nil {
		cause := ErrCauseWriteFailure
		retryable := false
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      fullPath,
		}
	}

	contentHashFull, err := hashutil.HashBytes(markup, s.hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashFailure,
			Path:      fullPath,
		}
	}

	return NewWriteResult(urlHash, fullPath, contentHashFull), nil
}
