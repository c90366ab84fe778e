package storage

import (
	"errors"
	"strconv"
	"time"

	"github.com/rohmanhakim/cobweb/internal/metadata"
	"github.com/rohmanhakim/cobweb/pkg/failure"
	"github.com/rohmanhakim/cobweb/pkg/fileutil"
	"github.com/rohmanhakim/cobweb/pkg/hashutil"
)

/*
Responsibilities
- Persist the rendered report of a run
- Overwrite-safe reruns (atomic replace)
*/

type Sink interface {
	Write(
		path string,
		content []byte,
		hashAlgo hashutil.HashAlgo,
	) (WriteResult, failure.ClassifiedError)
}

var _ Sink = (*LocalSink)(nil)

type LocalSink struct {
	metadataSink metadata.MetadataSink
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
) LocalSink {
	return LocalSink{
		metadataSink: metadataSink,
	}
}

func (s *LocalSink) Write(
	path string,
	content []byte,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(path, content, hashAlgo)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, err.Path),
			},
		)
		return WriteResult{}, err
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactReport,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, writeResult.Path()),
			metadata.NewAttr(metadata.AttrField, writeResult.ContentHash()),
			metadata.NewAttr(metadata.AttrMessage, strconv.Itoa(writeResult.Size())+" bytes"),
		},
	)
	return writeResult, nil
}

func write(
	path string,
	content []byte,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, *StorageError) {
	if path == "" {
		return WriteResult{}, &StorageError{
			Message: "no output path given",
			Cause:   ErrCauseEmptyPath,
		}
	}

	contentHash, err := hashutil.Fingerprint(content, hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseHashComputationFailed,
			Path:    path,
		}
	}

	if err := fileutil.WriteFileAtomic(path, content, 0644); err != nil {
		cause := ErrCauseWriteFailure
		retryable := false
		var fileErr *fileutil.FileError
		if errors.As(err, &fileErr) {
			switch fileErr.Cause {
			case fileutil.ErrCauseDiskFull:
				cause = ErrCauseDiskFull
				retryable = true
			case fileutil.ErrCausePathError:
				cause = ErrCausePathError
			}
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      path,
		}
	}

	return NewWriteResult(path, contentHash, len(content)), nil
}
