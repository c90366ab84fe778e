package document

import (
	"fmt"

	"github.com/rohmanhakim/cobweb/internal/metadata"
	"github.com/rohmanhakim/cobweb/pkg/failure"
)

type ParseErrorCause string

const (
	ErrCauseNotHTML       ParseErrorCause = "not html"
	ErrCauseEmptyDocument ParseErrorCause = "empty document"
)

type ParseError struct {
	Message string
	Cause   ParseErrorCause
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Cause)
}

// Severity is recoverable for the same reason as fetcher.FetchError:
// one unparsable page never aborts its siblings.
func (e *ParseError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// MapParseErrorToMetadataCause maps parse failures to the canonical
// metadata.ErrorCause table. Observational only.
func MapParseErrorToMetadataCause(err *ParseError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML, ErrCauseEmptyDocument:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
