package mdconvert

import (
	"fmt"

	"github.com/rohmanhakim/cobweb/internal/metadata"
	"github.com/rohmanhakim/cobweb/pkg/failure"
)

type ConversionErrorCause string

const (
	ErrCauseNilNode           ConversionErrorCause = "nil node"
	ErrCauseConversionFailure ConversionErrorCause = "conversion failed"
)

type ConversionError struct {
	Message   string
	Retryable bool
	Cause     ConversionErrorCause
}

func (e *ConversionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("conversion error: %s", e.Cause)
	}
	return fmt.Sprintf("conversion error: %s: %s", e.Cause, e.Message)
}

// Severity is always recoverable: a fragment that cannot be rendered
// only loses its markdown column in the report.
func (e *ConversionError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func mapConversionErrorToMetadataCause(err *ConversionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseConversionFailure, ErrCauseNilNode:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
