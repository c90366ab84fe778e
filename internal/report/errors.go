package report

import (
	"fmt"

	"github.com/rohmanhakim/cobweb/pkg/failure"
)

type ReportErrorCause string

const (
	ErrCauseUnknownFormat ReportErrorCause = "unknown format"
	ErrCauseRenderFailure ReportErrorCause = "render failed"
)

type ReportError struct {
	Message string
	Cause   ReportErrorCause
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("report error: %s: %s", e.Cause, e.Message)
}

func (e *ReportError) Severity() failure.Severity {
	return failure.SeverityFatal
}
