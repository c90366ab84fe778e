package crawler

import (
	"fmt"

	"github.com/rohmanhakim/cobweb/pkg/failure"
)

type CrawlErrorCause string

const (
	ErrCauseInvalidHopLimit CrawlErrorCause = "invalid hop limit"
)

type CrawlError struct {
	Message string
	Cause   CrawlErrorCause
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawler error: %s: %s", e.Cause, e.Message)
}

func (e *CrawlError) Severity() failure.Severity {
	return failure.SeverityFatal
}
