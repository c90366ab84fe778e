package urlutil

import (
	"fmt"

	"github.com/rohmanhakim/cobweb/pkg/failure"
)

type InvalidURLErrorCause string

const (
	ErrCauseUnparsable    InvalidURLErrorCause = "unparsable"
	ErrCauseMissingScheme InvalidURLErrorCause = "missing scheme"
	ErrCauseMissingHost   InvalidURLErrorCause = "missing host"
)

// InvalidURLError reports a URL that cannot be turned into a normalized
// absolute URL. It is never retryable.
type InvalidURLError struct {
	Raw     string
	Message string
	Cause   InvalidURLErrorCause
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.Raw, e.Cause)
}

func (e *InvalidURLError) Severity() failure.Severity {
	return failure.SeverityFatal
}
