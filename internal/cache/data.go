package cache

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/cobweb/internal/document"
	"github.com/rohmanhakim/cobweb/pkg/failure"
)

type State string

// Pending -> Ready or Pending -> Failed, exactly once.
const (
	StatePending State = "pending"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Entry is the immutable outcome of one fetch+parse.
type Entry struct {
	url        url.URL
	state      State
	document   *document.ParsedDocument
	err        failure.ClassifiedError
	statusCode int
	settledAt  time.Time
	elapsed    time.Duration
}

func (e Entry) URL() url.URL {
	return e.url
}

func (e Entry) State() State {
	return e.state
}

func (e Entry) Document() *document.ParsedDocument {
	return e.document
}

func (e Entry) Err() failure.ClassifiedError {
	return e.err
}

// StatusCode is the HTTP status of the response that produced the entry,
// 0 when no response was received.
func (e Entry) StatusCode() int {
	return e.statusCode
}

func (e Entry) SettledAt() time.Time {
	return e.settledAt
}

func (e Entry) Elapsed() time.Duration {
	return e.elapsed
}
