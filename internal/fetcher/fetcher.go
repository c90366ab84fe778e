package fetcher

import (
	"context"
	"net/url"

	"github.com/rohmanhakim/cobweb/pkg/failure"
)

// Fetcher is the transport collaborator: fetch(url) -> (status, body, error).
// Implementations must honour ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, fetchUrl url.URL) (FetchResult, failure.ClassifiedError)
}
