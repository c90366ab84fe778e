package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rohmanhakim/cobweb/internal/document"
	"github.com/rohmanhakim/cobweb/internal/frontier"
	"github.com/rohmanhakim/cobweb/pkg/failure"
	"github.com/rohmanhakim/cobweb/pkg/urlutil"
)

// CrawlTarget is a validated seed plus its hop budget. A hop limit of 0
// means the seed alone.
type CrawlTarget struct {
	seedURL  url.URL
	hopLimit int
}

func NewCrawlTarget(seed url.URL, hopLimit int) (CrawlTarget, failure.ClassifiedError) {
	if hopLimit < 0 {
		return CrawlTarget{}, &CrawlError{
			Message: fmt.Sprintf("hop limit must be >= 0, got %d", hopLimit),
			Cause:   ErrCauseInvalidHopLimit,
		}
	}
	normalized, err := urlutil.Normalize(seed.String())
	if err != nil {
		var invalid *urlutil.InvalidURLError
		if errors.As(err, &invalid) {
			return CrawlTarget{}, invalid
		}
		return CrawlTarget{}, &urlutil.InvalidURLError{
			Raw:     seed.String(),
			Message: err.Error(),
			Cause:   urlutil.ErrCauseUnparsable,
		}
	}
	return CrawlTarget{
		seedURL:  normalized,
		hopLimit: hopLimit,
	}, nil
}

func (t CrawlTarget) SeedURL() url.URL {
	return t.seedURL
}

func (t CrawlTarget) HopLimit() int {
	return t.hopLimit
}

// DocumentSource is the slice of the document cache the traversal needs.
type DocumentSource interface {
	Get(ctx context.Context, target url.URL) (*document.ParsedDocument, failure.ClassifiedError)
}

/*
Traversal discovers links reachable from a seed.

- One hop of discovery: the seed's own anchors, capped at the hop limit
- The seed is fetched through the shared document source, so the
  scheduler never fetches it twice
- A seed fetch or parse failure is returned unchanged
*/
type Traversal struct {
	source DocumentSource
}

func NewTraversal(source DocumentSource) Traversal {
	return Traversal{source: source}
}

func (t *Traversal) Crawl(ctx context.Context, target CrawlTarget) (frontier.LinkSet, failure.ClassifiedError) {
	if target.hopLimit == 0 {
		return frontier.LinkSet{}, nil
	}

	seed := target.seedURL
	doc, err := t.source.Get(ctx, seed)
	if err != nil {
		return frontier.LinkSet{}, err
	}

	return Classify(doc, seed, target.hopLimit), nil
}
