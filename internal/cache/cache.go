package cache

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/rohmanhakim/cobweb/internal/document"
	"github.com/rohmanhakim/cobweb/internal/fetcher"
	"github.com/rohmanhakim/cobweb/internal/metadata"
	"github.com/rohmanhakim/cobweb/pkg/failure"
	"github.com/rohmanhakim/cobweb/pkg/urlutil"
	"golang.org/x/sync/singleflight"
)

/*
DocumentCache turns URLs into parsed documents, at most once per URL.

- Keyed by the canonical URL string
- Concurrent Get calls for the same key share one in-flight fetch+parse
  (singleflight); calls for different keys never wait on each other
- Entries settle exactly once (Ready or Failed) and are never retried,
  replaced or evicted
- Scoped to one scheduler run; discard it with the run
*/
type DocumentCache struct {
	fetcher      fetcher.Fetcher
	metadataSink metadata.MetadataSink

	flight singleflight.Group

	mu      sync.RWMutex
	entries map[string]*Entry
	pending map[string]url.URL
}

func NewDocumentCache(f fetcher.Fetcher, metadataSink metadata.MetadataSink) *DocumentCache {
	return &DocumentCache{
		fetcher:      f,
		metadataSink: metadataSink,
		entries:      make(map[string]*Entry),
		pending:      make(map[string]url.URL),
	}
}

// Get returns the parsed document for target, fetching and parsing it on
// first use. The returned error is a *fetcher.FetchError or a
// *document.ParseError; it is recorded on the entry and returned to every
// later caller for the same URL.
//
// A fetch interrupted because ctx was cancelled is not recorded, so the
// entry stays absent rather than Failed.
func (c *DocumentCache) Get(ctx context.Context, target url.URL) (*document.ParsedDocument, failure.ClassifiedError) {
	canonical := urlutil.Canonicalize(target)
	key := canonical.String()

	if entry, ok := c.lookup(key); ok {
		c.metadataSink.RecordCacheLookup(key, metadata.CacheHit)
		return entry.document, entry.err
	}

	leader := false
	value, _, shared := c.flight.Do(key, func() (interface{}, error) {
		// another flight may have settled the key between lookup and Do
		if entry, ok := c.lookup(key); ok {
			return entry, nil
		}
		leader = true
		c.markPending(key, target)
		entry := c.load(ctx, target)
		if entry.state == StateFailed && ctx.Err() != nil && isCancellation(entry.err) {
			c.clearPending(key)
			return entry, nil
		}
		c.store(key, entry)
		return entry, nil
	})
	entry := value.(*Entry)

	switch {
	case leader:
		c.metadataSink.RecordCacheLookup(key, metadata.CacheMiss)
	case shared:
		c.metadataSink.RecordCacheLookup(key, metadata.CacheShared)
	default:
		c.metadataSink.RecordCacheLookup(key, metadata.CacheHit)
	}

	return entry.document, entry.err
}

// Entry returns the entry for target: the settled outcome, or a Pending
// entry while the first fetch is still in flight. ok is false for URLs
// the cache has never been asked for.
func (c *DocumentCache) Entry(target url.URL) (Entry, bool) {
	canonical := urlutil.Canonicalize(target)
	key := canonical.String()

	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.entries[key]; ok {
		return *entry, true
	}
	if pendingURL, ok := c.pending[key]; ok {
		return Entry{url: pendingURL, state: StatePending}, true
	}
	return Entry{}, false
}

// Len returns the number of settled entries.
func (c *DocumentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *DocumentCache) lookup(key string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

func (c *DocumentCache) store(key string, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, key)
	// write-once: the first settled outcome wins
	if _, exists := c.entries[key]; !exists {
		c.entries[key] = entry
	}
}

func (c *DocumentCache) markPending(key string, target url.URL) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[key] = target
}

func (c *DocumentCache) clearPending(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, key)
}

func (c *DocumentCache) load(ctx context.Context, target url.URL) *Entry {
	startedAt := time.Now()

	fetchResult, err := c.fetcher.Fetch(ctx, target)
	if err != nil {
		statusCode := 0
		var fetchErr *fetcher.FetchError
		if errors.As(err, &fetchErr) {
			statusCode = fetchErr.StatusCode
		}
		return &Entry{
			url:        target,
			state:      StateFailed,
			err:        err,
			statusCode: statusCode,
			settledAt:  time.Now(),
			elapsed:    time.Since(startedAt),
		}
	}

	doc, err := document.Parse(target, fetchResult.Body())
	if err != nil {
		var parseErr *document.ParseError
		if errors.As(err, &parseErr) {
			c.metadataSink.RecordError(
				time.Now(),
				"cache",
				"DocumentCache.Get",
				document.MapParseErrorToMetadataCause(parseErr),
				err.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, target.String()),
				},
			)
		}
		return &Entry{
			url:        target,
			state:      StateFailed,
			err:        err,
			statusCode: fetchResult.Code(),
			settledAt:  time.Now(),
			elapsed:    time.Since(startedAt),
		}
	}

	return &Entry{
		url:        target,
		state:      StateReady,
		document:   doc,
		statusCode: fetchResult.Code(),
		settledAt:  time.Now(),
		elapsed:    time.Since(startedAt),
	}
}

func isCancellation(err failure.ClassifiedError) bool {
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Cause == fetcher.ErrCauseCanceled || fetchErr.Cause == fetcher.ErrCauseTimeout
	}
	return false
}
