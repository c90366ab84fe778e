package scheduler_test

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/cobweb/internal/config"
	"github.com/rohmanhakim/cobweb/internal/fetcher"
	"github.com/rohmanhakim/cobweb/internal/metadata"
	"github.com/rohmanhakim/cobweb/internal/scheduler"
	"github.com/rohmanhakim/cobweb/pkg/failure"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fetcherMock is a testify mock for the Fetcher
type fetcherMock struct {
	mock.Mock
}

func (f *fetcherMock) Fetch(ctx context.Context, fetchUrl url.URL) (fetcher.FetchResult, failure.ClassifiedError) {
	args := f.Called(ctx, fetchUrl)
	result := args.Get(0).(fetcher.FetchResult)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return result, err
}

// urlIs matches a url.URL argument by its string form
func urlIs(raw string) interface{} {
	return mock.MatchedBy(func(u url.URL) bool {
		return u.String() == raw
	})
}

func htmlResult(t *testing.T, raw string, body string) fetcher.FetchResult {
	t.Helper()
	return fetcher.NewFetchResultForTest(mustURL(t, raw), []byte(body), 200, map[string]string{
		"Content-Type": "text/html; charset=utf-8",
	})
}

func networkError() *fetcher.FetchError {
	return &fetcher.FetchError{
		Message:   "dial tcp: connection refused",
		Retryable: true,
		Cause:     fetcher.ErrCauseNetworkFailure,
	}
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func buildConfig(t *testing.T, seed string, hops int) *config.Config {
	t.Helper()
	return config.WithDefault(mustURL(t, seed)).WithHops(hops)
}

func mustBuild(t *testing.T, cfg *config.Config) config.Config {
	t.Helper()
	built, err := cfg.Build()
	require.NoError(t, err)
	return built
}

// mockFinalizer is a test double that captures final scrape statistics
type mockFinalizer struct {
	mu    sync.Mutex
	calls int
	stats capturedStats
}

type capturedStats struct {
	totalPages   int
	failedPages  int
	totalMatches int
	duration     time.Duration
}

func (m *mockFinalizer) RecordFinalScrapeStats(
	totalPages int,
	failedPages int,
	totalMatches int,
	duration time.Duration,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.stats = capturedStats{
		totalPages:   totalPages,
		failedPages:  failedPages,
		totalMatches: totalMatches,
		duration:     duration,
	}
}

// recordingSink counts errors and extraction calls; safe for concurrent use
type recordingSink struct {
	metadata.NoopSink
	mu          sync.Mutex
	errorCauses []metadata.ErrorCause
	extractions int
}

func (r *recordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorCauses = append(r.errorCauses, cause)
}

func (r *recordingSink) RecordExtraction(strategy string, documents int, matches int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractions++
}

func (r *recordingSink) extractionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.extractions
}

func newSchedulerForTest(t *testing.T, f fetcher.Fetcher) (*scheduler.Scheduler, *mockFinalizer, *recordingSink) {
	t.Helper()
	finalizer := &mockFinalizer{}
	sink := &recordingSink{}
	s := scheduler.NewSchedulerWithDeps(finalizer, sink, f)
	return &s, finalizer, sink
}

// sitePage is one canned response of siteFetcher
type sitePage struct {
	body  string
	err   failure.ClassifiedError
	delay time.Duration
}

// siteFetcher serves canned pages keyed by URL string and tracks how many
// fetches run at the same time.
type siteFetcher struct {
	pages map[string]sitePage

	mu       sync.Mutex
	calls    map[string]int
	inFlight atomic.Int32
	peak     atomic.Int32
}

func newSiteFetcher(pages map[string]sitePage) *siteFetcher {
	return &siteFetcher{
		pages: pages,
		calls: make(map[string]int),
	}
}

func (s *siteFetcher) Fetch(ctx context.Context, fetchUrl url.URL) (fetcher.FetchResult, failure.ClassifiedError) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if current <= peak || s.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	key := fetchUrl.String()
	s.mu.Lock()
	s.calls[key]++
	s.mu.Unlock()

	page, ok := s.pages[key]
	if !ok {
		return fetcher.FetchResult{}, &fetcher.FetchError{
			Message:    "not found",
			Cause:      fetcher.ErrCauseRequest4xx,
			StatusCode: 404,
		}
	}
	if page.delay > 0 {
		select {
		case <-time.After(page.delay):
		case <-ctx.Done():
			return fetcher.FetchResult{}, &fetcher.FetchError{
				Message: ctx.Err().Error(),
				Cause:   fetcher.ErrCauseCanceled,
			}
		}
	}
	if page.err != nil {
		return fetcher.FetchResult{}, page.err
	}
	return fetcher.NewFetchResultForTest(fetchUrl, []byte(page.body), 200, map[string]string{
		"Content-Type": "text/html",
	}), nil
}

func (s *siteFetcher) callCount(raw string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[raw]
}

func (s *siteFetcher) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}
