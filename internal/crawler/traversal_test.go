package crawler_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/rohmanhakim/cobweb/internal/crawler"
	"github.com/rohmanhakim/cobweb/internal/document"
	"github.com/rohmanhakim/cobweb/internal/fetcher"
	"github.com/rohmanhakim/cobweb/pkg/failure"
	"github.com/rohmanhakim/cobweb/pkg/urlutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sourceMock struct {
	mock.Mock
}

func (s *sourceMock) Get(ctx context.Context, target url.URL) (*document.ParsedDocument, failure.ClassifiedError) {
	args := s.Called(ctx, target)
	var doc *document.ParsedDocument
	if args.Get(0) != nil {
		doc = args.Get(0).(*document.ParsedDocument)
	}
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return doc, err
}

func TestNewCrawlTarget(t *testing.T) {
	target, err := crawler.NewCrawlTarget(mustURL(t, "HTTPS://A.test/Docs/?q=1#x"), 3)
	require.Nil(t, err)
	seed := target.SeedURL()
	assert.Equal(t, "https://a.test/Docs", seed.String())
	assert.Equal(t, 3, target.HopLimit())
}

func TestNewCrawlTarget_Invalid(t *testing.T) {
	_, err := crawler.NewCrawlTarget(mustURL(t, "https://a.test/"), -1)
	require.NotNil(t, err)
	var crawlErr *crawler.CrawlError
	require.True(t, errors.As(err, &crawlErr))
	assert.Equal(t, crawler.ErrCauseInvalidHopLimit, crawlErr.Cause)

	_, err = crawler.NewCrawlTarget(mustURL(t, "/relative/only"), 1)
	require.NotNil(t, err)
	var urlErr *urlutil.InvalidURLError
	require.True(t, errors.As(err, &urlErr))
	assert.Equal(t, failure.SeverityFatal, err.Severity())
}

func TestCrawl_ZeroHopsDoesNotFetch(t *testing.T) {
	source := new(sourceMock)
	traversal := crawler.NewTraversal(source)
	target, err := crawler.NewCrawlTarget(mustURL(t, "https://a.test/"), 0)
	require.Nil(t, err)

	links, crawlErr := traversal.Crawl(context.Background(), target)

	require.Nil(t, crawlErr)
	assert.True(t, links.IsEmpty())
	source.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCrawl_ClassifiesSeedLinks(t *testing.T) {
	seed := mustURL(t, "https://a.test/")
	doc := mustDocument(t, seed, `<html><body>
		<a href="/x">x</a>
		<a href="https://b.test/">b</a>
	</body></html>`)
	source := new(sourceMock)
	source.On("Get", mock.Anything, seed).Return(doc, nil).Once()
	traversal := crawler.NewTraversal(source)
	target, err := crawler.NewCrawlTarget(seed, 5)
	require.Nil(t, err)

	links, crawlErr := traversal.Crawl(context.Background(), target)

	require.Nil(t, crawlErr)
	assert.Equal(t, []string{"https://a.test/x"}, urlStrings(links.Internal()))
	assert.Equal(t, []string{"https://b.test/"}, urlStrings(links.External()))
	source.AssertExpectations(t)
}

func TestCrawl_HopLimitCapsLinks(t *testing.T) {
	seed := mustURL(t, "https://a.test/")
	doc := mustDocument(t, seed, `<html><body>
		<a href="/1">1</a><a href="/2">2</a><a href="/3">3</a><a href="/4">4</a>
	</body></html>`)
	source := new(sourceMock)
	source.On("Get", mock.Anything, seed).Return(doc, nil)
	traversal := crawler.NewTraversal(source)
	target, _ := crawler.NewCrawlTarget(seed, 2)

	links, crawlErr := traversal.Crawl(context.Background(), target)

	require.Nil(t, crawlErr)
	assert.Equal(t, []string{"https://a.test/1", "https://a.test/2"}, urlStrings(links.Internal()))
}

func TestCrawl_SeedFailurePropagates(t *testing.T) {
	seed := mustURL(t, "https://a.test/")
	fetchErr := &fetcher.FetchError{
		Message: "connection refused",
		Cause:   fetcher.ErrCauseNetworkFailure,
	}
	source := new(sourceMock)
	source.On("Get", mock.Anything, seed).Return(nil, fetchErr)
	traversal := crawler.NewTraversal(source)
	target, _ := crawler.NewCrawlTarget(seed, 3)

	links, crawlErr := traversal.Crawl(context.Background(), target)

	require.NotNil(t, crawlErr)
	assert.Same(t, fetchErr, crawlErr)
	assert.True(t, links.IsEmpty())
}
