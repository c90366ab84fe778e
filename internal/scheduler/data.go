package scheduler

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/cobweb/internal/extractor"
	"github.com/rohmanhakim/cobweb/internal/frontier"
	"github.com/rohmanhakim/cobweb/pkg/failure"
)

// PageRole says why a page is on the worklist.
type PageRole string

const (
	RoleSeed     PageRole = "seed"
	RoleInternal PageRole = "internal"
	RoleExternal PageRole = "external"
)

type PageStatus string

const (
	PageFetched PageStatus = "fetched"
	PageFailed  PageStatus = "failed"
)

// PageOutcome is the fate of one worklist entry. Failed non-seed pages do
// not fail the run; they only show up here.
type PageOutcome struct {
	URL         url.URL
	Role        PageRole
	Status      PageStatus
	HTTPStatus  int
	Title       string
	ContentHash string
	Err         failure.ClassifiedError
}

type ScrapeExecution struct {
	Seed     url.URL
	Links    frontier.LinkSet
	Pages    []PageOutcome
	Result   extractor.Result
	Duration time.Duration
}

func (e ScrapeExecution) FetchedPages() int {
	count := 0
	for _, page := range e.Pages {
		if page.Status == PageFetched {
			count++
		}
	}
	return count
}

func (e ScrapeExecution) FailedPages() int {
	return len(e.Pages) - e.FetchedPages()
}
