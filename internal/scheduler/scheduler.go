package scheduler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rohmanhakim/cobweb/internal/cache"
	"github.com/rohmanhakim/cobweb/internal/config"
	"github.com/rohmanhakim/cobweb/internal/crawler"
	"github.com/rohmanhakim/cobweb/internal/document"
	"github.com/rohmanhakim/cobweb/internal/extractor"
	"github.com/rohmanhakim/cobweb/internal/fetcher"
	"github.com/rohmanhakim/cobweb/internal/frontier"
	"github.com/rohmanhakim/cobweb/internal/metadata"
	"github.com/rohmanhakim/cobweb/pkg/failure"
	"golang.org/x/sync/errgroup"
)

/*
 Scheduler is the sole control-plane authority of a scrape.

 Run shape:
 - Validate the config (a *config.ConfigurationError before any fetch)
 - Discover links from the seed (skipped when hops is 0)
 - Build the worklist: seed, internal links, external links
 - Fetch the worklist concurrently through one run-scoped document cache
 - Extract over the fetched documents in worklist order

 Failure policy:
 - Any seed failure (invalid URL, fetch, parse) aborts the run and is
   returned escalated to fatal
 - A failed non-seed page is dropped from extraction and reported in
   ScrapeExecution.Pages; it never fails the run
 - Cancelling ctx aborts the run with ctx.Err()

 Metadata emission is observational only and MUST NOT influence
 scheduling or run termination.
*/

type Scheduler struct {
	metadataSink    metadata.MetadataSink
	scrapeFinalizer metadata.ScrapeFinalizer
	// nil means an HtmlFetcher built from the run's config
	fetcher fetcher.Fetcher
}

func NewScheduler(recorder *metadata.Recorder) Scheduler {
	return Scheduler{
		metadataSink:    recorder,
		scrapeFinalizer: recorder,
	}
}

// NewSchedulerWithDeps creates a Scheduler with injected dependencies for testing.
// A nil htmlFetcher falls back to the HTTP fetcher configured per run.
func NewSchedulerWithDeps(
	scrapeFinalizer metadata.ScrapeFinalizer,
	metadataSink metadata.MetadataSink,
	htmlFetcher fetcher.Fetcher,
) Scheduler {
	return Scheduler{
		metadataSink:    metadataSink,
		scrapeFinalizer: scrapeFinalizer,
		fetcher:         htmlFetcher,
	}
}

// ExecuteScrape runs one scrape described by cfg.
func (s *Scheduler) ExecuteScrape(ctx context.Context, cfg config.Config) (ScrapeExecution, error) {
	scrapeStartTime := time.Now()

	var (
		pages        []PageOutcome
		totalMatches int
	)

	// Ensure final stats are recorded even if errors occur
	defer func() {
		failedPages := 0
		for _, page := range pages {
			if page.Status == PageFailed {
				failedPages++
			}
		}
		s.scrapeFinalizer.RecordFinalScrapeStats(
			len(pages),
			failedPages,
			totalMatches,
			time.Since(scrapeStartTime),
		)
	}()

	cfg, cfgErr := s.validConfig(cfg)
	if cfgErr != nil {
		return ScrapeExecution{}, cfgErr
	}

	target, err := s.crawlTarget(cfg)
	if err != nil {
		return ScrapeExecution{}, err
	}

	docCache := cache.NewDocumentCache(s.fetcherFor(cfg), s.metadataSink)
	traversal := crawler.NewTraversal(docCache)

	// 1. Discover links from the seed
	links, crawlErr := traversal.Crawl(ctx, target)
	if crawlErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ScrapeExecution{}, ctxErr
		}
		return ScrapeExecution{}, s.seedFailure(target, crawlErr)
	}

	// 2. Fetch the worklist
	worklist := frontier.NewWorklist(target.SeedURL(), links)
	docs, fetchErrs := fetchAll(ctx, docCache, worklist, cfg.Concurrency())
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ScrapeExecution{}, ctxErr
	}
	if fetchErrs[0] != nil {
		return ScrapeExecution{}, s.seedFailure(target, fetchErrs[0])
	}

	// 3. Record page outcomes in worklist order
	fetched := make([]*document.ParsedDocument, 0, worklist.Len())
	pages = make([]PageOutcome, 0, worklist.Len())
	for i := 0; i < worklist.Len(); i++ {
		page := PageOutcome{
			URL:  worklist.At(i),
			Role: roleOf(i, worklist.At(i), links),
		}
		if entry, ok := docCache.Entry(worklist.At(i)); ok {
			page.HTTPStatus = entry.StatusCode()
		}
		if fetchErrs[i] != nil {
			page.Status = PageFailed
			page.Err = fetchErrs[i]
		} else {
			page.Status = PageFetched
			page.Title = docs[i].Title()
			page.ContentHash = docs[i].ContentHash()
			fetched = append(fetched, docs[i])
		}
		pages = append(pages, page)
	}

	// 4. Extract
	ext := extractor.NewExtractor(s.metadataSink, RulesFromConfig(cfg))
	result := ext.Extract(fetched)
	totalMatches = result.Total()

	return ScrapeExecution{
		Seed:     target.SeedURL(),
		Links:    links,
		Pages:    pages,
		Result:   result,
		Duration: time.Since(scrapeStartTime),
	}, nil
}

// DiscoverLinks runs only the link discovery step of a scrape.
func (s *Scheduler) DiscoverLinks(ctx context.Context, cfg config.Config) (frontier.LinkSet, error) {
	cfg, cfgErr := s.validConfig(cfg)
	if cfgErr != nil {
		return frontier.LinkSet{}, cfgErr
	}

	target, err := s.crawlTarget(cfg)
	if err != nil {
		return frontier.LinkSet{}, err
	}

	traversal := crawler.NewTraversal(cache.NewDocumentCache(s.fetcherFor(cfg), s.metadataSink))
	links, crawlErr := traversal.Crawl(ctx, target)
	if crawlErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return frontier.LinkSet{}, ctxErr
		}
		return frontier.LinkSet{}, s.seedFailure(target, crawlErr)
	}
	return links, nil
}

// RulesFromConfig maps the configured extraction options onto extractor rules.
func RulesFromConfig(cfg config.Config) extractor.Rules {
	return extractor.Rules{
		Tags:       cfg.Tags(),
		Classes:    cfg.Classes(),
		Attributes: cfg.Attributes(),
		AttrValues: cfg.AttrValues(),
		Selectors:  cfg.Selectors(),
		IDValues:   cfg.IDValues(),
	}
}

// validConfig re-runs Build so a Config assembled without it cannot reach
// the fetch stage, where a concurrency below 1 would block forever.
func (s *Scheduler) validConfig(cfg config.Config) (config.Config, error) {
	built, err := cfg.Build()
	if err != nil {
		seed := cfg.SeedURL()
		s.metadataSink.RecordError(
			time.Now(),
			"scheduler",
			"Scheduler.validConfig",
			metadata.CauseInvalidInput,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrSeed, seed.String()),
			},
		)
		return config.Config{}, err
	}
	return built, nil
}

func (s *Scheduler) crawlTarget(cfg config.Config) (crawler.CrawlTarget, failure.ClassifiedError) {
	seed := cfg.SeedURL()
	target, err := crawler.NewCrawlTarget(seed, cfg.Hops())
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"scheduler",
			"Scheduler.crawlTarget",
			metadata.CauseInvalidInput,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrSeed, seed.String()),
			},
		)
		return crawler.CrawlTarget{}, failure.Escalate(err)
	}
	return target, nil
}

func (s *Scheduler) fetcherFor(cfg config.Config) fetcher.Fetcher {
	if s.fetcher != nil {
		return s.fetcher
	}
	htmlFetcher := fetcher.NewHtmlFetcher(s.metadataSink)
	htmlFetcher.Init(fetcher.NewHTTPClient(cfg.Timeout()), cfg.UserAgent(), cfg.MaxBodySize())
	return &htmlFetcher
}

// seedFailure escalates a seed error: without the seed there is nothing
// to scrape. The cause was already recorded by the stage that failed.
func (s *Scheduler) seedFailure(target crawler.CrawlTarget, err failure.ClassifiedError) failure.ClassifiedError {
	seed := target.SeedURL()
	s.metadataSink.RecordError(
		time.Now(),
		"scheduler",
		"Scheduler.ExecuteScrape",
		metadata.CauseUnknown,
		fmt.Sprintf("seed failed, aborting: %v", err),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrSeed, seed.String()),
		},
	)
	return failure.Escalate(err)
}

// fetchAll resolves every worklist entry through the cache with at most
// limit fetches in flight. Results are indexed by worklist position, so
// completion order never leaks into the outcome.
func fetchAll(
	ctx context.Context,
	docCache *cache.DocumentCache,
	worklist frontier.Worklist,
	limit int,
) ([]*document.ParsedDocument, []failure.ClassifiedError) {
	docs := make([]*document.ParsedDocument, worklist.Len())
	errs := make([]failure.ClassifiedError, worklist.Len())

	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < worklist.Len(); i++ {
		g.Go(func() error {
			docs[i], errs[i] = docCache.Get(ctx, worklist.At(i))
			// page failures are data, not group errors
			return nil
		})
	}
	_ = g.Wait()

	return docs, errs
}

func roleOf(index int, u url.URL, links frontier.LinkSet) PageRole {
	if index == 0 {
		return RoleSeed
	}
	if kind, ok := links.Kind(u); ok && kind == frontier.LinkExternal {
		return RoleExternal
	}
	return RoleInternal
}
