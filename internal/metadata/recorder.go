package metadata

import (
	"context"
	"log/slog"
	"time"
)

/*
Metadata Collected
- Fetch timings and HTTP status codes
- Cache lookups (miss / hit / shared in-flight)
- Per-strategy extraction counts
- Classified errors

Determinism guarantees:
 - Metadata does not affect control flow
 - Metadata is write-only; no component reads it to make decisions
*/

/*
Recorder captures structured scrape events and writes them through slog.
It must not:
- perform I/O decisions
- affect control flow
Ordering guarantees:
- Events from a single goroutine are recorded in call order.
- No global ordering across concurrent fetches is guaranteed.
*/
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger, runId string) Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return Recorder{
		logger: logger.With(slog.String("run_id", runId)),
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	args := []slog.Attr{
		slog.Time("observed_at", observedAt),
		slog.String("package", packageName),
		slog.String("action", action),
		slog.String("cause", cause.String()),
		slog.String("error", errorString),
	}
	r.logger.LogAttrs(context.Background(), slog.LevelWarn, "error", toSlogAttrs(args, attrs)...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
) {
	r.logger.LogAttrs(context.Background(), slog.LevelInfo, "fetch",
		slog.String("url", fetchUrl),
		slog.Int("http_status", httpStatus),
		slog.Duration("duration", duration),
		slog.String("content_type", contentType),
	)
}

func (r *Recorder) RecordCacheLookup(fetchUrl string, outcome CacheOutcome) {
	r.logger.LogAttrs(context.Background(), slog.LevelDebug, "cache lookup",
		slog.String("url", fetchUrl),
		slog.String("outcome", string(outcome)),
	)
}

func (r *Recorder) RecordExtraction(strategy string, documents int, matches int) {
	r.logger.LogAttrs(context.Background(), slog.LevelDebug, "extraction",
		slog.String("strategy", strategy),
		slog.Int("documents", documents),
		slog.Int("matches", matches),
	)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	args := []slog.Attr{
		slog.String("kind", string(kind)),
		slog.String("path", path),
	}
	r.logger.LogAttrs(context.Background(), slog.LevelInfo, "artifact", toSlogAttrs(args, attrs)...)
}

/*
RecordFinalScrapeStats records a terminal, derived summary of a completed run.

Contract:
  - MUST be called exactly once per run, after the run ends
    (successfully or by a fatal error).
  - The provided stats MUST be derived from scheduler state.
*/
func (r *Recorder) RecordFinalScrapeStats(
	totalPages int,
	failedPages int,
	totalMatches int,
	duration time.Duration,
) {
	stats := scrapeStats{
		totalPages:   totalPages,
		failedPages:  failedPages,
		totalMatches: totalMatches,
		durationMs:   duration.Milliseconds(),
	}
	r.logger.LogAttrs(context.Background(), slog.LevelInfo, "scrape finished",
		slog.Int("total_pages", stats.totalPages),
		slog.Int("failed_pages", stats.failedPages),
		slog.Int("total_matches", stats.totalMatches),
		slog.Int64("duration_ms", stats.durationMs),
	)
}

func toSlogAttrs(base []slog.Attr, attrs []Attribute) []slog.Attr {
	out := make([]slog.Attr, 0, len(base)+len(attrs))
	out = append(out, base...)
	for _, a := range attrs {
		out = append(out, slog.String(string(a.Key), a.Value))
	}
	return out
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
	)
	RecordCacheLookup(fetchUrl string, outcome CacheOutcome)
	RecordExtraction(strategy string, documents int, matches int)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type ScrapeFinalizer interface {
	RecordFinalScrapeStats(
		totalPages int,
		failedPages int,
		totalMatches int,
		duration time.Duration,
	)
}

// NoopSink, struct that implements MetadataSink and ScrapeFinalizer but does nothing.
// Scheduler (or Test) can decide whether to inject Recorder or NoopSink.

type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
) {
}

func (n *NoopSink) RecordCacheLookup(fetchUrl string, outcome CacheOutcome) {}

func (n *NoopSink) RecordExtraction(strategy string, documents int, matches int) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordFinalScrapeStats(
	totalPages int,
	failedPages int,
	totalMatches int,
	duration time.Duration,
) {
}
