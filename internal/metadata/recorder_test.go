package metadata_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/cobweb/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONRecorder(buf *bytes.Buffer) metadata.Recorder {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return metadata.NewRecorder(logger, "run-1")
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		record := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}
	return records
}

func TestRecorder_RecordError(t *testing.T) {
	var buf bytes.Buffer
	recorder := newJSONRecorder(&buf)

	recorder.RecordError(
		time.Now(),
		"fetcher",
		"HtmlFetcher.Fetch",
		metadata.CauseNetworkFailure,
		errors.New("boom").Error(),
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, "https://example.com/")},
	)

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "error", records[0]["msg"])
	assert.Equal(t, "WARN", records[0]["level"])
	assert.Equal(t, "run-1", records[0]["run_id"])
	assert.Equal(t, "fetcher", records[0]["package"])
	assert.Equal(t, "network_failure", records[0]["cause"])
	assert.Equal(t, "https://example.com/", records[0]["url"])
}

func TestRecorder_RecordFetchAndStats(t *testing.T) {
	var buf bytes.Buffer
	recorder := newJSONRecorder(&buf)

	recorder.RecordFetch("https://example.com/", 200, 15*time.Millisecond, "text/html")
	recorder.RecordCacheLookup("https://example.com/", metadata.CacheShared)
	recorder.RecordExtraction("by_tag", 2, 5)
	recorder.RecordFinalScrapeStats(3, 1, 5, 2*time.Second)

	records := decodeLines(t, &buf)
	require.Len(t, records, 4)
	assert.Equal(t, "fetch", records[0]["msg"])
	assert.EqualValues(t, 200, records[0]["http_status"])
	assert.Equal(t, "shared", records[1]["outcome"])
	assert.EqualValues(t, 5, records[2]["matches"])
	assert.Equal(t, "scrape finished", records[3]["msg"])
	assert.EqualValues(t, 2000, records[3]["duration_ms"])
}

func TestErrorCause_String(t *testing.T) {
	assert.Equal(t, "unknown", metadata.CauseUnknown.String())
	assert.Equal(t, "content_invalid", metadata.CauseContentInvalid.String())
	assert.Equal(t, "invalid_input", metadata.CauseInvalidInput.String())
	assert.Equal(t, "unknown", metadata.ErrorCause(99).String())
}
