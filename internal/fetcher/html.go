package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/cobweb/internal/build"
	"github.com/rohmanhakim/cobweb/internal/metadata"
	"github.com/rohmanhakim/cobweb/pkg/failure"
	"golang.org/x/net/html/charset"
)

/*
Responsibilities

- Perform HTTP GET requests
- Apply headers and timeouts
- Handle redirects safely
- Classify responses

Fetch Semantics

- Only successful HTML responses are returned
- Bodies are transcoded to UTF-8
- Non-HTML content is rejected
- Redirect chains are bounded
- Bodies larger than the configured cap are rejected
- Every attempt is recorded in the metadata sink

The fetcher never parses content; it only returns bytes and metadata.
It never retries.
*/

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodySize  = 5 * 1024 * 1024
	DefaultMaxRedirects = 10
)

type HtmlFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	userAgent    string
	maxBodySize  int64
}

func NewHtmlFetcher(
	metadataSink metadata.MetadataSink,
) HtmlFetcher {
	return HtmlFetcher{
		metadataSink: metadataSink,
		httpClient:   newHTTPClient(DefaultTimeout),
		userAgent:    build.UserAgent(),
		maxBodySize:  DefaultMaxBodySize,
	}
}

// Init replaces the HTTP client and request settings. A nil client keeps
// the current one; a non-positive maxBodySize keeps the default cap.
func (h *HtmlFetcher) Init(httpClient *http.Client, userAgent string, maxBodySize int64) {
	if httpClient != nil {
		h.httpClient = httpClient
	}
	if userAgent != "" {
		h.userAgent = userAgent
	}
	if maxBodySize > 0 {
		h.maxBodySize = maxBodySize
	}
}

// NewHTTPClient returns a client with the given overall request timeout and
// a bounded redirect chain.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return newHTTPClient(timeout)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= DefaultMaxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

func (h *HtmlFetcher) Fetch(
	ctx context.Context,
	fetchUrl url.URL,
) (FetchResult, failure.ClassifiedError) {
	startTime := time.Now()

	result, err := h.performFetch(ctx, fetchUrl)

	duration := time.Since(startTime)

	var statusCode int
	var contentType string
	if err != nil {
		statusCode = err.StatusCode
	} else {
		statusCode = result.Code()
		contentType = result.ContentType()
	}

	h.metadataSink.RecordFetch(
		fetchUrl.String(),
		statusCode,
		duration,
		contentType,
	)

	if err != nil {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			"HtmlFetcher.Fetch",
			mapFetchErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
				metadata.NewAttr(metadata.AttrMessage, err.Message),
			},
		)
		return FetchResult{}, err
	}

	return result, nil
}

func (h *HtmlFetcher) performFetch(ctx context.Context, fetchUrl url.URL) (FetchResult, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	for key, value := range requestHeaders(h.userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if statusErr := classifyStatus(resp.StatusCode); statusErr != nil {
		return FetchResult{}, statusErr
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContent(contentType) {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("non-HTML content type: %s", contentType),
			Retryable:  false,
			Cause:      ErrCauseContentTypeInvalid,
			StatusCode: resp.StatusCode,
		}
	}

	// read one byte past the cap to detect oversized bodies
	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBodySize+1))
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Retryable:  true,
			Cause:      ErrCauseReadResponseBodyError,
			StatusCode: resp.StatusCode,
		}
	}
	if int64(len(body)) > h.maxBodySize {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("response body exceeds %d bytes", h.maxBodySize),
			Retryable:  false,
			Cause:      ErrCauseBodyTooLarge,
			StatusCode: resp.StatusCode,
		}
	}

	transferred := uint64(len(body))
	body = toUTF8(body, contentType)

	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	return FetchResult{
		url:  fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			transferredSizeByte: transferred,
			responseHeaders:     responseHeaders,
		},
	}, nil
}

func classifyTransportError(ctx context.Context, err error) *FetchError {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return &FetchError{
			Message:   fmt.Sprintf("request canceled: %v", err),
			Retryable: false,
			Cause:     ErrCauseCanceled,
		}
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return &FetchError{
			Message:   fmt.Sprintf("request timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	default:
		return &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
}

func isTimeout(err error) bool {
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}

func classifyStatus(statusCode int) *FetchError {
	switch {
	case statusCode >= 500:
		return &FetchError{
			Message:    fmt.Sprintf("server error: %d", statusCode),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: statusCode,
		}
	case statusCode == http.StatusTooManyRequests:
		return &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: statusCode,
		}
	case statusCode == http.StatusForbidden || statusCode == http.StatusUnauthorized:
		return &FetchError{
			Message:    fmt.Sprintf("access denied (%d)", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequestPageForbidden,
			StatusCode: statusCode,
		}
	case statusCode >= 400:
		return &FetchError{
			Message:    fmt.Sprintf("client error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequest4xx,
			StatusCode: statusCode,
		}
	case statusCode >= 300:
		// http.Client follows redirects; a 3xx here means the chain was cut
		return &FetchError{
			Message:    fmt.Sprintf("redirect error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: statusCode,
		}
	}
	return nil
}

// toUTF8 decodes body from the charset declared by the Content-Type header,
// a BOM or a <meta> tag. UTF-8 bodies are returned as is; undecodable
// bodies are left untouched for the parser to cope with.
func toUTF8(body []byte, contentType string) []byte {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}

func isHTMLContent(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	}
}
