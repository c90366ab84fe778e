package crawler

import (
	"net/url"

	"github.com/rohmanhakim/cobweb/internal/document"
	"github.com/rohmanhakim/cobweb/internal/frontier"
	"github.com/rohmanhakim/cobweb/pkg/urlutil"
)

// Classify collects the hyperlinks of doc and splits them by host relative
// to base. Only the first maxLinks <a> elements are considered, including
// anchors that carry no href. Hrefs that do not resolve to an absolute URL
// are skipped, and so are valid absolute URLs whose scheme is not http or
// https (ftp:, mailto:): the fetcher only speaks HTTP, so the classifier
// filters them out instead of handing it links that can only fail.
func Classify(doc *document.ParsedDocument, base url.URL, maxLinks int) frontier.LinkSet {
	collector := frontier.NewLinkCollector()
	if doc == nil || maxLinks <= 0 {
		return collector.Snapshot()
	}

	anchors := doc.Anchors()
	if len(anchors) > maxLinks {
		anchors = anchors[:maxLinks]
	}

	for _, anchor := range anchors {
		if !anchor.HasHref || anchor.Href == "" {
			continue
		}
		link, err := urlutil.Resolve(base, anchor.Href)
		if err != nil || !urlutil.IsHTTP(link) {
			continue
		}
		if urlutil.SameHost(base, link) {
			collector.Add(link, frontier.LinkInternal)
		} else {
			collector.Add(link, frontier.LinkExternal)
		}
	}

	return collector.Snapshot()
}
