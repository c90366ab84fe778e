package report

import (
	"net/url"

	"github.com/rohmanhakim/cobweb/internal/build"
	"github.com/rohmanhakim/cobweb/internal/document"
	"github.com/rohmanhakim/cobweb/internal/extractor"
	"github.com/rohmanhakim/cobweb/internal/frontier"
	"github.com/rohmanhakim/cobweb/internal/mdconvert"
	"github.com/rohmanhakim/cobweb/internal/scheduler"
	"github.com/rohmanhakim/cobweb/pkg/hashutil"
)

const pageIDLength = 12

// Builder turns a ScrapeExecution into a Report. A nil converter leaves
// the markdown column empty.
type Builder struct {
	converter mdconvert.ConvertRule
}

func NewBuilder(converter mdconvert.ConvertRule) *Builder {
	return &Builder{converter: converter}
}

func (b *Builder) Build(execution scheduler.ScrapeExecution) Report {
	seed := execution.Seed
	report := Report{
		Seed:        seed.String(),
		GeneratedBy: build.UserAgent(),
		DurationMs:  execution.Duration.Milliseconds(),
		Links: Links{
			Internal: urlStrings(execution.Links.Internal()),
			External: urlStrings(execution.Links.External()),
		},
		Pages: make([]Page, 0, len(execution.Pages)),
	}

	for _, outcome := range execution.Pages {
		page := Page{
			ID:          PageID(outcome.URL),
			URL:         outcome.URL.String(),
			Role:        string(outcome.Role),
			Status:      string(outcome.Status),
			HTTPStatus:  outcome.HTTPStatus,
			Title:       outcome.Title,
			ContentHash: outcome.ContentHash,
		}
		if outcome.Err != nil {
			page.Error = outcome.Err.Error()
		}
		report.Pages = append(report.Pages, page)
	}

	report.ByElement = b.matches(execution.Result.ByElement)
	report.ByAttribute = b.matches(execution.Result.ByAttribute)
	report.ByClass = b.matches(execution.Result.ByClass)
	report.BySelector = b.matches(execution.Result.BySelector)
	return report
}

func (b *Builder) matches(in []extractor.Match) []Match {
	out := make([]Match, 0, len(in))
	for _, m := range in {
		match := Match{
			PageID: PageID(m.Page),
			Page:   m.Page.String(),
			Tag:    document.TagName(m.Node),
			HTML:   document.OuterHTML(m.Node),
			Text:   document.Text(m.Node),
		}
		if b.converter != nil {
			// conversion errors are recorded by the converter; the match
			// stays in the report without markdown
			if result, err := b.converter.Convert(m.Node); err == nil {
				match.Markdown = result.Markdown()
				for _, ref := range result.LinkRefs() {
					match.Links = append(match.Links, ref.Raw())
				}
			}
		}
		out = append(out, match)
	}
	return out
}

// PageID is the stable short identifier of a page URL in reports.
func PageID(u url.URL) string {
	return hashutil.ShortID(u.String(), pageIDLength)
}

func urlStrings(urls []url.URL) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		out = append(out, u.String())
	}
	return out
}

// FromLinks builds a report that carries only the classified link sets of
// a seed page, without pages or matches.
func FromLinks(seed url.URL, links frontier.LinkSet) Report {
	return Report{
		Seed:        seed.String(),
		GeneratedBy: build.UserAgent(),
		Links: Links{
			Internal: urlStrings(links.Internal()),
			External: urlStrings(links.External()),
		},
		Pages:       []Page{},
		ByElement:   []Match{},
		ByAttribute: []Match{},
		ByClass:     []Match{},
		BySelector:  []Match{},
	}
}
