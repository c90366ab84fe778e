package frontier

import (
	"net/url"

	"github.com/rohmanhakim/cobweb/pkg/urlutil"
)

// Worklist is the ordered list of pages a scrape visits: the seed, then
// internal links, then external links, each canonical URL once.
type Worklist struct {
	urls []url.URL
}

func NewWorklist(seed url.URL, links LinkSet) Worklist {
	seen := NewSet[string]()
	urls := make([]url.URL, 0, 1+links.Len())

	add := func(u url.URL) {
		canonical := urlutil.Canonicalize(u)
		if seen.AddNew(canonical.String()) {
			urls = append(urls, canonical)
		}
	}

	add(seed)
	for _, u := range links.internal {
		add(u)
	}
	for _, u := range links.external {
		add(u)
	}

	return Worklist{urls: urls}
}

// Seed is always the first entry.
func (w Worklist) Seed() url.URL {
	return w.urls[0]
}

func (w Worklist) URLs() []url.URL {
	return append([]url.URL{}, w.urls...)
}

func (w Worklist) At(i int) url.URL {
	return w.urls[i]
}

func (w Worklist) Len() int {
	return len(w.urls)
}
