package frontier

import (
	"net/url"

	"github.com/rohmanhakim/cobweb/pkg/urlutil"
)

/*
Frontier Responsibilities
- Hold discovered links in discovery order
- Deduplicate by canonical URL
- Keep internal and external links mutually exclusive
- Knows nothing about:
	- fetching
	- parsing
	- extraction

It is a data structure module, not a pipeline executor.
*/

type LinkKind int

const (
	LinkInternal LinkKind = iota
	LinkExternal
)

func (k LinkKind) String() string {
	if k == LinkExternal {
		return "external"
	}
	return "internal"
}

// LinkSet is an immutable snapshot of classified links.
type LinkSet struct {
	internal []url.URL
	external []url.URL
}

// Internal returns the same-host links in discovery order.
func (l LinkSet) Internal() []url.URL {
	return append([]url.URL{}, l.internal...)
}

// External returns the cross-host links in discovery order.
func (l LinkSet) External() []url.URL {
	return append([]url.URL{}, l.external...)
}

func (l LinkSet) Len() int {
	return len(l.internal) + len(l.external)
}

func (l LinkSet) IsEmpty() bool {
	return l.Len() == 0
}

// Kind reports which side u was classified into.
func (l LinkSet) Kind(u url.URL) (LinkKind, bool) {
	key := canonicalKey(u)
	for _, link := range l.internal {
		if canonicalKey(link) == key {
			return LinkInternal, true
		}
	}
	for _, link := range l.external {
		if canonicalKey(link) == key {
			return LinkExternal, true
		}
	}
	return LinkInternal, false
}

// LinkCollector accumulates links for a single classification pass and
// hands out LinkSet snapshots. Not safe for concurrent use.
type LinkCollector struct {
	internal []url.URL
	external []url.URL
	seen     Set[string]
}

func NewLinkCollector() *LinkCollector {
	return &LinkCollector{
		internal: []url.URL{},
		external: []url.URL{},
		seen:     NewSet[string](),
	}
}

// Add records u under kind. A URL already present on either side is
// ignored and Add returns false.
func (c *LinkCollector) Add(u url.URL, kind LinkKind) bool {
	canonical := urlutil.Canonicalize(u)
	if !c.seen.AddNew(canonical.String()) {
		return false
	}
	switch kind {
	case LinkExternal:
		c.external = append(c.external, canonical)
	default:
		c.internal = append(c.internal, canonical)
	}
	return true
}

func (c *LinkCollector) Len() int {
	return c.seen.Size()
}

// Snapshot copies the collected links; later Adds do not affect it.
func (c *LinkCollector) Snapshot() LinkSet {
	return LinkSet{
		internal: append([]url.URL{}, c.internal...),
		external: append([]url.URL{}, c.external...),
	}
}

func canonicalKey(u url.URL) string {
	canonical := urlutil.Canonicalize(u)
	return canonical.String()
}
