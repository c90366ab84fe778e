package mdconvert

// Representation

type ConversionResult struct {
	markdown string
	linkRefs []LinkRef
}

func NewConversionResult(
	markdown string,
	linkRefs []LinkRef,
) ConversionResult {
	return ConversionResult{
		markdown: markdown,
		linkRefs: linkRefs,
	}
}

func (c *ConversionResult) Markdown() string {
	return c.markdown
}

func (c *ConversionResult) LinkRefs() []LinkRef {
	return c.linkRefs
}

type LinkKind string

const (
	KindNavigation LinkKind = "navigation"
	KindImage      LinkKind = "image"
	KindAnchor     LinkKind = "anchor"
)

// LinkRef is a reference found inside a converted fragment, kept raw
// (unresolved) exactly as it appeared in the markup.
type LinkRef struct {
	raw  string
	kind LinkKind
}

func NewLinkRef(
	raw string,
	kind LinkKind,
) LinkRef {
	return LinkRef{
		raw:  raw,
		kind: kind,
	}
}

func (l *LinkRef) Raw() string {
	return l.raw
}

func (l *LinkRef) Kind() LinkKind {
	return l.kind
}
