package extractor

import (
	"github.com/andybalholm/cascadia"
	"github.com/rohmanhakim/cobweb/internal/document"
	"github.com/rohmanhakim/cobweb/internal/metadata"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Apply the four selection strategies to parsed documents
- Preserve page order, then rule order, then document order
- Never fail: a rule that matches nothing contributes nothing

Strategies
- By element:   every element with a configured tag
- By class:     elements with a configured tag AND a configured class
- By attribute: elements with a configured tag whose attribute equals a
                configured value exactly
- By selector:  CSS selector matches; the "id" selector first resolves
                every configured id value

The extractor holds no per-run state, so the same documents and rules
always produce the same result.
*/

type Extractor struct {
	metadataSink metadata.MetadataSink
	rules        Rules
	selectors    []compiledSelector
}

type compiledSelector struct {
	raw     string
	matcher cascadia.Selector
}

func NewExtractor(metadataSink metadata.MetadataSink, rules Rules) Extractor {
	compiled := make([]compiledSelector, 0, len(rules.Selectors))
	for _, raw := range rules.Selectors {
		matcher, err := cascadia.Compile(raw)
		if err != nil {
			// keeps its slot (the id lookup still runs) but matches nothing
			matcher = nil
		}
		compiled = append(compiled, compiledSelector{raw: raw, matcher: matcher})
	}
	return Extractor{
		metadataSink: metadataSink,
		rules:        rules,
		selectors:    compiled,
	}
}

func (e *Extractor) Rules() Rules {
	return e.rules
}

// Extract runs every strategy over docs in the given order.
func (e *Extractor) Extract(docs []*document.ParsedDocument) Result {
	result := NewResult()
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		result = result.Append(e.ExtractPage(doc))
	}

	for _, strategy := range Strategies() {
		e.metadataSink.RecordExtraction(string(strategy), len(docs), len(result.Of(strategy)))
	}
	return result
}

// ExtractPage runs every strategy over a single document.
func (e *Extractor) ExtractPage(doc *document.ParsedDocument) Result {
	return Result{
		ByElement:   e.byElement(doc),
		ByAttribute: e.byAttribute(doc),
		ByClass:     e.byClass(doc),
		BySelector:  e.bySelector(doc),
	}
}

func (e *Extractor) byElement(doc *document.ParsedDocument) []Match {
	matches := []Match{}
	for _, tag := range e.rules.Tags {
		matches = appendNodes(matches, doc, doc.FindByTag(tag))
	}
	return matches
}

func (e *Extractor) byClass(doc *document.ParsedDocument) []Match {
	matches := []Match{}
	for _, tag := range e.rules.Tags {
		for _, className := range e.rules.Classes {
			matches = appendNodes(matches, doc, doc.FindByTagAndClass(tag, className))
		}
	}
	return matches
}

func (e *Extractor) byAttribute(doc *document.ParsedDocument) []Match {
	matches := []Match{}
	for _, tag := range e.rules.Tags {
		for _, attrName := range e.rules.Attributes {
			for _, attrValue := range e.rules.AttrValues {
				matches = appendNodes(matches, doc, doc.FindByTagAndAttr(tag, attrName, attrValue))
			}
		}
	}
	return matches
}

func (e *Extractor) bySelector(doc *document.ParsedDocument) []Match {
	matches := []Match{}
	for _, selector := range e.selectors {
		if selector.raw == IDSelector {
			for _, id := range e.rules.IDValues {
				matches = appendNodes(matches, doc, doc.ElementsByID(id))
			}
		}
		if selector.matcher == nil {
			continue
		}
		matches = appendNodes(matches, doc, doc.SelectMatcher(selector.matcher))
	}
	return matches
}

func appendNodes(matches []Match, doc *document.ParsedDocument, nodes []*html.Node) []Match {
	page := doc.URL()
	for _, node := range nodes {
		matches = append(matches, Match{Page: page, Node: node})
	}
	return matches
}
