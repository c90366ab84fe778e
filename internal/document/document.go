package document

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/rohmanhakim/cobweb/pkg/failure"
	"github.com/rohmanhakim/cobweb/pkg/hashutil"
	"golang.org/x/net/html"
)

/*
ParsedDocument is the parse/query collaborator the crawler and the
extraction engine share.

- Built once per URL by the document cache
- Read-only after Parse returns; safe for concurrent readers
- Every finder returns nodes in document order and never nil
*/
type ParsedDocument struct {
	sourceURL   url.URL
	doc         *goquery.Document
	contentHash string
}

// Parse builds a ParsedDocument from a fetched body.
func Parse(sourceURL url.URL, body []byte) (*ParsedDocument, failure.ClassifiedError) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &ParseError{
			Message: fmt.Sprintf("%s returned an empty body", sourceURL.String()),
			Cause:   ErrCauseEmptyDocument,
		}
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{
			Message: fmt.Sprintf("failed to parse HTML: %v", err),
			Cause:   ErrCauseNotHTML,
		}
	}

	hash, err := hashutil.Fingerprint(body, hashutil.HashAlgoBLAKE3)
	if err != nil {
		return nil, &ParseError{
			Message: err.Error(),
			Cause:   ErrCauseNotHTML,
		}
	}

	return &ParsedDocument{
		sourceURL:   sourceURL,
		doc:         goquery.NewDocumentFromNode(root),
		contentHash: hash,
	}, nil
}

// ParseString is a convenience wrapper for tests and callers that already
// hold the markup as a string.
func ParseString(sourceURL url.URL, markup string) (*ParsedDocument, failure.ClassifiedError) {
	return Parse(sourceURL, []byte(markup))
}

func (d *ParsedDocument) URL() url.URL {
	return d.sourceURL
}

// ContentHash is the BLAKE3 fingerprint of the raw body ("blake3:<hex>").
func (d *ParsedDocument) ContentHash() string {
	return d.contentHash
}

func (d *ParsedDocument) Root() *html.Node {
	return d.doc.Nodes[0]
}

// Title returns the trimmed text of the first <title>, or "".
func (d *ParsedDocument) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// FindByTag returns every element named tag.
func (d *ParsedDocument) FindByTag(tag string) []*html.Node {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return []*html.Node{}
	}
	return nodes(d.elements(tag))
}

// FindByTagAndClass returns elements named tag that carry className.
// A className containing whitespace must equal the whole class attribute
// (after collapsing whitespace); otherwise it is a class-list membership test.
func (d *ParsedDocument) FindByTagAndClass(tag string, className string) []*html.Node {
	tag = strings.ToLower(strings.TrimSpace(tag))
	className = strings.TrimSpace(className)
	if tag == "" || className == "" {
		return []*html.Node{}
	}

	wanted := strings.Fields(className)
	matched := d.elements(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		if len(wanted) == 1 {
			return s.HasClass(wanted[0])
		}
		class, _ := s.Attr("class")
		return strings.Join(strings.Fields(class), " ") == strings.Join(wanted, " ")
	})
	return nodes(matched)
}

// FindByTagAndAttr returns elements named tag whose attrName equals
// attrValue exactly.
func (d *ParsedDocument) FindByTagAndAttr(tag string, attrName string, attrValue string) []*html.Node {
	tag = strings.ToLower(strings.TrimSpace(tag))
	attrName = strings.ToLower(strings.TrimSpace(attrName))
	if tag == "" || attrName == "" {
		return []*html.Node{}
	}

	matched := d.elements(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		value, exists := s.Attr(attrName)
		return exists && value == attrValue
	})
	return nodes(matched)
}

// Select runs a CSS selector. An invalid selector matches nothing.
func (d *ParsedDocument) Select(selector string) []*html.Node {
	compiled, err := cascadia.Compile(selector)
	if err != nil {
		return []*html.Node{}
	}
	return d.SelectMatcher(compiled)
}

// SelectMatcher runs an already compiled selector.
func (d *ParsedDocument) SelectMatcher(matcher goquery.Matcher) []*html.Node {
	return nodes(d.doc.FindMatcher(matcher))
}

// SelectOne returns the first node matching selector, or nil.
func (d *ParsedDocument) SelectOne(selector string) *html.Node {
	compiled, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	return compiled.MatchFirst(d.Root())
}

// ElementsByID returns every element whose id attribute equals id, in
// document order, like Select("#"+id) does for duplicated ids. Unlike
// Select it accepts ids that are not valid CSS identifiers.
func (d *ParsedDocument) ElementsByID(id string) []*html.Node {
	if id == "" {
		return []*html.Node{}
	}
	matched := d.doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		value, _ := s.Attr("id")
		return value == id
	})
	return nodes(matched)
}

// Anchors returns the href of every <a> element in document order.
// present is false for anchors without an href attribute.
func (d *ParsedDocument) Anchors() []Anchor {
	var anchors []Anchor
	d.elements("a").Each(func(_ int, s *goquery.Selection) {
		href, present := s.Attr("href")
		anchors = append(anchors, Anchor{Href: href, HasHref: present})
	})
	return anchors
}

type Anchor struct {
	Href    string
	HasHref bool
}

func (d *ParsedDocument) elements(tag string) *goquery.Selection {
	return d.doc.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == tag
	})
}

func nodes(s *goquery.Selection) []*html.Node {
	out := make([]*html.Node, len(s.Nodes))
	copy(out, s.Nodes)
	return out
}

// OuterHTML renders node and its subtree back to markup.
func OuterHTML(node *html.Node) string {
	if node == nil {
		return ""
	}
	markup, err := goquery.OuterHtml(goquery.NewDocumentFromNode(node).Selection)
	if err != nil {
		return ""
	}
	return markup
}

// Text returns the concatenated, trimmed text content of node.
func Text(node *html.Node) string {
	if node == nil {
		return ""
	}
	return strings.TrimSpace(goquery.NewDocumentFromNode(node).Text())
}

// TagName returns the element name of node.
func TagName(node *html.Node) string {
	if node == nil || node.Type != html.ElementNode {
		return ""
	}
	return node.Data
}
