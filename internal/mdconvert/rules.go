package mdconvert

import (
	"errors"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/cobweb/internal/metadata"
	"github.com/rohmanhakim/cobweb/pkg/failure"
	"golang.org/x/net/html"
)

/*
Conversion Rules
- Headings map directly (h1-h6 to # - ######)
- Code blocks preserved verbatim
- Tables converted structurally (GFM)
- Links and images preserved as-is (no resolution)
- DOM order preserved

The converter renders a single matched element (and its subtree).
The node is never mutated.
*/

// ConvertRule renders one extracted element as Markdown.
type ConvertRule interface {
	Convert(node *html.Node) (ConversionResult, failure.ClassifiedError)
}

var _ ConvertRule = (*StrictConversionRule)(nil)

type StrictConversionRule struct {
	metadataSink metadata.MetadataSink
	conv         *converter.Converter
}

func NewRule(metadataSink metadata.MetadataSink) *StrictConversionRule {
	return &StrictConversionRule{
		metadataSink: metadataSink,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (s *StrictConversionRule) Convert(node *html.Node) (ConversionResult, failure.ClassifiedError) {
	result, err := s.convert(node)
	if err != nil {
		var conversionError *ConversionError
		errors.As(err, &conversionError)

		s.metadataSink.RecordError(
			time.Now(),
			"mdconvert",
			"StrictConversionRule.Convert",
			mapConversionErrorToMetadataCause(conversionError),
			err.Error(),
			[]metadata.Attribute{},
		)
		return ConversionResult{}, conversionError
	}
	return result, nil
}

func (s *StrictConversionRule) convert(node *html.Node) (ConversionResult, *ConversionError) {
	if node == nil {
		return ConversionResult{}, &ConversionError{
			Message: "cannot convert nil HTML node",
			Cause:   ErrCauseNilNode,
		}
	}

	markdown, err := s.conv.ConvertNode(cloneTree(node))
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message: err.Error(),
			Cause:   ErrCauseConversionFailure,
		}
	}

	return NewConversionResult(
		strings.TrimSpace(string(markdown)),
		extractLinkRefs(node),
	), nil
}

// cloneTree returns a detached deep copy of node so the converter's
// pre-render passes never touch the parsed document.
func cloneTree(node *html.Node) *html.Node {
	clone := &html.Node{
		Type:      node.Type,
		DataAtom:  node.DataAtom,
		Data:      node.Data,
		Namespace: node.Namespace,
		Attr:      append([]html.Attribute(nil), node.Attr...),
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		clone.AppendChild(cloneTree(child))
	}
	return clone
}

// extractLinkRefs collects a[href] and img[src] in document order,
// including the node itself when it is one of them.
func extractLinkRefs(node *html.Node) []LinkRef {
	linkRefs := []LinkRef{}

	sel := goquery.NewDocumentFromNode(node).Selection
	sel.Filter("a[href], img[src]").AddSelection(sel.Find("a[href], img[src]")).
		Each(func(_ int, s *goquery.Selection) {
			switch goquery.NodeName(s) {
			case "a":
				href, _ := s.Attr("href")
				linkRefs = append(linkRefs, toLinkRef("a", href))
			case "img":
				src, _ := s.Attr("src")
				linkRefs = append(linkRefs, toLinkRef("img", src))
			}
		})

	return linkRefs
}

func toLinkRef(tagName, raw string) LinkRef {
	var kind LinkKind
	switch tagName {
	case "img":
		kind = KindImage
	case "a":
		if strings.HasPrefix(raw, "#") {
			kind = KindAnchor
		} else {
			kind = KindNavigation
		}
	default:
		kind = KindNavigation
	}
	return NewLinkRef(raw, kind)
}
