package extractor

import (
	"net/url"

	"golang.org/x/net/html"
)

// IDSelector is the selector value that also triggers a lookup of every
// configured id value.
const IDSelector = "id"

// Rules is the read-only extraction configuration of one run. Class and
// attribute rules combine with every tag in Tags.
type Rules struct {
	Tags       []string
	Classes    []string
	Attributes []string
	AttrValues []string
	Selectors  []string
	IDValues   []string
}

type Strategy string

const (
	StrategyElement   Strategy = "by_element"
	StrategyAttribute Strategy = "by_attribute"
	StrategyClass     Strategy = "by_class"
	StrategySelector  Strategy = "by_selector"
)

// Match is one matched node and the page it was found on.
type Match struct {
	Page url.URL
	Node *html.Node
}

// Result holds every strategy's matches, ordered by page and then by rule
// and document order within the page. Matches are not deduplicated.
type Result struct {
	ByElement   []Match
	ByAttribute []Match
	ByClass     []Match
	BySelector  []Match
}

func NewResult() Result {
	return Result{
		ByElement:   []Match{},
		ByAttribute: []Match{},
		ByClass:     []Match{},
		BySelector:  []Match{},
	}
}

// Of returns the matches of a single strategy.
func (r Result) Of(strategy Strategy) []Match {
	switch strategy {
	case StrategyElement:
		return r.ByElement
	case StrategyAttribute:
		return r.ByAttribute
	case StrategyClass:
		return r.ByClass
	case StrategySelector:
		return r.BySelector
	default:
		return []Match{}
	}
}

func (r Result) Total() int {
	return len(r.ByElement) + len(r.ByAttribute) + len(r.ByClass) + len(r.BySelector)
}

// Append adds other's matches after r's, strategy by strategy.
func (r Result) Append(other Result) Result {
	return Result{
		ByElement:   append(append([]Match{}, r.ByElement...), other.ByElement...),
		ByAttribute: append(append([]Match{}, r.ByAttribute...), other.ByAttribute...),
		ByClass:     append(append([]Match{}, r.ByClass...), other.ByClass...),
		BySelector:  append(append([]Match{}, r.BySelector...), other.BySelector...),
	}
}

// Strategies lists the strategies in result order.
func Strategies() []Strategy {
	return []Strategy{StrategyElement, StrategyAttribute, StrategyClass, StrategySelector}
}
