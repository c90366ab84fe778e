package report

// Representation of one scrape run, independent of any output format.

type Report struct {
	Seed        string  `json:"seed"`
	GeneratedBy string  `json:"generatedBy"`
	DurationMs  int64   `json:"durationMs"`
	Links       Links   `json:"links"`
	Pages       []Page  `json:"pages"`
	ByElement   []Match `json:"byElement"`
	ByAttribute []Match `json:"byAttribute"`
	ByClass     []Match `json:"byClass"`
	BySelector  []Match `json:"bySelector"`
}

type Links struct {
	Internal []string `json:"internal"`
	External []string `json:"external"`
}

// Page is one worklist entry. ID is a short BLAKE3 digest of the URL that
// matches reference back to.
type Page struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	HTTPStatus  int    `json:"httpStatus,omitempty"`
	Title       string `json:"title,omitempty"`
	ContentHash string `json:"contentHash,omitempty"`
	Error       string `json:"error,omitempty"`
}

type Match struct {
	PageID   string   `json:"pageId"`
	Page     string   `json:"page"`
	Tag      string   `json:"tag"`
	HTML     string   `json:"html"`
	Text     string   `json:"text"`
	Markdown string   `json:"markdown,omitempty"`
	Links    []string `json:"links,omitempty"`
}

// Section is a named category of matches, in report order.
type Section struct {
	Title   string
	Matches []Match
}

func (r Report) Sections() []Section {
	return []Section{
		{Title: "By element", Matches: r.ByElement},
		{Title: "By attribute", Matches: r.ByAttribute},
		{Title: "By class", Matches: r.ByClass},
		{Title: "By selector", Matches: r.BySelector},
	}
}

func (r Report) TotalMatches() int {
	return len(r.ByElement) + len(r.ByAttribute) + len(r.ByClass) + len(r.BySelector)
}

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Extension is the file extension conventionally used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatMarkdown:
		return ".md"
	default:
		return ".txt"
	}
}
