package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nao1215/markdown"
)

// ParseFormat accepts the format names used on the command line.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", &ReportError{
			Message: fmt.Sprintf("%q (want json, markdown or text)", raw),
			Cause:   ErrCauseUnknownFormat,
		}
	}
}

// Render writes r to w in the given format.
func Render(w io.Writer, r Report, format Format) error {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJSON:
		err = renderJSON(&buf, r)
	case FormatMarkdown:
		err = renderMarkdown(&buf, r)
	case FormatText:
		err = renderText(&buf, r)
	default:
		return &ReportError{Message: string(format), Cause: ErrCauseUnknownFormat}
	}
	if err == nil {
		_, err = w.Write(buf.Bytes())
	}
	if err != nil {
		return &ReportError{Message: err.Error(), Cause: ErrCauseRenderFailure}
	}
	return nil
}

// Bytes renders r into memory.
func Bytes(r Report, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, r, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func renderMarkdown(w io.Writer, r Report) error {
	md := markdown.NewMarkdown(w)
	md.H1f("Scrape of %s", r.Seed)
	md.PlainText("")

	md.H2("Links")
	md.PlainText("")
	writeMarkdownList(md, "Internal", r.Links.Internal)
	writeMarkdownList(md, "External", r.Links.External)

	if len(r.Pages) > 0 {
		md.H2("Pages")
		md.PlainText("")
		rows := make([][]string, 0, len(r.Pages))
		for _, p := range r.Pages {
			rows = append(rows, []string{p.ID, p.URL, p.Role, p.Status, httpStatus(p.HTTPStatus), escapeCell(p.Error)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"ID", "URL", "Role", "Status", "HTTP", "Error"},
			Rows:   rows,
		})
	}

	for _, section := range r.Sections() {
		md.H2f("%s (%d)", section.Title, len(section.Matches))
		md.PlainText("")
		for i, m := range section.Matches {
			md.H3f("%d. `<%s>` on %s", i+1, m.Tag, m.Page)
			md.PlainText("")
			body := m.Markdown
			if body == "" {
				body = m.Text
			}
			if body != "" {
				md.PlainText(body)
				md.PlainText("")
			}
			md.CodeBlocks(markdown.SyntaxHighlightHTML, m.HTML)
			md.PlainText("")
		}
	}
	return md.Build()
}

func writeMarkdownList(md *markdown.Markdown, title string, items []string) {
	md.H3f("%s (%d)", title, len(items))
	md.PlainText("")
	if len(items) > 0 {
		md.BulletList(items...)
		md.PlainText("")
	}
}

func renderText(w *bytes.Buffer, r Report) error {
	fmt.Fprintf(w, "seed: %s\n", r.Seed)
	fmt.Fprintf(w, "internal links: %d\n", len(r.Links.Internal))
	for _, link := range r.Links.Internal {
		fmt.Fprintf(w, "  %s\n", link)
	}
	fmt.Fprintf(w, "external links: %d\n", len(r.Links.External))
	for _, link := range r.Links.External {
		fmt.Fprintf(w, "  %s\n", link)
	}

	if len(r.Pages) > 0 {
		w.WriteString("pages:\n")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, p := range r.Pages {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", p.ID, p.Role, p.Status, httpStatus(p.HTTPStatus), p.URL)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, section := range r.Sections() {
		fmt.Fprintf(w, "%s: %d\n", strings.ToLower(section.Title), len(section.Matches))
		for _, m := range section.Matches {
			fmt.Fprintf(w, "  [%s] <%s> %s\n", m.PageID, m.Tag, oneLine(m.Text))
		}
	}
	return nil
}

func httpStatus(code int) string {
	if code == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", code)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
