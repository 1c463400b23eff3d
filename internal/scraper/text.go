package scraper

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxRawText caps the diagnostic text kept on a report
const maxRawText = 4096

// page is a parsed source page with its plain text view
type page struct {
	doc  *goquery.Document
	text string
}

// newPage parses body leniently. Scripting is disabled so that <noscript>
// fallbacks are parsed as markup rather than raw text.
func newPage(body string) *page {
	root, err := html.ParseWithOptions(strings.NewReader(body), html.ParseOptionEnableScripting(false))
	if err != nil {
		// html.Parse only fails on reader errors; treat the body as plain text
		return &page{text: normalizeText(body)}
	}

	doc := goquery.NewDocumentFromNode(root)
	var b strings.Builder
	for _, n := range doc.Nodes {
		writeText(&b, n)
	}

	return &page{doc: doc, text: normalizeText(b.String())}
}

// lineBreaks are elements whose boundaries end a line in the text view
var lineBreaks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true,
	atom.Ol: true, atom.Tr: true, atom.Table: true, atom.Tbody: true, atom.Thead: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Main: true, atom.Nav: true, atom.Aside: true, atom.Dl: true, atom.Dt: true,
	atom.Dd: true, atom.Blockquote: true, atom.Script: true, atom.Noscript: true,
	atom.Title: true, atom.Hr: true,
}

// writeText appends the text of n and its descendants. Block elements are
// separated by newlines, everything else by a space.
func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}

	sep := ""
	if n.Type == html.ElementNode {
		switch {
		case n.DataAtom == atom.Style:
			return
		case lineBreaks[n.DataAtom]:
			sep = "\n"
		default:
			sep = " "
		}
	}

	b.WriteString(sep)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	b.WriteString(sep)
}

var horizontalSpace = regexp.MustCompile(`[ \t\r\f\v\x{00a0}]+`)

// normalizeText collapses runs of whitespace and drops blank lines
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// scriptsMentioning returns the normalized contents of <script> blocks that
// contain any of the given words (case-insensitive)
func (p *page) scriptsMentioning(words ...string) []string {
	if p.doc == nil {
		return nil
	}

	var out []string
	p.doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		content := normalizeText(sel.Text())
		lower := strings.ToLower(content)
		for _, w := range words {
			if strings.Contains(lower, strings.ToLower(w)) {
				out = append(out, content)
				return
			}
		}
	})
	return out
}

// joinRaw joins diagnostic snippets, truncated to maxRawText bytes
func joinRaw(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}

	raw := strings.Join(kept, "\n")
	if len(raw) <= maxRawText {
		return raw
	}

	// Cut on a rune boundary
	cut := maxRawText
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut]
}
