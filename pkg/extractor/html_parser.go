package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Separators used when joining text runs.
const (
	LineSeparator = "\n"
	NoSeparator   = ""
)

// nonContentSelectors are stripped from a content container before reading it.
const nonContentSelectors = "script, style"

// Parse builds a queryable document from raw HTML.
func Parse(content []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// FirstText returns the text of the first element matching selector, with
// text runs trimmed and concatenated. ok is false when nothing matches.
func FirstText(doc *goquery.Document, selector string) (text string, ok bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return SelectionText(sel, NoSeparator), true
}

// ContainerText returns the visible text of the first element matching
// selector. Script and style descendants are removed first. Text runs are
// trimmed, empty runs dropped and the rest joined by newlines.
func ContainerText(doc *goquery.Document, selector string) (text string, ok bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	sel.Find(nonContentSelectors).Remove()
	return SelectionText(sel, LineSeparator), true
}

// DocumentText returns the visible text of the whole document, newline separated.
func DocumentText(doc *goquery.Document) string {
	return SelectionText(doc.Selection, LineSeparator)
}

// SelectionText joins the trimmed text runs under every node of sel.
func SelectionText(sel *goquery.Selection, sep string) string {
	var runs []string
	for _, n := range sel.Nodes {
		runs = collectText(n, runs)
	}
	return strings.Join(runs, sep)
}

func collectText(n *html.Node, runs []string) []string {
	switch n.Type {
	case html.ElementNode:
		// Raw-text elements never contribute visible text
		switch n.Data {
		case "script", "style", "template", "noscript":
			return runs
		}
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			runs = append(runs, text)
		}
		return runs
	case html.CommentNode, html.DoctypeNode:
		return runs
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		runs = collectText(c, runs)
	}
	return runs
}
