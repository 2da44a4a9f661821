// Package extract turns HTML documents into plain text suitable for
// sentence-level detection.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// VisibleText parses HTML content and returns the concatenation of its
// visible text nodes, separated by single spaces. Script, style, noscript
// and iframe subtrees are skipped. Detection offsets computed over the
// returned text refer to this text, not to the raw HTML.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return buf.String(), nil
}
