package wiki

import (
	"strings"

	"golang.org/x/net/html"
)

// findTitle walks the parsed document for the Arch Wiki page heading,
// <h1 class="firstHeading">, falling back to "Unknown" if absent.
func findTitle(doc *html.Node) string {
	node := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h1" && hasClass(n, "firstHeading")
	})
	if node == nil {
		return "Unknown"
	}
	return strings.TrimSpace(textContent(node))
}

// findContentText walks the document for the main article body,
// #mw-content-text .mw-parser-output, and renders it to clean text:
// one non-empty, trimmed line per block of visible text.
func findContentText(doc *html.Node) string {
	node := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasID(n, "mw-content-text")
	})
	if node == nil {
		return ""
	}

	var lines []string
	for _, raw := range strings.Split(textContent(node), "\n") {
		line := strings.TrimSpace(raw)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// findNode does a depth-first search for the first node matching want.
func findNode(n *html.Node, want func(*html.Node) bool) *html.Node {
	if want(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, want); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates all text node descendants, inserting a newline
// between block-level siblings so the result isn't one giant run-on line.
// Heading elements are rendered with a markdown-style "#" prefix so the
// line-based section scan in extractSection can find them, mirroring how
// the original's html2text conversion renders <h2>/<h3> as "##"/"###".
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if prefix := headingPrefix(n); prefix != "" {
			sb.WriteString("\n" + prefix + " ")
		} else if isBlockElement(n) {
			sb.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if isBlockElement(n) {
			sb.WriteString("\n")
		}
	}
	walk(n)
	return sb.String()
}

func headingPrefix(n *html.Node) string {
	if n.Type != html.ElementNode {
		return ""
	}
	switch n.Data {
	case "h1":
		return "#"
	case "h2":
		return "##"
	case "h3":
		return "###"
	case "h4":
		return "####"
	case "h5":
		return "#####"
	case "h6":
		return "######"
	}
	return ""
}

func isBlockElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "br", "tr":
		return true
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func hasID(n *html.Node, id string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "id" && attr.Val == id {
			return true
		}
	}
	return false
}
