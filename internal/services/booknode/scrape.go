package booknode

import (
	"strings"

	"golang.org/x/net/html"
)

// findNode returns the first element in depth-first order matching the
// predicate, or nil
func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findNode(child, match); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every element in depth-first order matching the predicate
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var nodes []*html.Node
	if n.Type == html.ElementNode && match(n) {
		nodes = append(nodes, n)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		nodes = append(nodes, findAll(child, match)...)
	}
	return nodes
}

// attr returns the value of the named attribute, empty when absent
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// hasClass reports whether the element carries the CSS class
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// textContent returns the concatenated text of a node and its descendants
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

// element matches a tag name, optionally restricted to a CSS class
func element(tag, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Data != tag {
			return false
		}
		return class == "" || hasClass(n, class)
	}
}
