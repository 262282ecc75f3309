package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// CellText returns the text of a table cell with non-breaking spaces
// collapsed to ordinary spaces and surrounding whitespace trimmed.
// Balance amounts on the campus card portal are padded with U+00A0.
func CellText(sel *goquery.Selection) string {
	text := strings.ReplaceAll(sel.Text(), " ", " ")
	return strings.Trim(text, " \t\n")
}
