package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

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

// Find returns the first descendant of sel matching selector, the second
// return value is false when nothing matches.
func Find(sel *goquery.Selection, selector string) (*goquery.Selection, bool) {
	found := sel.Find(selector).First()
	return found, found.Length() > 0
}

// FindText is Find followed by the raw text of the match.
func FindText(sel *goquery.Selection, selector string) (string, bool) {
	found, ok := Find(sel, selector)
	if !ok {
		return "", false
	}
	return GetText(found.Nodes[0]), true
}

// FindAttr is Find followed by the value of attr on the match, it is
// false if either the element or the attribute is missing.
func FindAttr(sel *goquery.Selection, selector, attr string) (string, bool) {
	found, ok := Find(sel, selector)
	if !ok {
		return "", false
	}
	return found.Attr(attr)
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// Clean strips non-printable runes (zero width spaces and the like) and
// collapses runs of whitespace. Record fields keep their raw text.
func Clean(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n")
	return innerWhitespace.ReplaceAllString(s, " ")
}
