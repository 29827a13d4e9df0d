package mpesa

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText reduces an HTML fragment to its visible text. Input that does not
// look like markup is returned unchanged.
func PlainText(raw string) string {
	if !looksLikeHTML(raw) {
		return raw
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	doc.Find("script, style").Remove()

	var parts []string
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		parts = append(parts, sel.Text())
	})

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// htmlTag matches an opening, closing, comment or doctype tag.
var htmlTag = regexp.MustCompile(`<[a-zA-Z/!][^<>]*>`)

func looksLikeHTML(s string) bool {
	return htmlTag.MatchString(s)
}
