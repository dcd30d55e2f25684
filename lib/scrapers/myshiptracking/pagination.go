package myshiptracking

import (
	"shiptrack/lib/htmlutil"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func footerNumber(token string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(token), ",", ""))
}

// ResolvePageCount reads the listing footer, which ends in
// "... <per page> of <total> <items>", and returns ceil(total / per page).
func ResolvePageCount(doc *goquery.Document) (int, error) {
	const rule = "pagination"

	footer := doc.Find("div.footer").First()
	if footer.Length() == 0 {
		return 0, markupErrorf(rule, "no footer")
	}
	summary := footer.Find("div:not([class])").First()
	if summary.Length() == 0 {
		return 0, markupErrorf(rule, "footer has no summary")
	}

	text := htmlutil.Clean(summary.Text())
	tokens := strings.Fields(text)
	if len(tokens) < 4 {
		return 0, markupErrorf(rule, "summary %q is too short", text)
	}
	perPage, err := footerNumber(tokens[len(tokens)-4])
	if err != nil {
		return 0, markupErrorf(rule, "items per page: %s", err.Error())
	}
	total, err := footerNumber(tokens[len(tokens)-2])
	if err != nil {
		return 0, markupErrorf(rule, "total items: %s", err.Error())
	}
	if perPage <= 0 || total < 0 {
		return 0, markupErrorf(rule, "summary %q has %d items per page of %d", text, perPage, total)
	}

	return (total + perPage - 1) / perPage, nil
}
