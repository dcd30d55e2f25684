package myshiptracking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const testOrigin = "https://www.myshiptracking.com"

func parseRow(t testing.TB, tr string) Row {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<table><tbody class="table-body">` + tr + `</tbody></table>`,
	))
	require.NoError(t, err)
	return NewRow(testOrigin, doc.Find("tbody.table-body > tr").First())
}

func parseDocument(t testing.TB, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func portRow(id, name, country string) string {
	return fmt.Sprintf(
		`<tr><td>%s</td><td><a href="/ports/port-of-%s-in-xx-%s-id-%s">%s</a></td><td>Port</td><td>Large</td></tr>`,
		id, strings.ToLower(name), strings.ToLower(country), id, name,
	)
}

// summary looks like the site's footer, "<per page> of <total> ports"
func footer(perPage, total int) string {
	return fmt.Sprintf(
		`<div class="footer"><div class="pager"><a href="#">next</a></div><div>Showing %d of %d ports</div></div>`,
		perPage, total,
	)
}

func listingPage(footerHtml string, rows ...string) string {
	return `<html><body><table class="myst-table"><thead><tr><th>#</th></tr></thead>` +
		`<tbody class="table-body">` + strings.Join(rows, "") + `</tbody></table>` +
		footerHtml + `</body></html>`
}
