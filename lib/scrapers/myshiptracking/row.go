package myshiptracking

import (
	"shiptrack/lib/htmlutil"
	"shiptrack/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Row is one <tr> of a listing table. Origin is prefixed to the relative
// links found in the row.
type Row struct {
	Origin string
	cells  *goquery.Selection
}

func NewRow(origin string, tr *goquery.Selection) Row {
	return Row{
		Origin: origin,
		cells:  tr.ChildrenFiltered("td"),
	}
}

func (r Row) Cell(rule string, i int) (*goquery.Selection, error) {
	if i < 0 || i >= r.cells.Length() {
		return nil, markupErrorf(rule, "row has %d cells, wanted cell %d", r.cells.Length(), i)
	}
	return r.cells.Eq(i), nil
}

func (r Row) Text(rule string, i int) (string, error) {
	cell, err := r.Cell(rule, i)
	if err != nil {
		return "", err
	}
	return cell.Text(), nil
}

// Link resolves the href of the first anchor inside cell i against Origin.
func (r Row) Link(rule string, i int) (string, error) {
	cell, err := r.Cell(rule, i)
	if err != nil {
		return "", err
	}
	href, ok := htmlutil.FindAttr(cell, "a", "href")
	if !ok {
		return "", markupErrorf(rule, "cell %d has no link", i)
	}
	return r.Origin + href, nil
}

// VesselLabel reads the <span> label of cell i and splits its trailing
// country code off.
func (r Row) VesselLabel(rule string, i int) (name *string, code *string, err error) {
	cell, err := r.Cell(rule, i)
	if err != nil {
		return nil, nil, err
	}
	label, ok := htmlutil.FindText(cell, "span")
	if !ok {
		return nil, nil, markupErrorf(rule, "cell %d has no vessel label", i)
	}
	vesselName, alpha2code, ok := textutil.SplitTrailingCode(label)
	if !ok {
		return ptr(vesselName), nil, nil
	}
	return ptr(vesselName), ptr(alpha2code), nil
}
