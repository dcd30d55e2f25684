package recordio

import (
	"fmt"
	"io"
	"shiptrack/lib/scrapers/myshiptracking"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func plainStyle(colSep int) table.Style {
	style := table.StyleDefault
	style.Name = "plain"
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = strings.Repeat(" ", colSep)
	style.Format.Header = text.FormatDefault
	style.Options = table.Options{}
	return style
}

// PrettyTable writes records as left aligned columns, each as wide as its
// widest cell (header included) plus colSep spaces. Nothing is written for
// an empty slice.
func PrettyTable[T myshiptracking.Record](w io.Writer, records []T, colSep int) error {
	if len(records) == 0 {
		return nil
	}
	if colSep < 0 {
		colSep = 0
	}

	t := table.NewWriter()
	t.SetStyle(plainStyle(colSep))

	header := table.Row{}
	for _, c := range records[0].Columns() {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for _, r := range records {
		row := make(table.Row, len(header))
		values := r.Values()
		for i := range row {
			row[i] = ""
			if i < len(values) {
				row[i] = myshiptracking.Value(values[i])
			}
		}
		t.AppendRow(row)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
