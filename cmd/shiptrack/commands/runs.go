package commands

import (
	"fmt"
	"os"
	"shiptrack/lib/scrapers/myshiptracking"
	"shiptrack/lib/util/serviceutil"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsKind *string
var runsId *int64

func init() {
	runsKind = runsCmd.Flags().String("kind", "", "Only list runs of this kind (port_database, inport, arrivals, port_calls, event).")
	runsId = runsCmd.Flags().Int64("id", 0, "Print the records of this run instead of listing runs.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [--kind <kind>] [--id <run id>]",
	Short: "Lists the listings stored in the database.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			serviceutil.Fatal("failed to open store", err)
		}
		if store == nil {
			serviceutil.Fatal("no database configured", nil)
		}
		defer store.Close()

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(os.Stdout)

		if *runsId != 0 {
			records, err := store.Records(ctx, *runsId)
			if err != nil {
				serviceutil.Fatal("failed to read records", err)
			}
			if len(records) == 0 {
				fmt.Fprintf(os.Stdout, "Run %d has no records.\n", *runsId)
				return
			}

			var columns []string
			for c := range records[0] {
				columns = append(columns, c)
			}
			sort.Strings(columns)

			header := table.Row{}
			for _, c := range columns {
				header = append(header, c)
			}
			t.AppendHeader(header)
			for _, r := range records {
				row := table.Row{}
				for _, c := range columns {
					row = append(row, myshiptracking.Value(r[c]))
				}
				t.AppendRow(row)
			}
			t.Render()
			return
		}

		var kind myshiptracking.Kind
		if *runsKind != "" {
			kind, err = myshiptracking.ParseKind(*runsKind)
			if err != nil {
				serviceutil.Fatal("bad kind", err)
			}
		}
		runs, err := store.Runs(ctx, kind)
		if err != nil {
			serviceutil.Fatal("failed to list runs", err)
		}

		t.AppendHeader(table.Row{"Id", "Kind", "Query", "Fetched at", "Records"})
		for _, r := range runs {
			t.AppendRow(table.Row{r.Id, r.Kind.String(), r.Query, r.FetchedAt.Format(time.DateTime), r.Count})
		}
		t.Render()
	},
}
