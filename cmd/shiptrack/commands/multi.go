package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"shiptrack/lib/chrono"
	"shiptrack/lib/recordio"
	"shiptrack/lib/scrapers/myshiptracking"
	"shiptrack/lib/telemetry"
	"shiptrack/lib/util/serviceutil"
	"shiptrack/services/tracking"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var multiSchedule *string

func init() {
	multiSchedule = multiCmd.Flags().String("schedule", "", "A cron spec (e.g. \"0 */6 * * *\") to re-run tracking on until interrupted.")
	rootCmd.AddCommand(multiCmd)
}

// loadPorts reads the cached port list, fetching and caching it first when
// there is none.
func loadPorts(ctx context.Context, client *myshiptracking.Client, path string) ([]myshiptracking.Port, error) {
	ports, err := recordio.ReadPortsCSV(path)
	if err == nil {
		slog.InfoContext(ctx, "using cached ports", "path", path, "ports", len(ports))
		return ports, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	ports, err = client.GetPorts(ctx)
	if err != nil {
		return nil, err
	}
	err = recordio.SaveCSV(path, ports)
	if err != nil {
		return nil, err
	}
	return ports, nil
}

func printReports(w io.Writer, reports []tracking.Report) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Id", "Port", "In port", "Arrivals", "Port calls", "Vessels", "Folder"})
	for _, r := range reports {
		t.AppendRow(table.Row{
			myshiptracking.Value(r.Port.Id),
			myshiptracking.Value(r.Port.Name),
			r.InPortVessels,
			r.Arrivals,
			r.PortCalls,
			r.Vessels,
			r.Folder,
		})
	}
	t.Render()
}

func runMulti(ctx context.Context, client *myshiptracking.Client, tracker tracking.Tracker) error {
	all, err := loadPorts(ctx, client, cfg.PortsFile)
	if err != nil {
		return fmt.Errorf("load ports: %w", err)
	}
	ports := cfg.Filters.Apply(all)
	slog.InfoContext(
		ctx, "ports matching filters",
		"country", cfg.Filters.Country,
		"type", cfg.Filters.Type,
		"min_size", cfg.Filters.MinSize,
		"ports", len(ports),
	)
	if len(ports) == 0 {
		return nil
	}

	t1 := time.Now()
	reports, err := tracker.TrackPorts(ctx, ports)
	printReports(os.Stdout, reports)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "tracking time", "seconds", time.Since(t1).Seconds(), "ports", len(reports))
	return nil
}

var multiCmd = &cobra.Command{
	Use:   "multi [--schedule <cron spec>]",
	Short: "Tracks every port of the cached port list that matches the configured filters.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		if *multiSchedule != "" {
			err := chrono.ValidateSpec(*multiSchedule)
			if err != nil {
				serviceutil.Fatal("bad schedule", err)
			}
		}

		client, err := newClient()
		if err != nil {
			serviceutil.Fatal("failed to create client", err)
		}
		store, err := openStore(ctx)
		if err != nil {
			serviceutil.Fatal("failed to open store", err)
		}
		opts := tracking.Options{
			DataDir:    cfg.DataDir,
			SkipFailed: cfg.SkipFailed,
		}
		if store != nil {
			defer store.Close()
			opts.Store = store
		}
		tracker := tracking.NewTracker(client, opts)
		telemetry.InstrumentPerfStats(ctx, 15*time.Second)

		if *multiSchedule == "" {
			err = runMulti(ctx, client, tracker)
			if err != nil {
				serviceutil.Fatal("failed to track ports", err)
			}
			return
		}

		scheduler := chrono.NewStandardCron(time.Local)
		err = scheduler.Cron(*multiSchedule, func() {
			err := runMulti(ctx, client, tracker)
			if err != nil {
				slog.ErrorContext(ctx, "scheduled tracking failed", "err", err)
			}
		})
		if err != nil {
			serviceutil.Fatal("failed to schedule tracking", err)
		}
		slog.Info("tracking on schedule", "schedule", *multiSchedule)

		<-ctx.Done()
		<-scheduler.Stop().Done()
	},
}
