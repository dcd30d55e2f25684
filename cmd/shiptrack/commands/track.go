package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"shiptrack/lib/recordio"
	"shiptrack/lib/scrapers/myshiptracking"
	"shiptrack/lib/util/serviceutil"
	"shiptrack/services/tracking"

	"github.com/spf13/cobra"
)

var trackPortId *string
var trackPortName *string

func init() {
	trackPortId = trackCmd.Flags().String("port-id", "", "The id of the port to track.")
	trackPortName = trackCmd.Flags().String("port", "", "The name of the port to track, the closest search result is used.")
	trackCmd.MarkFlagsOneRequired("port-id", "port")
	rootCmd.AddCommand(trackCmd)
}

type portSearcher interface {
	SearchPort(ctx context.Context, query string) ([]myshiptracking.Port, error)
}

// resolvePort finds the port to track. With a name the search results are
// narrowed by id when one is given, otherwise the closest name wins. With
// only an id the cached port list supplies the name if it has the port.
func resolvePort(ctx context.Context, searcher portSearcher, portsFile, name, id string) (myshiptracking.Port, error) {
	if name != "" {
		ports, err := searcher.SearchPort(ctx, name)
		if err != nil {
			return myshiptracking.Port{}, err
		}
		if id != "" {
			port, ok := tracking.FindPort(ports, id)
			if !ok {
				return myshiptracking.Port{}, fmt.Errorf("no port with id %s found under %q", id, name)
			}
			return port, nil
		}
		port, ok := tracking.BestMatch(ports, name)
		if !ok {
			return myshiptracking.Port{}, fmt.Errorf("no port found under %q", name)
		}
		return port, nil
	}

	cached, err := recordio.ReadPortsCSV(portsFile)
	if err != nil && !os.IsNotExist(err) {
		slog.WarnContext(ctx, "failed to read cached ports", "path", portsFile, "err", err)
	}
	if port, ok := tracking.FindPort(cached, id); ok {
		return port, nil
	}
	return myshiptracking.Port{Id: &id}, nil
}

var trackCmd = &cobra.Command{
	Use:   "track (--port-id <id> | --port <name>)",
	Short: "Tracks one port: its vessels, arrivals, port calls and the history of every arriving vessel.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client, err := newClient()
		if err != nil {
			serviceutil.Fatal("failed to create client", err)
		}
		port, err := resolvePort(ctx, client, cfg.PortsFile, *trackPortName, *trackPortId)
		if err != nil {
			serviceutil.Fatal("failed to find port", err)
		}
		slog.Info(
			"tracking port",
			"id", myshiptracking.Value(port.Id),
			"name", myshiptracking.Value(port.Name),
		)

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

		report, err := tracking.NewTracker(client, opts).TrackPort(ctx, port)
		if err != nil {
			serviceutil.Fatal("failed to track port", err)
		}
		printReports(os.Stdout, []tracking.Report{report})
	},
}
