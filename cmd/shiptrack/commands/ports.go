package commands

import (
	"log/slog"
	"shiptrack/lib/recordio"
	"shiptrack/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var portsOut *string

func init() {
	portsOut = portsCmd.Flags().String("out", "", "The csv file to write, defaults to ports_file from the config.")
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports [--out <path/to/ports.csv>]",
	Short: "Fetches the whole port database and saves it as csv.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := *portsOut
		if out == "" {
			out = cfg.PortsFile
		}

		client, err := newClient()
		if err != nil {
			serviceutil.Fatal("failed to create client", err)
		}
		ports, err := client.GetPorts(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch ports", err)
		}

		err = recordio.SaveCSV(out, ports)
		if err != nil {
			serviceutil.Fatal("failed to save ports", err)
		}
		slog.Info("saved ports", "path", out, "ports", len(ports))
	},
}
