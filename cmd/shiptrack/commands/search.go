package commands

import (
	"fmt"
	"os"
	"shiptrack/lib/recordio"
	"shiptrack/lib/util/serviceutil"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <port name>",
	Short: "Searches the port database by name and prints the matches.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := strings.Join(args, " ")

		client, err := newClient()
		if err != nil {
			serviceutil.Fatal("failed to create client", err)
		}
		ports, err := client.SearchPort(cmd.Context(), name)
		if err != nil {
			serviceutil.Fatal("failed to search ports", err)
		}

		fmt.Fprintf(os.Stdout, "Ports found under %s: %d\n\n", strings.ToUpper(name), len(ports))
		err = recordio.PrettyTable(os.Stdout, ports, 2)
		if err != nil {
			serviceutil.Fatal("failed to print ports", err)
		}
	},
}
