// Command airctl is a thin command-line wrapper over pkg/client: the
// CLI frontend collaborator spec.md §6 names. It wires status,
// status-observe, and set to the real protocol client, and registers
// discover, device-info, and setup as stub commands that report
// themselves out of scope.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "airctl",
		Short: "Talk to a networked air-purifier over the proprietary CoAP protocol",
	}

	root.PersistentFlags().String("host", "", "device hostname or IP address")
	root.PersistentFlags().Int("port", 0, "device UDP port (default 5683)")
	root.PersistentFlags().String("profile", "", "path to a YAML connection profile")
	root.PersistentFlags().Bool("json", false, "emit machine-readable JSON instead of text")
	root.PersistentFlags().Duration("dial-timeout", 0, "UDP dial timeout (default 5s)")
	root.PersistentFlags().Int("retry-count", 0, "write retry budget (default 5)")
	root.PersistentFlags().String("log-file", "", "append structured logs to this file instead of stdout")

	root.AddCommand(
		newStatusCmd(),
		newStatusObserveCmd(),
		newSetCmd(),
		newDiscoverCmd(),
		newDeviceInfoCmd(),
		newSetupCmd(),
	)
	return root
}
