package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// outOfScope builds a stub command that always fails, naming the
// external collaborator spec.md §1/§6 assigns the feature to.
func outOfScope(use, short, collaborator string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("out of scope: implemented by the %s collaborator, not this client core", collaborator)
		},
	}
}

func newDiscoverCmd() *cobra.Command {
	return outOfScope("discover", "Scan a network range for devices (external collaborator)", "discovery scanner")
}

func newDeviceInfoCmd() *cobra.Command {
	return outOfScope("device-info", "Classify device capabilities (external collaborator)", "device-capability classifier")
}

func newSetupCmd() *cobra.Command {
	return outOfScope("setup", "Walk a new device through initial pairing (external collaborator)", "setup wizard")
}
