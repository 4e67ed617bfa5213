package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Read the device's current reported state once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := connect(ctx, cmd)
			if err != nil {
				return err
			}
			defer c.Shutdown()

			status, maxAge, err := c.GetStatus(ctx)
			if err != nil {
				return err
			}

			if wantsJSON(cmd) {
				return printJSON(cmd, map[string]any{"status": status, "max_age": maxAge})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "max-age: %ds\n", maxAge)
			for k, v := range status {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", k, v)
			}
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
