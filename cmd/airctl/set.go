package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set K=V [K=V...]",
		Short: "Write one or more control values to the device",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseAssignments(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, err := connect(ctx, cmd)
			if err != nil {
				return err
			}
			defer c.Shutdown()

			ok, err := c.SetControlValues(ctx, data)
			if err != nil {
				return err
			}

			if wantsJSON(cmd) {
				return printJSON(cmd, map[string]any{"success": ok})
			}
			if ok {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			return fmt.Errorf("device rejected the write after exhausting the retry budget")
		},
	}
}

// parseAssignments turns ["power=true", "D0310A=3"] into a map, trying
// to unmarshal each value as JSON (so booleans, numbers, and quoted
// strings come through as their native Go type) and falling back to a
// bare string when that fails.
func parseAssignments(args []string) (map[string]any, error) {
	data := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("invalid assignment %q, expected K=V", arg)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		data[key] = value
	}
	return data, nil
}
