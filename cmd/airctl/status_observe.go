package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/philips-airctrl/airctl-go/pkg/client"
)

func newStatusObserveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status-observe",
		Short: "Subscribe to status updates and print each one until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			c, err := connect(ctx, cmd)
			if err != nil {
				return err
			}
			defer c.Shutdown()

			events, stop, err := c.ObserveStatus(ctx)
			if err != nil {
				return err
			}
			defer stop()

			return printEvents(cmd, events)
		},
	}
}

func printEvents(cmd *cobra.Command, events <-chan client.StatusEvent) error {
	for ev := range events {
		if wantsJSON(cmd) {
			if err := printJSON(cmd, ev); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[seq %d, max-age %ds]\n", ev.Seq, ev.MaxAge)
		for k, v := range ev.Status {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", k, v)
		}
	}
	return nil
}
