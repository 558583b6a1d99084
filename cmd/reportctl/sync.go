package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/lease-reports/internal/container"
)

func newSyncCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy backend payments into the local mirror once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withContainer(cmd.Context(), func(c *container.Container) error {
				w := c.SyncWorker()
				if w == nil {
					return fmt.Errorf("payment_sync is not enabled or backend.base_url is not set")
				}
				n, err := w.SyncOnce(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "synced %d payments\n", n)
				return nil
			})
		},
	}
}
