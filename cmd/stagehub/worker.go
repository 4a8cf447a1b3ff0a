package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume queued CV jobs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container := containerFrom(cmd)
			if container == nil {
				return fmt.Errorf("dependencies not initialised")
			}

			container.Notifications.Start(cmd.Context())
			return container.Worker().Run(cmd.Context())
		},
	}
}
