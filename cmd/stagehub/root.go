package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/stagehub-api/internal/app"
	"github.com/noah-isme/stagehub-api/internal/config"
)

type containerKey struct{}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "stagehub",
		Short:         "StageHub operational commands",
		Long:          "Runs CV batch processing and the background worker against the StageHub database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger := zerolog.New(os.Stderr).With().Timestamp().Str("app", cfg.AppName).Str("command", cmd.Name()).Logger()
			container, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialise dependencies: %w", err)
			}

			cmd.SetContext(context.WithValue(cmd.Context(), containerKey{}, container))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if container := containerFrom(cmd); container != nil {
				container.Close()
			}
		},
	}

	root.AddCommand(newCVCommand(), newWorkerCommand())
	return root
}

func containerFrom(cmd *cobra.Command) *app.Container {
	container, _ := cmd.Context().Value(containerKey{}).(*app.Container)
	return container
}
