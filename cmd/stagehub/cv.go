package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCVCommand() *cobra.Command {
	cv := &cobra.Command{
		Use:   "cv",
		Short: "CV pipeline commands",
	}

	var queued bool
	process := &cobra.Command{
		Use:   "process",
		Short: "Summarize every student CV that has no summary yet",
		Long: `Runs the CV pipeline over students with an uploaded CV and no summary.
By default the batch runs in this process. With --queue a batch job is pushed
to the worker queue and the command returns immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container := containerFrom(cmd)
			if container == nil {
				return fmt.Errorf("dependencies not initialised")
			}
			logger := container.Logger
			out := cmd.OutOrStdout()

			if queued {
				if err := container.Queue.EnqueueBatch(cmd.Context()); err != nil {
					logger.Error().Err(err).Msg("failed to enqueue cv batch")
					return fmt.Errorf("enqueue cv batch: %w", err)
				}
				fmt.Fprintln(out, "cv batch queued")
				return nil
			}

			result, err := container.Runner.RunBatch(cmd.Context())
			if err != nil {
				logger.Error().Err(err).Msg("cv batch failed")
			}
			fmt.Fprintf(out, "eligible=%d processed=%d succeeded=%d skipped=%d failed=%d\n",
				result.Eligible, result.Processed, result.Succeeded, result.Skipped, result.Failed)
			return nil
		},
	}
	process.Flags().BoolVar(&queued, "queue", false, "enqueue the batch for the worker instead of running it now")

	cv.AddCommand(process)
	return cv
}
