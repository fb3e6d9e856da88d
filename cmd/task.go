package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theapemachine/a2a-calculator/pkg/a2a"
	"github.com/theapemachine/a2a-calculator/pkg/invoker"
)

var (
	historyFlag int
	cancelFlag  bool

	taskCmd = &cobra.Command{
		Use:   "task <id>",
		Short: "Show, or cancel, a task held by the calculator agent",
		Long:  longTask,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := invoker.NewInvoker(cfg.Invoker)

			var (
				task   *a2a.Task
				errStr string
			)

			if cancelFlag {
				task, errStr = client.CancelTask(cmd.Context(), args[0])
			} else {
				var historyLength *int

				if cmd.Flags().Changed("history") {
					historyLength = &historyFlag
				}

				task, errStr = client.GetTask(cmd.Context(), args[0], historyLength)
			}

			if errStr != "" {
				fmt.Fprintln(cmd.OutOrStdout(), errStr)
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), task.String())

			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(taskCmd)

	taskCmd.Flags().IntVar(&historyFlag, "history", 0, "Only show this many of the most recent messages")
	taskCmd.Flags().BoolVar(&cancelFlag, "cancel", false, "Cancel the task instead of showing it")
}

var longTask = `
Fetch a task from the calculator agent with tasks/get and print its state and
conversation. With --cancel the task is canceled through tasks/cancel first.

Examples:
  a2a-calculator task 3f0c9a8e-6b1d-4c57-9a43-2f1e0d7c5b21
  a2a-calculator task 3f0c9a8e-6b1d-4c57-9a43-2f1e0d7c5b21 --history 2
  a2a-calculator task 3f0c9a8e-6b1d-4c57-9a43-2f1e0d7c5b21 --cancel
`
