package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/theapemachine/a2a-calculator/pkg/invoker"
)

var (
	invokeCmd = &cobra.Command{
		Use:   "invoke [prompt...]",
		Short: "Send a prompt to the calculator agent",
		Long:  longInvoke,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))

			if prompt == "" {
				prompt = cfg.Invoker.DefaultPrompt
			}

			fmt.Fprintln(cmd.OutOrStdout(), invoker.NewInvoker(cfg.Invoker).Run(cmd.Context(), prompt))

			return nil
		},
	}

	cardCmd = &cobra.Command{
		Use:   "card",
		Short: "Fetch and print the agent card",
		RunE: func(cmd *cobra.Command, args []string) error {
			card, cardErr := invoker.NewInvoker(cfg.Invoker).FetchCard(cmd.Context())

			if cardErr != "" {
				fmt.Fprintln(cmd.OutOrStdout(), cardErr)
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), card.String())

			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(invokeCmd)
	rootCmd.AddCommand(cardCmd)
}

var longInvoke = `
Discover the calculator agent through its agent card and send it a prompt
with message/send. The agent's answer, or an error line, is printed.

Examples:
  a2a-calculator invoke
  a2a-calculator invoke What is 12 times 7?
  AGENT_RPC_URL=http://calc.internal/calculator/ a2a-calculator invoke 2 + 2
`
