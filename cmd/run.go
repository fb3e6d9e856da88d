package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/theapemachine/a2a-calculator/pkg/ai"
)

var (
	runCmd = &cobra.Command{
		Use:   "run <task...>",
		Short: "Run the calculator agent locally, without the A2A server",
		Long:  longRun,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "simple_exec" {
				agent := ai.NewCalculatorAgent(
					nil, newToolset(cfg.Agent, cfg.Tools), ai.WithFallbackToken(cfg.Agent.MCPToken),
				)

				fmt.Fprintln(cmd.OutOrStdout(), agent.RunSimpleEval(cmd.Context(), strings.Join(args[1:], " ")))

				return nil
			}

			agent, err := newCalculatorAgent(cmd.Context(), cfg.Agent, cfg.Tools)

			if err != nil {
				return err
			}

			answer, err := agent.Run(cmd.Context(), strings.Join(args, " "))

			if err != nil {
				var agentErr *ai.AgentError

				if errors.As(err, &agentErr) {
					fmt.Fprintf(cmd.OutOrStdout(), "Agent error: %v\n", err)
					return nil
				}

				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), answer)

			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var longRun = `
Run one prompt through the calculator agent in this process. The tool server
must be reachable at MCP_SERVER_URL.

Examples:
  a2a-calculator run What is 9 times 12?

  # Call a tool directly, no model involved
  a2a-calculator run simple_exec add 5 10
`
