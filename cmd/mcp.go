package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/theapemachine/a2a-calculator/pkg/tools"
)

var (
	mcpCmd = &cobra.Command{
		Use:   "mcp [tool a b]",
		Short: "Call the MCP calculator tools over JSON-RPC",
		Long:  longMCP,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return fmt.Errorf("expected no arguments or <tool> <a> <b>, got %d arguments", len(args))
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			client := tools.NewRPCToolClient(cfg.Tools.ClientURL, cfg.Tools.ClientToken, cfg.Tools.ClientTimeout)

			if len(args) == 0 {
				return tools.RunDemo(cmd.Context(), client, cmd.OutOrStdout())
			}

			a, err := strconv.ParseFloat(args[1], 64)

			if err != nil {
				return fmt.Errorf("invalid number %q: %w", args[1], err)
			}

			b, err := strconv.ParseFloat(args[2], 64)

			if err != nil {
				return fmt.Errorf("invalid number %q: %w", args[2], err)
			}

			result, err := client.CallTool(cmd.Context(), args[0], map[string]any{"a": a, "b": b})

			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tools.ResultText(result))

			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var longMCP = `
Call the calculator tools of an MCP server with plain JSON-RPC tools/call
requests. Without arguments a short demo runs every tool once, including a
division by zero that is expected to fail.

Examples:
  a2a-calculator mcp
  a2a-calculator mcp multiply 6 7
  MCP_BASE_URL=http://calc.internal/mcp a2a-calculator mcp add 1 2
`
