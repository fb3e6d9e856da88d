package cmd

import (
	"github.com/spf13/cobra"
	"github.com/theapemachine/a2a-calculator/pkg/service"
	"golang.org/x/sync/errgroup"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server and the A2A agent server together",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			agentSrv, err := newAgentServer(cmd.Context(), cfg.Agent, cfg.Tools)

			if err != nil {
				return err
			}

			toolSrv := service.NewToolServer(cfg.Tools)
			group, ctx := errgroup.WithContext(cmd.Context())

			group.Go(func() error {
				return toolSrv.Start(ctx)
			})

			group.Go(func() error {
				return agentSrv.Start(ctx)
			})

			return group.Wait()
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var longServe = `
Run both servers in one process. The first one to fail stops the other.

Examples:
  # MCP tools on :8000, agent on :8001
  a2a-calculator serve

  # Use a LiteLLM proxy for the model
  LLM_PROVIDER=litellm LLM_MODEL=openai/gpt-4o-mini LLM_API_BASE=http://localhost:4000 a2a-calculator serve
`
