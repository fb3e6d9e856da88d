package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/theapemachine/a2a-calculator/pkg/ai"
	"github.com/theapemachine/a2a-calculator/pkg/auth"
	"github.com/theapemachine/a2a-calculator/pkg/config"
	"github.com/theapemachine/a2a-calculator/pkg/provider"
	"github.com/theapemachine/a2a-calculator/pkg/service"
	"github.com/theapemachine/a2a-calculator/pkg/stores"
	"github.com/theapemachine/a2a-calculator/pkg/tools"
)

var (
	portFlag int
	hostFlag string

	agentCmd = &cobra.Command{
		Use:   "agent",
		Short: "Serve the calculator agent over A2A",
		RunE: func(cmd *cobra.Command, args []string) error {
			agentCfg := cfg.Agent
			overrideListen(cmd, &agentCfg.Host, &agentCfg.Port)

			srv, err := newAgentServer(cmd.Context(), agentCfg, cfg.Tools)

			if err != nil {
				return err
			}

			return srv.Start(cmd.Context())
		},
	}
)

func init() {
	rootCmd.AddCommand(agentCmd)

	agentCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "Port to serve on")
	agentCmd.Flags().StringVarP(&hostFlag, "host", "H", "", "Host address to bind to")
}

func overrideListen(cmd *cobra.Command, host *string, port *int) {
	if cmd.Flags().Changed("host") {
		*host = hostFlag
	}

	if cmd.Flags().Changed("port") {
		*port = portFlag
	}
}

func newToolset(agentCfg config.Agent, toolsCfg config.Tools) *tools.Toolset {
	return tools.NewToolset(agentCfg.MCPServerURL, toolsCfg.ClientTimeout, ai.AgentName, agentCfg.Version)
}

func newCalculatorAgent(ctx context.Context, agentCfg config.Agent, toolsCfg config.Tools) (*ai.CalculatorAgent, error) {
	model, err := provider.New(ctx, agentCfg.LLM, agentCfg.MaxSteps)

	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	toolset := newToolset(agentCfg, toolsCfg)

	log.Info(
		"calculator agent configured",
		"provider", agentCfg.LLM.Provider,
		"model", agentCfg.LLM.Model,
		"mcp", toolset.URL(),
	)

	return ai.NewCalculatorAgent(
		model,
		toolset,
		ai.WithFallbackToken(agentCfg.MCPToken),
	), nil
}

func newAgentServer(ctx context.Context, agentCfg config.Agent, toolsCfg config.Tools) (*service.AgentServer, error) {
	agent, err := newCalculatorAgent(ctx, agentCfg, toolsCfg)

	if err != nil {
		return nil, err
	}

	manager, err := ai.NewTaskManager(
		ai.WithTaskStore(stores.NewInMemoryTaskStore()),
		ai.WithRunner(agent),
	)

	if err != nil {
		return nil, err
	}

	var options []service.AgentServerOption

	if agentCfg.OIDC.Enabled {
		verifier, err := auth.NewVerifier(ctx, agentCfg.OIDC)

		if err != nil {
			return nil, fmt.Errorf("failed to set up OIDC: %w", err)
		}

		options = append(options, service.WithVerifier(verifier))
	}

	return service.NewAgentServer(agentCfg, manager, options...), nil
}
