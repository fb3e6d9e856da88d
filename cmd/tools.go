package cmd

import (
	"github.com/spf13/cobra"
	"github.com/theapemachine/a2a-calculator/pkg/service"
)

var (
	toolsPortFlag int
	toolsHostFlag string

	toolsCmd = &cobra.Command{
		Use:   "tools",
		Short: "Serve the MCP calculator tools over streamable HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			toolsCfg := cfg.Tools

			if cmd.Flags().Changed("host") {
				toolsCfg.Host = toolsHostFlag
			}

			if cmd.Flags().Changed("port") {
				toolsCfg.Port = toolsPortFlag
			}

			return service.NewToolServer(toolsCfg).Start(cmd.Context())
		},
	}
)

func init() {
	rootCmd.AddCommand(toolsCmd)

	toolsCmd.Flags().IntVarP(&toolsPortFlag, "port", "p", 0, "Port to serve on")
	toolsCmd.Flags().StringVarP(&toolsHostFlag, "host", "H", "", "Host address to bind to")
}
