package main

import (
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/router/transport/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the router as MCP tools on stdio",
	Long:  "Exposes route_request and describe_graph to an MCP client over stdin and stdout. Logs go to stderr.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := newKernel()
		if err != nil {
			return err
		}
		defer k.Close()

		logger, err := newLogger()
		if err != nil {
			return err
		}

		return mcp.NewServer(k, k.Graph(), version, logger).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
