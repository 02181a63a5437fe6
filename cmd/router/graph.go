package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/router/observability"
	"github.com/tailored-agentic-units/router/orchestrate/state"
	"github.com/tailored-agentic-units/router/router"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the routing topology",
	Long:  "Prints the routing graph as mermaid source, or its edges as JSON with --json. No model credentials are needed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Building never calls the ports or stores, so none are wired.
		g, err := router.Build(router.NewDefaultRegistry(nil, nil, nil), cfg.Graph,
			state.WithObserver(observability.NoOpObserver{}),
			state.WithCheckpointStore(state.NewMemoryCheckpointStore()),
		)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(g.Edges())
		}

		_, err = fmt.Fprint(out, g.Mermaid())
		return err
	},
}

func init() {
	graphCmd.Flags().Bool("json", false, "Print edges as JSON")
	rootCmd.AddCommand(graphCmd)
}
