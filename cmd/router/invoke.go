package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/router/kernel"
	"github.com/tailored-agentic-units/router/transport/rpc"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <request>",
	Short: "Route a single request",
	Long:  "Routes one request and prints its final state. Arguments are joined with spaces.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		remote, _ := cmd.Flags().GetString("remote")

		var invoker kernel.Invoker
		if remote != "" {
			invoker = rpc.NewClient(http.DefaultClient, remote)
		} else {
			k, err := newKernel()
			if err != nil {
				return err
			}
			defer k.Close()
			invoker = k
		}

		result, err := invoker.Invoke(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printResult(out, result, nil)
		if result.Error != "" {
			return errors.New(result.Error)
		}
		return nil
	},
}

func init() {
	invokeCmd.Flags().Bool("json", false, "Print the result as JSON")
	invokeCmd.Flags().String("remote", "", "Base URL of a running router serve instance")
	rootCmd.AddCommand(invokeCmd)
}
