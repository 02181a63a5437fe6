package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tailored-agentic-units/router/kernel"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Route every line of a file concurrently",
	Long:  "Reads one request per non-blank line (\"-\" reads stdin) and writes one JSON object per request, in input order. Each run saves its files under its own run directory.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := readInputs(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		k, err := newKernel()
		if err != nil {
			return err
		}
		defer k.Close()

		items := k.InvokeBatch(cmd.Context(), inputs)
		failed, err := writeBatch(cmd.OutOrStdout(), items)
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d requests failed", failed, len(items))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().Int("concurrency", 0, "Maximum concurrent runs (overrides config)")
	_ = viper.BindPFlag("concurrency", batchCmd.Flags().Lookup("concurrency"))
	rootCmd.AddCommand(batchCmd)
}

func readInputs(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open batch file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var inputs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			inputs = append(inputs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return inputs, nil
}

type batchLine struct {
	Index  int            `json:"index"`
	Input  string         `json:"input"`
	Result *kernel.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func writeBatch(w io.Writer, items []kernel.BatchItem) (int, error) {
	enc := json.NewEncoder(w)
	failed := 0
	for _, item := range items {
		line := batchLine{Index: item.Index, Input: item.Input, Result: item.Result}
		if item.Err != nil {
			line.Error = item.Err.Error()
			failed++
		}
		if err := enc.Encode(line); err != nil {
			return failed, err
		}
	}
	return failed, nil
}
