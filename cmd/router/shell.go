package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tailored-agentic-units/router/kernel"
)

const (
	greeting = "Hi!!! How can I assist you today?"
	farewell = "Bye, bye!!!"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long:  "Reads one request per line and prints the final state of each run. Ctrl-C or end of input exits.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := newKernel()
		if err != nil {
			return err
		}
		defer k.Close()

		var render func(string) (string, error)
		if term.IsTerminal(int(os.Stdout.Fd())) {
			render = newRenderer()
		}

		return runShell(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), k, render)
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// newRenderer returns a glamour markdown renderer, or nil if one cannot be
// built for this terminal.
func newRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil
	}
	return r.Render
}

// runShell reads requests from in until EOF or ctx is done. Blank lines are
// skipped. A failed run is reported and the session continues. When render
// is non-nil the run's primary output is also printed as rendered markdown.
func runShell(ctx context.Context, in io.Reader, out io.Writer, invoker kernel.Invoker, render func(string) (string, error)) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(out, greeting)
	for {
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, farewell)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out, farewell)
				return nil
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}

		result, err := invoker.Invoke(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out, farewell)
				return nil
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		printResult(out, result, render)
	}
}

func printResult(out io.Writer, result *kernel.Result, render func(string) (string, error)) {
	fmt.Fprintln(out, "Result:")

	for _, k := range slices.Sorted(maps.Keys(result.State)) {
		fmt.Fprintf(out, "%s: %v\n", k, result.State[k])
	}

	if render == nil {
		return
	}
	if output := result.Output(); output != "" {
		if rendered, err := render(output); err == nil {
			fmt.Fprint(out, rendered)
		}
	}
}
