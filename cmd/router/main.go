// Command router classifies requests as questions, code or text, dispatches
// them to language model handlers and saves generated output to files.
//
//	router shell                     interactive session
//	router invoke "What is 2+2?"     one request
//	router batch requests.txt        one request per line, concurrently
//	router serve --addr :8080        HTTP and connect API
//	router mcp                       MCP tool server on stdio
//	router graph                     mermaid topology
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
