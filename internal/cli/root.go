package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the command tree. Each call returns fresh commands so
// flag state never leaks between runs.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "rawlunge",
		Short:   "A terminal HTTP/1.x client that speaks the wire protocol directly",
		Version: version,
		Long: `rawlunge is a terminal-based HTTP client that writes HTTP/1.0 and
HTTP/1.1 requests straight onto a TCP or TLS connection and parses the
response itself. It can send one-off requests, run request collections
with response checks, and benchmark an endpoint.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	root.AddCommand(newGetCmd())
	root.AddCommand(newDeleteCmd())
	root.AddCommand(newPostCmd())
	root.AddCommand(newPutCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newBenchCmd())
	return root
}

// Execute runs the command tree with ctx. It is called by main.main().
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
