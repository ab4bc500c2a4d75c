package cli

import (
	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var opts requestOptions
	cmd := &cobra.Command{
		Use:   "delete URL",
		Short: "Make a DELETE request to the specified URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.buildRequest("DELETE", args[0], nil)
			if err != nil {
				return err
			}
			return opts.execute(cmd, req)
		},
	}
	opts.register(cmd)
	return cmd
}
