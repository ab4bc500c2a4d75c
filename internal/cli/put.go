package cli

import (
	"github.com/spf13/cobra"
)

func newPutCmd() *cobra.Command {
	return newBodyCmd("PUT", "put URL", "Make a PUT request to the specified URL")
}
