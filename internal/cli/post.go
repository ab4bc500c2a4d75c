package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

// bodyOptions are the payload flags of commands that send a body.
type bodyOptions struct {
	data string
	json string
}

func (b *bodyOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&b.data, "data", "d", "", "Request body (raw)")
	cmd.Flags().StringVarP(&b.json, "json", "j", "", "Request body (JSON, sets Content-Type)")
	cmd.MarkFlagsMutuallyExclusive("data", "json")
}

// body returns the payload and whether it is JSON. --json must parse.
func (b *bodyOptions) body() ([]byte, bool, error) {
	switch {
	case b.json != "":
		if !gjson.Valid(b.json) {
			return nil, false, fmt.Errorf("--json is not valid JSON")
		}
		return []byte(b.json), true, nil
	case b.data != "":
		return []byte(b.data), false, nil
	default:
		return nil, false, nil
	}
}

// newBodyCmd builds a command for a method that carries a request body.
func newBodyCmd(method, use, short string) *cobra.Command {
	var opts requestOptions
	var payload bodyOptions
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, isJSON, err := payload.body()
			if err != nil {
				return err
			}
			req, err := opts.buildRequest(method, args[0], body)
			if err != nil {
				return err
			}
			if isJSON && !req.Header.Has("content-type") {
				req.WithHeader("Content-Type", "application/json")
			}
			return opts.execute(cmd, req)
		},
	}
	opts.register(cmd)
	payload.register(cmd)
	return cmd
}

func newPostCmd() *cobra.Command {
	return newBodyCmd("POST", "post URL", "Make a POST request to the specified URL")
}
