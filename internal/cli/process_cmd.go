package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/expensecmd/internal/command"
	"github.com/mmynk/expensecmd/internal/service"
)

func newProcessCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "process <text>...",
		Short: "Send a free-text command to the server",
		Example: `  expensectl process "create a group called Home"
  expensectl process add expense of rent 50000 to Home group`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.token == "" {
				return errors.New("a token is required: pass --token or set EXPENSECTL_TOKEN")
			}

			client := service.NewCommandServiceClient(http.DefaultClient, opts.server)
			req := connect.NewRequest(&service.ProcessRequest{Command: strings.Join(args, " ")})
			req.Header().Set("Authorization", "Bearer "+opts.token)

			resp, err := client.Process(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("process failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				if err := printJSON(out, resp.Msg); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintln(out, resp.Msg.Message)
			}
			if !resp.Msg.Success {
				return fmt.Errorf("command failed (%s)", command.Kind(resp.Msg.ErrorKind))
			}
			return nil
		},
	}
}
