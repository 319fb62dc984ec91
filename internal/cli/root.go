// Package cli implements the expensectl command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type rootOptions struct {
	server string
	token  string
	output string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "expensectl",
		Short:         "Natural-language expense commands",
		Long:          "Command-line client for the expense command service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Precedence: flag > env > default
			if !cmd.Flags().Changed("server") {
				if v := os.Getenv("EXPENSECTL_SERVER"); v != "" {
					opts.server = v
				}
			}
			if !cmd.Flags().Changed("token") {
				if v := os.Getenv("EXPENSECTL_TOKEN"); v != "" {
					opts.token = v
				}
			}
			switch opts.output {
			case "text", "json":
				return nil
			default:
				return fmt.Errorf("invalid output format %q: must be text or json", opts.output)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8080", "Command service URL")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", "", "JWT token for authentication")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format (text, json)")

	rootCmd.AddCommand(
		newProcessCmd(opts),
		newSchemaCmd(),
		newTokenCmd(),
	)
	return rootCmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
