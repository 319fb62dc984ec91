package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/expensecmd/internal/command"
)

func newSchemaCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the intents and fields commands can express",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema := command.Describe()
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				return printJSON(out, schema)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(schema); err != nil {
					return err
				}
				return enc.Close()
			case "text":
				for _, intent := range schema.Intents {
					_, _ = fmt.Fprintf(out, "%s: %s\n", intent.Tag, intent.Description)
					for _, f := range intent.Fields {
						req := "optional"
						if f.Required {
							req = "required"
						}
						_, _ = fmt.Fprintf(out, "  %-12s %-7s %s\n", f.Name, f.Type, req)
					}
				}
				return nil
			default:
				return fmt.Errorf("invalid format %q: must be text, json or yaml", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Schema format (text, json, yaml)")
	return cmd
}
