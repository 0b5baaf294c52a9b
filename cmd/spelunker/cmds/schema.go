package cmds

import (
	"encoding/json"

	"github.com/go-go-golems/spelunker/pkg/messaging"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

// NewSchemaCommand prints the JSON schema of the message envelope carried on
// the bus.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the message envelope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &jsonschema.Reflector{
				DoNotReference: true,
			}
			schema := r.Reflect(&messaging.Message{})
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(schema)
		},
	}
}
