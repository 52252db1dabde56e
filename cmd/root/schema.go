package root

import (
	"github.com/spf13/cobra"

	"github.com/walassistant/wal/pkg/cli"
	"github.com/walassistant/wal/pkg/theme"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "schema",
		Short:   "Print the JSON Schema of theme documents",
		Long:    "Print the JSON Schema of theme documents, for use with editors that validate YAML against a schema.",
		GroupID: "advanced",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cli.NewPrinter(cmd.OutOrStdout())
			out.Print(string(theme.SchemaJSON))
		},
	}
}
