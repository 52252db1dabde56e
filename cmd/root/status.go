package root

import (
	"github.com/spf13/cobra"

	"github.com/walassistant/wal/pkg/cli"
)

type statusFlags struct {
	helper  helperFlags
	patches bool
}

func newStatusCmd() *cobra.Command {
	var flags statusFlags

	cmd := &cobra.Command{
		Use:     "status [theme.yaml]",
		Short:   "Show which archives of a theme have a backup",
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE:    flags.runStatusCommand,
	}

	addHelperFlags(cmd, &flags.helper)
	cmd.Flags().BoolVarP(&flags.patches, "patches", "p", false, "Also print the content of every patch")

	return cmd
}

func (f *statusFlags) runStatusCommand(cmd *cobra.Command, args []string) error {
	out := cli.NewPrinter(cmd.OutOrStdout())

	path, err := themeArg(args)
	if err != nil {
		return err
	}

	a, stop, err := openTheme(cmd, &f.helper, out, path)
	if err != nil {
		return fail(out, err)
	}
	defer stop()

	t := a.Theme()
	out.Println()
	out.PrintStatus(t, a.Snapshot())

	if f.patches {
		for id, patches := range t.All() {
			for i, p := range patches {
				out.Println()
				out.PrintPatch(id, i, p)
			}
		}
	}
	return nil
}
