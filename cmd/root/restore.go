package root

import (
	"github.com/spf13/cobra"

	"github.com/walassistant/wal/pkg/cli"
)

type restoreFlags struct {
	helper helperFlags
}

func newRestoreCmd() *cobra.Command {
	var flags restoreFlags

	cmd := &cobra.Command{
		Use:   "restore [theme.yaml] [archive]",
		Short: "Restore the backups of a theme's archives",
		Long:  "Put back the original archives saved by a previous apply. With an archive name only that archive is restored.",
		Example: `  wal restore ./dark.yaml
  wal restore ./dark.yaml app.asar`,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(2),
		RunE:    flags.runRestoreCommand,
	}

	addHelperFlags(cmd, &flags.helper)

	return cmd
}

func (f *restoreFlags) runRestoreCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
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

	eng := a.Engine()
	if len(args) == 2 {
		err = eng.Restore(ctx, args[1])
	} else {
		if !eng.HasPendingBackups() {
			out.Println("Nothing to restore.")
			return nil
		}
		err = eng.RestoreAll(ctx)
	}
	if err != nil {
		return RuntimeError{Err: err}
	}

	out.Println()
	out.PrintStatus(a.Theme(), eng.Snapshot())
	return nil
}
