package root

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/walassistant/wal/pkg/cli"
	"github.com/walassistant/wal/pkg/editor"
	"github.com/walassistant/wal/pkg/input"
	"github.com/walassistant/wal/pkg/theme"
	"github.com/walassistant/wal/pkg/userconfig"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [theme.yaml]",
		Short: "Edit a theme interactively",
		Long: `Open a line-oriented shell to author a theme. Type "help" for the list of commands.
A file that does not exist yet is created on the first save.`,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE:    runEditCommand,
	}
}

func runEditCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cli.NewPrinter(cmd.OutOrStdout())

	ed := editor.New()
	if len(args) > 0 {
		path := args[0]
		switch err := ed.Open(path); {
		case err == nil:
			out.Printf("Opened %s (%d archive(s), %d patch(es)).\n", path, ed.Theme().Len(), ed.Theme().PatchCount())
		case errors.Is(err, os.ErrNotExist):
			ed.Reset(theme.New(), path)
			out.Printf("New theme, will be saved to %s.\n", path)
		default:
			return fail(out, err)
		}
		if cfg, err := userconfig.Load(); err == nil {
			rememberTheme(cfg, path)
		}
	}

	sh := newShell(ed, out)
	rd := input.NewReader(cmd.InOrStdin())
	for {
		out.Print(sh.prompt())
		line, err := rd.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			out.Println()
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := sh.exec(line)
		if err != nil {
			out.PrintError(err)
		}
		if quit {
			return nil
		}
	}
}
