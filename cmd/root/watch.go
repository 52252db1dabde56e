package root

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/walassistant/wal/pkg/app"
	"github.com/walassistant/wal/pkg/cli"
	"github.com/walassistant/wal/pkg/engine"
	"github.com/walassistant/wal/pkg/script"
	"github.com/walassistant/wal/pkg/watch"
)

type watchFlags struct {
	helper helperFlags
	apply  bool
}

func newWatchCmd() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch [theme.yaml]",
		Short: "Reload a theme whenever its file changes",
		Long: `Watch a theme file. Each time it is saved the theme is validated, its scripts are
checked and the backup state is refreshed. With --apply the theme is also applied
when the target application is not running.`,
		GroupID: "advanced",
		Args:    cobra.MaximumNArgs(1),
		RunE:    flags.runWatchCommand,
	}

	addHelperFlags(cmd, &flags.helper)
	cmd.Flags().BoolVar(&flags.apply, "apply", false, "Apply the theme after every change")

	return cmd
}

func (f *watchFlags) runWatchCommand(cmd *cobra.Command, args []string) error {
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

	out.Printf("Watching %s, press Ctrl+C to stop.\n", path)
	f.reloaded(cmd, a, out)

	err = watch.NewFile(path).Run(ctx, func(path string) {
		// A broken document is reported in the activity log and the
		// previous theme stays loaded.
		if err := a.LoadThemeFile(ctx, path); err != nil {
			return
		}
		f.reloaded(cmd, a, out)
	})
	if err != nil {
		return fail(out, err)
	}
	return nil
}

// reloaded reports on a freshly loaded theme and applies it when asked.
func (f *watchFlags) reloaded(cmd *cobra.Command, a *app.App, out *cli.Printer) {
	ctx := cmd.Context()
	t := a.Theme()

	problems := 0
	for id, patches := range t.All() {
		for i, p := range patches {
			if err := script.Check(script.Generate(p)); err != nil {
				a.Logs().Addf("script of %s #%d does not compile: %v", id, i, err)
				problems++
			}
		}
	}
	a.Logs().Addf("theme loaded: %d archive(s), %d patch(es)", t.Len(), t.PatchCount())
	out.PrintStatus(t, a.Snapshot())

	if !f.apply || problems > 0 {
		return
	}

	eng := a.Engine()
	if err := eng.Apply(ctx); err != nil {
		slog.Debug("Watch apply failed", "error", err)
	}
	snap := eng.Snapshot()
	if snap.State != engine.StateIdle {
		out.PrintResult(snap)
	}
	if err := eng.Finish(); err != nil {
		out.PrintError(fmt.Errorf("failed to reset the engine: %w", err))
	}
}
