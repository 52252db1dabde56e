package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/walassistant/wal/pkg/app"
	"github.com/walassistant/wal/pkg/cli"
	"github.com/walassistant/wal/pkg/engine"
)

type applyFlags struct {
	helper         helperFlags
	kill           bool
	yes            bool
	launch         bool
	restoreOnError bool
}

func newApplyCmd() *cobra.Command {
	var flags applyFlags

	cmd := &cobra.Command{
		Use:   "apply [theme.yaml]",
		Short: "Apply a theme to the target application",
		Long:  "Patch every archive named by the theme. The target application must not be running.",
		Example: `  wal apply ./dark.yaml
  wal apply ./dark.yaml --kill --launch`,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE:    flags.runApplyCommand,
	}

	addHelperFlags(cmd, &flags.helper)
	cmd.Flags().BoolVar(&flags.kill, "kill", false, "Close the target application first and wait for it to exit")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Do not ask before closing the target application")
	cmd.Flags().BoolVar(&flags.launch, "launch", false, "Launch the target application after a successful run")
	cmd.Flags().BoolVar(&flags.restoreOnError, "restore-on-error", false, "Restore every backup when the run fails")

	return cmd
}

func (f *applyFlags) runApplyCommand(cmd *cobra.Command, args []string) error {
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

	if f.kill {
		if err := killTarget(cmd, a, out, f.yes); err != nil {
			return fail(out, err)
		}
	}

	eng := a.Engine()
	stopProgress := eng.Subscribe(func(s engine.Snapshot) {
		if s.State == engine.StateWorking {
			out.PrintProgress(s)
		}
	})
	applyErr := eng.Apply(ctx)
	stopProgress()

	snap := eng.Snapshot()
	if snap.State != engine.StateIdle {
		out.PrintResult(snap)
	}

	switch {
	case snap.State == engine.StateDone && f.launch:
		err = eng.FinishAndLaunch(ctx)
	case snap.State == engine.StateError && f.restoreOnError:
		err = eng.FinishAndRestore(ctx)
	default:
		err = eng.Finish()
	}

	// Failures of the engine are in the activity log already.
	if err != nil {
		return RuntimeError{Err: err}
	}
	if applyErr != nil {
		return RuntimeError{Err: applyErr}
	}
	if len(snap.Failed) > 0 {
		return RuntimeError{Err: fmt.Errorf("%d archive(s) could not be written", len(snap.Failed))}
	}
	return nil
}

// killTarget closes the target application, asking first unless yes is
// set, and waits for it to exit.
func killTarget(cmd *cobra.Command, a *app.App, out *cli.Printer, yes bool) error {
	ctx := cmd.Context()
	b := a.Bridge()

	running, err := b.IsTargetRunning(ctx)
	if err != nil {
		return fmt.Errorf("failed to check the target application: %w", err)
	}
	if !running {
		return nil
	}

	if !yes && !out.Confirm(ctx, "The target application is running. Close it?", cmd.InOrStdin()) {
		return errors.New("the target application is still running")
	}
	if err := b.KillTarget(ctx); err != nil {
		return fmt.Errorf("failed to close the target application: %w", err)
	}
	if err := b.WaitUntilTargetEnded(ctx); err != nil {
		return fmt.Errorf("failed waiting for the target application to exit: %w", err)
	}
	return nil
}
