package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/walassistant/wal/pkg/app"
	"github.com/walassistant/wal/pkg/cli"
)

func newTargetCmd() *cobra.Command {
	var flags helperFlags

	cmd := &cobra.Command{
		Use:     "target",
		Short:   "Control the target application",
		GroupID: "advanced",
	}
	addHelperFlagsPersistent(cmd, &flags)

	cmd.AddCommand(newTargetSubCmd(&flags, "running", "Tell whether the target application is running", func(cmd *cobra.Command, a *app.App, out *cli.Printer) error {
		running, err := a.Bridge().IsTargetRunning(cmd.Context())
		if err != nil {
			return err
		}
		if running {
			out.Println("running")
		} else {
			out.Println("not running")
		}
		return nil
	}))
	cmd.AddCommand(newTargetSubCmd(&flags, "kill", "Close the target application", func(cmd *cobra.Command, a *app.App, out *cli.Printer) error {
		return a.Bridge().KillTarget(cmd.Context())
	}))
	cmd.AddCommand(newTargetSubCmd(&flags, "launch", "Start the target application", func(cmd *cobra.Command, a *app.App, out *cli.Printer) error {
		return a.Bridge().LaunchTarget(cmd.Context())
	}))
	cmd.AddCommand(newTargetSubCmd(&flags, "wait", "Wait until the target application has exited", func(cmd *cobra.Command, a *app.App, out *cli.Printer) error {
		return a.Bridge().WaitUntilTargetEnded(cmd.Context())
	}))
	cmd.AddCommand(newTargetSubCmd(&flags, "path", "Print the install directory of the target application", func(cmd *cobra.Command, a *app.App, out *cli.Printer) error {
		path, err := a.Engine().InstallPath(cmd.Context())
		if err != nil {
			return err
		}
		out.Println(path)
		return nil
	}))

	return cmd
}

func addHelperFlagsPersistent(cmd *cobra.Command, f *helperFlags) {
	local := &cobra.Command{}
	addHelperFlags(local, f)
	cmd.PersistentFlags().AddFlagSet(local.Flags())
}

func newTargetSubCmd(flags *helperFlags, name, short string, run func(*cobra.Command, *app.App, *cli.Printer) error) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cli.NewPrinter(cmd.OutOrStdout())

			a, _, err := openApp(cmd.Context(), flags)
			if err != nil {
				return fail(out, err)
			}
			defer func() {
				if err := a.Close(); err != nil {
					out.PrintError(fmt.Errorf("failed to stop the native helper: %w", err))
				}
			}()

			if err := run(cmd, a, out); err != nil {
				return fail(out, err)
			}
			return nil
		},
	}
}
