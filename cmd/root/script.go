package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/walassistant/wal/pkg/cli"
	"github.com/walassistant/wal/pkg/script"
	"github.com/walassistant/wal/pkg/theme"
)

type scriptFlags struct {
	archive string
	index   int
	check   bool
	copy    bool
}

func newScriptCmd() *cobra.Command {
	var flags scriptFlags

	cmd := &cobra.Command{
		Use:   "script [theme.yaml]",
		Short: "Print the scripts a theme injects",
		Long:  "Print the script generated for every patch of a theme, or for one patch with --archive and --index.",
		Example: `  wal script ./dark.yaml
  wal script ./dark.yaml --archive app.asar --index 0 --copy`,
		GroupID: "advanced",
		Args:    cobra.MaximumNArgs(1),
		RunE:    flags.runScriptCommand,
	}

	cmd.Flags().StringVarP(&flags.archive, "archive", "a", "", "Only print the patches of this archive")
	cmd.Flags().IntVarP(&flags.index, "index", "i", -1, "Only print the patch at this position (requires --archive)")
	cmd.Flags().BoolVar(&flags.check, "check", false, "Check the syntax of every script")
	cmd.Flags().BoolVar(&flags.copy, "copy", false, "Copy the scripts to the clipboard")

	return cmd
}

// generated is the script of one patch.
type generated struct {
	archive string
	index   int
	src     string
}

func (g generated) header() string {
	return fmt.Sprintf("%s #%d", g.archive, g.index)
}

func (f *scriptFlags) runScriptCommand(cmd *cobra.Command, args []string) error {
	out := cli.NewPrinter(cmd.OutOrStdout())

	path, err := themeArg(args)
	if err != nil {
		return err
	}
	t, err := theme.LoadFile(path)
	if err != nil {
		return fail(out, err)
	}

	scripts, err := f.generate(t)
	if err != nil {
		return fail(out, err)
	}

	var errs []error
	for _, g := range scripts {
		out.PrintScript(g.header(), g.src)
		if f.check {
			if err := script.Check(g.src); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", g.header(), err))
			}
		}
	}

	if f.copy {
		srcs := make([]string, len(scripts))
		for i, g := range scripts {
			srcs[i] = g.src
		}
		if err := clipboard.WriteAll(strings.Join(srcs, "\n")); err != nil {
			return fail(out, fmt.Errorf("failed to copy to the clipboard: %w", err))
		}
		out.Printf("Copied %d script(s) to the clipboard.\n", len(scripts))
	}

	if err := errors.Join(errs...); err != nil {
		return fail(out, err)
	}
	return nil
}

func (f *scriptFlags) generate(t *theme.Theme) ([]generated, error) {
	if f.index >= 0 && f.archive == "" {
		return nil, errors.New("--index requires --archive")
	}

	var scripts []generated
	for id, patches := range t.All() {
		if f.archive != "" && id != f.archive {
			continue
		}
		for i, p := range patches {
			if f.index >= 0 && i != f.index {
				continue
			}
			scripts = append(scripts, generated{archive: id, index: i, src: script.Generate(p)})
		}
	}

	if len(scripts) == 0 {
		switch {
		case f.archive != "" && f.index >= 0:
			return nil, fmt.Errorf("no patch #%d in archive %q", f.index, f.archive)
		case f.archive != "":
			return nil, fmt.Errorf("no archive %q in the theme", f.archive)
		default:
			return nil, errors.New("the theme has no patches")
		}
	}
	return scripts, nil
}
