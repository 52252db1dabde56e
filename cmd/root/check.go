package root

import (
	"errors"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/walassistant/wal/pkg/cli"
	"github.com/walassistant/wal/pkg/script"
	"github.com/walassistant/wal/pkg/theme"
)

func newCheckCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check [theme.yaml|pattern]...",
		Short: "Validate theme documents",
		Long:  "Validate theme documents and check the syntax of every script they generate. Patterns such as themes/**/*.yaml are expanded.",
		Example: `  wal check ./dark.yaml
  wal check 'themes/**/*.yaml'`,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckCommand(cmd, args, strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat schema warnings as failures")

	return cmd
}

func runCheckCommand(cmd *cobra.Command, args []string, strict bool) error {
	out := cli.NewPrinter(cmd.OutOrStdout())

	if len(args) == 0 {
		path, err := themeArg(nil)
		if err != nil {
			return err
		}
		args = []string{path}
	}

	files, err := expandPatterns(args)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range files {
		problems := checkThemeFile(path)
		warnings := lintThemeFile(path)
		if len(problems) == 0 && (!strict || len(warnings) == 0) {
			out.Printf("ok    %s\n", path)
		} else {
			failed++
			out.Printf("FAIL  %s\n", path)
		}
		for _, p := range problems {
			out.Printf("      %v\n", p)
		}
		for _, w := range warnings {
			out.Printf("      warning: %s\n", w)
		}
	}

	if failed > 0 {
		return RuntimeError{Err: fmt.Errorf("%d of %d theme(s) failed the check", failed, len(files))}
	}
	return nil
}

// expandPatterns resolves glob patterns. Plain paths are kept even when
// they do not exist so the check reports them.
func expandPatterns(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !hasMeta(arg) {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no file matches %q", arg)
		}
		files = append(files, matches...)
	}
	return files, nil
}

func hasMeta(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// checkThemeFile returns every problem found in the theme at path.
func checkThemeFile(path string) []error {
	t, err := theme.LoadFile(path)
	if err != nil {
		return []error{err}
	}

	var problems []error
	for id, patches := range t.All() {
		for i, p := range patches {
			where := fmt.Sprintf("%s #%d", id, i)
			if theme.Target(p) == "" {
				problems = append(problems, errors.New(where+": no "+targetField(p)))
			}
			if err := script.Check(script.Generate(p)); err != nil {
				problems = append(problems, fmt.Errorf("%s: %w", where, err))
			}
		}
	}
	return problems
}

// lintThemeFile returns the schema findings for path. Files that cannot be
// read or parsed are already reported by checkThemeFile.
func lintThemeFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	findings, err := theme.Lint(data)
	if err != nil {
		return nil
	}
	return findings
}

func targetField(p theme.Patch) string {
	if p.Kind() == theme.KindMainScript {
		return "subject"
	}
	return "path"
}
