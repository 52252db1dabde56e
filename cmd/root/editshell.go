package root

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	shellwords "github.com/junegunn/go-shellwords"

	"github.com/walassistant/wal/pkg/cli"
	"github.com/walassistant/wal/pkg/editor"
	"github.com/walassistant/wal/pkg/script"
	"github.com/walassistant/wal/pkg/theme"
)

// shellCommand is one command of the edit shell. Commands that address a
// patch take the archive and the index as their first two arguments.
type shellCommand struct {
	usage   string
	help    string
	minArgs int
	maxArgs int // -1 for no limit
	run     func(s *shell, args []string) (changed bool, err error)
}

var shellCommands = map[string]shellCommand{
	"show": {
		usage: "show [archive [index]]", help: "Print the theme, an archive or a patch",
		maxArgs: 2, run: (*shell).show,
	},
	"add-patch": {
		usage: "add-patch <archive> <kind>", help: "Append an empty patch of kind main-script or file",
		minArgs: 2, maxArgs: 2,
		run: func(s *shell, args []string) (bool, error) {
			kind, err := theme.ParseKind(args[1])
			if err != nil {
				return false, err
			}
			return true, s.ed.AddPatch(args[0], kind)
		},
	},
	"rm-patch": {
		usage: "rm-patch <archive> <index>", help: "Remove a patch",
		minArgs: 2, maxArgs: 2,
		run: func(s *shell, args []string) (bool, error) {
			index, err := parseIndex(args[1])
			if err != nil {
				return false, err
			}
			return true, s.ed.RemovePatch(args[0], index)
		},
	},
	"rm-archive": {
		usage: "rm-archive <archive>", help: "Remove an archive and all of its patches",
		minArgs: 1, maxArgs: 1,
		run: func(s *shell, args []string) (bool, error) {
			return s.ed.RemoveArchive(args[0]), nil
		},
	},
	"kind": {
		usage: "kind <archive> <index> <kind>", help: "Change the kind of a patch",
		minArgs: 3, maxArgs: 3,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			kind, err := theme.ParseKind(args[0])
			if err != nil {
				return false, err
			}
			return ed.SetKind(a, i, kind)
		}),
	},
	"subject": {
		usage: "subject <archive> <index> <subject>", help: "Set the subject of a main-script patch",
		minArgs: 3, maxArgs: 3,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			return ed.SetSubject(a, i, args[0])
		}),
	},
	"path": {
		usage: "path <archive> <index> <path>", help: "Set the inner path of a file patch",
		minArgs: 3, maxArgs: 3,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			return ed.SetPath(a, i, args[0])
		}),
	},
	"desc": {
		usage: "desc <archive> <index> [text...]", help: "Set the description of a patch",
		minArgs: 2, maxArgs: -1,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			return ed.SetDescription(a, i, strings.Join(args, " "))
		}),
	},
	"script": {
		usage: "script <archive> <index> [file]", help: "Set the custom script from a file, or clear it",
		minArgs: 2, maxArgs: 3,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			var src string
			if len(args) > 0 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return false, fmt.Errorf("failed to read script: %w", err)
				}
				src = string(data)
			}
			return ed.SetCustomScript(a, i, src)
		}),
	},
	"devtools": {
		usage: "devtools <archive> <index> on|off", help: "Inject the in-page debug console",
		minArgs: 3, maxArgs: 3,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			enable, err := parseSwitch(args[0])
			if err != nil {
				return false, err
			}
			return ed.SetDevTools(a, i, enable)
		}),
	},
	"selector": {
		usage: "selector <archive> <index> <selector>", help: "Add a CSS selector",
		minArgs: 3, maxArgs: 3,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			return ed.AddSelector(a, i, args[0])
		}),
	},
	"rm-selector": {
		usage: "rm-selector <archive> <index> <selector>", help: "Remove a CSS selector and its declarations",
		minArgs: 3, maxArgs: 3,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			return ed.RemoveSelector(a, i, args[0])
		}),
	},
	"decl": {
		usage: "decl <archive> <index> <selector> <property> <value>", help: "Add a declaration",
		minArgs: 5, maxArgs: 5,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			return ed.AddDeclaration(a, i, args[0], args[1], args[2])
		}),
	},
	"set-decl": {
		usage: "set-decl <archive> <index> <selector> <property> <value>", help: "Change the value of a declaration",
		minArgs: 5, maxArgs: 5,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			return ed.SetDeclarationValue(a, i, args[0], args[1], args[2])
		}),
	},
	"rm-decl": {
		usage: "rm-decl <archive> <index> <selector> <property>", help: "Remove a declaration",
		minArgs: 4, maxArgs: 4,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			return ed.RemoveDeclaration(a, i, args[0], args[1])
		}),
	},
	"color": {
		usage: "color <archive> <index> <name> <value>", help: "Add a color override",
		minArgs: 4, maxArgs: 4,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			return ed.AddColor(a, i, args[0], args[1])
		}),
	},
	"set-color": {
		usage: "set-color <archive> <index> <name> <value>", help: "Change the value of a color override",
		minArgs: 4, maxArgs: 4,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			return ed.SetColorValue(a, i, args[0], args[1])
		}),
	},
	"rm-color": {
		usage: "rm-color <archive> <index> <name>", help: "Remove a color override",
		minArgs: 3, maxArgs: 3,
		run: patchCommand(func(ed *editor.Editor, a string, i int, args []string) (bool, error) {
			return ed.RemoveColor(a, i, args[0])
		}),
	},
	"preview": {
		usage: "preview <archive> <index>", help: "Print the script generated for a patch",
		minArgs: 2, maxArgs: 2, run: (*shell).preview,
	},
	"undo": {
		usage: "undo", help: "Undo the last structural edit",
		run: func(s *shell, _ []string) (bool, error) {
			if !s.ed.Undo() {
				return false, errors.New("nothing to undo")
			}
			return true, nil
		},
	},
	"redo": {
		usage: "redo", help: "Redo the last undone edit",
		run: func(s *shell, _ []string) (bool, error) {
			if !s.ed.Redo() {
				return false, errors.New("nothing to redo")
			}
			return true, nil
		},
	},
	"new": {
		usage: "new", help: "Start over with an empty theme",
		run: func(s *shell, _ []string) (bool, error) {
			s.ed.NewTheme()
			return true, nil
		},
	},
	"import": {
		usage: "import <file>", help: "Replace the theme with a document (can be undone)",
		minArgs: 1, maxArgs: 1,
		run: func(s *shell, args []string) (bool, error) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return false, fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			return true, s.ed.Import(data)
		},
	},
	"export": {
		usage: "export", help: "Print the theme document",
		run: func(s *shell, _ []string) (bool, error) {
			data, err := s.ed.Export()
			if err != nil {
				return false, err
			}
			s.out.Print(string(data))
			return false, nil
		},
	},
	"diff": {
		usage: "diff", help: "Show the changes since the last save",
		run: func(s *shell, _ []string) (bool, error) {
			diff, err := s.ed.Diff()
			if err != nil {
				return false, err
			}
			if diff == "" {
				s.out.Println("No changes.")
			}
			s.out.Print(diff)
			return false, nil
		},
	},
	"save": {
		usage: "save [file]", help: "Save the theme, to file if given",
		maxArgs: 1,
		run: func(s *shell, args []string) (bool, error) {
			var err error
			if len(args) == 1 {
				err = s.ed.SaveAs(args[0])
			} else {
				err = s.ed.Save()
			}
			if err != nil {
				return false, err
			}
			s.out.Printf("Saved %s.\n", s.ed.Path())
			return false, nil
		},
	},
}

// shell runs edit commands against an editor.
type shell struct {
	ed  *editor.Editor
	out *cli.Printer
	// quitting is set after a quit refused because of unsaved changes.
	quitting bool
}

func newShell(ed *editor.Editor, out *cli.Printer) *shell {
	return &shell{ed: ed, out: out}
}

func (s *shell) prompt() string {
	if s.ed.Dirty() {
		return "wal*> "
	}
	return "wal> "
}

// exec runs one input line. quit is true when the shell should exit.
func (s *shell) exec(line string) (quit bool, err error) {
	args, err := shellwords.Parse(line)
	if err != nil {
		return false, fmt.Errorf("invalid input: %w", err)
	}
	if len(args) == 0 {
		return false, nil
	}
	name, args := args[0], args[1:]

	switch name {
	case "quit", "exit", "q":
		if s.ed.Dirty() && !s.quitting {
			s.quitting = true
			return false, errors.New("unsaved changes: save them, or quit again to discard them")
		}
		return true, nil
	case "help", "?":
		s.help()
		return false, nil
	}
	s.quitting = false

	c, ok := shellCommands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q, type help for the list", name)
	}
	if len(args) < c.minArgs || (c.maxArgs >= 0 && len(args) > c.maxArgs) {
		return false, fmt.Errorf("usage: %s", c.usage)
	}

	changed, err := c.run(s, args)
	if err != nil {
		return false, err
	}
	if !changed && isEdit(name) {
		s.out.Println("No change.")
	}
	return false, nil
}

// isEdit reports whether a command is expected to change the theme.
func isEdit(name string) bool {
	switch name {
	case "show", "preview", "export", "diff", "save":
		return false
	default:
		return true
	}
}

func (s *shell) help() {
	names := make([]string, 0, len(shellCommands))
	for name := range shellCommands {
		names = append(names, name)
	}
	slices.Sort(names)

	width := 0
	for _, name := range names {
		width = max(width, len(shellCommands[name].usage))
	}
	for _, name := range names {
		c := shellCommands[name]
		s.out.Printf("  %-*s  %s\n", width, c.usage, c.help)
	}
	s.out.Printf("  %-*s  %s\n", width, "quit", "Leave the editor")
}

func (s *shell) show(args []string) (bool, error) {
	t := s.ed.Theme()
	if t.Len() == 0 {
		s.out.Println("The theme is empty.")
		return false, nil
	}

	if len(args) == 2 {
		index, err := parseIndex(args[1])
		if err != nil {
			return false, err
		}
		p, ok := t.Patch(args[0], index)
		if !ok {
			return false, fmt.Errorf("%w: %s #%d", editor.ErrNoPatch, args[0], index)
		}
		s.out.PrintPatch(args[0], index, p)
		return false, nil
	}

	found := false
	for id, patches := range t.All() {
		if len(args) == 1 && id != args[0] {
			continue
		}
		found = true
		for i, p := range patches {
			s.out.PrintPatch(id, i, p)
		}
	}
	if !found {
		return false, fmt.Errorf("no archive %q in the theme", args[0])
	}
	return false, nil
}

func (s *shell) preview(args []string) (bool, error) {
	index, err := parseIndex(args[1])
	if err != nil {
		return false, err
	}
	p, ok := s.ed.Theme().Patch(args[0], index)
	if !ok {
		return false, fmt.Errorf("%w: %s #%d", editor.ErrNoPatch, args[0], index)
	}
	src := script.Generate(p)
	s.out.PrintScript(fmt.Sprintf("%s #%d", args[0], index), src)
	if err := script.Check(src); err != nil {
		return false, err
	}
	return false, nil
}

// patchCommand adapts fn to a command whose first two arguments address a
// patch.
func patchCommand(fn func(ed *editor.Editor, archive string, index int, args []string) (bool, error)) func(*shell, []string) (bool, error) {
	return func(s *shell, args []string) (bool, error) {
		index, err := parseIndex(args[1])
		if err != nil {
			return false, err
		}
		return fn(s.ed, args[0], index, args[2:])
	}
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid patch index %q", s)
	}
	return i, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}
