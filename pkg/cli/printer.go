package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/x/ansi"
	"github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/walassistant/wal/pkg/engine"
	"github.com/walassistant/wal/pkg/input"
	"github.com/walassistant/wal/pkg/logs"
	"github.com/walassistant/wal/pkg/theme"
)

const progressWidth = 24

var (
	bold  = color.New(color.Bold).SprintfFunc()
	faint = color.New(color.Faint).SprintfFunc()
	green = color.New(color.FgGreen).SprintfFunc()
	red   = color.New(color.FgRed).SprintfFunc()
)

// Printer is safe for use by the activity log subscription and the command
// at the same time.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	fancy bool
}

// NewPrinter returns a printer writing to out. Swatches and syntax
// highlighting are only emitted when out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	p := &Printer{out: out}
	if f, ok := out.(*os.File); ok {
		p.fancy = isatty.IsTerminal(f.Fd()) && !color.NoColor
	}
	return p
}

func (p *Printer) Println(a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, a...)
}

func (p *Printer) Print(a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, a...)
}

func (p *Printer) Printf(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, a...)
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) {
	p.Printf("%s %s\n", red("error:"), err)
}

// PrintLog prints one activity log entry.
func (p *Printer) PrintLog(e logs.Entry) {
	p.Printf("%s %s\n", faint(e.Time.Format("15:04:05")), e.Text)
}

// PrintProgress prints a one-line progress bar for a snapshot.
func (p *Printer) PrintProgress(s engine.Snapshot) {
	p.Println(formatProgress(s.Progress, progressWidth), formatState(s.State))
}

// PrintResult prints the outcome of a run, including archives whose
// commit failed.
func (p *Printer) PrintResult(s engine.Snapshot) {
	p.Printf("\n%s %d/%d archives\n", formatState(s.State), s.Progress.Current, s.Progress.Max)
	for _, archive := range s.Failed {
		p.Printf("  %s %s\n", red("failed"), archive)
	}
}

// PrintStatus prints one row per archive of t with its patch count and
// whether a backup exists.
func (p *Printer) PrintStatus(t *theme.Theme, s engine.Snapshot) {
	rows := [][]string{{bold("ARCHIVE"), bold("PATCHES"), bold("BACKUP")}}
	for id, patches := range t.All() {
		backup := faint("no")
		if s.PatchStates[id].HasBackup {
			backup = green("yes")
		}
		rows = append(rows, []string{id, fmt.Sprint(len(patches)), backup})
	}
	p.Print(formatTable(rows))

	if s.HasPendingBackups() {
		p.Printf("\n%s\n", faint("backups can be restored with `wal restore`"))
	}
}

// PrintPatch prints the content of one patch. Color-like values get a
// swatch on a terminal.
func (p *Printer) PrintPatch(archive string, index int, pt theme.Patch) {
	base := pt.Common()

	p.Printf("%s #%d %s %s\n", bold(archive), index, pt.Kind(), theme.Target(pt))
	if base.Description != "" {
		p.Printf("  %s\n", faint(base.Description))
	}
	if base.EnableDevTools {
		p.Println("  devtools: on")
	}
	for selector, decls := range base.StyleOverridesBySelector.All() {
		p.Printf("  %s {\n", selector)
		for property, value := range decls.All() {
			p.Printf("    %s: %s%s\n", property, p.swatch(value), value)
		}
		p.Println("  }")
	}
	for key, value := range base.ColorOverrides.All() {
		p.Printf("  %s = %s%s\n", key, p.swatch(value), value)
	}
	if base.CustomScript != "" {
		lines := strings.Count(base.CustomScript, "\n") + 1
		p.Printf("  custom script: %d line(s)\n", lines)
	}
}

// PrintScript prints a generated script under a header, highlighted when
// writing to a terminal.
func (p *Printer) PrintScript(header, src string) {
	p.Printf("%s %s\n", bold("// "+header), faint("("+units.HumanSize(float64(len(src)))+")"))
	if p.fancy {
		var b strings.Builder
		if err := quick.Highlight(&b, src, "javascript", "terminal256", "monokai"); err == nil {
			p.Println(b.String())
			return
		}
	}
	p.Println(src)
}

func (p *Printer) swatch(value string) string {
	if !p.fancy || !theme.IsColorLike(value) {
		return ""
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(value)).Render("  ") + " "
}

// Confirm asks a yes/no question. On a terminal a single key press is
// enough; otherwise a line is read from rd. Anything but yes is a no.
func (p *Printer) Confirm(ctx context.Context, question string, rd io.Reader) bool {
	p.Printf("%s", bold(question+" (y/n): "))

	if f, ok := rd.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fd := int(f.Fd())
		if oldState, err := term.MakeRaw(fd); err == nil {
			defer func() {
				if err := term.Restore(fd, oldState); err != nil {
					p.Printf("\nFailed to restore terminal state: %v\n", err)
				}
			}()
			buf := make([]byte, 1)
			for {
				if _, err := f.Read(buf); err != nil {
					return false
				}
				switch buf[0] {
				case 'y', 'Y':
					p.Print("yes\r\n")
					return true
				case 'n', 'N', 3: // Ctrl+C
					p.Print("no\r\n")
					return false
				}
			}
		}
	}

	text, err := input.ReadLine(ctx, rd)
	if err != nil {
		p.Println()
		return false
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func formatState(s engine.WorkingState) string {
	switch s {
	case engine.StateDone:
		return green(string(s))
	case engine.StateError:
		return red(string(s))
	default:
		return string(s)
	}
}

func formatProgress(pr engine.Progress, width int) string {
	filled := 0
	if pr.Max > 0 {
		filled = min(width, pr.Current*width/pr.Max)
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
	return fmt.Sprintf("[%s] %d/%d", bar, pr.Current, pr.Max)
}

// formatTable left-aligns cells in columns separated by two spaces. Cell
// widths ignore ANSI escapes.
func formatTable(rows [][]string) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(ansi.Strip(cell)))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			b.WriteString(cell)
			if i < len(row)-1 {
				pad := widths[i] - runewidth.StringWidth(ansi.Strip(cell))
				b.WriteString(strings.Repeat(" ", pad+2))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
