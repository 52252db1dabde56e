package root

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/walassistant/wal/pkg/app"
	"github.com/walassistant/wal/pkg/bridge"
	"github.com/walassistant/wal/pkg/cli"
	"github.com/walassistant/wal/pkg/engine"
	"github.com/walassistant/wal/pkg/paths"
	"github.com/walassistant/wal/pkg/userconfig"
)

// helperFlags select the native helper and the target application. They
// override the user configuration.
type helperFlags struct {
	command    string
	args       []string
	process    string
	installDir string
}

func addHelperFlags(cmd *cobra.Command, f *helperFlags) {
	cmd.Flags().StringVar(&f.command, "helper", "", "Native helper command (default: helper.command from the config)")
	cmd.Flags().StringArrayVar(&f.args, "helper-arg", nil, "Argument passed to the native helper (repeatable)")
	cmd.Flags().StringVar(&f.process, "process", "", "Executable name of the target application (default: "+userconfig.DefaultProcess+")")
	cmd.Flags().StringVar(&f.installDir, "install-dir", "", "Install directory of the target application (default: asked to the helper)")
}

// helperSettings is the result of merging flags over the user config.
type helperSettings struct {
	command    string
	args       []string
	process    string
	installDir string
}

func (f *helperFlags) resolve(cfg *userconfig.Config) helperSettings {
	h := cfg.GetHelper()
	t := cfg.GetTarget()

	s := helperSettings{
		command:    cmp.Or(f.command, h.Command),
		args:       h.Args,
		process:    cmp.Or(f.process, t.Process),
		installDir: cmp.Or(f.installDir, t.InstallDir),
	}
	if len(f.args) > 0 {
		s.args = f.args
	}
	return s
}

// connect starts the native helper. Tests replace it with a fake.
var connect = func(ctx context.Context, s helperSettings) (bridge.Bridge, error) {
	args := append(append([]string(nil), s.args...), "--process", s.process)
	return bridge.Start(ctx, s.command, args, bridge.WithLogSubscriber(func(line string) {
		slog.Debug("Helper log", "line", line)
	}))
}

// openApp loads the user config, connects to the helper and builds the
// application state. The caller must close the returned app.
func openApp(ctx context.Context, f *helperFlags) (*app.App, *userconfig.Config, error) {
	cfg, err := userconfig.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	s := f.resolve(cfg)
	b, err := connect(ctx, s)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start native helper: %w", err)
	}

	opts := []engine.Opt{engine.WithTracer(otel.Tracer(AppName))}
	if s.installDir != "" {
		opts = append(opts, engine.WithInstallDir(s.installDir))
	}
	return app.New(b, opts...), cfg, nil
}

// openTheme opens the app, prints its activity log as it happens and loads
// the theme at path. The returned stop function flushes the log and closes
// the app.
func openTheme(cmd *cobra.Command, f *helperFlags, out *cli.Printer, path string) (*app.App, func(), error) {
	ctx := cmd.Context()

	a, cfg, err := openApp(ctx, f)
	if err != nil {
		return nil, nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	done := a.Subscribe(subCtx, func(ev app.Event) {
		if ev, ok := ev.(app.LogEvent); ok {
			out.PrintLog(ev.Entry)
		}
	})
	stop := func() {
		cancel()
		<-done
		if err := a.Close(); err != nil {
			slog.Debug("Failed to close app", "error", err)
		}
	}

	// Both failures are already in the activity log.
	if err := a.Start(ctx); err != nil {
		stop()
		return nil, nil, RuntimeError{Err: err}
	}
	if err := a.LoadThemeFile(ctx, path); err != nil {
		stop()
		return nil, nil, RuntimeError{Err: err}
	}
	rememberTheme(cfg, path)

	return a, stop, nil
}

// rememberTheme records path as settings.last_theme.
func rememberTheme(cfg *userconfig.Config, path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if cfg.GetSettings().LastTheme == abs {
		return
	}
	if err := cfg.Set("settings.last_theme", abs); err != nil {
		slog.Debug("Failed to remember theme", "error", err)
		return
	}
	if err := cfg.Save(); err != nil {
		slog.Debug("Failed to save config", "error", err)
	}
}

// themeArg returns the theme path from args, falling back to the last
// theme used.
func themeArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return resolveThemePath(args[0]), nil
	}
	cfg, err := userconfig.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if last := cfg.GetSettings().LastTheme; last != "" {
		return last, nil
	}
	return "", errors.New("no theme given and no theme used before")
}

// resolveThemePath looks a bare name such as "dark" up in the themes
// directory when no such file exists in the working directory.
func resolveThemePath(arg string) string {
	if strings.ContainsAny(arg, `/\`) {
		return arg
	}
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	name := arg
	if filepath.Ext(name) == "" {
		name += ".yaml"
	}
	candidate := filepath.Join(paths.GetThemesDir(), name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return arg
}

// fail prints err unless it was already shown and marks it as a runtime
// error.
func fail(out *cli.Printer, err error) error {
	if _, ok := errors.AsType[RuntimeError](err); ok {
		return err
	}
	out.PrintError(err)
	return RuntimeError{Err: err}
}
