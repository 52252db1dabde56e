// Package app wires the bridge, the activity log and the engine together.
package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/walassistant/wal/pkg/bridge"
	"github.com/walassistant/wal/pkg/engine"
	"github.com/walassistant/wal/pkg/logs"
	"github.com/walassistant/wal/pkg/theme"
)

// Event is sent to subscribers. It is either a LogEvent or a StateEvent.
type Event interface {
	isEvent()
}

// LogEvent carries a new activity log entry.
type LogEvent struct {
	Entry logs.Entry
}

// StateEvent carries the engine state after a change.
type StateEvent struct {
	Snapshot engine.Snapshot
}

func (LogEvent) isEvent() {}
func (StateEvent) isEvent() {}

// App is the application state shared by every command.
type App struct {
	bridge bridge.Bridge
	logs   *logs.Store
	engine *engine.Engine

	unsubscribe func()
}

// New forwards the bridge log lines into a fresh activity log and builds
// the engine on top of them.
func New(b bridge.Bridge, opts ...engine.Opt) *App {
	store := logs.NewStore()
	return &App{
		bridge:      b,
		logs:        store,
		engine:      engine.New(b, store, opts...),
		unsubscribe: b.SubscribeLogs(store.Add),
	}
}

func (a *App) Logs() *logs.Store { return a.logs }
func (a *App) Engine() *engine.Engine { return a.engine }
func (a *App) Bridge() bridge.Bridge { return a.bridge }
func (a *App) Theme() *theme.Theme { return a.engine.Theme() }
func (a *App) Snapshot() engine.Snapshot { return a.engine.Snapshot() }

// Start looks up the install path so it shows up first in the log.
func (a *App) Start(ctx context.Context) error {
	if _, err := a.engine.InstallPath(ctx); err != nil {
		a.logs.Addf("%v", err)
		return err
	}
	return nil
}

// LoadThemeFile reads the theme at path and makes it active. The active
// theme is kept when the file is not a theme.
func (a *App) LoadThemeFile(ctx context.Context, path string) error {
	t, err := theme.LoadFile(path)
	if err != nil {
		a.logs.Addf("failed to load theme: %v", err)
		return err
	}
	slog.Debug("Loaded theme file", "path", path)
	return a.engine.LoadTheme(ctx, t)
}

// Subscribe calls fn for every log entry and state change until ctx is
// done. The subscription is in place when Subscribe returns; events are
// delivered in order on a separate goroutine. The returned channel is
// closed once events queued before ctx ended have been delivered.
func (a *App) Subscribe(ctx context.Context, fn func(Event)) <-chan struct{} {
	events := make(chan Event, 128)
	send := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	stopLogs := a.logs.Subscribe(func(e logs.Entry) { send(LogEvent{Entry: e}) })
	stopState := a.engine.Subscribe(func(s engine.Snapshot) { send(StateEvent{Snapshot: s}) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev := <-events:
				fn(ev)
			case <-ctx.Done():
				stopLogs()
				stopState()
				for {
					select {
					case ev := <-events:
						fn(ev)
					default:
						return
					}
				}
			}
		}
	}()
	return done
}

// Close stops forwarding bridge logs and closes the bridge when it owns a
// helper process.
func (a *App) Close() error {
	a.unsubscribe()
	if c, ok := a.bridge.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
