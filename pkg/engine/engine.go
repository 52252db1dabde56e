// Package engine drives the apply workflow: it submits every patch of the
// loaded theme to a bridge session, commits archive by archive, reports
// progress and tracks which archives have a backup.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/walassistant/wal/pkg/bridge"
	"github.com/walassistant/wal/pkg/logs"
	"github.com/walassistant/wal/pkg/theme"
)

var (
	ErrTargetRunning = errors.New("target application is running")
	ErrNoTheme       = errors.New("no theme loaded")
	ErrBusy          = errors.New("an operation is already in progress")
)

// Activity log lines.
const (
	MsgTargetRunning = "the target application is running, close it first"
	MsgNoTheme       = "load a theme first"
	MsgBusy          = "the previous run is not finished yet"
	MsgTaskFinished  = "=== task finished ==="
)

// Engine owns the loaded theme and the apply state. All methods are safe for
// concurrent use, but runs are serialized: a second Apply while one is in
// flight fails with ErrBusy.
type Engine struct {
	bridge     bridge.Bridge
	logs       *logs.Store
	tracer     trace.Tracer
	installDir string

	// sessionMu serializes session creation and base path lookup.
	sessionMu sync.Mutex
	session   bridge.Session
	basePath  string

	mu        sync.Mutex
	theme     *theme.Theme
	running   bool
	snap      Snapshot
	listeners map[int]func(Snapshot)
	nextID    int
}

// Opt configures an Engine.
type Opt func(*Engine)

// WithInstallDir skips asking the bridge for the install path.
func WithInstallDir(dir string) Opt {
	return func(e *Engine) {
		e.installDir = dir
	}
}

func WithTracer(tracer trace.Tracer) Opt {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

func New(b bridge.Bridge, store *logs.Store, opts ...Opt) *Engine {
	e := &Engine{
		bridge:    b,
		logs:      store,
		snap:      Snapshot{State: StateIdle, PatchStates: map[string]PatchState{}},
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.clone()
}

// Theme returns the loaded theme, or nil.
func (e *Engine) Theme() *theme.Theme {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.theme
}

// PatchState returns the known state of archive.
func (e *Engine) PatchState(archive string) PatchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.PatchStates[archive]
}

func (e *Engine) HasPendingBackups() bool {
	return e.Snapshot().HasPendingBackups()
}

// Subscribe calls fn after every state change. The returned function removes
// the subscription.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// update changes the state under the lock and notifies listeners after it
// is released.
func (e *Engine) update(fn func(s *Snapshot)) {
	e.mu.Lock()
	fn(&e.snap)
	snap := e.snap.clone()
	listeners := make([]func(Snapshot), 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// LoadTheme makes t the active theme and refreshes the backup state. The
// session of the previous theme is dropped.
func (e *Engine) LoadTheme(ctx context.Context, t *theme.Theme) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrBusy
	}
	if t == e.theme {
		e.mu.Unlock()
		return nil
	}
	e.theme = t
	e.mu.Unlock()

	e.sessionMu.Lock()
	e.session = nil
	e.sessionMu.Unlock()

	e.update(func(s *Snapshot) {
		s.PatchStates = map[string]PatchState{}
	})
	slog.Debug("Theme loaded", "archives", t.Len(), "patches", t.PatchCount())
	return e.Refresh(ctx)
}

// InstallPath returns the base path archive ids are resolved against. The
// first successful lookup is logged and kept.
func (e *Engine) InstallPath(ctx context.Context) (string, error) {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()
	return e.installPathLocked(ctx)
}

func (e *Engine) installPathLocked(ctx context.Context) (string, error) {
	if e.basePath != "" {
		return e.basePath, nil
	}
	path := e.installDir
	if path == "" {
		var err error
		path, err = e.bridge.InstallBasePath(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to find install path: %w", err)
		}
	}
	e.basePath = path
	e.logs.Addf("found install path: %s", path)
	return path, nil
}

// ensureSession returns the memoized session and base path, creating them
// on first use.
func (e *Engine) ensureSession(ctx context.Context) (bridge.Session, string, error) {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()

	base, err := e.installPathLocked(ctx)
	if err != nil {
		return nil, "", err
	}
	if e.session != nil {
		return e.session, base, nil
	}
	s, err := e.bridge.CreateSession(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}
	slog.Debug("Created session", "id", s.ID())
	e.session = s
	return s, base, nil
}

// checkNotRunning fails when the target application is running. The
// rejection is written to the activity log.
func (e *Engine) checkNotRunning(ctx context.Context) error {
	running, err := e.bridge.IsTargetRunning(ctx)
	if err != nil {
		e.logs.Addf("failed to check whether the target is running: %v", err)
		return fmt.Errorf("failed to check target: %w", err)
	}
	if running {
		e.logs.Add(MsgTargetRunning)
		return ErrTargetRunning
	}
	return nil
}

// begin reserves the engine for one operation.
func (e *Engine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrBusy
	}
	e.running = true
	return nil
}

func (e *Engine) end() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

func (e *Engine) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if e.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return e.tracer.Start(ctx, name, opts...)
}

func recordSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func archiveAttr(id string) attribute.KeyValue {
	return attribute.String("archive", id)
}
