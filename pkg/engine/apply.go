package engine

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/walassistant/wal/pkg/bridge"
	"github.com/walassistant/wal/pkg/script"
	"github.com/walassistant/wal/pkg/theme"
)

// Apply writes every patch of the loaded theme to its archive.
//
// Apply is rejected before touching the bridge session when the target is
// running, no theme is loaded, or the previous run was not acknowledged with
// one of the Finish methods. A commit failure for one archive is logged and
// the run moves on; any other failure stops the run and puts the engine in
// StateError.
func (e *Engine) Apply(ctx context.Context) (err error) {
	ctx, span := e.startSpan(ctx, "engine.apply")
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	if err := e.begin(); err != nil {
		e.logs.Add(MsgBusy)
		return err
	}
	defer e.end()

	if state := e.Snapshot().State; state != StateIdle {
		e.logs.Add(MsgBusy)
		return fmt.Errorf("%w: state is %s", ErrBusy, state)
	}
	if err := e.checkNotRunning(ctx); err != nil {
		return err
	}
	t := e.Theme()
	if t == nil {
		e.logs.Add(MsgNoTheme)
		return ErrNoTheme
	}

	total := t.PendingArchives()
	span.SetAttributes(attribute.Int("archives", total))
	e.update(func(s *Snapshot) {
		s.State = StateWorking
		s.Progress = Progress{Current: 0, Max: total}
		s.Failed = nil
	})

	if err = e.run(ctx, t); err != nil {
		slog.Debug("Apply run failed", "error", err)
		e.update(func(s *Snapshot) {
			s.State = StateError
			s.Progress = Progress{Current: 0, Max: total}
		})
		e.logs.Addf("failed to apply patches: %v", err)
	} else {
		e.update(func(s *Snapshot) {
			s.State = StateDone
			s.Progress.Current = s.Progress.Max
		})
	}
	e.logs.Add(MsgTaskFinished)

	if refreshErr := e.Refresh(ctx); refreshErr != nil {
		slog.Debug("Failed to refresh backup state after apply", "error", refreshErr)
	}
	return err
}

func (e *Engine) run(ctx context.Context, t *theme.Theme) error {
	for id, patches := range t.All() {
		if len(patches) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.checkNotRunning(ctx); err != nil {
			return err
		}

		session, _, err := e.ensureSession(ctx)
		if err != nil {
			return err
		}
		if err := e.applyArchive(ctx, session, id, patches); err != nil {
			return err
		}

		e.update(func(s *Snapshot) {
			s.Progress.Current++
		})
	}
	return nil
}

// applyArchive submits the patches of one archive in order and commits
// them. Only submission errors are returned.
func (e *Engine) applyArchive(ctx context.Context, session bridge.Session, id string, patches []theme.Patch) error {
	ctx, span := e.startSpan(ctx, "engine.archive", trace.WithAttributes(
		archiveAttr(id),
		attribute.Int("patches", len(patches)),
	))
	defer span.End()

	e.logs.Addf("patching archive: %s", id)
	for i, p := range patches {
		e.logs.Addf("applying patch #%d...", i+1)
		if err := submit(ctx, session, id, p); err != nil {
			recordSpanError(span, err)
			return fmt.Errorf("failed to submit patch #%d of %s: %w", i+1, id, err)
		}
	}

	e.logs.Add("writing archive...")
	if err := session.Commit(ctx, id); err != nil {
		recordSpanError(span, err)
		slog.Debug("Commit failed", "archive", id, "error", err)
		e.logs.Addf("failed to write archive %s: %v", id, err)
		e.update(func(s *Snapshot) {
			s.Failed = append(s.Failed, id)
		})
		return nil
	}
	recordSpanError(span, nil)
	return nil
}

func submit(ctx context.Context, session bridge.Session, id string, p theme.Patch) error {
	src := script.Generate(p)
	switch p := p.(type) {
	case theme.MainScriptPatch:
		return session.SubmitMainScriptPatch(ctx, id, p.Subject, src)
	case theme.FilePatch:
		return session.SubmitPatch(ctx, id, p.Path, src)
	default:
		panic(fmt.Sprintf("engine: unexpected patch type %T", p))
	}
}
