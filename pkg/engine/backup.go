package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/walassistant/wal/pkg/bridge"
)

// Refresh queries the backup state of every archive of the loaded theme in
// parallel. An archive whose query fails keeps its previous state.
func (e *Engine) Refresh(ctx context.Context) error {
	ctx, span := e.startSpan(ctx, "engine.refresh")
	defer span.End()

	t := e.Theme()
	if t == nil {
		return nil
	}
	session, base, err := e.ensureSession(ctx)
	if err != nil {
		slog.Debug("Cannot refresh backup state", "error", err)
		recordSpanError(span, err)
		return err
	}

	prev := e.Snapshot().PatchStates
	next := make(map[string]PatchState, t.Len())
	var mu sync.Mutex

	var g errgroup.Group
	for _, id := range t.ArchiveIDs() {
		g.Go(func() error {
			state := prev[id]
			exists, err := session.BackupExists(ctx, bridge.JoinPath(base, id))
			if err != nil {
				slog.Debug("Backup query failed, keeping previous state", "archive", id, "error", err)
			} else {
				state.HasBackup = exists
			}
			mu.Lock()
			next[id] = state
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	e.update(func(s *Snapshot) {
		s.PatchStates = next
	})
	return nil
}

// Restore puts back the backup of one archive.
func (e *Engine) Restore(ctx context.Context, archive string) (err error) {
	ctx, span := e.startSpan(ctx, "engine.restore")
	span.SetAttributes(archiveAttr(archive))
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if err := e.checkNotRunning(ctx); err != nil {
		return err
	}
	session, base, err := e.ensureSession(ctx)
	if err != nil {
		e.logs.Addf("failed to restore backup: %v", err)
		return err
	}
	if err := session.RestoreBackup(ctx, bridge.JoinPath(base, archive)); err != nil {
		e.logs.Addf("failed to restore backup: %v", err)
		return fmt.Errorf("failed to restore %s: %w", archive, err)
	}
	e.logs.Addf("restored backup: %s", archive)

	if err := e.Refresh(ctx); err != nil {
		slog.Debug("Failed to refresh backup state after restore", "error", err)
	}
	return nil
}

// RestoreAll restores, one after the other, every archive known to have a
// backup. A failed restore is logged and the others are still attempted.
func (e *Engine) RestoreAll(ctx context.Context) (err error) {
	ctx, span := e.startSpan(ctx, "engine.restore_all")
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if err := e.checkNotRunning(ctx); err != nil {
		return err
	}
	session, base, err := e.ensureSession(ctx)
	if err != nil {
		e.logs.Addf("failed to restore backups: %v", err)
		return err
	}

	var errs []error
	for _, id := range e.backedUpArchives() {
		if err := session.RestoreBackup(ctx, bridge.JoinPath(base, id)); err != nil {
			e.logs.Addf("failed to restore backup %s: %v", id, err)
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", id, err))
		}
	}
	if len(errs) == 0 {
		e.logs.Add("all backups restored")
	}

	if err := e.Refresh(ctx); err != nil {
		slog.Debug("Failed to refresh backup state after restore", "error", err)
	}
	return errors.Join(errs...)
}

// backedUpArchives lists the archives with a backup in theme order.
func (e *Engine) backedUpArchives() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ids []string
	for _, id := range e.theme.ArchiveIDs() {
		if e.snap.PatchStates[id].HasBackup {
			ids = append(ids, id)
		}
	}
	return ids
}
