package engine

import (
	"context"
	"errors"
	"fmt"
)

// finished reports whether the last run ended and awaits acknowledgement.
func (e *Engine) finished() bool {
	switch e.Snapshot().State {
	case StateDone, StateError:
		return true
	default:
		return false
	}
}

// Finish acknowledges a finished or failed run and returns to idle. It does
// nothing in any other state.
func (e *Engine) Finish() error {
	if !e.finished() {
		return nil
	}
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	e.update(func(s *Snapshot) {
		s.State = StateIdle
	})
	return nil
}

// FinishAndLaunch starts the target application and returns to idle.
func (e *Engine) FinishAndLaunch(ctx context.Context) error {
	if !e.finished() {
		return nil
	}
	var launchErr error
	if err := e.bridge.LaunchTarget(ctx); err != nil {
		e.logs.Addf("failed to launch the target application: %v", err)
		launchErr = fmt.Errorf("failed to launch target: %w", err)
	}
	return errors.Join(launchErr, e.Finish())
}

// FinishAndRestore restores every backup and returns to idle, whether or
// not the restore succeeded.
func (e *Engine) FinishAndRestore(ctx context.Context) error {
	if !e.finished() {
		return nil
	}
	restoreErr := e.RestoreAll(ctx)
	return errors.Join(restoreErr, e.Finish())
}
