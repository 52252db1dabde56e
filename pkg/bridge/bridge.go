// Package bridge is the boundary to the native helper that rewrites archives
// and manages the target application's lifecycle.
//
// The engine only depends on the Bridge and Session interfaces. Client talks
// to a helper process over a line-delimited JSON protocol and bridgetest
// provides an in-memory implementation.
package bridge

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrClosed is returned by calls made after the helper went away.
	ErrClosed = errors.New("bridge closed")
	// ErrUnknownSession is reported by a helper for a session it does not know.
	ErrUnknownSession = errors.New("unknown session")
)

// Session stages patches and commits them, one archive at a time.
//
// Submissions for the same archive are applied in call order. Archive
// arguments are archive ids; backup calls take full paths (see JoinPath).
type Session interface {
	ID() string
	SubmitPatch(ctx context.Context, archive, innerPath, script string) error
	SubmitMainScriptPatch(ctx context.Context, archive, subject, script string) error
	Commit(ctx context.Context, archive string) error
	BackupExists(ctx context.Context, fullPath string) (bool, error)
	RestoreBackup(ctx context.Context, fullPath string) error
	CreateBackup(ctx context.Context, fullPath string) error
}

// Bridge creates sessions and controls the target application.
type Bridge interface {
	CreateSession(ctx context.Context) (Session, error)
	IsTargetRunning(ctx context.Context) (bool, error)
	KillTarget(ctx context.Context) error
	LaunchTarget(ctx context.Context) error
	WaitUntilTargetEnded(ctx context.Context) error
	InstallBasePath(ctx context.Context) (string, error)
	// SubscribeLogs registers fn for log lines emitted by the native side.
	// The returned function removes the subscription.
	SubscribeLogs(fn func(line string)) (unsubscribe func())
}

// RemoteError is an error reported by the helper for one call.
type RemoteError struct {
	Command string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Command + ": " + e.Message
}

// Is lets errors.Is match the sentinel errors a helper can report by message.
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnknownSession && strings.Contains(e.Message, ErrUnknownSession.Error())
}

// JoinPath resolves an archive id against the install base path using the
// native separator. Forward slashes in the id are converted.
func JoinPath(base, archive string) string {
	return filepath.Join(base, filepath.FromSlash(archive))
}
