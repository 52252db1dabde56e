// Package bridgetest provides an in-memory bridge.Bridge for tests.
package bridgetest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/walassistant/wal/pkg/bridge"
)

// Call is one recorded bridge or session call.
type Call struct {
	Command string
	Args    []string
}

// Submission is a patch staged or committed for an archive.
type Submission struct {
	Command string
	Target  string
	Script  string
}

// Fake records every call and simulates backups: committing an archive
// creates its backup, restoring removes it.
type Fake struct {
	mu sync.Mutex

	basePath  string
	running   bool
	backups   map[string]bool
	staged    map[string][]Submission
	committed map[string][]Submission
	calls     []Call
	sessions  int

	createSessionErr error
	runningErr       error
	basePathErr      error
	commitErrs       map[string]error
	backupQueryErrs  map[string]error
	restoreErrs      map[string]error

	subs    map[int]func(string)
	nextSub int
}

var _ bridge.Bridge = (*Fake)(nil)

// New returns a Fake whose install base path is basePath.
func New(basePath string) *Fake {
	return &Fake{
		basePath:        basePath,
		backups:         make(map[string]bool),
		staged:          make(map[string][]Submission),
		committed:       make(map[string][]Submission),
		commitErrs:      make(map[string]error),
		backupQueryErrs: make(map[string]error),
		restoreErrs:     make(map[string]error),
		subs:            make(map[int]func(string)),
	}
}

func (f *Fake) SetRunning(running bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = running
}

func (f *Fake) SetBackup(fullPath string, exists bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backups[fullPath] = exists
}

func (f *Fake) HasBackup(fullPath string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backups[fullPath]
}

func (f *Fake) FailCreateSession(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createSessionErr = err
}

func (f *Fake) FailIsRunning(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runningErr = err
}

func (f *Fake) FailBasePath(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.basePathErr = err
}

// FailCommit makes commits of archive fail with err. A nil err clears it.
func (f *Fake) FailCommit(archive string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commitErrs[archive] = err
}

func (f *Fake) FailBackupQuery(fullPath string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backupQueryErrs[fullPath] = err
}

func (f *Fake) FailRestore(fullPath string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restoreErrs[fullPath] = err
}

// Calls returns every recorded call in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Commands returns the command names of every recorded call.
func (f *Fake) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	commands := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		commands = append(commands, c.Command)
	}
	return commands
}

// SessionCount returns how many sessions were created.
func (f *Fake) SessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions
}

// Committed returns the patches written to archive so far.
func (f *Fake) Committed(archive string) []Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.committed[archive])
}

// Emit delivers a log line to every subscriber.
func (f *Fake) Emit(line string) {
	f.mu.Lock()
	subs := make([]func(string), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(line)
	}
}

func (f *Fake) record(command string, args ...string) {
	f.calls = append(f.calls, Call{Command: command, Args: args})
}

func (f *Fake) CreateSession(context.Context) (bridge.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(bridge.CmdCreateSession)
	if f.createSessionErr != nil {
		return nil, f.createSessionErr
	}
	f.sessions++
	return &session{id: fmt.Sprintf("session-%d", f.sessions), fake: f}, nil
}

func (f *Fake) IsTargetRunning(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(bridge.CmdIsTargetRunning)
	return f.running, f.runningErr
}

func (f *Fake) KillTarget(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(bridge.CmdKillTarget)
	f.running = false
	return nil
}

func (f *Fake) LaunchTarget(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(bridge.CmdLaunchTarget)
	f.running = true
	return nil
}

func (f *Fake) WaitUntilTargetEnded(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(bridge.CmdWaitUntilTargetEnded)
	f.running = false
	return nil
}

func (f *Fake) InstallBasePath(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(bridge.CmdGetBasePath)
	return f.basePath, f.basePathErr
}

func (f *Fake) SubscribeLogs(fn func(string)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

type session struct {
	id   string
	fake *Fake
}

func (s *session) ID() string { return s.id }

func (s *session) SubmitPatch(_ context.Context, archive, innerPath, script string) error {
	return s.stage(bridge.CmdSubmitPatch, archive, innerPath, script)
}

func (s *session) SubmitMainScriptPatch(_ context.Context, archive, subject, script string) error {
	return s.stage(bridge.CmdSubmitMainScriptPatch, archive, subject, script)
}

func (s *session) stage(command, archive, target, script string) error {
	f := s.fake
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(command, archive, target)
	f.staged[archive] = append(f.staged[archive], Submission{Command: command, Target: target, Script: script})
	return nil
}

func (s *session) Commit(_ context.Context, archive string) error {
	f := s.fake
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(bridge.CmdApplyPatches, archive)

	staged := f.staged[archive]
	delete(f.staged, archive)
	if err := f.commitErrs[archive]; err != nil {
		return err
	}
	if len(staged) == 0 {
		return errors.New("no patches staged for " + archive)
	}
	f.backups[bridge.JoinPath(f.basePath, archive)] = true
	f.committed[archive] = append(f.committed[archive], staged...)
	return nil
}

func (s *session) BackupExists(_ context.Context, fullPath string) (bool, error) {
	f := s.fake
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(bridge.CmdBackupExists, fullPath)
	if err := f.backupQueryErrs[fullPath]; err != nil {
		return false, err
	}
	return f.backups[fullPath], nil
}

func (s *session) RestoreBackup(_ context.Context, fullPath string) error {
	f := s.fake
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(bridge.CmdRestoreBackup, fullPath)
	if err := f.restoreErrs[fullPath]; err != nil {
		return err
	}
	if !f.backups[fullPath] {
		return errors.New("no backup for " + fullPath)
	}
	delete(f.backups, fullPath)
	return nil
}

func (s *session) CreateBackup(_ context.Context, fullPath string) error {
	f := s.fake
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(bridge.CmdCreateBackup, fullPath)
	f.backups[fullPath] = true
	return nil
}
