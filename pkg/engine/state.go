package engine

import "maps"

// WorkingState is the mode of the apply workflow.
type WorkingState string

const (
	StateIdle    WorkingState = "idle"
	StateWorking WorkingState = "working"
	StateDone    WorkingState = "done"
	StateError   WorkingState = "error"
)

// Progress counts archives processed in the current run.
type Progress struct {
	Current int
	Max     int
}

// PatchState is what is known about one archive on disk.
type PatchState struct {
	HasBackup bool
}

// Snapshot is a copy of the engine state handed to listeners.
type Snapshot struct {
	State       WorkingState
	Progress    Progress
	PatchStates map[string]PatchState
	// Failed lists the archives whose commit failed in the last run.
	Failed []string
}

// HasPendingBackups reports whether any archive has a restorable backup.
func (s Snapshot) HasPendingBackups() bool {
	for _, st := range s.PatchStates {
		if st.HasBackup {
			return true
		}
	}
	return false
}

func (s Snapshot) clone() Snapshot {
	s.PatchStates = maps.Clone(s.PatchStates)
	s.Failed = append([]string(nil), s.Failed...)
	return s
}
