package sync

import (
	stdsync "sync"
)

// ProgressState is the observable state of one project's full download.
// The zero value means "nothing ever ran".
type ProgressState struct {
	IsLoading bool
	Progress  float64
	HasError  bool
}

// Tracker holds per-project download progress. It is written only by the
// engine during DownloadAll and read by any number of observers. State is
// not persisted: an interrupted download is not resumable, a fresh
// DownloadAll must be issued after a restart.
type Tracker struct {
	mu     stdsync.RWMutex
	states map[int]ProgressState
	subs   []func(projectID int, state ProgressState)
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[int]ProgressState)}
}

// State returns the current progress for a project.
func (t *Tracker) State(projectID int) ProgressState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[projectID]
}

// Subscribe registers fn to run after every state change. Callbacks run on
// the engine's goroutine and must not block.
func (t *Tracker) Subscribe(fn func(projectID int, state ProgressState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

func (t *Tracker) update(projectID int, mutate func(*ProgressState)) {
	t.mu.Lock()
	st := t.states[projectID]
	mutate(&st)
	t.states[projectID] = st
	subs := t.subs
	t.mu.Unlock()

	for _, fn := range subs {
		fn(projectID, st)
	}
}

// begin resets a project to a fresh in-flight run.
func (t *Tracker) begin(projectID int) {
	t.update(projectID, func(st *ProgressState) {
		*st = ProgressState{IsLoading: true}
	})
}

// setProgress advances the progress fraction. Progress never moves
// backwards within a run.
func (t *Tracker) setProgress(projectID int, p float64) {
	t.update(projectID, func(st *ProgressState) {
		if p > st.Progress {
			st.Progress = p
		}
	})
}

// finish ends the run exactly once, recording whether it failed.
func (t *Tracker) finish(projectID int, failed bool) {
	t.update(projectID, func(st *ProgressState) {
		st.IsLoading = false
		st.HasError = failed
	})
}
