// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"go.nativeglue.io/glue/core"
)

// Event is delivered to the PollEvents callback. It is one of InputAvailable,
// MainEvent, Resume, SaveState, UserFd, Wake or Timeout.
type Event interface {
	event()
}

// InputAvailable reports that the input queue has events. The queue is detached
// from the looper until InputQueue is called again.
type InputAvailable struct{}

// MainEvent carries a lifecycle command from the host thread.
type MainEvent struct {
	Command core.Command
}

// Resume is delivered instead of a MainEvent for core.Resume. Loader exposes
// the saved state, which is discarded once the callback returns.
type Resume struct {
	Loader StateLoader
}

// SaveState is delivered instead of a MainEvent for core.SaveState. State
// stored through Saver is handed to the host once the callback returns.
type SaveState struct {
	Saver StateSaver
}

// UserFd reports readiness of a descriptor registered with App.AddFd.
type UserFd struct {
	Ident int
}

// Wake reports that App.Wake was called.
type Wake struct{}

// Timeout reports that nothing became ready before the poll timeout.
type Timeout struct{}

func (InputAvailable) event() {}
func (MainEvent) event()      {}
func (Resume) event()         {}
func (SaveState) event()      {}
func (UserFd) event()         {}
func (Wake) event()           {}
func (Timeout) event()        {}

// StateSaver stores the state the host will receive from a save request.
type StateSaver struct {
	state *core.SharedState
}

// Store replaces the saved state with a copy of b.
func (s StateSaver) Store(b []byte) {
	s.state.SetSavedState(b)
}

// StateLoader reads the state the activity was restored with.
type StateLoader struct {
	state *core.SharedState
}

// Load returns a copy of the saved state, or false if there is none.
func (l StateLoader) Load() ([]byte, bool) {
	return l.state.SavedState()
}

func eventFor(cmd core.Command, state *core.SharedState) Event {
	switch cmd {
	case core.Resume:
		return Resume{Loader: StateLoader{state: state}}
	case core.SaveState:
		return SaveState{Saver: StateSaver{state: state}}
	default:
		return MainEvent{Command: cmd}
	}
}
