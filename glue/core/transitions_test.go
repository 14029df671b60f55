// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.nativeglue.io/glue/config"
	"go.nativeglue.io/glue/fatalerror"
	"go.nativeglue.io/glue/interop"
	"go.nativeglue.io/glue/invariant"
	"go.nativeglue.io/glue/testdata/mockresources"
)

func TestSetWindowFirstWindow(t *testing.T) {
	var seen interop.Window
	h, app := newTestGlue(t, Options{}, func(app *Handle, cmd Command) {
		if cmd == InitWindow {
			seen = app.Window()
		}
	})

	h.SetWindow(mockresources.MockWindow(1))
	app.waitForCommands(1)

	assert.Equal(t, []Command{InitWindow}, app.commands())
	assert.Equal(t, mockresources.MockWindow(1), h.Window())
	assert.Equal(t, mockresources.MockWindow(1), seen)
	assert.Nil(t, h.pendingWindow)
	assert.False(t, h.windowInFlight)
}

func TestSetWindowReplacesInOrder(t *testing.T) {
	var windowDuringTerm interop.Window
	h, app := newTestGlue(t, Options{}, func(app *Handle, cmd Command) {
		if cmd == TermWindow {
			windowDuringTerm = app.Window()
		}
	})

	h.SetWindow(mockresources.MockWindow(1))
	h.SetWindow(mockresources.MockWindow(2))
	app.waitForCommands(3)

	assert.Equal(t, []Command{InitWindow, TermWindow, InitWindow}, app.commands())
	assert.Equal(t, mockresources.MockWindow(2), h.Window())
	// the old window stays valid while user code handles its termination
	assert.Equal(t, mockresources.MockWindow(1), windowDuringTerm)
}

func TestSetWindowSameHandleAgain(t *testing.T) {
	h, app := newTestGlue(t, Options{}, nil)

	h.SetWindow(mockresources.MockWindow(7))
	h.SetWindow(mockresources.MockWindow(7))
	app.waitForCommands(3)

	assert.Equal(t, []Command{InitWindow, TermWindow, InitWindow}, app.commands())
	assert.Equal(t, mockresources.MockWindow(7), h.Window())
}

func TestSetWindowNil(t *testing.T) {
	h, app := newTestGlue(t, Options{}, nil)

	h.SetWindow(nil)
	assert.Empty(t, app.commands())

	h.SetWindow(mockresources.MockWindow(1))
	h.SetWindow(nil)
	app.waitForCommands(2)

	assert.Equal(t, []Command{InitWindow, TermWindow}, app.commands())
	assert.Nil(t, h.Window())
}

func TestSetWindowReentranceIsViolation(t *testing.T) {
	h, err := NewSharedState(Options{})
	require.NoError(t, err)
	defer h.channel.Close()

	h.windowInFlight = true
	assert.PanicsWithValue(t, invariant.ViolationError{Statement: "NativeWindow update clash"}, func() {
		h.SetWindow(mockresources.MockWindow(1))
	})
}

func TestSetInputQueueAttachesToLooper(t *testing.T) {
	h, app := newTestGlue(t, Options{}, nil)
	q1 := mockresources.NewMockInputQueue(10)
	q2 := mockresources.NewMockInputQueue(11)

	h.SetInputQueue(q1)
	assert.Equal(t, q1, h.InputQueue())
	attached, ident := q1.Attached()
	assert.True(t, attached)
	assert.Equal(t, testInputIdent, ident)

	h.SetInputQueue(q2)
	attached, _ = q1.Attached()
	assert.False(t, attached)
	attached, _ = q2.Attached()
	assert.True(t, attached)

	h.SetInputQueue(nil)
	assert.Nil(t, h.InputQueue())
	attached, _ = q2.Attached()
	assert.False(t, attached)

	app.waitForCommands(3)
	assert.Equal(t, []Command{InputQueueChanged, InputQueueChanged, InputQueueChanged}, app.commands())
	assert.False(t, h.inputQueueInFlight)
}

func TestSetInputQueueReentranceIsViolation(t *testing.T) {
	h, err := NewSharedState(Options{})
	require.NoError(t, err)
	defer h.channel.Close()

	m := invariant.NewMockViolationExecutor(t)
	prev := invariant.SetViolationExecutor(m)
	defer invariant.SetViolationExecutor(prev)

	m.On("Exec", invariant.ViolationError{Statement: "InputQueue update clash"}).
		Run(func(mock.Arguments) { panic("stop") }).Once()

	h.inputQueueInFlight = true
	assert.PanicsWithValue(t, "stop", func() {
		h.SetInputQueue(mockresources.NewMockInputQueue(1))
	})
}

func TestLooperAttachedInputQueue(t *testing.T) {
	h, _ := newTestGlue(t, Options{}, nil)
	looper := &mockresources.MockLooper{}

	assert.Nil(t, h.LooperAttachedInputQueue(looper, 5))

	q := mockresources.NewMockInputQueue(3)
	h.SetInputQueue(q)
	h.DetachInputQueueFromLooper()
	attached, _ := q.Attached()
	assert.False(t, attached)

	assert.Equal(t, q, h.LooperAttachedInputQueue(looper, 5))
	attached, ident := q.Attached()
	assert.True(t, attached)
	assert.Equal(t, 5, ident)
}

func TestSetActivityState(t *testing.T) {
	var observed []ActivityState
	h, app := newTestGlue(t, Options{}, func(app *Handle, cmd Command) {
		observed = append(observed, app.ActivityState())
	})

	assert.Equal(t, StateInit, h.ActivityState())
	for _, s := range []ActivityState{StateStart, StateResume, StatePause, StateStop} {
		h.SetActivityState(s)
		assert.Equal(t, s, h.ActivityState())
	}
	app.waitForCommands(4)

	assert.Equal(t, []Command{Start, Resume, Pause, Stop}, app.commands())
	// user code sees the new state already applied
	assert.Equal(t, []ActivityState{StateStart, StateResume, StatePause, StateStop}, observed)
}

func TestSetActivityStateInitIsViolation(t *testing.T) {
	h, err := NewSharedState(Options{})
	require.NoError(t, err)
	defer h.channel.Close()

	assert.Panics(t, func() { h.SetActivityState(StateInit) })
}

func TestRequestSaveStateTransfersOwnership(t *testing.T) {
	alloc := mockresources.NewCountingAllocator()
	h, app := newTestGlue(t, Options{Allocator: alloc}, func(app *Handle, cmd Command) {
		if cmd == SaveState {
			app.SetSavedState([]byte("level=3"))
		}
	})

	buf := h.RequestSaveState()
	assert.Equal(t, []byte("level=3"), buf)
	assert.Equal(t, []Command{SaveState}, app.commands())

	_, ok := h.SavedState()
	assert.False(t, ok)

	// the platform now owns buf and frees it
	alloc.Free(buf)
	allocs, frees, live, double := alloc.Stats()
	assert.Equal(t, 1, allocs)
	assert.Equal(t, 1, frees)
	assert.Zero(t, live)
	assert.Zero(t, double)
}

func TestRequestSaveStateWithNothingSaved(t *testing.T) {
	h, _ := newTestGlue(t, Options{}, nil)
	assert.Nil(t, h.RequestSaveState())
}

func TestSaveStateDiscardsStaleBufferBeforeCallback(t *testing.T) {
	alloc := mockresources.NewCountingAllocator()
	var staleSeen bool
	h, _ := newTestGlue(t, Options{Allocator: alloc, SavedState: []byte("old")}, func(app *Handle, cmd Command) {
		if cmd == SaveState {
			_, staleSeen = app.SavedState()
		}
	})

	assert.Nil(t, h.RequestSaveState())
	assert.False(t, staleSeen)

	allocs, frees, live, double := alloc.Stats()
	assert.Equal(t, 1, allocs)
	assert.Equal(t, 1, frees)
	assert.Zero(t, live)
	assert.Zero(t, double)
}

func TestSetSavedStateRoundTrip(t *testing.T) {
	alloc := mockresources.NewCountingAllocator()
	h, err := NewSharedState(Options{Allocator: alloc})
	require.NoError(t, err)
	defer h.channel.Close()

	h.SetSavedState([]byte{1, 2, 3})
	h.SetSavedState([]byte{4, 5})
	got, ok := h.SavedState()
	require.True(t, ok)
	assert.Equal(t, []byte{4, 5}, got)

	// returned bytes are a copy
	got[0] = 9
	again, _ := h.SavedState()
	assert.Equal(t, []byte{4, 5}, again)

	h.SetSavedState(nil)
	_, ok = h.SavedState()
	assert.False(t, ok)

	allocs, frees, live, _ := alloc.Stats()
	assert.Equal(t, 2, allocs)
	assert.Equal(t, 2, frees)
	assert.Zero(t, live)
}

func TestResumeDiscardsRestoredState(t *testing.T) {
	var restored []byte
	h, _ := newTestGlue(t, Options{SavedState: []byte("restored")}, func(app *Handle, cmd Command) {
		if cmd == Resume {
			restored, _ = app.SavedState()
		}
	})

	h.SetActivityState(StateResume)
	// Pause is applied only after user code finished handling Resume
	h.SetActivityState(StatePause)
	assert.Equal(t, []byte("restored"), restored)

	_, ok := h.SavedState()
	assert.False(t, ok)
}

func TestSavedStateAllocationFailureIsFatal(t *testing.T) {
	alloc := mockresources.NewCountingAllocator()
	h, err := NewSharedState(Options{Allocator: alloc})
	require.NoError(t, err)
	defer h.channel.Close()

	alloc.Fail = true
	defer func() {
		r := recover()
		ferr, ok := r.(fatalerror.Error)
		require.True(t, ok)
		assert.Equal(t, fatalerror.SavedStateAlloc, ferr.Type)
		assert.ErrorIs(t, ferr, interop.ErrAllocation)
	}()
	h.SetSavedState([]byte("x"))
}

func TestFireAndForgetNotifications(t *testing.T) {
	source := config.NewYAMLSource([]byte("density: 160\n"))
	var redrawDuringCallback bool
	h, app := newTestGlue(t, Options{ConfigSource: source}, func(app *Handle, cmd Command) {
		if cmd == WindowRedrawNeeded {
			redrawDuringCallback = app.RedrawNeeded()
		}
	})
	assert.Equal(t, int32(160), h.Config().Density)

	source.SetBlob([]byte("density: 480\n"))
	h.NotifyConfigChanged()
	h.NotifyLowMemory()
	h.NotifyFocusChanged(true)
	h.NotifyFocusChanged(false)
	h.NotifyWindowResized()
	h.NotifyWindowRedrawNeeded()
	h.SetContentRect(interop.Rect{Right: 10, Bottom: 20})

	h.SetActivityState(StateStart)
	app.waitForCommands(8)

	assert.Equal(t, []Command{
		ConfigChanged, LowMemory, GainedFocus, LostFocus, WindowResized,
		WindowRedrawNeeded, ContentRectChanged, Start,
	}, app.commands())
	assert.Equal(t, int32(480), h.Config().Density)
	assert.Equal(t, interop.Rect{Right: 10, Bottom: 20}, h.ContentRect())
	assert.True(t, redrawDuringCallback)
	assert.False(t, h.RedrawNeeded())
}

func TestConfigReloadFailureKeepsSnapshot(t *testing.T) {
	source := config.NewYAMLSource([]byte("density: 160\n"))
	h, _ := newTestGlue(t, Options{ConfigSource: source}, nil)

	source.SetBlob([]byte("density: [broken"))
	h.NotifyConfigChanged()
	h.SetActivityState(StateStart)

	assert.Equal(t, int32(160), h.Config().Density)
}

func TestUnknownCommandLeavesStateUnchanged(t *testing.T) {
	h, err := NewSharedState(Options{SavedState: []byte("keep")})
	require.NoError(t, err)
	defer h.channel.Close()

	before := h.Describe()
	require.NoError(t, h.channel.writeByte(99))

	_, ok := h.ReadCommand()
	assert.False(t, ok)
	assert.Equal(t, before, h.Describe())
}

func TestStartupGate(t *testing.T) {
	h, err := NewSharedState(Options{})
	require.NoError(t, err)
	defer h.channel.Close()

	cause := errors.New("app exited")
	h.CancelStartup(cause)
	assert.Equal(t, cause, h.AwaitMainThreadRunning())
}
