// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/interop"
	"go.nativeglue.io/glue/invariant"
	"go.nativeglue.io/glue/metering"
)

// Host thread operations. None of the blocking ones time out: a stalled
// application thread stalls the host callback that called them.

// SetWindow hands w to the application thread, or takes the current window away
// when w is nil. It returns once the application has applied the change or the
// container was torn down. A
// current window is always terminated first, and the host must not reclaim it
// before this call returns.
func (s *SharedState) SetWindow(w interop.Window) {
	start := metering.Monotime()
	s.mu.Lock()
	defer s.mu.Unlock()

	invariant.Check(!s.windowInFlight, "NativeWindow update clash")

	hadWindow := s.window != nil
	if !hadWindow && w == nil {
		return
	}

	s.windowInFlight = true
	s.pendingWindow = w
	if hadWindow {
		s.writeCommandUnsafe(TermWindow)
	}
	if w != nil {
		s.writeCommandUnsafe(InitWindow)
	}
	for s.windowInFlight && !s.destroyed {
		s.cond.Wait()
	}
	s.windowInFlight = false
	s.pendingWindow = nil
	s.metrics.ObserveRendezvous("SetWindow", start)
}

// SetInputQueue hands q to the application thread, or detaches the current
// queue when q is nil, and waits until the application has applied it.
func (s *SharedState) SetInputQueue(q interop.InputQueue) {
	start := metering.Monotime()
	s.mu.Lock()
	defer s.mu.Unlock()

	invariant.Check(!s.inputQueueInFlight, "InputQueue update clash")

	s.inputQueueInFlight = true
	s.pendingInputQueue = q
	s.writeCommandUnsafe(InputQueueChanged)
	for s.inputQueueInFlight && !s.destroyed {
		s.cond.Wait()
	}
	s.inputQueueInFlight = false
	s.pendingInputQueue = nil
	s.metrics.ObserveRendezvous("SetInputQueue", start)
}

// SetActivityState moves the application into state and waits until it has
// observed it. StateInit is not a valid target.
func (s *SharedState) SetActivityState(state ActivityState) {
	cmd, ok := state.Command()
	if !ok {
		invariant.Violatef("Can't explicitly transition into '%s' state", state)
		return
	}

	start := metering.Monotime()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeCommandUnsafe(cmd)
	for s.activityState != state && !s.destroyed {
		s.cond.Wait()
	}
	s.metrics.ObserveRendezvous("SetActivityState", start)
}

// RequestSaveState asks user code to save its state and takes ownership of the
// result. The returned buffer came from the configured Allocator and is nil when
// nothing was saved.
func (s *SharedState) RequestSaveState() []byte {
	start := metering.Monotime()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stateSaved = false
	s.writeCommandUnsafe(SaveState)
	for !s.stateSaved && !s.destroyed {
		s.cond.Wait()
	}

	buf := s.savedState
	s.savedState = nil
	s.metrics.ObserveRendezvous("RequestSaveState", start)
	if len(buf) == 0 {
		return nil
	}
	return buf
}

// NotifyDestroyed tells the application to finish, waits until the container has
// been torn down and closes the channel. Later calls only log.
func (s *SharedState) NotifyDestroyed() {
	start := metering.Monotime()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel.Closed() {
		log.Warn("NotifyDestroyed called after the glue was already torn down")
		return
	}

	s.writeCommandUnsafe(Destroy)
	for !s.destroyed {
		s.cond.Wait()
	}

	if err := s.channel.Close(); err != nil {
		log.WithError(err).Warn("Failed to close glue command channel")
	}
	s.metrics.ObserveRendezvous("NotifyDestroyed", start)
}

func (s *SharedState) NotifyConfigChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCommandUnsafe(ConfigChanged)
}

func (s *SharedState) NotifyLowMemory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCommandUnsafe(LowMemory)
}

func (s *SharedState) NotifyFocusChanged(focused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if focused {
		s.writeCommandUnsafe(GainedFocus)
	} else {
		s.writeCommandUnsafe(LostFocus)
	}
}

func (s *SharedState) NotifyWindowResized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCommandUnsafe(WindowResized)
}

func (s *SharedState) NotifyWindowRedrawNeeded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCommandUnsafe(WindowRedrawNeeded)
}

// SetContentRect publishes rect and notifies the application. The last rect
// published before the application reads the command wins.
func (s *SharedState) SetContentRect(rect interop.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingContentRect = rect
	s.writeCommandUnsafe(ContentRectChanged)
}
