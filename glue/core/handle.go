// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/invariant"
)

// Handle is a strong reference to a SharedState. Each holder releases its own
// handle exactly once; the last release tears the container down.
type Handle struct {
	*SharedState
	released atomic.Bool
}

// Clone returns a new strong handle to the same container.
func (h *Handle) Clone() *Handle {
	invariant.Check(!h.released.Load(), "Clone of a released glue handle")
	h.refs.Add(1)
	return &Handle{SharedState: h.SharedState}
}

// Downgrade returns a weak handle that does not keep the container alive.
func (h *Handle) Downgrade() *WeakHandle {
	return &WeakHandle{state: h.SharedState}
}

// Release drops this strong reference. Releasing twice is a no-op. The last
// release tears the container down and closes the command channel.
func (h *Handle) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	if h.refs.Add(-1) == 0 {
		log.Debug("Last glue handle released")
		h.Teardown()
		// nobody is left to call NotifyDestroyed
		if err := h.channel.Close(); err != nil && err != ErrChannelClosed {
			log.WithError(err).Warn("Failed to close glue command channel")
		}
	}
}

// WeakHandle refers to a SharedState without owning it.
type WeakHandle struct {
	state *SharedState
}

// Upgrade returns a strong handle, or false once every strong handle has been
// released. Callers must treat false as "already torn down".
func (w *WeakHandle) Upgrade() (*Handle, bool) {
	if w == nil || w.state == nil {
		return nil, false
	}
	for {
		n := w.state.refs.Load()
		if n <= 0 {
			return nil, false
		}
		if w.state.refs.CompareAndSwap(n, n+1) {
			return &Handle{SharedState: w.state}, true
		}
	}
}

// Teardown releases resources still owned by the container and marks it
// destroyed, waking a host thread blocked in NotifyDestroyed. It runs when the
// application finishes or when the last strong handle is released, whichever
// comes first; later calls do nothing.
func (s *SharedState) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	log.Debug("Tearing down glue shared state")
	s.freeSavedStateUnsafe()
	s.detachInputQueueUnsafe()
	s.destroyed = true
	s.cond.Broadcast()
}
