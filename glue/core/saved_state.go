// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"go.nativeglue.io/glue/fatalerror"
)

// The saved-state buffer has exactly one owner at a time: this container, the
// host caller of RequestSaveState, or the platform it hands the buffer to.
// Buffers come from the platform allocator because the platform may free them.

// SavedState returns a copy of the stored saved state.
func (s *SharedState) SavedState() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.savedState) == 0 {
		return nil, false
	}
	return append([]byte(nil), s.savedState...), true
}

// SetSavedState replaces the stored saved state with a copy of state. An empty
// state only clears it.
func (s *SharedState) SetSavedState(state []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freeSavedStateUnsafe()
	if len(state) > 0 {
		s.storeSavedStateUnsafe(state)
	}
}

func (s *SharedState) storeSavedStateUnsafe(state []byte) {
	buf, err := s.allocator.Alloc(len(state))
	if err != nil {
		fatalerror.Abort(fatalerror.SavedStateAlloc, err)
	}
	copy(buf, state)
	s.savedState = buf[:len(state)]
}

func (s *SharedState) freeSavedStateUnsafe() {
	if s.savedState != nil {
		s.allocator.Free(s.savedState)
		s.savedState = nil
	}
}
