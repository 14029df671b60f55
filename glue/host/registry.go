// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"sync"

	"github.com/google/uuid"
	"go.nativeglue.io/glue/core"
)

// Registry maps the opaque tokens handed to the platform onto weak handles, so
// a late platform callback can never keep a torn down glue alive.
type Registry struct {
	mu      sync.RWMutex
	handles map[uuid.UUID]*core.WeakHandle
}

func NewRegistry() *Registry {
	return &Registry{handles: map[uuid.UUID]*core.WeakHandle{}}
}

// Register stores w under token. A nil token is replaced with a fresh one.
func (r *Registry) Register(token uuid.UUID, w *core.WeakHandle) uuid.UUID {
	if token == uuid.Nil {
		token = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[token] = w
	return token
}

// Resolve upgrades the handle registered under token. The caller must release
// the returned handle.
func (r *Registry) Resolve(token uuid.UUID) (*core.Handle, bool) {
	r.mu.RLock()
	w, ok := r.handles[token]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return w.Upgrade()
}

func (r *Registry) Forget(token uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, token)
}

// Len ...
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
