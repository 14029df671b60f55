// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package app is the application-thread side of the glue: it polls the command
// channel, applies state around user callbacks and exposes the current state.
package app

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/config"
	"go.nativeglue.io/glue/core"
	"go.nativeglue.io/glue/interop"
	"go.nativeglue.io/glue/looper"
)

// App belongs to the application thread. Only Wake may be called from other
// threads.
type App struct {
	handle *core.Handle
	looper *looper.Looper

	mu        sync.Mutex
	nextIdent int
	closed    bool
}

// New takes ownership of handle and registers its command channel with a new
// looper.
func New(handle *core.Handle) (*App, error) {
	l, err := looper.New()
	if err != nil {
		return nil, err
	}
	if err := l.AddFd(handle.CommandReadFd(), looper.IdentMain); err != nil {
		l.Close()
		return nil, fmt.Errorf("could not register command channel: %w", err)
	}
	return &App{handle: handle, looper: l, nextIdent: looper.IdentUser}, nil
}

// PollEvents waits up to timeout for one round of readiness and delivers an
// Event per ready source. A negative timeout waits forever.
func (a *App) PollEvents(timeout time.Duration, callback func(Event)) error {
	ready, err := a.looper.PollOnce(timeout)
	if err != nil {
		return err
	}
	if len(ready) == 0 {
		callback(Timeout{})
		return nil
	}
	for _, ident := range ready {
		switch {
		case ident == looper.IdentMain:
			a.handleCommand(callback)
		case ident == looper.IdentInput:
			// re-attached by InputQueue
			a.handle.DetachInputQueueFromLooper()
			callback(InputAvailable{})
		case ident == looper.IdentWake:
			callback(Wake{})
		default:
			callback(UserFd{Ident: ident})
		}
	}
	return nil
}

func (a *App) handleCommand(callback func(Event)) {
	cmd, ok := a.handle.ReadCommand()
	if !ok {
		return
	}
	a.handle.PreExec(cmd, a.looper, looper.IdentInput)
	callback(eventFor(cmd, a.handle.SharedState))
	a.handle.PostExec(cmd)
}

// NativeWindow returns the current window, or nil.
func (a *App) NativeWindow() interop.Window {
	return a.handle.Window()
}

// InputQueue returns the current input queue after re-attaching it to this
// app's looper, or nil.
func (a *App) InputQueue() interop.InputQueue {
	return a.handle.LooperAttachedInputQueue(a.looper, looper.IdentInput)
}

func (a *App) Config() *config.Configuration {
	return a.handle.Config()
}

func (a *App) ContentRect() interop.Rect {
	return a.handle.ContentRect()
}

func (a *App) SavedState() ([]byte, bool) {
	return a.handle.SavedState()
}

func (a *App) DestroyRequested() bool {
	return a.handle.DestroyRequested()
}

func (a *App) ActivityState() core.ActivityState {
	return a.handle.ActivityState()
}

// Wake interrupts a blocking PollEvents.
func (a *App) Wake() {
	a.looper.Wake()
}

// AddFd registers fd with the looper and returns the ident UserFd events will
// carry for it.
func (a *App) AddFd(fd int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ident := a.nextIdent
	if err := a.looper.AddFd(fd, ident); err != nil {
		return 0, err
	}
	a.nextIdent++
	return ident, nil
}

func (a *App) RemoveFd(fd int) error {
	return a.looper.RemoveFd(fd)
}

// Handle gives access to the underlying shared state.
func (a *App) Handle() *core.Handle {
	return a.handle
}

// Close detaches the input queue, closes the looper and releases the app's
// handle.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	a.handle.DetachInputQueueFromLooper()
	if err := a.looper.Close(); err != nil {
		log.WithError(err).Warn("Failed to close looper")
	}
	a.handle.Release()
}
