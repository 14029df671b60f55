// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/config"
	"go.nativeglue.io/glue/core/statejson"
	"go.nativeglue.io/glue/fatalerror"
	"go.nativeglue.io/glue/interop"
	"go.nativeglue.io/glue/metering"
)

// Options configure a new SharedState.
type Options struct {
	// SavedState is the state the platform restored the activity with, if any.
	// It is copied into a buffer obtained from Allocator.
	SavedState []byte
	// ConfigSource is consulted at construction and on every ConfigChanged.
	ConfigSource config.Source
	// Allocator owns saved-state buffers. Defaults to interop.HeapAllocator.
	Allocator interop.Allocator
	Metrics   *metering.Metrics
}

// SharedState is the record both threads see. Every field is guarded by mu and
// cond only ever waits on mu.
type SharedState struct {
	mu   sync.Mutex
	cond *sync.Cond

	refs atomic.Int64

	channel      *Channel
	config       *config.Ref
	configSource config.Source
	allocator    interop.Allocator
	metrics      *metering.Metrics
	startupGate  Gate

	savedState []byte

	inputQueue         interop.InputQueue
	pendingInputQueue  interop.InputQueue
	inputQueueInFlight bool

	window         interop.Window
	pendingWindow  interop.Window
	windowInFlight bool

	contentRect        interop.Rect
	pendingContentRect interop.Rect

	activityState     ActivityState
	stateLastModified time.Time

	destroyRequested bool
	running          bool
	stateSaved       bool
	destroyed        bool
	redrawNeeded     bool
}

// NewSharedState creates the container and returns the first strong handle to it.
func NewSharedState(opts Options) (*Handle, error) {
	channel, err := NewChannel(opts.Metrics)
	if err != nil {
		return nil, fatalerror.Error{Type: fatalerror.PipeCreation, Err: err}
	}

	if opts.ConfigSource == nil {
		opts.ConfigSource = &config.StaticSource{}
	}
	if opts.Allocator == nil {
		opts.Allocator = &interop.HeapAllocator{}
	}

	initial, err := opts.ConfigSource.Load()
	if err != nil {
		log.WithError(err).Warn("Failed to load initial configuration")
	}
	log.Debugf("Config: %+v", initial)

	s := &SharedState{
		channel:           channel,
		config:            config.NewRef(initial),
		configSource:      opts.ConfigSource,
		allocator:         opts.Allocator,
		metrics:           opts.Metrics,
		startupGate:       NewGate(1),
		activityState:     StateInit,
		stateLastModified: time.Now(),
	}
	s.cond = sync.NewCond(&s.mu)

	if len(opts.SavedState) > 0 {
		s.storeSavedStateUnsafe(opts.SavedState)
	}

	s.refs.Store(1)
	return &Handle{SharedState: s}, nil
}

// CommandReadFd is the descriptor the application thread polls for commands.
func (s *SharedState) CommandReadFd() int {
	return s.channel.ReadFd()
}

// ReadCommand dequeues a single command sent by the host thread. The pipe read
// happens outside the mutex; the host published the matching value before it
// wrote the byte.
func (s *SharedState) ReadCommand() (Command, bool) {
	cmd, ok := s.channel.ReadCommand()
	if !ok {
		return 0, false
	}
	if cmd == SaveState {
		s.mu.Lock()
		s.freeSavedStateUnsafe()
		s.mu.Unlock()
	}
	return cmd, true
}

// writeCommandUnsafe must be called with mu held so the published value is
// visible before the wakeup.
func (s *SharedState) writeCommandUnsafe(cmd Command) {
	s.channel.WriteCommand(cmd)
}

// Window returns the window the application thread currently owns.
func (s *SharedState) Window() interop.Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// InputQueue returns the current input queue without touching its looper
// attachment.
func (s *SharedState) InputQueue() interop.InputQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputQueue
}

// LooperAttachedInputQueue re-attaches the current input queue to looper under
// ident and returns it, or nil when there is no queue.
func (s *SharedState) LooperAttachedInputQueue(looper interop.Looper, ident int) interop.InputQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inputQueue == nil {
		return nil
	}
	s.attachInputQueueUnsafe(looper, ident)
	return s.inputQueue
}

// DetachInputQueueFromLooper stops the current input queue waking the looper
// until it is attached again.
func (s *SharedState) DetachInputQueueFromLooper() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachInputQueueUnsafe()
}

func (s *SharedState) attachInputQueueUnsafe(looper interop.Looper, ident int) {
	if s.inputQueue != nil {
		log.Trace("Attaching input queue to looper")
		s.inputQueue.AttachLooper(looper, ident)
	}
}

func (s *SharedState) detachInputQueueUnsafe() {
	if s.inputQueue != nil {
		log.Trace("Detaching input queue from looper")
		s.inputQueue.DetachLooper()
	}
}

// Config returns the current configuration snapshot.
func (s *SharedState) Config() *config.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Load()
}

func (s *SharedState) ContentRect() interop.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contentRect
}

func (s *SharedState) ActivityState() ActivityState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activityState
}

func (s *SharedState) DestroyRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyRequested
}

func (s *SharedState) RedrawNeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redrawNeeded
}

func (s *SharedState) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// NotifyMainThreadRunning is called by the application thread once it is ready
// to receive commands.
func (s *SharedState) NotifyMainThreadRunning() {
	s.mu.Lock()
	s.running = true
	s.cond.Broadcast()
	s.mu.Unlock()

	if err := s.startupGate.WalkThrough(); err != nil {
		log.WithError(err).Warn("Main thread reported running twice")
	}
}

// AwaitMainThreadRunning blocks the host thread until NotifyMainThreadRunning,
// or until the startup is canceled.
func (s *SharedState) AwaitMainThreadRunning() error {
	return s.startupGate.AwaitGateCondition()
}

// CancelStartup releases a host thread blocked in AwaitMainThreadRunning.
func (s *SharedState) CancelStartup(err error) {
	s.startupGate.CancelWithError(err)
}

// Describe returns a snapshot of the shared state for debugging.
func (s *SharedState) Describe() statejson.GlueDescription {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc := statejson.GlueDescription{
		ActivityState: statejson.StateDescription{
			Name:         s.activityState.String(),
			LastModified: s.stateLastModified.UnixNano() / int64(time.Millisecond),
		},
		ContentRect:      s.contentRect,
		SavedStateSize:   len(s.savedState),
		DestroyRequested: s.destroyRequested,
		Running:          s.running,
		StateSaved:       s.stateSaved,
		Destroyed:        s.destroyed,
		RedrawNeeded:     s.redrawNeeded,
		ChannelClosed:    s.channel.Closed(),
		Config:           s.config.Load(),
	}
	if s.window != nil {
		desc.Window = statejson.NewResourceDescription(s.window.Handle())
	}
	if s.inputQueue != nil {
		desc.InputQueue = statejson.NewResourceDescription(s.inputQueue.Handle())
	}
	if s.windowInFlight {
		desc.PendingTransitions = append(desc.PendingTransitions, "window")
	}
	if s.inputQueueInFlight {
		desc.PendingTransitions = append(desc.PendingTransitions, "inputQueue")
	}
	return desc
}
