// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"time"

	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/interop"
)

// execContext carries what the application thread supplies to a step.
type execContext struct {
	cmd        Command
	looper     interop.Looper
	inputIdent int
}

// execStep runs with mu held.
type execStep func(s *SharedState, ctx execContext)

// preExecSteps apply state user code must observe before its callback runs.
var preExecSteps = map[Command]execStep{
	InputQueueChanged:  (*SharedState).applyPendingInputQueueUnsafe,
	InitWindow:         (*SharedState).applyPendingWindowUnsafe,
	Start:              (*SharedState).applyActivityStateUnsafe,
	Resume:             (*SharedState).applyActivityStateUnsafe,
	Pause:              (*SharedState).applyActivityStateUnsafe,
	Stop:               (*SharedState).applyActivityStateUnsafe,
	ConfigChanged:      (*SharedState).reloadConfigUnsafe,
	ContentRectChanged: (*SharedState).applyPendingContentRectUnsafe,
	WindowRedrawNeeded: (*SharedState).markRedrawNeededUnsafe,
	Destroy:            (*SharedState).markDestroyRequestedUnsafe,
}

// postExecSteps acknowledge transitions that must outlive user code's handling.
var postExecSteps = map[Command]execStep{
	TermWindow:         (*SharedState).clearWindowUnsafe,
	SaveState:          (*SharedState).markStateSavedUnsafe,
	Resume:             (*SharedState).discardSavedStateUnsafe,
	WindowRedrawNeeded: (*SharedState).clearRedrawNeededUnsafe,
}

// PreExec runs on the application thread after cmd was read and before user
// code handles it. looper and inputIdent are where a new input queue is attached.
func (s *SharedState) PreExec(cmd Command, looper interop.Looper, inputIdent int) {
	log.Tracef("Pre: AppCmd::%s", cmd)
	s.runStep(preExecSteps, execContext{cmd: cmd, looper: looper, inputIdent: inputIdent})
}

// PostExec runs on the application thread after user code handled cmd.
func (s *SharedState) PostExec(cmd Command) {
	log.Tracef("Post: AppCmd::%s", cmd)
	s.runStep(postExecSteps, execContext{cmd: cmd})
}

func (s *SharedState) runStep(steps map[Command]execStep, ctx execContext) {
	step, ok := steps[ctx.cmd]
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	step(s, ctx)
}

func (s *SharedState) applyPendingInputQueueUnsafe(ctx execContext) {
	if !s.inputQueueInFlight {
		log.Warn("InputQueueChanged without a pending input queue")
		return
	}
	s.detachInputQueueUnsafe()
	s.inputQueue = s.pendingInputQueue
	s.inputQueueInFlight = false
	if s.inputQueue != nil && ctx.looper != nil {
		s.attachInputQueueUnsafe(ctx.looper, ctx.inputIdent)
	}
	s.cond.Broadcast()
}

func (s *SharedState) applyPendingWindowUnsafe(execContext) {
	if !s.windowInFlight {
		log.Warn("InitWindow without a pending window")
		return
	}
	s.window = s.pendingWindow
	s.windowInFlight = false
	s.cond.Broadcast()
}

func (s *SharedState) clearWindowUnsafe(execContext) {
	s.window = nil
	if s.windowInFlight && s.pendingWindow == nil {
		s.windowInFlight = false
	}
	s.cond.Broadcast()
}

func (s *SharedState) applyActivityStateUnsafe(ctx execContext) {
	state, _ := activityStateFor(ctx.cmd)
	s.activityState = state
	s.stateLastModified = time.Now()
	s.cond.Broadcast()
}

func (s *SharedState) reloadConfigUnsafe(execContext) {
	c, err := s.configSource.Load()
	if err != nil {
		log.WithError(err).Error("Failed to reload configuration, keeping the previous one")
		return
	}
	s.config.Replace(c)
	log.Debugf("Config: %+v", c)
}

func (s *SharedState) applyPendingContentRectUnsafe(execContext) {
	s.contentRect = s.pendingContentRect
}

func (s *SharedState) markRedrawNeededUnsafe(execContext) {
	s.redrawNeeded = true
}

func (s *SharedState) clearRedrawNeededUnsafe(execContext) {
	s.redrawNeeded = false
}

func (s *SharedState) markDestroyRequestedUnsafe(execContext) {
	s.destroyRequested = true
}

func (s *SharedState) markStateSavedUnsafe(execContext) {
	s.stateSaved = true
	s.cond.Broadcast()
}

func (s *SharedState) discardSavedStateUnsafe(execContext) {
	s.freeSavedStateUnsafe()
}
