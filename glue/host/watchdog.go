// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"sync"

	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/fatalerror"
)

// StartupCanceler is the part of the shared state the watchdog needs.
type StartupCanceler interface {
	CancelStartup(err error)
}

// Watchdog watches the application goroutine and releases a host thread still
// waiting for it to start.
type Watchdog struct {
	cancelOnce sync.Once
	startup    StartupCanceler

	mu         sync.Mutex
	firstFatal *fatalerror.Error
}

func NewWatchdog(startup StartupCanceler) *Watchdog {
	return &Watchdog{startup: startup}
}

// AppExited records why the application goroutine ended and cancels the
// startup gate with err.
func (w *Watchdog) AppExited(errorType fatalerror.ErrorType, err error) {
	w.storeFirstFatalError(errorType, err)
	log.Warnf("Application exited: %s", err)
	w.CancelStartup(err)
}

// CancelStartup cancels the startup gate with err. Only the first call counts.
func (w *Watchdog) CancelStartup(err error) {
	w.cancelOnce.Do(func() {
		log.Debugf("Canceling startup: %s", err)
		w.startup.CancelStartup(err)
	})
}

func (w *Watchdog) storeFirstFatalError(errorType fatalerror.ErrorType, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.firstFatal == nil {
		w.firstFatal = &fatalerror.Error{Type: errorType, Err: err}
	}
}

// FirstFatalError returns the first recorded failure.
func (w *Watchdog) FirstFatalError() (fatalerror.Error, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.firstFatal == nil {
		return fatalerror.Error{}, false
	}
	return *w.firstFatal, true
}
