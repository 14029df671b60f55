// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package host implements the platform-facing entry points. Every callback runs
// on the host thread and blocks until the application thread acknowledged it.
package host

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/app"
	"go.nativeglue.io/glue/core"
	"go.nativeglue.io/glue/core/statejson"
	"go.nativeglue.io/glue/fatalerror"
	"go.nativeglue.io/glue/interop"
)

// ErrAppExited is returned by Create when the application goroutine ended
// before it reported running.
var ErrAppExited = errors.New("application exited before it started")

// MainFunc is the application entry point. It runs on its own locked OS thread
// and should return once App.DestroyRequested reports true.
type MainFunc func(a *app.App)

// Activity is the host-side view of one glue instance. It holds no strong
// reference; each callback resolves its token first.
type Activity struct {
	token    uuid.UUID
	registry *Registry
	watchdog *Watchdog
	done     chan struct{}
}

// Create builds the shared state, starts main on a new application goroutine
// and waits until it is ready to receive commands.
func (r *Registry) Create(token uuid.UUID, opts core.Options, main MainFunc) (*Activity, error) {
	h, err := core.NewSharedState(opts)
	if err != nil {
		return nil, err
	}

	a := &Activity{
		registry: r,
		watchdog: NewWatchdog(h.SharedState),
		done:     make(chan struct{}),
	}
	a.token = r.Register(token, h.Downgrade())
	state := h.SharedState

	// the application goroutine owns the only strong handle
	go a.runApp(h, main)

	if err := state.AwaitMainThreadRunning(); err != nil {
		r.Forget(a.token)
		<-a.done
		return nil, fmt.Errorf("%w: %w", ErrAppExited, err)
	}
	log.Debugf("Glue %s running", a.token)
	return a, nil
}

func (a *Activity) runApp(h *core.Handle, main MainFunc) {
	defer close(a.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var ap *app.App
	running := false
	defer func() {
		v := recover()
		var abort *fatalerror.Error
		if v != nil {
			errorType := fatalerror.AppCrash
			if fe, ok := v.(fatalerror.Error); ok {
				errorType = fe.Type
				if running {
					abort = &fe
				}
			}
			a.watchdog.AppExited(errorType, fmt.Errorf("application panicked: %v", v))
		} else if !h.DestroyRequested() {
			a.watchdog.AppExited(fatalerror.AppExit, errors.New("application main returned before Destroy"))
		}

		h.Teardown()
		if ap != nil {
			ap.Close()
		} else {
			h.Release()
		}

		// a glue abort after startup has no caller left to report to
		if abort != nil {
			panic(*abort)
		}
	}()

	var err error
	ap, err = app.New(h)
	if err != nil {
		fatalerror.Abort(fatalerror.LooperCreation, err)
	}
	h.NotifyMainThreadRunning()
	running = true
	main(ap)
}

func (a *Activity) Token() uuid.UUID {
	return a.token
}

// Wait blocks until the application goroutine has returned.
func (a *Activity) Wait() {
	<-a.done
}

// FatalError reports the first failure of the application goroutine.
func (a *Activity) FatalError() (fatalerror.Error, bool) {
	return a.watchdog.FirstFatalError()
}

func (a *Activity) withHandle(callback string, fn func(h *core.Handle)) bool {
	log.Debugf("%s", callback)
	h, ok := a.registry.Resolve(a.token)
	if !ok {
		log.Warnf("%s: glue %s already torn down", callback, a.token)
		return false
	}
	defer h.Release()
	fn(h)
	return true
}

func (a *Activity) OnStart() {
	a.withHandle("onStart", func(h *core.Handle) { h.SetActivityState(core.StateStart) })
}

func (a *Activity) OnResume() {
	a.withHandle("onResume", func(h *core.Handle) { h.SetActivityState(core.StateResume) })
}

func (a *Activity) OnPause() {
	a.withHandle("onPause", func(h *core.Handle) { h.SetActivityState(core.StatePause) })
}

func (a *Activity) OnStop() {
	a.withHandle("onStop", func(h *core.Handle) { h.SetActivityState(core.StateStop) })
}

// OnDestroy asks the application to finish and waits until the glue is torn
// down. The token is forgotten afterwards.
func (a *Activity) OnDestroy() {
	a.withHandle("onDestroy", func(h *core.Handle) { h.NotifyDestroyed() })
	a.registry.Forget(a.token)
}

// OnSaveInstanceState returns the state user code saved, or nil.
func (a *Activity) OnSaveInstanceState() []byte {
	var saved []byte
	a.withHandle("onSaveInstanceState", func(h *core.Handle) { saved = h.RequestSaveState() })
	return saved
}

func (a *Activity) OnConfigurationChanged() {
	a.withHandle("onConfigurationChanged", func(h *core.Handle) { h.NotifyConfigChanged() })
}

func (a *Activity) OnLowMemory() {
	a.withHandle("onLowMemory", func(h *core.Handle) { h.NotifyLowMemory() })
}

func (a *Activity) OnWindowFocusChanged(focused bool) {
	a.withHandle("onWindowFocusChanged", func(h *core.Handle) { h.NotifyFocusChanged(focused) })
}

func (a *Activity) OnNativeWindowCreated(w interop.Window) {
	a.withHandle("onNativeWindowCreated", func(h *core.Handle) { h.SetWindow(w) })
}

// OnNativeWindowDestroyed returns once the application no longer uses the window.
func (a *Activity) OnNativeWindowDestroyed(interop.Window) {
	a.withHandle("onNativeWindowDestroyed", func(h *core.Handle) { h.SetWindow(nil) })
}

func (a *Activity) OnNativeWindowResized(interop.Window) {
	a.withHandle("onNativeWindowResized", func(h *core.Handle) { h.NotifyWindowResized() })
}

func (a *Activity) OnNativeWindowRedrawNeeded(interop.Window) {
	a.withHandle("onNativeWindowRedrawNeeded", func(h *core.Handle) { h.NotifyWindowRedrawNeeded() })
}

func (a *Activity) OnContentRectChanged(rect interop.Rect) {
	a.withHandle("onContentRectChanged", func(h *core.Handle) { h.SetContentRect(rect) })
}

func (a *Activity) OnInputQueueCreated(q interop.InputQueue) {
	a.withHandle("onInputQueueCreated", func(h *core.Handle) { h.SetInputQueue(q) })
}

func (a *Activity) OnInputQueueDestroyed(interop.InputQueue) {
	a.withHandle("onInputQueueDestroyed", func(h *core.Handle) { h.SetInputQueue(nil) })
}

// Describe snapshots the shared state, or reports false once torn down.
func (a *Activity) Describe() (statejson.GlueDescription, bool) {
	var desc statejson.GlueDescription
	ok := a.withHandle("describe", func(h *core.Handle) { desc = h.Describe() })
	return desc, ok
}
