// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.nativeglue.io/glue/interop"
	"go.nativeglue.io/glue/testdata/mockresources"
)

const testInputIdent = 2

// testApp drives the application side of a SharedState: read, pre-apply,
// callback, post-apply, until Destroy.
type testApp struct {
	handle *Handle
	looper interop.Looper

	mu      sync.Mutex
	handled *sync.Cond
	cmds    []Command
	onCmd   func(app *Handle, cmd Command)
	stopped chan struct{}
}

func (a *testApp) commands() []Command {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Command(nil), a.cmds...)
}

// waitForCommands blocks until user code has finished handling n commands.
func (a *testApp) waitForCommands(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for len(a.cmds) < n {
		a.handled.Wait()
	}
}

func (a *testApp) run() {
	defer close(a.stopped)
	defer a.handle.Release()
	for {
		cmd, ok := a.handle.ReadCommand()
		if !ok {
			continue
		}
		a.handle.PreExec(cmd, a.looper, testInputIdent)

		if a.onCmd != nil {
			a.onCmd(a.handle, cmd)
		}
		a.mu.Lock()
		a.cmds = append(a.cmds, cmd)
		a.handled.Broadcast()
		a.mu.Unlock()

		a.handle.PostExec(cmd)
		if cmd == Destroy {
			a.handle.Teardown()
			return
		}
	}
}

func newTestApp(h *Handle, onCmd func(app *Handle, cmd Command)) *testApp {
	app := &testApp{
		handle:  h.Clone(),
		looper:  &mockresources.MockLooper{},
		onCmd:   onCmd,
		stopped: make(chan struct{}),
	}
	app.handled = sync.NewCond(&app.mu)
	return app
}

// newTestGlue returns the host-side handle and a running application. The
// application is destroyed when the test ends.
func newTestGlue(t *testing.T, opts Options, onCmd func(app *Handle, cmd Command)) (*Handle, *testApp) {
	h, err := NewSharedState(opts)
	require.NoError(t, err)

	app := newTestApp(h, onCmd)
	go app.run()
	app.handle.NotifyMainThreadRunning()
	require.NoError(t, h.AwaitMainThreadRunning())

	t.Cleanup(func() {
		h.NotifyDestroyed()
		<-app.stopped
		h.Release()
	})
	return h, app
}
