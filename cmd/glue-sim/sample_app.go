// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/app"
	"go.nativeglue.io/glue/core"
)

// counterApp counts the events it handles and carries the count across
// activity instances through the saved state.
type counterApp struct {
	mu      sync.Mutex
	count   int
	history []string
}

func (c *counterApp) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// History lists every event handled, in order, across instances.
func (c *counterApp) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.history...)
}

func (c *counterApp) record(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	c.history = append(c.history, name)
	log.WithField("count", c.count).Infof("Event %s", name)
}

// Main starts every instance from zero; only the saved state carries the count.
func (c *counterApp) Main(a *app.App) {
	c.mu.Lock()
	c.count = 0
	c.mu.Unlock()

	for !a.DestroyRequested() {
		if err := a.PollEvents(-1, func(e app.Event) { c.handle(a, e) }); err != nil {
			log.WithError(err).Error("Poll failed")
			return
		}
	}
}

func (c *counterApp) handle(a *app.App, e app.Event) {
	switch ev := e.(type) {
	case app.MainEvent:
		c.record(ev.Command.String())
		c.onMainEvent(a, ev.Command)
	case app.Resume:
		c.restore(ev.Loader)
		c.record(core.Resume.String())
	case app.SaveState:
		c.record(core.SaveState.String())
		c.mu.Lock()
		ev.Saver.Store([]byte(strconv.Itoa(c.count)))
		c.mu.Unlock()
	case app.InputAvailable:
		if q, ok := a.InputQueue().(*simInputQueue); ok {
			n := q.drain()
			log.Debugf("Drained %d input events", n)
		}
		c.record("InputAvailable")
	case app.Wake, app.Timeout, app.UserFd:
	}
}

func (c *counterApp) onMainEvent(a *app.App, cmd core.Command) {
	switch cmd {
	case core.InitWindow:
		if w := a.NativeWindow(); w != nil {
			log.Infof("Rendering to window 0x%x", w.Handle())
		}
	case core.ConfigChanged:
		log.Infof("Locale is now %s", a.Config().Locale())
	case core.ContentRectChanged:
		log.Infof("Content rect is now %s", a.ContentRect())
	}
}

func (c *counterApp) restore(loader app.StateLoader) {
	saved, ok := loader.Load()
	if !ok {
		return
	}
	n, err := strconv.Atoi(string(saved))
	if err != nil {
		log.WithError(err).Warn("Ignoring unreadable saved state")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > c.count {
		c.count = n
	}
	log.WithField("count", n).Info("Restored counter")
}
