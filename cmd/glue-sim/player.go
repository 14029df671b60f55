// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/config"
	"go.nativeglue.io/glue/core"
	"go.nativeglue.io/glue/core/statejson"
	"go.nativeglue.io/glue/host"
)

var errNoActivity = errors.New("no live activity")

// Player acts as the platform: it owns the windows and input queues and plays
// script steps as host callbacks.
type Player struct {
	registry     *host.Registry
	opts         core.Options
	configSource *config.YAMLSource
	main         host.MainFunc

	mu       sync.Mutex
	activity *host.Activity
	input    *simInputQueue
	saved    []byte
}

// NewPlayer ... opts.ConfigSource is replaced by configSource.
func NewPlayer(registry *host.Registry, opts core.Options, configSource *config.YAMLSource, main host.MainFunc) *Player {
	opts.ConfigSource = configSource
	return &Player{
		registry:     registry,
		opts:         opts,
		configSource: configSource,
		main:         main,
	}
}

// Start creates the first activity.
func (p *Player) Start() error {
	return p.create(p.opts.SavedState)
}

func (p *Player) create(saved []byte) error {
	opts := p.opts
	opts.SavedState = saved
	act, err := p.registry.Create(uuid.Nil, opts, p.main)
	if err != nil {
		return err
	}
	log.WithField("token", act.Token()).Info("Activity created")

	p.mu.Lock()
	p.activity = act
	p.mu.Unlock()
	return nil
}

func (p *Player) current() (*host.Activity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.activity == nil {
		return nil, errNoActivity
	}
	return p.activity, nil
}

// Saved returns the state returned by the last save-state step.
func (p *Player) Saved() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.saved...)
}

// Describe snapshots the current activity.
func (p *Player) Describe() (statejson.GlueDescription, bool) {
	act, err := p.current()
	if err != nil {
		return statejson.GlueDescription{}, false
	}
	return act.Describe()
}

// Play runs every step of script in order, stopping early when ctx is done.
func (p *Player) Play(ctx context.Context, script *Script) error {
	for i, step := range script.Steps {
		if step.Pause > 0 {
			select {
			case <-time.After(step.Pause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Debugf("Step %d: %s", i, step.Action)
		if err := p.play(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}
	}
	return nil
}

func (p *Player) play(step Step) error {
	if step.Action == ActionRecreate {
		return p.recreate()
	}

	act, err := p.current()
	if err != nil {
		return err
	}

	switch step.Action {
	case ActionWindowCreated:
		act.OnNativeWindowCreated(simWindow(step.Window))
	case ActionWindowDestroyed:
		act.OnNativeWindowDestroyed(nil)
	case ActionWindowResized:
		act.OnNativeWindowResized(nil)
	case ActionRedrawNeeded:
		act.OnNativeWindowRedrawNeeded(nil)
	case ActionInputCreated:
		return p.createInput(act)
	case ActionInputDestroyed:
		p.destroyInput(act)
	case ActionInput:
		return p.pushInput()
	case ActionStart:
		act.OnStart()
	case ActionResume:
		act.OnResume()
	case ActionPause:
		act.OnPause()
	case ActionStop:
		act.OnStop()
	case ActionFocus:
		act.OnWindowFocusChanged(true)
	case ActionBlur:
		act.OnWindowFocusChanged(false)
	case ActionConfigChanged:
		if step.Config != nil {
			blob, err := yaml.Marshal(step.Config)
			if err != nil {
				return err
			}
			p.configSource.SetBlob(blob)
		}
		act.OnConfigurationChanged()
	case ActionLowMemory:
		act.OnLowMemory()
	case ActionContentRect:
		if step.Rect == nil {
			return errors.New("content-rect needs a rect")
		}
		act.OnContentRectChanged(*step.Rect)
	case ActionSaveState:
		saved := act.OnSaveInstanceState()
		log.WithField("bytes", len(saved)).Info("State saved")
		p.mu.Lock()
		p.saved = saved
		p.mu.Unlock()
	case ActionDestroy:
		p.destroy(act)
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}

func (p *Player) createInput(act *host.Activity) error {
	q, err := newSimInputQueue()
	if err != nil {
		return err
	}
	act.OnInputQueueCreated(q)

	p.mu.Lock()
	p.input = q
	p.mu.Unlock()
	return nil
}

func (p *Player) destroyInput(act *host.Activity) {
	p.mu.Lock()
	q := p.input
	p.input = nil
	p.mu.Unlock()

	act.OnInputQueueDestroyed(q)
	if q != nil {
		q.Close()
	}
}

func (p *Player) pushInput() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.input == nil {
		return errors.New("no input queue")
	}
	return p.input.push()
}

func (p *Player) destroy(act *host.Activity) {
	act.OnDestroy()
	act.Wait()
	if fe, failed := act.FatalError(); failed {
		log.WithError(fe).Warn("Activity ended with an error")
	}

	p.mu.Lock()
	q := p.input
	p.input = nil
	p.activity = nil
	p.mu.Unlock()

	// the glue detached it during teardown
	if q != nil {
		q.Close()
	}
}

func (p *Player) recreate() error {
	p.mu.Lock()
	live := p.activity != nil
	saved := p.saved
	p.mu.Unlock()

	if live {
		return errors.New("recreate needs the previous activity destroyed")
	}
	return p.create(saved)
}

// Shutdown destroys the current activity, if any.
func (p *Player) Shutdown() {
	act, err := p.current()
	if err != nil {
		return
	}
	p.destroy(act)
}
