// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"go.nativeglue.io/glue/config"
	"go.nativeglue.io/glue/interop"
)

// Action names a platform callback the simulator can play.
type Action string

const (
	ActionWindowCreated   Action = "window-created"
	ActionWindowDestroyed Action = "window-destroyed"
	ActionWindowResized   Action = "window-resized"
	ActionRedrawNeeded    Action = "redraw-needed"
	ActionInputCreated    Action = "input-created"
	ActionInputDestroyed  Action = "input-destroyed"
	ActionInput           Action = "input"
	ActionStart           Action = "start"
	ActionResume          Action = "resume"
	ActionPause           Action = "pause"
	ActionStop            Action = "stop"
	ActionFocus           Action = "focus"
	ActionBlur            Action = "blur"
	ActionConfigChanged   Action = "config-changed"
	ActionLowMemory       Action = "low-memory"
	ActionContentRect     Action = "content-rect"
	ActionSaveState       Action = "save-state"
	ActionDestroy         Action = "destroy"
	// ActionRecreate creates a new activity restored from the last saved state.
	ActionRecreate Action = "recreate"
)

var knownActions = map[Action]struct{}{
	ActionWindowCreated: {}, ActionWindowDestroyed: {}, ActionWindowResized: {},
	ActionRedrawNeeded: {}, ActionInputCreated: {}, ActionInputDestroyed: {},
	ActionInput: {}, ActionStart: {}, ActionResume: {}, ActionPause: {}, ActionStop: {},
	ActionFocus: {}, ActionBlur: {}, ActionConfigChanged: {}, ActionLowMemory: {},
	ActionContentRect: {}, ActionSaveState: {}, ActionDestroy: {}, ActionRecreate: {},
}

// Step is one scripted platform callback.
type Step struct {
	Action Action `yaml:"action"`
	// Window is the simulated window handle for window-created.
	Window uintptr `yaml:"window,omitempty"`
	// Rect is the new content rectangle for content-rect.
	Rect *interop.Rect `yaml:"rect,omitempty"`
	// Config replaces the platform configuration for config-changed.
	Config *config.Configuration `yaml:"config,omitempty"`
	// Pause waits before the step is played.
	Pause time.Duration `yaml:"pause,omitempty"`
}

// Script is a sequence of steps.
type Script struct {
	Steps []Step `yaml:"steps"`
}

func (s *Script) Validate() error {
	for i, step := range s.Steps {
		if _, ok := knownActions[step.Action]; !ok {
			return fmt.Errorf("step %d: unknown action %q", i, step.Action)
		}
	}
	return nil
}

// ParseScript decodes and validates a YAML script.
func ParseScript(blob []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(blob, &s); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadScript(path string) (*Script, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return ParseScript(blob)
}

// DefaultScript runs one full lifecycle, then a second one restored from the
// state saved by the first.
func DefaultScript() *Script {
	lifecycle := []Step{
		{Action: ActionWindowCreated, Window: 0x1000},
		{Action: ActionInputCreated},
		{Action: ActionStart},
		{Action: ActionResume},
		{Action: ActionFocus},
		{Action: ActionInput},
		{Action: ActionContentRect, Rect: &interop.Rect{Right: 1080, Bottom: 1920}},
		{Action: ActionConfigChanged, Config: &config.Configuration{
			Density:     420,
			Orientation: config.OrientationLandscape,
			Language:    "en",
			Country:     "US",
		}},
		{Action: ActionBlur},
		{Action: ActionPause},
		{Action: ActionSaveState},
		{Action: ActionStop},
		{Action: ActionWindowDestroyed},
		{Action: ActionInputDestroyed},
		{Action: ActionDestroy},
	}
	steps := append([]Step(nil), lifecycle...)
	steps = append(steps, Step{Action: ActionRecreate})
	steps = append(steps, lifecycle...)
	return &Script{Steps: steps}
}
