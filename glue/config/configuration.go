// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"sync/atomic"
)

// Orientation of the device screen.
type Orientation string

const (
	OrientationAny       Orientation = "any"
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
	OrientationSquare    Orientation = "square"
)

// Configuration is a structured snapshot of the platform configuration. Values are
// never mutated after publication; replacing the configuration publishes a new
// snapshot.
type Configuration struct {
	Density      int32       `json:"density" yaml:"density"`
	Orientation  Orientation `json:"orientation" yaml:"orientation"`
	Language     string      `json:"language" yaml:"language"`
	Country      string      `json:"country" yaml:"country"`
	ScreenWidth  int32       `json:"screenWidthDp" yaml:"screenWidthDp"`
	ScreenHeight int32       `json:"screenHeightDp" yaml:"screenHeightDp"`
	UIModeNight  bool        `json:"uiModeNight" yaml:"uiModeNight"`
	Keyboard     string      `json:"keyboard" yaml:"keyboard"`
	Navigation   string      `json:"navigation" yaml:"navigation"`
	SdkVersion   int32       `json:"sdkVersion" yaml:"sdkVersion"`
}

// Locale returns the language/country pair, e.g. "en-GB".
func (c *Configuration) Locale() string {
	if c.Country == "" {
		return c.Language
	}
	return c.Language + "-" + c.Country
}

// Ref is a shared, atomically replaceable configuration. Readers get either the
// old or the new snapshot, never a mix.
type Ref struct {
	current atomic.Pointer[Configuration]
}

// NewRef returns a Ref holding a copy of initial.
func NewRef(initial *Configuration) *Ref {
	r := &Ref{}
	r.Replace(initial)
	return r
}

// Load returns the current snapshot. Callers must not modify it.
func (r *Ref) Load() *Configuration {
	return r.current.Load()
}

// Replace publishes a copy of c as the current snapshot.
func (r *Ref) Replace(c *Configuration) {
	snapshot := &Configuration{}
	if c != nil {
		*snapshot = *c
	}
	r.current.Store(snapshot)
}
