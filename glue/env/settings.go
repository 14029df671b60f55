// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package env reads process-wide glue settings from GLUE_* environment variables.
package env

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.nativeglue.io/glue/invariant"
)

// Prefix of every variable read by Load.
const Prefix = "GLUE"

// Settings holds the process-wide glue settings.
type Settings struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// DebugAssertions selects panicking protocol checks; release builds log instead.
	DebugAssertions bool `envconfig:"DEBUG_ASSERTIONS" default:"true"`
	// RedirectStdio pipes process stdout and stderr into the logger.
	RedirectStdio bool `envconfig:"REDIRECT_STDIO" default:"false"`
	// DebugAddr enables the debug HTTP API when set, e.g. "127.0.0.1:9090".
	DebugAddr string `envconfig:"DEBUG_ADDR"`
}

// Load reads Settings from the environment.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(Prefix, &s); err != nil {
		return nil, fmt.Errorf("failed to load glue settings: %w", err)
	}
	return &s, nil
}

// Default returns the settings Load yields from an empty environment.
func Default() *Settings {
	return &Settings{
		LogLevel:        "info",
		DebugAssertions: true,
	}
}

// ViolationExecutor returns the invariant executor these settings select.
func (s *Settings) ViolationExecutor() invariant.ViolationExecutor {
	if s.DebugAssertions {
		return invariant.NewPanicViolationExecutor()
	}
	return invariant.NewLogViolationExecutor()
}
