// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fatalerror

import (
	log "github.com/sirupsen/logrus"
)

// ErrorType classifies failures the glue layer cannot recover from.
type ErrorType string

const (
	PipeCreation    ErrorType = "Glue.PipeCreationError"    // command channel could not be created
	LooperCreation  ErrorType = "Glue.LooperCreationError"  // looper wake pipe could not be created
	SavedStateAlloc ErrorType = "Glue.SavedStateAllocError" // platform allocator refused a saved-state buffer
	AppExit         ErrorType = "App.ExitError"             // application main returned before Destroy
	AppCrash        ErrorType = "App.Crash"                 // application main panicked
)

// Abort logs err under errorType and panics. Used where the platform contract
// leaves no recovery path.
func Abort(errorType ErrorType, err error) {
	log.WithError(err).WithField("errorType", errorType).Error("Fatal glue error")
	panic(Error{Type: errorType, Err: err})
}

// Error is the panic value raised by Abort.
type Error struct {
	Type ErrorType
	Err  error
}

func (e Error) Error() string {
	return string(e.Type) + ": " + e.Err.Error()
}

func (e Error) Unwrap() error {
	return e.Err
}
