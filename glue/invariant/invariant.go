// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package invariant reports protocol misuse by callers of the glue layer, such as
// re-entrant writes to an occupied pending slot. Violations panic unless a
// different executor is installed.
package invariant

import (
	"fmt"
	"sync"
)

func Check(cond bool, statement string) {
	if !cond {
		Violate(statement)
	}
}

func Violate(statement string) {
	std.mtx.Lock()
	executor := std.executor
	std.mtx.Unlock()

	executor.Exec(ViolationError{Statement: statement})
}

func Violatef(format string, args ...any) {
	Violate(fmt.Sprintf(format, args...))
}

// SetViolationExecutor installs executor and returns the previous one.
func SetViolationExecutor(executor ViolationExecutor) ViolationExecutor {
	std.mtx.Lock()
	defer std.mtx.Unlock()

	prev := std.executor
	std.executor = executor
	return prev
}

var std = struct {
	executor ViolationExecutor
	mtx      sync.Mutex
}{
	executor: NewPanicViolationExecutor(),
}
