// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invariant

import (
	log "github.com/sirupsen/logrus"
)

// PanicViolationExecutor is used with debug assertions enabled.
type PanicViolationExecutor struct{}

var _ ViolationExecutor = (*PanicViolationExecutor)(nil)

func NewPanicViolationExecutor() *PanicViolationExecutor {
	return &PanicViolationExecutor{}
}

func (executor *PanicViolationExecutor) Exec(err ViolationError) {
	panic(err)
}

// LogViolationExecutor only logs. The caller carries on with whatever state the
// violation left behind.
type LogViolationExecutor struct{}

var _ ViolationExecutor = (*LogViolationExecutor)(nil)

func NewLogViolationExecutor() *LogViolationExecutor {
	return &LogViolationExecutor{}
}

func (executor *LogViolationExecutor) Exec(err ViolationError) {
	log.WithError(err).Error("Glue protocol misuse")
}
