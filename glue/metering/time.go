// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metering

import (
	"time"
)

// Monotime returns a nanosecond timestamp used for rendezvous durations.
func Monotime() int64 {
	return time.Now().UnixNano()
}

// SinceSeconds converts a Monotime start into elapsed seconds.
func SinceSeconds(startNs int64) float64 {
	return float64(Monotime()-startNs) / float64(time.Second)
}
