// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package interop describes the platform primitives the glue layer hands between
// the host lifecycle thread and the application thread. Implementations live with
// the platform bindings; the glue only moves them around.
package interop

import "fmt"

// Window is an opaque native window owned by the platform.
type Window interface {
	// Handle identifies the underlying native object.
	Handle() uintptr
}

// InputQueue is an opaque native input queue. While attached to a looper it
// wakes the looper under ident whenever input is pending.
type InputQueue interface {
	Handle() uintptr
	AttachLooper(looper Looper, ident int)
	DetachLooper()
}

// Looper is the application thread's readiness multiplexer.
type Looper interface {
	AddFd(fd int, ident int) error
	RemoveFd(fd int) error
}

// Rect is a content rectangle in window pixels.
type Rect struct {
	Left   int32 `json:"left" yaml:"left"`
	Top    int32 `json:"top" yaml:"top"`
	Right  int32 `json:"right" yaml:"right"`
	Bottom int32 `json:"bottom" yaml:"bottom"`
}

func (r Rect) Width() int32  { return r.Right - r.Left }
func (r Rect) Height() int32 { return r.Bottom - r.Top }

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}
