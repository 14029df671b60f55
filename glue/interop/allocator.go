// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package interop

import (
	"errors"
	"math"
)

// ErrAllocation is returned by allocators that cannot satisfy a request.
var ErrAllocation = errors.New("allocation failed")

// Allocator is the platform's allocation discipline for buffers the platform
// may later free on its own, such as saved instance state.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte)
}

// HeapAllocator hands out Go heap buffers; Free is a no-op.
type HeapAllocator struct {
	// Limit rejects requests larger than this many bytes. Zero means no limit.
	Limit int
}

var _ Allocator = (*HeapAllocator)(nil)

func (a *HeapAllocator) Alloc(size int) ([]byte, error) {
	limit := a.Limit
	if limit == 0 {
		limit = math.MaxInt32
	}
	if size < 0 || size > limit {
		return nil, ErrAllocation
	}
	return make([]byte, size), nil
}

func (a *HeapAllocator) Free([]byte) {}
