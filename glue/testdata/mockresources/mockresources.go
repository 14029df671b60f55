// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package mockresources provides stand-ins for platform windows, input queues,
// loopers and allocators.
package mockresources

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/stretchr/testify/mock"
	"go.nativeglue.io/glue/interop"
)

// MockWindow is a window identified only by its handle.
type MockWindow uintptr

func (w MockWindow) Handle() uintptr { return uintptr(w) }

// MockInputQueue records looper attachment.
type MockInputQueue struct {
	ID uintptr

	mu       sync.Mutex
	looper   interop.Looper
	ident    int
	attaches int
	detaches int
}

var _ interop.InputQueue = (*MockInputQueue)(nil)

func NewMockInputQueue(id uintptr) *MockInputQueue {
	return &MockInputQueue{ID: id}
}

func (q *MockInputQueue) Handle() uintptr { return q.ID }

func (q *MockInputQueue) AttachLooper(looper interop.Looper, ident int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.looper = looper
	q.ident = ident
	q.attaches++
}

func (q *MockInputQueue) DetachLooper() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.looper = nil
	q.detaches++
}

// Attached reports whether the queue is attached and under which ident.
func (q *MockInputQueue) Attached() (bool, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.looper != nil, q.ident
}

func (q *MockInputQueue) Counts() (attaches, detaches int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.attaches, q.detaches
}

// PipeInputQueue is an input queue backed by a pipe, so a real looper sees it
// become readable once Push is called.
type PipeInputQueue struct {
	fds [2]int

	mu     sync.Mutex
	looper interop.Looper
}

var _ interop.InputQueue = (*PipeInputQueue)(nil)

func NewPipeInputQueue() (*PipeInputQueue, error) {
	q := &PipeInputQueue{}
	if err := unix.Pipe2(q.fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *PipeInputQueue) Handle() uintptr { return uintptr(q.fds[0]) }

func (q *PipeInputQueue) AttachLooper(looper interop.Looper, ident int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.looper != nil {
		q.looper.RemoveFd(q.fds[0])
	}
	q.looper = looper
	looper.AddFd(q.fds[0], ident)
}

func (q *PipeInputQueue) DetachLooper() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.looper != nil {
		q.looper.RemoveFd(q.fds[0])
		q.looper = nil
	}
}

// Push makes one input event pending.
func (q *PipeInputQueue) Push() error {
	_, err := unix.Write(q.fds[1], []byte{1})
	return err
}

// Drain consumes every pending input event.
func (q *PipeInputQueue) Drain() int {
	buf := make([]byte, 64)
	total := 0
	for {
		n, err := unix.Read(q.fds[0], buf)
		if n <= 0 || err != nil {
			return total
		}
		total += n
	}
}

func (q *PipeInputQueue) Close() {
	unix.Close(q.fds[0])
	unix.Close(q.fds[1])
}

// MockLooper is a testify mock of interop.Looper.
type MockLooper struct {
	mock.Mock
}

var _ interop.Looper = (*MockLooper)(nil)

func (l *MockLooper) AddFd(fd int, ident int) error {
	return l.Called(fd, ident).Error(0)
}

func (l *MockLooper) RemoveFd(fd int) error {
	return l.Called(fd).Error(0)
}

// CountingAllocator tracks every live buffer so tests can assert that each
// allocation is freed exactly once.
type CountingAllocator struct {
	// Fail makes every Alloc return interop.ErrAllocation.
	Fail bool

	mu     sync.Mutex
	allocs int
	frees  int
	live   map[*byte]struct{}
	double int
}

var _ interop.Allocator = (*CountingAllocator)(nil)

func NewCountingAllocator() *CountingAllocator {
	return &CountingAllocator{live: map[*byte]struct{}{}}
}

func (a *CountingAllocator) Alloc(size int) ([]byte, error) {
	if a.Fail || size <= 0 {
		return nil, interop.ErrAllocation
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	buf := make([]byte, size)
	a.live[&buf[0]] = struct{}{}
	a.allocs++
	return buf, nil
}

func (a *CountingAllocator) Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.live[&buf[0]]; !ok {
		a.double++
		return
	}
	delete(a.live, &buf[0])
	a.frees++
}

// Stats returns allocation count, free count, buffers still live and frees of
// buffers that were not live.
func (a *CountingAllocator) Stats() (allocs, frees, live, doubleFrees int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs, a.frees, len(a.live), a.double
}
