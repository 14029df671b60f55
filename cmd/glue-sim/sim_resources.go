// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/interop"
	"golang.org/x/sys/unix"
)

// simWindow is a window known only by its handle.
type simWindow uintptr

func (w simWindow) Handle() uintptr { return uintptr(w) }

// simInputQueue is a pipe that becomes readable when input is pushed.
type simInputQueue struct {
	fds [2]int

	mu     sync.Mutex
	looper interop.Looper
}

func newSimInputQueue() (*simInputQueue, error) {
	q := &simInputQueue{}
	if err := unix.Pipe2(q.fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, fmt.Errorf("could not create input pipe: %w", err)
	}
	return q, nil
}

func (q *simInputQueue) Handle() uintptr { return uintptr(q.fds[0]) }

func (q *simInputQueue) AttachLooper(looper interop.Looper, ident int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.looper != nil && q.looper != looper {
		q.looper.RemoveFd(q.fds[0])
	}
	q.looper = looper
	if err := looper.AddFd(q.fds[0], ident); err != nil {
		log.WithError(err).Warn("Failed to attach input queue")
	}
}

func (q *simInputQueue) DetachLooper() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.looper == nil {
		return
	}
	if err := q.looper.RemoveFd(q.fds[0]); err != nil {
		log.WithError(err).Debug("Failed to detach input queue")
	}
	q.looper = nil
}

func (q *simInputQueue) push() error {
	_, err := unix.Write(q.fds[1], []byte{1})
	return err
}

func (q *simInputQueue) drain() int {
	buf := make([]byte, 64)
	total := 0
	for {
		n, err := unix.Read(q.fds[0], buf)
		if err == unix.EINTR {
			continue
		}
		if n <= 0 || err != nil {
			return total
		}
		total += n
	}
}

func (q *simInputQueue) Close() {
	unix.Close(q.fds[0])
	unix.Close(q.fds[1])
}
