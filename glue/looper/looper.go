// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package looper multiplexes the application thread's readiness sources: the
// glue command channel, the input queue and any user descriptors.
package looper

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/interop"
	"golang.org/x/sys/unix"
)

// Identifiers reported by PollOnce.
const (
	IdentMain  = 0 // glue command channel
	IdentInput = 1 // input queue
	IdentWake  = 2 // Wake was called
	IdentUser  = 3 // first identifier free for application use
)

// ErrLooperClosed ...
var ErrLooperClosed = errors.New("looper closed")

// Looper polls registered descriptors for readability.
type Looper struct {
	mu     sync.Mutex
	fds    map[int]int // fd -> ident
	wake   [2]int
	closed bool
}

var _ interop.Looper = (*Looper)(nil)

// New creates a looper with its internal wake pipe.
func New() (*Looper, error) {
	l := &Looper{fds: map[int]int{}}
	if err := unix.Pipe2(l.wake[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, fmt.Errorf("could not create looper wake pipe: %w", err)
	}
	return l, nil
}

// AddFd registers fd under ident, replacing an earlier registration of fd.
func (l *Looper) AddFd(fd int, ident int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLooperClosed
	}
	if ident == IdentWake {
		return fmt.Errorf("ident %d is reserved", ident)
	}
	l.fds[fd] = ident
	return nil
}

// RemoveFd unregisters fd. Removing an unknown fd is not an error.
func (l *Looper) RemoveFd(fd int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLooperClosed
	}
	delete(l.fds, fd)
	return nil
}

// PollOnce waits up to timeout for any registered descriptor to become readable
// and returns the identifiers that are ready, in ascending order. A negative
// timeout waits forever; an interrupted wait returns no identifiers.
func (l *Looper) PollOnce(timeout time.Duration) ([]int, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrLooperClosed
	}
	pfds := make([]unix.PollFd, 0, len(l.fds)+1)
	idents := make([]int, 0, len(l.fds)+1)
	pfds = append(pfds, unix.PollFd{Fd: int32(l.wake[0]), Events: unix.POLLIN})
	idents = append(idents, IdentWake)
	for fd, ident := range l.fds {
		pfds = append(pfds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		idents = append(idents, ident)
	}
	l.mu.Unlock()

	ms := pollTimeout(timeout)

	n, err := unix.Poll(pfds, ms)
	if err == unix.EINTR {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("poll failed: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	seen := map[int]bool{}
	var ready []int
	for i, pfd := range pfds {
		if pfd.Revents&unix.POLLNVAL != 0 {
			log.Warnf("Looper fd %d is not open", pfd.Fd)
			continue
		}
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
			continue
		}
		if idents[i] == IdentWake {
			l.drainWake()
		}
		if !seen[idents[i]] {
			seen[idents[i]] = true
			ready = append(ready, idents[i])
		}
	}
	sort.Ints(ready)
	return ready, nil
}

// Wake makes a pending or future PollOnce return IdentWake. Safe from any thread.
func (l *Looper) Wake() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	for {
		_, err := unix.Write(l.wake[1], []byte{1})
		if err == unix.EINTR {
			continue
		}
		// EAGAIN means a wake is already pending
		if err != nil && err != unix.EAGAIN {
			log.WithError(err).Error("Failed to wake looper")
		}
		return
	}
}

func (l *Looper) drainWake() {
	buf := make([]byte, 64)
	for {
		_, err := unix.Read(l.wake[0], buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return
		}
	}
}

// Close releases the wake pipe. Registered descriptors are not closed.
func (l *Looper) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLooperClosed
	}
	l.closed = true
	l.fds = nil
	return errors.Join(unix.Close(l.wake[0]), unix.Close(l.wake[1]))
}

// pollTimeout converts timeout to poll milliseconds. A negative timeout blocks and
// a positive one rounds up so that short waits do not become busy polls.
func pollTimeout(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	return int((timeout + time.Millisecond - 1) / time.Millisecond)
}
