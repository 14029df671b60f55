// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/metering"
	"golang.org/x/sys/unix"
)

// ErrChannelClosed is returned when the channel has already been torn down.
var ErrChannelClosed = errors.New("glue command channel closed")

// Channel is a one-way, byte-per-command pipe from the host thread to the
// application thread. It only wakes the reader; payloads live in SharedState.
type Channel struct {
	readFd  int
	writeFd int
	closed  atomic.Bool
	metrics *metering.Metrics
}

// NewChannel creates the underlying pipe.
func NewChannel(metrics *metering.Metrics) (*Channel, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("could not create glue command pipe: %w", err)
	}
	return &Channel{readFd: fds[0], writeFd: fds[1], metrics: metrics}, nil
}

// ReadFd is the descriptor the application thread polls for readability.
func (c *Channel) ReadFd() int {
	return c.readFd
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	return c.closed.Load()
}

// WriteCommand enqueues cmd. Interrupted writes are retried; any other failure is
// logged and the command is dropped.
func (c *Channel) WriteCommand(cmd Command) {
	if err := c.writeByte(byte(cmd)); err != nil {
		log.WithError(err).WithField("cmd", cmd).Error("Failure writing glue cmd")
		c.metrics.ChannelError("write")
		return
	}
	c.metrics.CommandWritten(cmd.String())
}

func (c *Channel) writeByte(b byte) error {
	if c.closed.Load() {
		return ErrChannelClosed
	}
	buf := []byte{b}
	for {
		n, err := unix.Write(c.writeFd, buf)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return err
		case n != 1:
			return fmt.Errorf("spurious write of %d bytes", n)
		}
		return nil
	}
}

// ReadCommand dequeues one command, blocking if the channel is empty. It returns
// false when the read failed or the byte was not a known command; both cases are
// logged and leave the channel usable.
func (c *Channel) ReadCommand() (Command, bool) {
	if c.closed.Load() {
		log.WithError(ErrChannelClosed).Error("Failure reading glue cmd")
		return 0, false
	}
	buf := make([]byte, 1)
	for {
		n, err := unix.Read(c.readFd, buf)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			log.WithError(err).Error("Failure reading glue cmd")
			c.metrics.ChannelError("read")
			return 0, false
		case n != 1:
			log.Errorf("Spurious read of %d bytes while reading glue cmd", n)
			c.metrics.ChannelError("read")
			return 0, false
		}

		cmd, err := ParseCommand(buf[0])
		if err != nil {
			log.WithError(err).Error("Spurious, unknown glue cmd")
			c.metrics.UnknownCommand()
			return 0, false
		}
		c.metrics.CommandRead(cmd.String())
		return cmd, true
	}
}

// Close closes both ends. Only the first call has any effect.
func (c *Channel) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrChannelClosed
	}
	return errors.Join(unix.Close(c.readFd), unix.Close(c.writeFd))
}
