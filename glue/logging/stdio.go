// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// StdioRedirect owns the pipe that replaced the process stdio descriptors.
type StdioRedirect struct {
	targets []int
	saved   []int
	done    chan struct{}
}

// RedirectStdio points stdout and stderr at a pipe whose lines are logged through
// logger. If logger currently writes to one of the redirected streams it is
// switched to a duplicate of the original stderr first, so its output does not
// loop back into the pipe.
func RedirectStdio(logger *logrus.Logger) (*StdioRedirect, error) {
	if logger.Out == os.Stderr || logger.Out == os.Stdout {
		fd, err := unix.Dup(int(os.Stderr.Fd()))
		if err != nil {
			return nil, fmt.Errorf("failed to duplicate stderr: %w", err)
		}
		logger.SetOutput(os.NewFile(uintptr(fd), "stderr-orig"))
	}
	return redirectFds(logger, int(os.Stdout.Fd()), int(os.Stderr.Fd()))
}

func redirectFds(logger *logrus.Logger, targets ...int) (*StdioRedirect, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("failed to create stdio pipe: %w", err)
	}

	r := &StdioRedirect{targets: targets, done: make(chan struct{})}
	for _, fd := range targets {
		saved, err := unix.Dup(fd)
		if err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			r.restore()
			return nil, fmt.Errorf("failed to save fd %d: %w", fd, err)
		}
		r.saved = append(r.saved, saved)
		if err := unix.Dup3(p[1], fd, 0); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			r.restore()
			return nil, fmt.Errorf("failed to redirect fd %d: %w", fd, err)
		}
	}
	unix.Close(p[1])

	reader := os.NewFile(uintptr(p[0]), "stdio-pipe")
	go func() {
		defer close(r.done)
		defer reader.Close()
		br := bufio.NewReader(reader)
		for {
			line, err := br.ReadString('\n')
			if line = strings.TrimSuffix(line, "\n"); line != "" {
				logger.WithField("stream", "stdio").Info(line)
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				logger.WithError(err).Error("stdio pipe read failed")
				return
			}
		}
	}()

	return r, nil
}

func (r *StdioRedirect) restore() {
	for i, saved := range r.saved {
		unix.Dup3(saved, r.targets[i], 0)
		unix.Close(saved)
	}
	r.saved = nil
}

// Restore puts the original descriptors back and waits until every captured line
// has been logged.
func (r *StdioRedirect) Restore() {
	r.restore()
	<-r.done
}
