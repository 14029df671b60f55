// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestRedirectFdsForwardsLines(t *testing.T) {
	var target [2]int
	require.NoError(t, unix.Pipe2(target[:], unix.O_CLOEXEC))
	defer unix.Close(target[0])
	defer unix.Close(target[1])

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&InternalFormatter{})

	r, err := redirectFds(logger, target[1])
	require.NoError(t, err)

	_, err = unix.Write(target[1], []byte("hello from app\nsecond line\n"))
	require.NoError(t, err)

	r.Restore()

	assert.Contains(t, buf.String(), "hello from app stream=stdio")
	assert.Contains(t, buf.String(), "second line stream=stdio")

	// restored descriptor points back at the original pipe
	_, err = unix.Write(target[1], []byte("x"))
	require.NoError(t, err)
	got := make([]byte, 1)
	n, err := unix.Read(target[0], got)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte('x'), got[0])
}

func TestRedirectFdsForwardsLongLines(t *testing.T) {
	var target [2]int
	require.NoError(t, unix.Pipe2(target[:], unix.O_CLOEXEC))
	defer unix.Close(target[0])
	defer unix.Close(target[1])

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&InternalFormatter{})

	r, err := redirectFds(logger, target[1])
	require.NoError(t, err)

	long := strings.Repeat("a", 70*1024)
	_, err = unix.Write(target[1], []byte(long+"\n"))
	require.NoError(t, err)
	_, err = unix.Write(target[1], []byte("after long line\n"))
	require.NoError(t, err)

	r.Restore()

	assert.Contains(t, buf.String(), long+" stream=stdio")
	assert.Contains(t, buf.String(), "after long line stream=stdio")
}
