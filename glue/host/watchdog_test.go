// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.nativeglue.io/glue/core"
	"go.nativeglue.io/glue/fatalerror"
	"golang.org/x/sync/errgroup"
)

func TestWatchdogCancelsStartupOnce(t *testing.T) {
	h, err := core.NewSharedState(core.Options{})
	require.NoError(t, err)
	defer h.Release()

	w := NewWatchdog(h.SharedState)
	first := errors.New("first")

	var g errgroup.Group
	g.Go(h.AwaitMainThreadRunning)

	w.AppExited(fatalerror.AppCrash, first)
	w.AppExited(fatalerror.AppExit, errors.New("second"))

	assert.Equal(t, first, g.Wait())
	fe, ok := w.FirstFatalError()
	require.True(t, ok)
	assert.Equal(t, fatalerror.AppCrash, fe.Type)
	assert.Equal(t, first, fe.Err)
}

func TestWatchdogAfterStartupIsHarmless(t *testing.T) {
	h, err := core.NewSharedState(core.Options{})
	require.NoError(t, err)
	defer h.Release()

	h.NotifyMainThreadRunning()
	NewWatchdog(h.SharedState).AppExited(fatalerror.AppExit, errors.New("late"))
	assert.NoError(t, h.AwaitMainThreadRunning())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	h, err := core.NewSharedState(core.Options{})
	require.NoError(t, err)

	token := r.Register(uuid.Nil, h.Downgrade())
	assert.NotEqual(t, uuid.Nil, token)

	resolved, ok := r.Resolve(token)
	require.True(t, ok)
	resolved.Release()

	_, ok = r.Resolve(uuid.New())
	assert.False(t, ok)

	h.Release()
	_, ok = r.Resolve(token)
	assert.False(t, ok)

	r.Forget(token)
	assert.Equal(t, 0, r.Len())
}
