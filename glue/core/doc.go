// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

/*
Package core implements the shared state and synchronization protocol between
the host lifecycle thread and the application thread.

# Channel

The host thread wakes the application thread by writing a single-byte Command to
an OS pipe. The application thread multiplexes the read end into its looper. The
byte only says what changed; every value rides in the SharedState.

# Shared state

SharedState is one mutex-guarded record holding everything both threads can see:
current and pending window, current and pending input queue, content rectangle,
activity state, saved-state buffer, configuration and a handful of flags. One
condition variable, shared by every transition kind, carries acknowledgements
back to the host thread. Waiters always re-check their own predicate.

# Rendezvous

A blocking host operation publishes a pending value, writes the matching
command while holding the mutex, then waits on the condition variable until the
application thread has applied it:

	[host] s.SetWindow(w)
	[host] // blocked: pending window published, InitWindow written
	[app]  cmd := s.ReadCommand()
	[app]  s.PreExec(cmd, looper, ident) // window = pending, broadcast
	[host] // returns
	[app]  // user code sees the new window
	[app]  s.PostExec(cmd)

PreExec applies values user code must see before its callback runs. PostExec
acknowledges transitions that must not complete until user code is done with
the resource (window termination, saved state).

# Handles

Both threads hold a strong Handle. The host runtime keeps only a WeakHandle and
upgrades it for the duration of each callback. The container tears itself down
when the application finishes or when the last strong reference is released.
*/
package core
