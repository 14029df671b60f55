// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

/*
Package logging configures the glue layer's own logs.

The glue emits two kinds of output:

1. Internal logs: logrus entries written by the glue itself (channel failures, host
callback traces, pre/post apply traces). Formatted by InternalFormatter.
2. Application stdio: anything user code prints to stdout or stderr. The platform
usually discards process stdio, so RedirectStdio can capture both streams and
forward them, line by line, into the internal log.
*/
package logging
