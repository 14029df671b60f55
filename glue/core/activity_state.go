// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

// ActivityState is the lifecycle state last applied by the application thread.
type ActivityState int

const (
	StateInit ActivityState = iota
	StateStart
	StateResume
	StatePause
	StateStop
)

// String values of activity states
const (
	StateInitName   = "Init"
	StateStartName  = "Start"
	StateResumeName = "Resume"
	StatePauseName  = "Pause"
	StateStopName   = "Stop"
)

func (s ActivityState) String() string {
	switch s {
	case StateInit:
		return StateInitName
	case StateStart:
		return StateStartName
	case StateResume:
		return StateResumeName
	case StatePause:
		return StatePauseName
	case StateStop:
		return StateStopName
	}
	return "Unknown"
}

// Command returns the command that moves the application into s. Init is only
// ever the implicit starting state and has no command.
func (s ActivityState) Command() (Command, bool) {
	switch s {
	case StateStart:
		return Start, true
	case StateResume:
		return Resume, true
	case StatePause:
		return Pause, true
	case StateStop:
		return Stop, true
	}
	return 0, false
}

func activityStateFor(cmd Command) (ActivityState, bool) {
	switch cmd {
	case Start:
		return StateStart, true
	case Resume:
		return StateResume, true
	case Pause:
		return StatePause, true
	case Stop:
		return StateStop, true
	}
	return StateInit, false
}
