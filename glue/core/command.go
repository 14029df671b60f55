// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"fmt"
)

// Command is the single-byte tag carried over the command channel.
type Command uint8

const (
	InputQueueChanged Command = iota
	InitWindow
	TermWindow
	WindowResized
	WindowRedrawNeeded
	ContentRectChanged
	GainedFocus
	LostFocus
	ConfigChanged
	LowMemory
	Start
	Resume
	SaveState
	Pause
	Stop
	Destroy

	commandCount
)

// ErrUnknownCommand is returned for bytes outside the Command range.
var ErrUnknownCommand = errors.New("unknown glue command")

var commandNames = [commandCount]string{
	InputQueueChanged:  "InputQueueChanged",
	InitWindow:         "InitWindow",
	TermWindow:         "TermWindow",
	WindowResized:      "WindowResized",
	WindowRedrawNeeded: "WindowRedrawNeeded",
	ContentRectChanged: "ContentRectChanged",
	GainedFocus:        "GainedFocus",
	LostFocus:          "LostFocus",
	ConfigChanged:      "ConfigChanged",
	LowMemory:          "LowMemory",
	Start:              "Start",
	Resume:             "Resume",
	SaveState:          "SaveState",
	Pause:              "Pause",
	Stop:               "Stop",
	Destroy:            "Destroy",
}

func (c Command) String() string {
	if c < commandCount {
		return commandNames[c]
	}
	return fmt.Sprintf("Command(%d)", uint8(c))
}

// ParseCommand decodes a wire byte.
func ParseCommand(b byte) (Command, error) {
	if Command(b) >= commandCount {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCommand, b)
	}
	return Command(b), nil
}

// AllCommands lists every command in wire order.
func AllCommands() []Command {
	cmds := make([]Command, 0, commandCount)
	for c := Command(0); c < commandCount; c++ {
		cmds = append(cmds, c)
	}
	return cmds
}
