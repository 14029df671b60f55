// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package statejson

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/config"
	"go.nativeglue.io/glue/interop"
)

// StateDescription ...
type StateDescription struct {
	Name         string `json:"name"`
	LastModified int64  `json:"lastModified"`
}

// ResourceDescription identifies a native resource by handle.
type ResourceDescription struct {
	Handle string `json:"handle"`
}

func NewResourceDescription(handle uintptr) *ResourceDescription {
	return &ResourceDescription{Handle: fmt.Sprintf("0x%x", handle)}
}

// GlueDescription describes the shared state for debugging purposes
type GlueDescription struct {
	ActivityState      StateDescription      `json:"activityState"`
	Window             *ResourceDescription  `json:"window"`
	InputQueue         *ResourceDescription  `json:"inputQueue"`
	ContentRect        interop.Rect          `json:"contentRect"`
	Config             *config.Configuration `json:"config"`
	SavedStateSize     int                   `json:"savedStateSize"`
	PendingTransitions []string              `json:"pendingTransitions"`
	DestroyRequested   bool                  `json:"destroyRequested"`
	Running            bool                  `json:"running"`
	StateSaved         bool                  `json:"stateSaved"`
	Destroyed          bool                  `json:"destroyed"`
	RedrawNeeded       bool                  `json:"redrawNeeded"`
	ChannelClosed      bool                  `json:"channelClosed"`
}

func (s *GlueDescription) AsJSON() []byte {
	bytes, err := json.Marshal(s)
	if err != nil {
		log.Panicf("Failed to marshall glue state: %s", err)
	}
	return bytes
}
