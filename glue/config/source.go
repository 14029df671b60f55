// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
)

// Source translates the platform's raw configuration into a Configuration. The
// glue consults it once at startup and again whenever the host reports a
// configuration change.
type Source interface {
	Load() (*Configuration, error)
}

// StaticSource always returns the same configuration.
type StaticSource struct {
	Config Configuration
}

func (s *StaticSource) Load() (*Configuration, error) {
	c := s.Config
	return &c, nil
}

// YAMLSource decodes a raw YAML configuration blob. The blob may be swapped by
// the host before it notifies a change.
type YAMLSource struct {
	mu   sync.Mutex
	blob []byte
}

func NewYAMLSource(blob []byte) *YAMLSource {
	s := &YAMLSource{}
	s.SetBlob(blob)
	return s
}

// NewYAMLFileSource reads the blob from path.
func NewYAMLFileSource(path string) (*YAMLSource, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration %s: %w", path, err)
	}
	return NewYAMLSource(blob), nil
}

func (s *YAMLSource) SetBlob(blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = append([]byte(nil), blob...)
}

func (s *YAMLSource) Load() (*Configuration, error) {
	s.mu.Lock()
	blob := s.blob
	s.mu.Unlock()

	c := &Configuration{Orientation: OrientationAny}
	if len(blob) == 0 {
		return c, nil
	}
	if err := yaml.Unmarshal(blob, c); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return c, nil
}
