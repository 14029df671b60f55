// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"sync"
)

// Gate lets one thread wait until a fixed number of WalkThrough calls have
// happened elsewhere, or until the wait is canceled.
type Gate interface {
	WalkThrough() error
	AwaitGateCondition() error
	CancelWithError(error)
}

type gateImpl struct {
	count         uint16
	arrived       uint16
	gateCondition *sync.Cond
	canceled      bool
	err           error
}

// ErrGateIntegrity ...
var ErrGateIntegrity = errors.New("ErrGateIntegrity")

// ErrGateCanceled ...
var ErrGateCanceled = errors.New("ErrGateCanceled")

// WalkThrough walks through this gate without awaiting others.
func (g *gateImpl) WalkThrough() error {
	g.gateCondition.L.Lock()
	defer g.gateCondition.L.Unlock()

	if g.arrived == g.count {
		return ErrGateIntegrity
	}

	g.arrived++

	if g.arrived == g.count {
		g.gateCondition.Broadcast()
	}

	return nil
}

// AwaitGateCondition suspends the caller until the gate condition is met or the
// gate is canceled.
func (g *gateImpl) AwaitGateCondition() error {
	g.gateCondition.L.Lock()
	defer g.gateCondition.L.Unlock()

	for g.arrived != g.count && !g.canceled {
		g.gateCondition.Wait()
	}

	if g.canceled {
		if g.err != nil {
			return g.err
		}
		return ErrGateCanceled
	}

	return nil
}

// CancelWithError cancels the gate condition and wakes suspended threads. A gate
// whose condition is already met stays open.
func (g *gateImpl) CancelWithError(err error) {
	g.gateCondition.L.Lock()
	defer g.gateCondition.L.Unlock()
	if g.arrived == g.count {
		return
	}
	g.canceled = true
	g.err = err
	g.gateCondition.Broadcast()
}

// NewGate returns new gate instance.
func NewGate(count uint16) Gate {
	return &gateImpl{
		count:         count,
		gateCondition: sync.NewCond(&sync.Mutex{}),
	}
}
