// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metering

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts command traffic and rendezvous latency. All methods are safe
// to call on a nil *Metrics.
type Metrics struct {
	CommandsWritten    *prometheus.CounterVec
	CommandsRead       *prometheus.CounterVec
	UnknownCommands    prometheus.Counter
	ChannelErrors      *prometheus.CounterVec
	RendezvousDuration *prometheus.HistogramVec
}

// NewMetrics registers the glue collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CommandsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glue_commands_written_total",
				Help: "Commands written by the host thread to the command channel",
			},
			[]string{"cmd"},
		),
		CommandsRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glue_commands_read_total",
				Help: "Commands read by the application thread from the command channel",
			},
			[]string{"cmd"},
		),
		UnknownCommands: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "glue_unknown_commands_total",
				Help: "Unrecognised command bytes read from the command channel",
			},
		),
		ChannelErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glue_channel_errors_total",
				Help: "Command channel I/O failures, by operation",
			},
			[]string{"op"},
		),
		RendezvousDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glue_rendezvous_duration_seconds",
				Help:    "Time the host thread spent blocked waiting for the application thread",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"op"},
		),
	}
}

func (m *Metrics) CommandWritten(cmd string) {
	if m == nil {
		return
	}
	m.CommandsWritten.WithLabelValues(cmd).Inc()
}

func (m *Metrics) CommandRead(cmd string) {
	if m == nil {
		return
	}
	m.CommandsRead.WithLabelValues(cmd).Inc()
}

func (m *Metrics) UnknownCommand() {
	if m == nil {
		return
	}
	m.UnknownCommands.Inc()
}

func (m *Metrics) ChannelError(op string) {
	if m == nil {
		return
	}
	m.ChannelErrors.WithLabelValues(op).Inc()
}

// ObserveRendezvous records a completed wait that started at startNs (Monotime).
func (m *Metrics) ObserveRendezvous(op string, startNs int64) {
	if m == nil {
		return
	}
	m.RendezvousDuration.WithLabelValues(op).Observe(SinceSeconds(startNs))
}
