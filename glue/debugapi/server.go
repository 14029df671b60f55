// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package debugapi serves read-only introspection of a running glue instance.
package debugapi

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// NewRouter returns the debug API: /ping, /state and /metrics.
func NewRouter(provider StateProvider, gatherer prometheus.Gatherer) http.Handler {
	router := chi.NewRouter()
	router.Get("/ping", (&pingHandler{}).ServeHTTP)
	router.Get("/state", (&stateHandler{provider: provider}).ServeHTTP)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return router
}

// Server serves the debug API. Listen and Serve are separate so the address is
// bound before the application starts.
type Server struct {
	addr     string
	server   *http.Server
	listener net.Listener
}

func NewServer(addr string, provider StateProvider, gatherer prometheus.Gatherer) *Server {
	return &Server{
		addr:   addr,
		server: &http.Server{Handler: NewRouter(provider, gatherer)},
	}
}

func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	log.Debugf("Debug API listening on %s", ln.Addr())
	return nil
}

// Addr is the bound address, valid after Listen.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Serve blocks until ctx is canceled or the server fails.
func (s *Server) Serve(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() {
		errs <- s.server.Serve(s.listener)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		if err := s.server.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("Debug API shutdown failed")
		}
		return nil
	}
}

func (s *Server) Close() error {
	return s.server.Close()
}
