// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// glue-sim plays a scripted platform lifecycle against a sample application
// running on the glue.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.nativeglue.io/glue/config"
	"go.nativeglue.io/glue/core"
	"go.nativeglue.io/glue/debugapi"
	"go.nativeglue.io/glue/env"
	"go.nativeglue.io/glue/host"
	"go.nativeglue.io/glue/invariant"
	"go.nativeglue.io/glue/logging"
	"go.nativeglue.io/glue/metering"
	"golang.org/x/sync/errgroup"
)

type options struct {
	LogLevel    string `long:"log-level" description:"log level, overrides GLUE_LOG_LEVEL"`
	Script      string `long:"script" description:"YAML lifecycle script; the built-in script is played when empty"`
	Config      string `long:"config" description:"YAML file with the initial platform configuration"`
	DebugAddr   string `long:"debug-addr" description:"debug API address, overrides GLUE_DEBUG_ADDR"`
	KeepServing bool   `long:"keep-serving" description:"keep the debug API up after the script finished"`
}

func main() {
	opts := getCLIArgs()

	settings, err := env.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to read environment")
	}
	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}
	if opts.DebugAddr != "" {
		settings.DebugAddr = opts.DebugAddr
	}

	logging.SetLogLevel(settings.LogLevel)
	invariant.SetViolationExecutor(settings.ViolationExecutor())

	if settings.RedirectStdio {
		redirect, err := logging.RedirectStdio(log.StandardLogger())
		if err != nil {
			log.WithError(err).Fatal("Failed to redirect stdio")
		}
		defer redirect.Restore()
	}

	script := DefaultScript()
	if opts.Script != "" {
		if script, err = LoadScript(opts.Script); err != nil {
			log.WithError(err).Fatal("Failed to load script")
		}
	}

	configSource := config.NewYAMLSource(nil)
	if opts.Config != "" {
		if configSource, err = config.NewYAMLFileSource(opts.Config); err != nil {
			log.WithError(err).Fatal("Failed to load configuration")
		}
	}

	reg := prometheus.NewRegistry()
	sim := &counterApp{}
	player := NewPlayer(host.NewRegistry(), core.Options{Metrics: metering.NewMetrics(reg)}, configSource, sim.Main)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, player, script, settings.DebugAddr, opts.KeepServing, reg); err != nil {
		log.WithError(err).Fatal("Simulation failed")
	}
	log.WithField("count", sim.Count()).Info("Simulation finished")
}

func run(ctx context.Context, player *Player, script *Script, debugAddr string, keepServing bool, reg *prometheus.Registry) error {
	g, ctx := errgroup.WithContext(ctx)
	serveCtx, cancelServe := context.WithCancel(ctx)
	defer cancelServe()

	if debugAddr != "" {
		server := debugapi.NewServer(debugAddr, player, reg)
		if err := server.Listen(); err != nil {
			return err
		}
		log.Infof("Debug API on http://%s", server.Addr())
		g.Go(func() error { return server.Serve(serveCtx) })
	}

	g.Go(func() error {
		defer player.Shutdown()
		defer cancelServe()
		if err := player.Start(); err != nil {
			return err
		}
		if err := player.Play(ctx, script); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		if keepServing {
			<-ctx.Done()
		}
		return nil
	})

	return g.Wait()
}

func getCLIArgs() options {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.WithError(err).Fatal("Failed to parse command line arguments:", os.Args)
	}
	return opts
}
