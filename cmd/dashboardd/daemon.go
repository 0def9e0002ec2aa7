// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"

	"github.com/juju/juju-dashboard/api"
	"github.com/juju/juju-dashboard/cmd"
	"github.com/juju/juju-dashboard/internal/config"
)

var logger = loggo.GetLogger("dashboard.daemon")

const daemonDoc = `
Connects to every controller in the configuration, keeps the models,
their status and the watched models up to date, and serves them as JSON:

    GET /models?group=status|cloud|owner
    GET /models/<uuid>
    GET /models/<uuid>/watched
    GET /controllers
    GET /metrics

The models can be filtered with the cloud, credential, region, owner and
search query parameters, each taking a comma separated list.

Examples:

    dashboardd --config dashboard.yaml
    dashboardd --config dashboard.yaml --listen :8036
`

type daemonCommand struct {
	configFile cmd.FileVar
	listen     string

	clock clock.Clock
	open  api.OpenFunc
	// notify registers the channel that stops the daemon.
	notify func(chan<- os.Signal)
}

func newDaemonCommand() *daemonCommand {
	return &daemonCommand{
		clock: clock.WallClock,
		notify: func(ch chan<- os.Signal) {
			signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		},
	}
}

// Info is part of the cmd.Command interface.
func (c *daemonCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "dashboardd",
		Purpose: "Serve the dashboard views of the configured controllers.",
		Doc:     daemonDoc,
	}
}

// SetFlags is part of the cmd.Command interface.
func (c *daemonCommand) SetFlags(f *gnuflag.FlagSet) {
	f.Var(&c.configFile, "config", "Path to the dashboard configuration")
	f.StringVar(&c.listen, "listen", "", "Address to serve on, overriding the configuration")
}

// Init is part of the cmd.Command interface.
func (c *daemonCommand) Init(args []string) error {
	if !c.configFile.IsSet() {
		return errors.New("no configuration specified")
	}
	return cmd.CheckEmpty(args)
}

// Run is part of the cmd.Command interface.
func (c *daemonCommand) Run(ctx *cmd.Context) error {
	data, err := c.configFile.Read(ctx)
	if err != nil {
		return errors.Annotate(err, "reading config")
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return errors.Annotatef(err, "config %q", c.configFile.Path)
	}
	if c.listen != "" {
		cfg.ListenAddress = c.listen
	}
	if err := loggo.ConfigureLoggers(cfg.LoggingConfig); err != nil {
		return errors.Annotate(err, "configuring logging")
	}
	if len(cfg.Controllers) == 0 {
		logger.Warningf("no controllers configured, serving an empty store")
	}

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return errors.Annotatef(err, "listening on %s", cfg.ListenAddress)
	}
	e, err := newEngine(engineConfig{
		Config:   cfg,
		Clock:    c.clock,
		Listener: listener,
		Open:     c.open,
	})
	if err != nil {
		_ = listener.Close()
		return errors.Trace(err)
	}
	fmt.Fprintf(ctx.Stdout, "serving on %s\n", e.Addr())

	interrupted := make(chan os.Signal, 1)
	c.notify(interrupted)
	defer signal.Stop(interrupted)

	stopped := make(chan error, 1)
	go func() {
		stopped <- e.Wait()
	}()
	select {
	case sig := <-interrupted:
		logger.Infof("received %v, stopping", sig)
		e.Kill()
		return errors.Trace(<-stopped)
	case err := <-stopped:
		return errors.Annotate(err, "engine stopped")
	}
}
