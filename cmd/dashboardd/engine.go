// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"net"
	"sync"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/pubsub/v2"
	"github.com/juju/worker/v4"
	"github.com/juju/worker/v4/catacomb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/juju/juju-dashboard/api"
	"github.com/juju/juju-dashboard/internal/config"
	"github.com/juju/juju-dashboard/internal/dispatcher"
	"github.com/juju/juju-dashboard/internal/httpserver"
	"github.com/juju/juju-dashboard/internal/poller"
	"github.com/juju/juju-dashboard/internal/query"
	"github.com/juju/juju-dashboard/internal/store"
)

// engineConfig holds the resources and configuration for an engine.
type engineConfig struct {
	Config   *config.Config
	Clock    clock.Clock
	Listener net.Listener

	// Open connects to controllers. Nil means api.Open.
	Open api.OpenFunc
}

// Validate ensures that the config values are valid.
func (config engineConfig) Validate() error {
	if config.Config == nil {
		return errors.NotValidf("missing Config")
	}
	if config.Clock == nil {
		return errors.NotValidf("missing Clock")
	}
	if config.Listener == nil {
		return errors.NotValidf("missing Listener")
	}
	return nil
}

// engine runs the dispatcher, one poller per configured controller and
// the view server. If any of them fails the engine stops.
type engine struct {
	catacomb  catacomb.Catacomb
	server    *httpserver.Worker
	clients   []*api.Client
	closeOnce sync.Once
}

// newPrometheusRegistry returns a registry with the Go and process
// collectors registered.
func newPrometheusRegistry() (*prometheus.Registry, error) {
	r := prometheus.NewRegistry()
	if err := r.Register(prometheus.NewGoCollector()); err != nil {
		return nil, errors.Trace(err)
	}
	if err := r.Register(prometheus.NewProcessCollector(
		prometheus.ProcessCollectorOpts{})); err != nil {
		return nil, errors.Trace(err)
	}
	return r, nil
}

func newEngine(config engineConfig) (_ *engine, err error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	cfg := config.Config

	var workers []worker.Worker
	e := &engine{}
	defer func() {
		if err == nil {
			return
		}
		for _, w := range workers {
			w.Kill()
		}
		for _, w := range workers {
			if err := w.Wait(); err != nil {
				logger.Debugf("stopping after failed start: %v", err)
			}
		}
		e.closeClients()
	}()

	registry, err := newPrometheusRegistry()
	if err != nil {
		return nil, errors.Trace(err)
	}
	d, err := dispatcher.New(dispatcher.Config{
		Clock: config.Clock,
		Hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
			Logger: loggo.GetLogger("dashboard.hub"),
		}),
		Store:                store.New(),
		PrometheusRegisterer: registry,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	workers = append(workers, d)
	if err := d.Dispatch("updateAuditEventsLimit", func(s *store.Store) {
		s.UpdateAuditEventsLimit(cfg.AuditEventsLimit)
	}); err != nil {
		return nil, errors.Trace(err)
	}

	sessions := api.NewSessions()
	for _, controller := range cfg.Controllers {
		clientConfig := cfg.ClientConfig(controller)
		clientConfig.Sessions = sessions
		clientConfig.Open = config.Open
		client, err := api.NewClient(clientConfig)
		if err != nil {
			return nil, errors.Annotatef(err, "controller %q", controller.URL)
		}
		e.clients = append(e.clients, client)

		pollerConfig := cfg.PollerConfig(controller)
		pollerConfig.API = client
		pollerConfig.Details = client
		pollerConfig.Dispatcher = d
		pollerConfig.Authenticator = sessions
		pollerConfig.Clock = config.Clock
		p, err := poller.New(pollerConfig)
		if err != nil {
			return nil, errors.Annotatef(err, "controller %q", controller.URL)
		}
		workers = append(workers, p)
	}

	handler, err := httpserver.NewHandler(httpserver.HandlerConfig{
		Store:    d,
		Memo:     query.NewMemo(cfg.CacheTTL),
		Config:   cfg,
		Sessions: sessions,
		Gatherer: registry,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	server, err := httpserver.NewWorker(httpserver.Config{
		Listener: config.Listener,
		Handler:  handler,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	workers = append(workers, server)
	e.server = server

	if err := catacomb.Invoke(catacomb.Plan{
		Site: &e.catacomb,
		Work: e.loop,
		Init: workers,
	}); err != nil {
		return nil, errors.Trace(err)
	}
	return e, nil
}

func (e *engine) loop() error {
	<-e.catacomb.Dying()
	return e.catacomb.ErrDying()
}

// closeClients logs out of every controller. It must only run once the
// pollers have stopped, or they would dial again.
func (e *engine) closeClients() {
	e.closeOnce.Do(func() {
		for _, client := range e.clients {
			if err := client.Close(); err != nil {
				logger.Debugf("closing client: %v", err)
			}
		}
	})
}

// Addr returns the address the views are served on.
func (e *engine) Addr() string {
	return e.server.Addr()
}

// Kill is part of the worker.Worker interface.
func (e *engine) Kill() {
	e.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (e *engine) Wait() error {
	err := e.catacomb.Wait()
	e.closeClients()
	return err
}
