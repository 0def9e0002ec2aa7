// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/juju/errors"
	"github.com/juju/worker/v4/catacomb"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Config holds the resources and configuration for a Worker.
type Config struct {
	// Listener is served on. The worker closes it when it stops.
	Listener net.Listener
	Handler  http.Handler
}

// Validate ensures that the config values are valid.
func (config Config) Validate() error {
	if config.Listener == nil {
		return errors.NotValidf("missing Listener")
	}
	if config.Handler == nil {
		return errors.NotValidf("missing Handler")
	}
	return nil
}

// Worker serves HTTP until it is killed, then shuts the server down
// gracefully.
type Worker struct {
	catacomb catacomb.Catacomb
	config   Config
	server   *http.Server
}

// NewWorker starts a Worker serving config.Handler on config.Listener.
func NewWorker(config Config) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	w := &Worker{
		config: config,
		server: &http.Server{
			Handler:           config.Handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
	if err := catacomb.Invoke(catacomb.Plan{
		Site: &w.catacomb,
		Work: w.loop,
	}); err != nil {
		return nil, errors.Trace(err)
	}
	return w, nil
}

func (w *Worker) loop() error {
	addr := w.Addr()
	served := make(chan error, 1)
	go func() {
		logger.Infof("serving views on %s", addr)
		served <- w.server.Serve(w.config.Listener)
	}()

	select {
	case err := <-served:
		return errors.Annotatef(err, "serving on %s", addr)
	case <-w.catacomb.Dying():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := w.server.Shutdown(ctx); err != nil {
		logger.Warningf("graceful shutdown of %s failed, closing: %v", addr, err)
		if err := w.server.Close(); err != nil {
			logger.Debugf("closing %s: %v", addr, err)
		}
	}
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warningf("serving on %s: %v", addr, err)
	}
	return w.catacomb.ErrDying()
}

// Addr returns the address the worker is listening on.
func (w *Worker) Addr() string {
	return w.config.Listener.Addr().String()
}

// Kill is part of the worker.Worker interface.
func (w *Worker) Kill() {
	w.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *Worker) Wait() error {
	return w.catacomb.Wait()
}
