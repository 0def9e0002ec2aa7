// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package dispatcher runs every store operation on a single goroutine,
// so that a store is only ever touched by one thread of control, and
// announces the changes on a hub.
package dispatcher

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/pubsub/v2"
	"github.com/juju/worker/v4/catacomb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/juju/juju-dashboard/core/multiwatcher"
	"github.com/juju/juju-dashboard/internal/query"
	"github.com/juju/juju-dashboard/internal/store"
)

var logger = loggo.GetLogger("dashboard.dispatcher")

// ChangedTopic is published to after every operation that changed the
// store. The data is a Change.
const ChangedTopic = "store.changed"

// ErrStopped is returned for operations sent to a stopped dispatcher.
const ErrStopped = errors.ConstError("dispatcher stopped")

// Change describes a mutation of the store.
type Change struct {
	Operation string
	Revision  uint64
	Time      time.Time
}

// Config holds the resources and configuration for a Dispatcher.
type Config struct {
	Clock                clock.Clock
	Hub                  *pubsub.SimpleHub
	Store                *store.Store
	PrometheusRegisterer prometheus.Registerer
}

// Validate ensures that the config values are valid.
func (config Config) Validate() error {
	if config.Clock == nil {
		return errors.NotValidf("missing Clock")
	}
	if config.Hub == nil {
		return errors.NotValidf("missing Hub")
	}
	if config.Store == nil {
		return errors.NotValidf("missing Store")
	}
	if config.PrometheusRegisterer == nil {
		return errors.NotValidf("missing PrometheusRegisterer")
	}
	return nil
}

type operation struct {
	name   string
	fn     func(*store.Store)
	mutate bool
	done   chan struct{}
}

// Dispatcher is a worker that owns a store.
type Dispatcher struct {
	catacomb  catacomb.Catacomb
	config    Config
	collector *Collector
	ops       chan operation
}

// New starts a Dispatcher owning config.Store. The store must not be
// used directly once it has been handed over.
func New(config Config) (*Dispatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	collector := NewMetricsCollector()
	if err := config.PrometheusRegisterer.Register(collector); err != nil {
		return nil, errors.Annotate(err, "registering dispatcher metrics")
	}
	d := &Dispatcher{
		config:    config,
		collector: collector,
		ops:       make(chan operation),
	}
	if err := catacomb.Invoke(catacomb.Plan{
		Site: &d.catacomb,
		Work: d.loop,
	}); err != nil {
		config.PrometheusRegisterer.Unregister(collector)
		return nil, errors.Trace(err)
	}
	return d, nil
}

func (d *Dispatcher) loop() error {
	defer d.config.PrometheusRegisterer.Unregister(d.collector)
	for {
		select {
		case <-d.catacomb.Dying():
			return d.catacomb.ErrDying()
		case op := <-d.ops:
			d.run(op)
		}
	}
}

func (d *Dispatcher) run(op operation) {
	defer close(op.done)

	s := d.config.Store
	before := s.Revision()
	op.fn(s)
	if !op.mutate {
		return
	}
	d.collector.mutations.WithLabelValues(op.name).Inc()

	revision := s.Revision()
	if revision == before {
		logger.Tracef("%s left the store unchanged", op.name)
		return
	}
	d.collector.setModels(query.StatusCounts(query.GroupByStatus(s.ModelData(), query.Filters{})))
	_ = d.config.Hub.Publish(ChangedTopic, Change{
		Operation: op.name,
		Revision:  revision,
		Time:      d.config.Clock.Now(),
	})
}

// do hands the operation to the loop and waits for it to complete. Once
// the loop has accepted an operation it always runs it to completion.
func (d *Dispatcher) do(op operation) error {
	op.done = make(chan struct{})
	select {
	case d.ops <- op:
	case <-d.catacomb.Dying():
		return ErrStopped
	}
	<-op.done
	return nil
}

// Dispatch runs a mutation of the store, named for metrics and change
// notifications, and waits for it to complete.
func (d *Dispatcher) Dispatch(name string, fn func(*store.Store)) error {
	return d.do(operation{name: name, fn: fn, mutate: true})
}

// Read runs fn against the store without recording a mutation. fn must
// not modify the store nor keep references into it.
func (d *Dispatcher) Read(fn func(*store.Store)) error {
	return d.do(operation{name: "read", fn: fn})
}

// ProcessDeltas merges watcher deltas into the store and returns how many
// were applied.
func (d *Dispatcher) ProcessDeltas(deltas []multiwatcher.Delta) (int, error) {
	var applied int
	err := d.Dispatch("processAllWatcherDeltas", func(s *store.Store) {
		applied = s.ProcessAllWatcherDeltas(deltas)
	})
	if err != nil {
		return 0, errors.Trace(err)
	}
	d.collector.deltasApplied.Add(float64(applied))
	return applied, nil
}

// Subscribe calls handler for every change of the store. The handler runs
// on a hub goroutine. The returned func unsubscribes.
func (d *Dispatcher) Subscribe(handler func(Change)) func() {
	return d.config.Hub.Subscribe(ChangedTopic, func(topic string, data interface{}) {
		change, ok := data.(Change)
		if !ok {
			logger.Criticalf("programming error: topic data expected Change, got %T", data)
			return
		}
		handler(change)
	})
}

// Kill is part of the worker.Worker interface.
func (d *Dispatcher) Kill() {
	d.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (d *Dispatcher) Wait() error {
	return d.catacomb.Wait()
}
