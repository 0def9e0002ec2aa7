// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package dispatcher_test

import (
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/pubsub/v2"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/worker/v4"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	gc "gopkg.in/check.v1"

	"github.com/juju/juju-dashboard/core/multiwatcher"
	"github.com/juju/juju-dashboard/internal/dispatcher"
	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/rpc/params"
)

const wsURL = "wss://one.example.com/api"

type dispatcherSuite struct {
	testing.IsolationSuite
	config   dispatcher.Config
	registry *prometheus.Registry
}

var _ = gc.Suite(&dispatcherSuite{})

func (s *dispatcherSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.registry = prometheus.NewPedanticRegistry()
	s.config = dispatcher.Config{
		Clock: testclock.NewClock(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
		Hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
			Logger: loggo.GetLogger("dashboard.hub"),
		}),
		Store:                store.New(),
		PrometheusRegisterer: s.registry,
	}
}

func (s *dispatcherSuite) newDispatcher(c *gc.C) *dispatcher.Dispatcher {
	d, err := dispatcher.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	s.AddCleanup(func(c *gc.C) {
		d.Kill()
		_ = d.Wait()
	})
	return d
}

func kill(c *gc.C, w worker.Worker) {
	w.Kill()
	c.Assert(w.Wait(), jc.ErrorIsNil)
}

func (s *dispatcherSuite) TestValidate(c *gc.C) {
	c.Assert(s.config.Validate(), jc.ErrorIsNil)

	for _, test := range []struct {
		mutate func(*dispatcher.Config)
		err    string
	}{{
		mutate: func(cfg *dispatcher.Config) { cfg.Clock = nil },
		err:    "missing Clock not valid",
	}, {
		mutate: func(cfg *dispatcher.Config) { cfg.Hub = nil },
		err:    "missing Hub not valid",
	}, {
		mutate: func(cfg *dispatcher.Config) { cfg.Store = nil },
		err:    "missing Store not valid",
	}, {
		mutate: func(cfg *dispatcher.Config) { cfg.PrometheusRegisterer = nil },
		err:    "missing PrometheusRegisterer not valid",
	}} {
		config := s.config
		test.mutate(&config)
		err := config.Validate()
		c.Check(err, gc.ErrorMatches, test.err)
		c.Check(err, jc.ErrorIs, errors.NotValid)

		_, err = dispatcher.New(config)
		c.Check(err, jc.ErrorIs, errors.NotValid)
	}
}

func (s *dispatcherSuite) TestDispatchThenRead(c *gc.C) {
	d := s.newDispatcher(c)

	err := d.Dispatch("updateControllerList", func(st *store.Store) {
		st.UpdateControllerList([]params.ControllerInfo{{Path: "admin/one", UUID: "ctrl-1"}}, wsURL)
	})
	c.Assert(err, jc.ErrorIsNil)

	var controllers []params.ControllerInfo
	err = d.Read(func(st *store.Store) {
		controllers, _ = st.ControllersFor(wsURL)
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(controllers, jc.DeepEquals, []params.ControllerInfo{{Path: "admin/one", UUID: "ctrl-1"}})
}

func (s *dispatcherSuite) TestSubscribe(c *gc.C) {
	d := s.newDispatcher(c)

	changes := make(chan dispatcher.Change, 10)
	unsub := d.Subscribe(func(change dispatcher.Change) {
		changes <- change
	})
	defer unsub()

	err := d.Dispatch("updateModelsError", func(st *store.Store) {
		st.UpdateModelsError("boom")
	})
	c.Assert(err, jc.ErrorIsNil)

	select {
	case change := <-changes:
		c.Check(change.Operation, gc.Equals, "updateModelsError")
		c.Check(change.Revision, gc.Equals, uint64(1))
		c.Check(change.Time.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)), jc.IsTrue)
	case <-time.After(testing.LongWait):
		c.Fatalf("no change published")
	}
}

func (s *dispatcherSuite) TestReadDoesNotPublish(c *gc.C) {
	d := s.newDispatcher(c)

	changes := make(chan dispatcher.Change, 10)
	unsub := d.Subscribe(func(change dispatcher.Change) {
		changes <- change
	})
	defer unsub()

	err := d.Read(func(st *store.Store) {})
	c.Assert(err, jc.ErrorIsNil)
	// A dropped model info leaves the store unchanged.
	err = d.Dispatch("updateModelInfo", func(st *store.Store) {
		st.UpdateModelInfo(params.ModelInfoResults{}, wsURL)
	})
	c.Assert(err, jc.ErrorIsNil)

	select {
	case change := <-changes:
		c.Fatalf("unexpected change %#v", change)
	case <-time.After(testing.ShortWait):
	}
}

func (s *dispatcherSuite) TestIdenticalStatusPublishesOnce(c *gc.C) {
	d := s.newDispatcher(c)

	changes := make(chan dispatcher.Change, 10)
	unsub := d.Subscribe(func(change dispatcher.Change) {
		changes <- change
	})
	defer unsub()

	status := params.FullStatus{
		Model: params.ModelStatusInfo{Name: "default"},
		Applications: map[string]params.ApplicationStatus{
			"mysql": {Status: params.DetailedStatus{Status: "active"}},
		},
	}
	for i := 0; i < 2; i++ {
		err := d.Dispatch("updateModelStatus", func(st *store.Store) {
			st.UpdateModelStatus("m1", status, wsURL)
		})
		c.Assert(err, jc.ErrorIsNil)
	}

	select {
	case change := <-changes:
		c.Check(change.Revision, gc.Equals, uint64(1))
	case <-time.After(testing.LongWait):
		c.Fatalf("no change published")
	}
	select {
	case change := <-changes:
		c.Fatalf("unexpected change %#v", change)
	case <-time.After(testing.ShortWait):
	}

	var revision uint64
	err := d.Read(func(st *store.Store) {
		revision = st.Revision()
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(revision, gc.Equals, uint64(1))
}

func (s *dispatcherSuite) TestProcessDeltas(c *gc.C) {
	d := s.newDispatcher(c)

	applied, err := d.ProcessDeltas([]multiwatcher.Delta{{
		Entity: &multiwatcher.ApplicationInfo{ModelUUID: "uuid", Name: "mysql"},
	}, {
		Entity: &multiwatcher.UnitInfo{ModelUUID: "uuid", Name: "mysql/0", Application: "mysql"},
	}, {
		Entity: &multiwatcher.UnitInfo{Name: "orphan/0"},
	}})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(applied, gc.Equals, 2)

	families, err := s.registry.Gather()
	c.Assert(err, jc.ErrorIsNil)
	deltas := findFamily(families, "juju_dashboard_deltas_applied_total")
	c.Assert(deltas, gc.NotNil)
	c.Check(deltas.GetMetric()[0].GetCounter().GetValue(), gc.Equals, float64(2))
}

func (s *dispatcherSuite) TestMetrics(c *gc.C) {
	d := s.newDispatcher(c)

	err := d.Dispatch("updateModelList", func(st *store.Store) {
		st.UpdateModelList(params.UserModelList{UserModels: []params.UserModel{{
			Model: params.Model{Name: "m1", UUID: "m1"},
		}}}, wsURL)
	})
	c.Assert(err, jc.ErrorIsNil)
	err = d.Dispatch("updateModelStatus", func(st *store.Store) {
		st.UpdateModelStatus("m1", params.FullStatus{
			Applications: map[string]params.ApplicationStatus{
				"app": {Status: params.DetailedStatus{Status: "blocked"}},
			},
		}, wsURL)
	})
	c.Assert(err, jc.ErrorIsNil)

	families, err := s.registry.Gather()
	c.Assert(err, jc.ErrorIsNil)

	mutations := findFamily(families, "juju_dashboard_store_mutations_total")
	c.Assert(mutations, gc.NotNil)
	c.Check(mutations.GetMetric(), gc.HasLen, 2)

	models := findFamily(families, "juju_dashboard_models")
	c.Assert(models, gc.NotNil)
	bySeverity := map[string]float64{}
	for _, m := range models.GetMetric() {
		bySeverity[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
	}
	c.Check(bySeverity, jc.DeepEquals, map[string]float64{
		"running": 0,
		"alert":   0,
		"blocked": 1,
	})
}

func (s *dispatcherSuite) TestStoppedDispatcher(c *gc.C) {
	d := s.newDispatcher(c)
	kill(c, d)

	err := d.Dispatch("updateModelsError", func(st *store.Store) {
		c.Fatalf("ran on a stopped dispatcher")
	})
	c.Check(err, jc.ErrorIs, dispatcher.ErrStopped)

	// The collector is unregistered on the way out.
	c.Check(s.registry.Register(dispatcher.NewMetricsCollector()), jc.ErrorIsNil)
}

func (s *dispatcherSuite) TestDoubleRegistrationFails(c *gc.C) {
	s.newDispatcher(c)
	_, err := dispatcher.New(s.config)
	c.Check(err, gc.ErrorMatches, "registering dispatcher metrics: .*")
}

func (s *dispatcherSuite) TestWatchCoalesces(c *gc.C) {
	d := s.newDispatcher(c)
	w := d.Watch()
	defer kill(c, w)

	for _, message := range []string{"one", "two", "three"} {
		message := message
		err := d.Dispatch("updateModelsError", func(st *store.Store) {
			st.UpdateModelsError(message)
		})
		c.Assert(err, jc.ErrorIsNil)
	}
	waitForRevision(c, w, 3)
}

func (s *dispatcherSuite) TestWatchOperations(c *gc.C) {
	d := s.newDispatcher(c)
	w := d.Watch("clearModelData")
	defer kill(c, w)

	err := d.Dispatch("updateModelsError", func(st *store.Store) {
		st.UpdateModelsError("ignored")
	})
	c.Assert(err, jc.ErrorIsNil)
	err = d.Dispatch("clearModelData", func(st *store.Store) {
		st.ClearModelData()
	})
	c.Assert(err, jc.ErrorIsNil)

	change := waitForRevision(c, w, 2)
	c.Check(change.Operation, gc.Equals, "clearModelData")
}

func (s *dispatcherSuite) TestWatcherStop(c *gc.C) {
	d := s.newDispatcher(c)
	w := d.Watch()
	c.Assert(w.Stop(), jc.ErrorIsNil)

	_, ok := <-w.Changes()
	c.Check(ok, jc.IsFalse)
	// Killing twice is fine.
	kill(c, w)
}

func waitForRevision(c *gc.C, w *dispatcher.ChangeWatcher, revision uint64) dispatcher.Change {
	timeout := time.After(testing.LongWait)
	for {
		select {
		case change, ok := <-w.Changes():
			c.Assert(ok, jc.IsTrue)
			if change.Revision == revision {
				return change
			}
			c.Assert(change.Revision < revision, jc.IsTrue)
		case <-timeout:
			c.Fatalf("revision %d not seen", revision)
		}
	}
}

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	return nil
}
