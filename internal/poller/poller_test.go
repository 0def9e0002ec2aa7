// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package poller_test

import (
	"context"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/pubsub/v2"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/worker/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/mock/gomock"
	gc "gopkg.in/check.v1"

	"github.com/juju/juju-dashboard/core/multiwatcher"
	"github.com/juju/juju-dashboard/core/status"
	"github.com/juju/juju-dashboard/internal/dispatcher"
	"github.com/juju/juju-dashboard/internal/poller"
	"github.com/juju/juju-dashboard/internal/poller/mocks"
	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/rpc/params"
)

const (
	wsURL        = "wss://one.example.com/api"
	pollInterval = time.Minute
)

type authenticator bool

func (a authenticator) IsLoggedIn(string) bool {
	return bool(a)
}

type pollerSuite struct {
	testing.IsolationSuite

	clock      *testclock.Clock
	dispatcher *dispatcher.Dispatcher
	api        *mocks.MockControllerAPI
	config     poller.Config
}

var _ = gc.Suite(&pollerSuite{})

func (s *pollerSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.clock = testclock.NewClock(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	d, err := dispatcher.New(dispatcher.Config{
		Clock: s.clock,
		Hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
			Logger: loggo.GetLogger("dashboard.hub"),
		}),
		Store:                store.New(),
		PrometheusRegisterer: prometheus.NewRegistry(),
	})
	c.Assert(err, jc.ErrorIsNil)
	s.dispatcher = d
	s.AddCleanup(func(c *gc.C) {
		d.Kill()
		_ = d.Wait()
	})
}

func (s *pollerSuite) setupMocks(c *gc.C) *gomock.Controller {
	ctrl := gomock.NewController(c)
	s.api = mocks.NewMockControllerAPI(ctrl)
	s.config = poller.Config{
		WSControllerURL: wsURL,
		API:             s.api,
		Dispatcher:      s.dispatcher,
		Authenticator:   authenticator(true),
		Clock:           s.clock,
		PollInterval:    pollInterval,
		RetryDelay:      time.Second,
		RetryAttempts:   1,
	}
	return ctrl
}

func kill(c *gc.C, w worker.Worker) {
	w.Kill()
	c.Assert(w.Wait(), jc.ErrorIsNil)
}

// waitFor polls the store until check passes.
func (s *pollerSuite) waitFor(c *gc.C, check func(*store.Store) bool) {
	timeout := time.After(testing.LongWait)
	for {
		var done bool
		err := s.dispatcher.Read(func(st *store.Store) {
			done = check(st)
		})
		c.Assert(err, jc.ErrorIsNil)
		if done {
			return
		}
		select {
		case <-timeout:
			c.Fatalf("store never reached the expected state")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// waitForReading waits until a watched model reads its first deltas,
// which happens once it is seeded.
func waitForReading(c *gc.C, reading <-chan struct{}) {
	select {
	case <-reading:
	case <-time.After(testing.LongWait):
		c.Fatalf("watcher never read deltas")
	}
}

func userModels(uuids ...string) params.UserModelList {
	var list params.UserModelList
	for _, uuid := range uuids {
		list.UserModels = append(list.UserModels, params.UserModel{
			Model: params.Model{Name: "model-" + uuid, UUID: uuid, OwnerTag: "user-admin"},
		})
	}
	return list
}

func modelInfo(uuid string, isController bool) params.ModelInfoResults {
	return params.ModelInfoResults{Results: []params.ModelInfoResult{{
		Result: &params.ModelInfo{
			Name:           "model-" + uuid,
			UUID:           uuid,
			ControllerUUID: "ctrl-1",
			IsController:   isController,
			CloudTag:       "cloud-aws",
			CloudRegion:    "us-east-1",
			OwnerTag:       "user-admin",
		},
	}}}
}

func (s *pollerSuite) TestValidate(c *gc.C) {
	defer s.setupMocks(c).Finish()
	c.Assert(s.config.Validate(), jc.ErrorIsNil)

	for _, test := range []struct {
		mutate func(*poller.Config)
		err    string
	}{{
		mutate: func(cfg *poller.Config) { cfg.WSControllerURL = "" },
		err:    "missing WSControllerURL not valid",
	}, {
		mutate: func(cfg *poller.Config) { cfg.API = nil },
		err:    "missing API not valid",
	}, {
		mutate: func(cfg *poller.Config) { cfg.Dispatcher = nil },
		err:    "missing Dispatcher not valid",
	}, {
		mutate: func(cfg *poller.Config) { cfg.Authenticator = nil },
		err:    "missing Authenticator not valid",
	}, {
		mutate: func(cfg *poller.Config) { cfg.Clock = nil },
		err:    "missing Clock not valid",
	}, {
		mutate: func(cfg *poller.Config) { cfg.PollInterval = 0 },
		err:    "non-positive PollInterval not valid",
	}, {
		mutate: func(cfg *poller.Config) { cfg.RetryDelay = -time.Second },
		err:    "negative RetryDelay not valid",
	}, {
		mutate: func(cfg *poller.Config) { cfg.RetryAttempts = 0 },
		err:    "RetryAttempts 0 not valid",
	}} {
		config := s.config
		test.mutate(&config)
		err := config.Validate()
		c.Check(err, gc.ErrorMatches, test.err)
		c.Check(err, jc.ErrorIs, errors.NotValid)
	}
}

func (s *pollerSuite) TestPollPopulatesStore(c *gc.C) {
	defer s.setupMocks(c).Finish()

	s.api.EXPECT().Controllers(gomock.Any()).Return([]params.ControllerInfo{{Path: "admin/one", UUID: "ctrl-1"}}, nil)
	s.api.EXPECT().ListModels(gomock.Any()).Return(userModels("m1", "m2"), nil)
	s.api.EXPECT().ModelStatus(gomock.Any(), "m1").Return(params.FullStatus{
		Model: params.ModelStatusInfo{Name: "model-m1", CloudTag: "cloud-aws"},
	}, nil)
	s.api.EXPECT().ModelInfo(gomock.Any(), "m1").Return(modelInfo("m1", true), nil)
	s.api.EXPECT().ModelStatus(gomock.Any(), "m2").Return(params.FullStatus{
		Applications: map[string]params.ApplicationStatus{
			"mysql": {Status: params.DetailedStatus{Status: "blocked", Info: "needs a relation"}},
		},
	}, nil)
	s.api.EXPECT().ModelInfo(gomock.Any(), "m2").Return(modelInfo("m2", false), nil)

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	defer kill(c, p)

	s.waitFor(c, func(st *store.Store) bool {
		data, ok := st.ModelDataByUUID("m2")
		return ok && data.Info != nil
	})
	err = s.dispatcher.Read(func(st *store.Store) {
		c.Check(st.Models(), gc.HasLen, 2)
		c.Check(st.ModelsLoaded(), jc.IsTrue)
		c.Check(st.ModelsError(), gc.Equals, "")

		m2, _ := st.ModelDataByUUID("m2")
		c.Check(m2.Applications["mysql"].Status.Info, gc.Equals, "needs a relation")

		controllers, _ := st.ControllersFor(wsURL)
		c.Assert(controllers, gc.HasLen, 1)
		c.Check(controllers[0].Location, jc.DeepEquals, &params.ControllerLocation{
			Cloud:  "us-east-1",
			Region: "aws",
		})
	})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *pollerSuite) TestListModelsErrorIsRecorded(c *gc.C) {
	defer s.setupMocks(c).Finish()

	s.api.EXPECT().Controllers(gomock.Any()).Return(nil, errors.Unauthorizedf("controller list"))
	s.api.EXPECT().ListModels(gomock.Any()).Return(params.UserModelList{}, errors.New("connection reset"))

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	defer kill(c, p)

	s.waitFor(c, func(st *store.Store) bool {
		return st.ModelsError() != ""
	})
	err = s.dispatcher.Read(func(st *store.Store) {
		c.Check(st.ModelsError(), gc.Equals, "listing models: connection reset")
		_, known := st.Controllers()
		c.Check(known, jc.IsFalse)
	})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *pollerSuite) TestRetry(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.config.RetryAttempts = 2

	s.api.EXPECT().Controllers(gomock.Any()).Return(nil, nil)
	gomock.InOrder(
		s.api.EXPECT().ListModels(gomock.Any()).Return(params.UserModelList{}, errors.New("try again")),
		s.api.EXPECT().ListModels(gomock.Any()).Return(params.UserModelList{}, nil),
	)

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	defer kill(c, p)

	c.Assert(s.clock.WaitAdvance(time.Second, testing.LongWait, 1), jc.ErrorIsNil)
	s.waitFor(c, func(st *store.Store) bool {
		return st.ModelsLoaded()
	})
}

func (s *pollerSuite) TestPollsEveryInterval(c *gc.C) {
	defer s.setupMocks(c).Finish()

	s.api.EXPECT().Controllers(gomock.Any()).Return(nil, nil).Times(2)
	gomock.InOrder(
		s.api.EXPECT().ListModels(gomock.Any()).Return(userModels("m1"), nil),
		s.api.EXPECT().ListModels(gomock.Any()).Return(params.UserModelList{}, nil),
	)
	s.api.EXPECT().ModelStatus(gomock.Any(), "m1").Return(params.FullStatus{}, nil)
	s.api.EXPECT().ModelInfo(gomock.Any(), "m1").Return(modelInfo("m1", false), nil)

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	defer kill(c, p)

	s.waitFor(c, func(st *store.Store) bool {
		data, ok := st.ModelDataByUUID("m1")
		return ok && data.Info != nil
	})
	c.Assert(s.clock.WaitAdvance(pollInterval, testing.LongWait, 1), jc.ErrorIsNil)

	// The second list drops the model and its snapshot.
	s.waitFor(c, func(st *store.Store) bool {
		return len(st.Models()) == 0 && len(st.ModelData()) == 0
	})
}

func (s *pollerSuite) TestSkipsModelsWhenLoggedOut(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.config.Authenticator = authenticator(false)

	s.api.EXPECT().Controllers(gomock.Any()).Return(nil, nil)
	s.api.EXPECT().ListModels(gomock.Any()).Return(userModels("m1"), nil)

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	defer kill(c, p)

	s.waitFor(c, func(st *store.Store) bool {
		return st.ModelsLoaded()
	})
	// The next poll is only scheduled once this one has finished.
	c.Assert(s.clock.WaitAdvance(0, testing.LongWait, 1), jc.ErrorIsNil)
	err = s.dispatcher.Read(func(st *store.Store) {
		c.Check(st.ModelData(), gc.HasLen, 0)
	})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *pollerSuite) TestWatchedModel(c *gc.C) {
	ctrl := s.setupMocks(c)
	defer ctrl.Finish()
	s.config.WatchedModels = []string{"m1"}

	watcher := mocks.NewMockAllWatcher(ctrl)
	s.api.EXPECT().Controllers(gomock.Any()).Return(nil, nil)
	s.api.EXPECT().ListModels(gomock.Any()).Return(params.UserModelList{}, nil)
	s.api.EXPECT().WatchModel(gomock.Any(), "m1").Return(watcher, nil)
	s.api.EXPECT().ModelStatus(gomock.Any(), "m1").Return(params.FullStatus{
		Model: params.ModelStatusInfo{
			Name:     "model-m1",
			Type:     "iaas",
			CloudTag: "cloud-aws",
			Version:  "3.1.6",
		},
	}, nil)
	gomock.InOrder(
		watcher.EXPECT().Next(gomock.Any()).Return([]multiwatcher.Delta{{
			Type: multiwatcher.Change,
			Entity: &multiwatcher.UnitInfo{
				ModelUUID:      "m1",
				Name:           "mysql/0",
				Application:    "mysql",
				WorkloadStatus: multiwatcher.StatusInfo{Current: status.Active},
			},
		}}, nil),
		watcher.EXPECT().Next(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]multiwatcher.Delta, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	)
	watcher.EXPECT().Stop().Return(nil)

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	defer kill(c, p)

	s.waitFor(c, func(st *store.Store) bool {
		model, ok := st.ModelWatcherData()["m1"]
		return ok && len(model.Units) == 1
	})
	err = s.dispatcher.Read(func(st *store.Store) {
		model := st.ModelWatcherData()["m1"]
		c.Check(model.Units["mysql/0"].WorkloadStatus.Current, gc.Equals, status.Active)
		c.Check(model.Applications["mysql"].UnitCount, gc.Equals, 1)
		c.Assert(model.Model, gc.NotNil)
		c.Check(model.Model.CloudTag, gc.Equals, "cloud-aws")
		c.Check(model.Model.Type, gc.Equals, "iaas")
	})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *pollerSuite) TestStoppedDispatcherKillsPoller(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.dispatcher.Kill()
	c.Assert(s.dispatcher.Wait(), jc.ErrorIsNil)

	s.api.EXPECT().Controllers(gomock.Any()).Return(nil, nil)

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(p.Wait(), jc.ErrorIs, dispatcher.ErrStopped)
}

func (s *pollerSuite) TestPollRecordsFeaturesAndAuditEvents(c *gc.C) {
	ctrl := s.setupMocks(c)
	defer ctrl.Finish()
	details := mocks.NewMockDetailsAPI(ctrl)
	s.config.Details = details

	events := []params.AuditEvent{{UserTag: "user-admin", FacadeName: "Client", FacadeMethod: "FullStatus"}}
	s.api.EXPECT().Controllers(gomock.Any()).Return(nil, nil)
	details.EXPECT().AuditEvents(gomock.Any(), store.DefaultAuditEventsLimit).Return(events, nil)
	s.api.EXPECT().ListModels(gomock.Any()).Return(userModels("m1"), nil)
	s.api.EXPECT().ModelStatus(gomock.Any(), "m1").Return(params.FullStatus{}, nil)
	details.EXPECT().ModelFeatures("m1").Return(store.ModelFeatures{ListSecrets: true}, true)
	s.api.EXPECT().ModelInfo(gomock.Any(), "m1").Return(modelInfo("m1", false), nil)

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	defer kill(c, p)

	s.waitFor(c, func(st *store.Store) bool {
		data, ok := st.ModelDataByUUID("m1")
		return ok && data.Info != nil
	})
	err = s.dispatcher.Read(func(st *store.Store) {
		features, ok := st.ModelFeatures("m1")
		c.Check(ok, jc.IsTrue)
		c.Check(features, jc.DeepEquals, store.ModelFeatures{ListSecrets: true})
		c.Check(st.AuditEvents().Items, jc.DeepEquals, events)
		c.Check(st.AuditEvents().Loaded, jc.IsTrue)
	})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *pollerSuite) TestAuditEventsNotSupportedLeavesStore(c *gc.C) {
	ctrl := s.setupMocks(c)
	defer ctrl.Finish()
	details := mocks.NewMockDetailsAPI(ctrl)
	s.config.Details = details

	s.api.EXPECT().Controllers(gomock.Any()).Return(nil, nil)
	details.EXPECT().AuditEvents(gomock.Any(), store.DefaultAuditEventsLimit).Return(nil, errors.NotSupportedf("audit events"))
	s.api.EXPECT().ListModels(gomock.Any()).Return(params.UserModelList{}, nil)

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	defer kill(c, p)

	s.waitFor(c, func(st *store.Store) bool {
		return st.ModelsLoaded()
	})
	err = s.dispatcher.Read(func(st *store.Store) {
		c.Check(st.AuditEvents(), jc.DeepEquals, store.AuditEventsState{Limit: store.DefaultAuditEventsLimit})
	})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *pollerSuite) TestAuditEventsErrorIsRecorded(c *gc.C) {
	ctrl := s.setupMocks(c)
	defer ctrl.Finish()
	details := mocks.NewMockDetailsAPI(ctrl)
	s.config.Details = details

	s.api.EXPECT().Controllers(gomock.Any()).Return(nil, nil)
	details.EXPECT().AuditEvents(gomock.Any(), store.DefaultAuditEventsLimit).Return(nil, errors.New("permission denied"))
	s.api.EXPECT().ListModels(gomock.Any()).Return(params.UserModelList{}, nil)

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	defer kill(c, p)

	s.waitFor(c, func(st *store.Store) bool {
		return st.ModelsLoaded()
	})
	err = s.dispatcher.Read(func(st *store.Store) {
		c.Check(st.AuditEvents().Errors, gc.Equals, "permission denied")
	})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *pollerSuite) TestWatchedModelFetchesSecretsAndCharms(c *gc.C) {
	ctrl := s.setupMocks(c)
	defer ctrl.Finish()
	details := mocks.NewMockDetailsAPI(ctrl)
	s.config.Details = details
	s.config.WatchedModels = []string{"m1"}

	secrets := []params.ListSecretResult{{URI: "secret:one", Label: "db-password"}}
	watcher := mocks.NewMockAllWatcher(ctrl)
	s.api.EXPECT().Controllers(gomock.Any()).Return(nil, nil)
	details.EXPECT().AuditEvents(gomock.Any(), gomock.Any()).Return(nil, errors.NotSupportedf("audit events"))
	s.api.EXPECT().ListModels(gomock.Any()).Return(params.UserModelList{}, nil)
	s.api.EXPECT().WatchModel(gomock.Any(), "m1").Return(watcher, nil)
	s.api.EXPECT().ModelStatus(gomock.Any(), "m1").Return(params.FullStatus{
		Applications: map[string]params.ApplicationStatus{
			"db":      {Charm: "ch:amd64/postgresql-10"},
			"replica": {Charm: "ch:amd64/postgresql-10"},
			"cache":   {Charm: "ch:amd64/redis-3"},
		},
	}, nil)
	details.EXPECT().ModelFeatures("m1").Return(store.ModelFeatures{ListSecrets: true, ManageSecrets: true}, true)
	details.EXPECT().ListSecrets(gomock.Any(), "m1").Return(secrets, nil)
	details.EXPECT().CharmInfo(gomock.Any(), "m1", "ch:amd64/postgresql-10").Return(params.Charm{URL: "ch:amd64/postgresql-10", Revision: 10}, nil)
	details.EXPECT().CharmInfo(gomock.Any(), "m1", "ch:amd64/redis-3").Return(params.Charm{}, errors.New("boom"))
	reading := make(chan struct{})
	watcher.EXPECT().Next(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]multiwatcher.Delta, error) {
		close(reading)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	watcher.EXPECT().Stop().Return(nil)

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	defer kill(c, p)
	waitForReading(c, reading)

	s.waitFor(c, func(st *store.Store) bool {
		return len(st.Charms()) == 1
	})
	err = s.dispatcher.Read(func(st *store.Store) {
		modelSecrets, ok := st.Secrets("m1")
		c.Assert(ok, jc.IsTrue)
		c.Check(modelSecrets, jc.DeepEquals, store.ModelSecrets{Items: secrets, Loaded: true})
		c.Check(st.Charms(), jc.DeepEquals, []params.Charm{{URL: "ch:amd64/postgresql-10", Revision: 10}})
	})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *pollerSuite) TestWatchedModelWithoutSecrets(c *gc.C) {
	ctrl := s.setupMocks(c)
	defer ctrl.Finish()
	details := mocks.NewMockDetailsAPI(ctrl)
	s.config.Details = details
	s.config.WatchedModels = []string{"m1"}

	watcher := mocks.NewMockAllWatcher(ctrl)
	s.api.EXPECT().Controllers(gomock.Any()).Return(nil, nil)
	details.EXPECT().AuditEvents(gomock.Any(), gomock.Any()).Return(nil, errors.NotSupportedf("audit events"))
	s.api.EXPECT().ListModels(gomock.Any()).Return(params.UserModelList{}, nil)
	s.api.EXPECT().WatchModel(gomock.Any(), "m1").Return(watcher, nil)
	s.api.EXPECT().ModelStatus(gomock.Any(), "m1").Return(params.FullStatus{
		Model: params.ModelStatusInfo{Name: "model-m1", Type: "iaas"},
	}, nil)
	details.EXPECT().ModelFeatures("m1").Return(store.ModelFeatures{}, false)
	reading := make(chan struct{})
	watcher.EXPECT().Next(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]multiwatcher.Delta, error) {
		close(reading)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	watcher.EXPECT().Stop().Return(nil)

	p, err := poller.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	defer kill(c, p)
	waitForReading(c, reading)

	s.waitFor(c, func(st *store.Store) bool {
		model, ok := st.ModelWatcherData()["m1"]
		return ok && model.Model != nil
	})
	err = s.dispatcher.Read(func(st *store.Store) {
		_, ok := st.Secrets("m1")
		c.Check(ok, jc.IsFalse)
		c.Check(st.Charms(), gc.HasLen, 0)
	})
	c.Assert(err, jc.ErrorIsNil)
}
