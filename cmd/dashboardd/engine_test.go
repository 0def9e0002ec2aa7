// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/juju/names/v5"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/version/v2"
	"github.com/juju/worker/v4/workertest"
	gc "gopkg.in/check.v1"

	"github.com/juju/juju-dashboard/api"
	"github.com/juju/juju-dashboard/internal/config"
	"github.com/juju/juju-dashboard/internal/httpserver"
	"github.com/juju/juju-dashboard/internal/views"
	"github.com/juju/juju-dashboard/rpc/params"
)

const (
	controllerURL = "wss://one.example.com/api"
	modelUUID     = "6a4b2c1e-4b1d-4f3c-8a55-5d1e2a6f0c3b"
)

// fakeConn answers the calls a poll makes with canned results.
type fakeConn struct {
	info    api.Info
	results map[string]interface{}
	broken  chan struct{}
}

func (c *fakeConn) APICall(ctx context.Context, facade string, version int, id, method string, args, response interface{}) error {
	result, ok := c.results[facade+"."+method]
	if !ok {
		return errors.NotImplementedf("%s.%s", facade, method)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return errors.Trace(err)
	}
	return json.Unmarshal(data, response)
}

func (c *fakeConn) BestFacadeVersion(facade string) int {
	if facade == "JIMM" {
		return 0
	}
	return 1
}

func (c *fakeConn) Close() error                          { return nil }
func (c *fakeConn) Broken() <-chan struct{}               { return c.broken }
func (c *fakeConn) ServerVersion() (version.Number, bool) { return version.MustParse("3.1.6"), true }
func (c *fakeConn) ControllerTag() names.ControllerTag {
	return names.NewControllerTag("deadbeef-1bad-500d-9000-4b1d0d06f00d")
}
func (c *fakeConn) UserIdentity() string     { return "user-admin" }
func (c *fakeConn) ControllerAccess() string { return "superuser" }
func (c *fakeConn) Addr() string             { return c.info.URL() }

type engineSuite struct {
	testing.IsolationSuite

	mu     sync.Mutex
	opened []api.Info
}

var _ = gc.Suite(&engineSuite{})

func (s *engineSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.opened = nil
}

func (s *engineSuite) open(ctx context.Context, info api.Info, opts api.DialOpts) (api.Connection, error) {
	s.mu.Lock()
	s.opened = append(s.opened, info)
	s.mu.Unlock()
	return &fakeConn{
		info:   info,
		broken: make(chan struct{}),
		results: map[string]interface{}{
			"Controller.ControllerConfig": params.ControllerConfigResult{Config: map[string]interface{}{
				"controller-name": "production",
				"controller-uuid": "ctrl-1",
			}},
			"ModelManager.ListModels": params.UserModelList{UserModels: []params.UserModel{{
				Model: params.Model{Name: "db", UUID: modelUUID, Type: "iaas", OwnerTag: "user-admin"},
			}}},
			"ModelManager.ModelInfo": params.ModelInfoResults{Results: []params.ModelInfoResult{{
				Result: &params.ModelInfo{
					Name:           "db",
					UUID:           modelUUID,
					ControllerUUID: "ctrl-1",
					CloudTag:       "cloud-aws",
					OwnerTag:       "user-admin",
				},
			}}},
			"Client.FullStatus": params.FullStatus{
				Model: params.ModelStatusInfo{Name: "db", CloudTag: "cloud-aws"},
				Applications: map[string]params.ApplicationStatus{
					"mysql": {Status: params.DetailedStatus{Status: "blocked", Info: "hook failed"}},
				},
			},
			"Annotations.Get": params.AnnotationsGetResults{},
		},
	}, nil
}

func (s *engineSuite) newEngine(c *gc.C, cfg *config.Config) *engine {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, jc.ErrorIsNil)
	e, err := newEngine(engineConfig{
		Config:   cfg,
		Clock:    testclock.NewClock(time.Now()),
		Listener: listener,
		Open:     s.open,
	})
	c.Assert(err, jc.ErrorIsNil)
	return e
}

func getJSON(c *gc.C, url string, result interface{}) {
	resp, err := http.Get(url)
	c.Assert(err, jc.ErrorIsNil)
	defer resp.Body.Close()
	c.Assert(resp.StatusCode, gc.Equals, http.StatusOK)
	c.Assert(json.NewDecoder(resp.Body).Decode(result), jc.ErrorIsNil)
}

func (s *engineSuite) TestValidate(c *gc.C) {
	_, err := newEngine(engineConfig{})
	c.Check(err, jc.ErrorIs, errors.NotValid)
	c.Check(err, gc.ErrorMatches, "missing Config not valid")
}

func (s *engineSuite) TestPollsIntoViews(c *gc.C) {
	cfg, err := config.Parse([]byte(`
controllers:
  - url: wss://one.example.com/api
    name: production
    user: admin
    password: secret
`))
	c.Assert(err, jc.ErrorIsNil)
	e := s.newEngine(c, cfg)
	defer workertest.DirtyKill(c, e)

	base := "http://" + e.Addr()
	var blocked []views.Model
	timeout := time.After(testing.LongWait)
	for len(blocked) == 0 {
		select {
		case <-timeout:
			c.Fatalf("model never reached the views")
		case <-time.After(testing.ShortWait):
		}
		var summary views.Summary
		getJSON(c, base+"/models", &summary)
		c.Assert(summary.Groups, gc.Not(gc.HasLen), 0)
		blocked = summary.Groups[0].Models
	}
	c.Check(blocked[0].UUID, gc.Equals, modelUUID)
	c.Check(blocked[0].Messages, jc.DeepEquals, []views.Message{{
		Application: "mysql",
		Message:     "hook failed",
	}})

	var controllers httpserver.ControllersResponse
	getJSON(c, base+"/controllers", &controllers)
	c.Check(controllers.LoggedIn, jc.DeepEquals, []string{controllerURL})
	c.Assert(controllers.Controllers, gc.HasLen, 1)
	c.Check(controllers.Controllers[0].Name, gc.Equals, "production")
	c.Check(controllers.Controllers[0].Version, gc.Equals, "3.1.6")

	workertest.CleanKill(c, e)

	s.mu.Lock()
	defer s.mu.Unlock()
	c.Assert(len(s.opened) >= 2, jc.IsTrue)
	c.Check(s.opened[0], jc.DeepEquals, api.Info{
		Addr:     controllerURL,
		Username: "admin",
		Password: "secret",
	})
	c.Check(s.opened[1].ModelUUID, gc.Equals, modelUUID)
}

func (s *engineSuite) TestInvalidControllerFailsStart(c *gc.C) {
	cfg, err := config.Parse([]byte(`
controllers:
  - url: https://one.example.com
`))
	c.Assert(err, jc.ErrorIsNil)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, jc.ErrorIsNil)
	defer listener.Close()

	_, err = newEngine(engineConfig{
		Config:   cfg,
		Clock:    testclock.NewClock(time.Now()),
		Listener: listener,
		Open:     s.open,
	})
	c.Check(err, gc.ErrorMatches, `controller "https://one.example.com": address "https://one.example.com" scheme not valid`)
	c.Check(s.opened, gc.HasLen, 0)
}
