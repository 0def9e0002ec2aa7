// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package config_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/juju-dashboard/api"
	"github.com/juju/juju-dashboard/internal/config"
	"github.com/juju/juju-dashboard/internal/store"
)

type configSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&configSuite{})

const fullConfig = `
controllers:
  - url: wss://one.example.com/api
    name: production
    watch-models: [uuid-1, uuid-2]
    user: admin
    password: secret
    insecure-skip-verify: true
  - url: wss://jimm.example.com/api
    additional: true
poll-interval: 1m
retry-delay: 2s
retry-attempts: 5
logging-config: <root>=DEBUG
cache-ttl: 10s
listen: 0.0.0.0:9000
login-timeout: 10s
audit-events-limit: 20
`

func (s *configSuite) TestParse(c *gc.C) {
	cfg, err := config.Parse([]byte(fullConfig))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg, jc.DeepEquals, &config.Config{
		Controllers: []config.Controller{{
			URL:                "wss://one.example.com/api",
			Name:               "production",
			WatchModels:        []string{"uuid-1", "uuid-2"},
			User:               "admin",
			Password:           "secret",
			InsecureSkipVerify: true,
		}, {
			URL:        "wss://jimm.example.com/api",
			Additional: true,
		}},
		PollInterval:     time.Minute,
		RetryDelay:       2 * time.Second,
		RetryAttempts:    5,
		LoggingConfig:    "<root>=DEBUG",
		CacheTTL:         10 * time.Second,
		ListenAddress:    "0.0.0.0:9000",
		LoginTimeout:     10 * time.Second,
		AuditEventsLimit: 20,
	})
}

func (s *configSuite) TestDefaults(c *gc.C) {
	cfg, err := config.Parse(nil)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg, jc.DeepEquals, &config.Config{
		PollInterval:     config.DefaultPollInterval,
		RetryDelay:       config.DefaultRetryDelay,
		RetryAttempts:    config.DefaultRetryAttempts,
		LoggingConfig:    config.DefaultLoggingConfig,
		ListenAddress:    config.DefaultListenAddress,
		LoginTimeout:     config.DefaultLoginTimeout,
		AuditEventsLimit: store.DefaultAuditEventsLimit,
	})
}

func (s *configSuite) TestParseErrors(c *gc.C) {
	for _, test := range []struct {
		yaml string
		err  string
	}{{
		yaml: "controllers: [{name: nameless}]",
		err:  `config schema check failed: controllers.*url: expected string, got nothing`,
	}, {
		yaml: "poll-interval: soon",
		err:  `poll-interval: time: invalid duration "soon"`,
	}, {
		yaml: "poll-interval: 0s",
		err:  `poll-interval 0s not valid`,
	}, {
		yaml: "retry-attempts: 0",
		err:  `retry-attempts 0 not valid`,
	}, {
		yaml: "cache-ttl: -1s",
		err:  `cache-ttl -1s not valid`,
	}, {
		yaml: "audit-events-limit: 0",
		err:  `audit-events-limit 0 not valid`,
	}, {
		yaml: "controllers: [{url: a}, {url: a}]",
		err:  `duplicate controller "a" not valid`,
	}, {
		yaml: "controllers: [{url: ''}]",
		err:  `controller without url not valid`,
	}, {
		yaml: "controllers: {",
		err:  `parsing yaml: .*`,
	}} {
		c.Logf("yaml: %s", test.yaml)
		_, err := config.Parse([]byte(test.yaml))
		c.Check(err, gc.ErrorMatches, test.err)
	}
}

func (s *configSuite) TestParseErrorsAreNotValid(c *gc.C) {
	_, err := config.Parse([]byte("retry-attempts: lots"))
	c.Check(err, jc.ErrorIs, errors.NotValid)
}

func (s *configSuite) TestRead(c *gc.C) {
	path := filepath.Join(c.MkDir(), "dashboard.yaml")
	err := os.WriteFile(path, []byte(fullConfig), 0644)
	c.Assert(err, jc.ErrorIsNil)

	cfg, err := config.Read(path)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.Controllers, gc.HasLen, 2)

	_, err = config.Read(filepath.Join(c.MkDir(), "missing.yaml"))
	c.Check(err, gc.ErrorMatches, `reading config ".*missing.yaml": .*`)
}

func (s *configSuite) TestControllerName(c *gc.C) {
	cfg, err := config.Parse([]byte(fullConfig))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.ControllerName("wss://one.example.com/api"), gc.Equals, "production")
	c.Check(cfg.ControllerName("wss://jimm.example.com/api"), gc.Equals, "wss://jimm.example.com/api")
	c.Check(cfg.ControllerName("wss://unknown/api"), gc.Equals, "wss://unknown/api")
}

func (s *configSuite) TestPollerConfig(c *gc.C) {
	cfg, err := config.Parse([]byte(fullConfig))
	c.Assert(err, jc.ErrorIsNil)

	pollerConfig := cfg.PollerConfig(cfg.Controllers[0])
	c.Check(pollerConfig.WSControllerURL, gc.Equals, "wss://one.example.com/api")
	c.Check(pollerConfig.PollInterval, gc.Equals, time.Minute)
	c.Check(pollerConfig.RetryDelay, gc.Equals, 2*time.Second)
	c.Check(pollerConfig.RetryAttempts, gc.Equals, 5)
	c.Check(pollerConfig.WatchedModels, jc.DeepEquals, []string{"uuid-1", "uuid-2"})
	// The transport pieces are left to the caller.
	c.Check(pollerConfig.Validate(), jc.ErrorIs, errors.NotValid)
}

func (s *configSuite) TestClientConfig(c *gc.C) {
	cfg, err := config.Parse([]byte(fullConfig))
	c.Assert(err, jc.ErrorIsNil)

	clientConfig := cfg.ClientConfig(cfg.Controllers[0])
	c.Check(clientConfig.Info, jc.DeepEquals, api.Info{
		Addr:     "wss://one.example.com/api",
		Username: "admin",
		Password: "secret",
	})
	c.Check(clientConfig.DialOpts.LoginTimeout, gc.Equals, 10*time.Second)
	c.Check(clientConfig.DialOpts.InsecureSkipVerify, jc.IsTrue)
	c.Check(clientConfig.AdditionalController, jc.IsFalse)
	// The sessions are left to the caller.
	c.Check(clientConfig.Validate(), gc.ErrorMatches, "missing Sessions not valid")

	c.Check(cfg.ClientConfig(cfg.Controllers[1]).AdditionalController, jc.IsTrue)
}
