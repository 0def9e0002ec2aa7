// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config reads the dashboard engine configuration.
package config

import (
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v2"

	"github.com/juju/juju-dashboard/api"
	"github.com/juju/juju-dashboard/internal/poller"
	"github.com/juju/juju-dashboard/internal/store"
)

const (
	// DefaultPollInterval is the time between two polls of a controller.
	DefaultPollInterval = 30 * time.Second

	// DefaultRetryDelay is the time between two attempts of a call.
	DefaultRetryDelay = 5 * time.Second

	// DefaultRetryAttempts is the number of attempts of a call.
	DefaultRetryAttempts = 3

	// DefaultLoggingConfig is the loggo configuration used when none is
	// given.
	DefaultLoggingConfig = "<root>=WARNING"

	// DefaultListenAddress is where the daemon serves its views.
	DefaultListenAddress = "localhost:8036"

	// DefaultLoginTimeout bounds a controller login.
	DefaultLoginTimeout = 5 * time.Second
)

// Controller is a controller the dashboard connects to.
type Controller struct {
	URL         string
	Name        string
	WatchModels []string

	// User and Password are local credentials. Without them the login
	// is anonymous.
	User     string
	Password string

	// Additional marks a controller added by the user on top of the
	// primary one.
	Additional bool

	// InsecureSkipVerify accepts the controller's self signed
	// certificate.
	InsecureSkipVerify bool
}

// Config is the engine configuration.
type Config struct {
	Controllers   []Controller
	PollInterval  time.Duration
	RetryDelay    time.Duration
	RetryAttempts int
	LoggingConfig string
	// CacheTTL bounds how long derived views are kept. Zero keeps them
	// until the store changes.
	CacheTTL time.Duration

	// ListenAddress is where the daemon serves its views.
	ListenAddress string
	// LoginTimeout bounds a controller login.
	LoginTimeout time.Duration
	// AuditEventsLimit is how many audit events are fetched from a
	// JAAS aggregator.
	AuditEventsLimit int
}

var controllerChecker = schema.FieldMap(
	schema.Fields{
		"url":                  schema.String(),
		"name":                 schema.String(),
		"watch-models":         schema.List(schema.String()),
		"user":                 schema.String(),
		"password":             schema.String(),
		"additional":           schema.Bool(),
		"insecure-skip-verify": schema.Bool(),
	},
	schema.Defaults{
		"name":                 "",
		"watch-models":         schema.Omit,
		"user":                 "",
		"password":             "",
		"additional":           false,
		"insecure-skip-verify": false,
	},
)

var configChecker = schema.FieldMap(
	schema.Fields{
		"controllers":        schema.List(controllerChecker),
		"poll-interval":      schema.String(),
		"retry-delay":        schema.String(),
		"retry-attempts":     schema.ForceInt(),
		"logging-config":     schema.String(),
		"cache-ttl":          schema.String(),
		"listen":             schema.String(),
		"login-timeout":      schema.String(),
		"audit-events-limit": schema.ForceInt(),
	},
	schema.Defaults{
		"controllers":        schema.Omit,
		"poll-interval":      DefaultPollInterval.String(),
		"retry-delay":        DefaultRetryDelay.String(),
		"retry-attempts":     DefaultRetryAttempts,
		"logging-config":     DefaultLoggingConfig,
		"cache-ttl":          "0s",
		"listen":             DefaultListenAddress,
		"login-timeout":      DefaultLoginTimeout.String(),
		"audit-events-limit": store.DefaultAuditEventsLimit,
	},
)

// Read reads and parses the configuration file at path.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "reading config %q", path)
	}
	cfg, err := Parse(data)
	return cfg, errors.Annotatef(err, "config %q", path)
}

// Parse parses YAML configuration, filling in defaults for missing keys.
func Parse(data []byte) (*Config, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Annotate(err, "parsing yaml")
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	coerced, err := configChecker.Coerce(raw, nil)
	if err != nil {
		return nil, errors.NewNotValid(err, "config schema check failed")
	}
	valid := coerced.(map[string]interface{})

	cfg := &Config{
		RetryAttempts:    valid["retry-attempts"].(int),
		LoggingConfig:    valid["logging-config"].(string),
		ListenAddress:    valid["listen"].(string),
		AuditEventsLimit: valid["audit-events-limit"].(int),
	}
	for key, target := range map[string]*time.Duration{
		"poll-interval": &cfg.PollInterval,
		"retry-delay":   &cfg.RetryDelay,
		"cache-ttl":     &cfg.CacheTTL,
		"login-timeout": &cfg.LoginTimeout,
	} {
		d, err := time.ParseDuration(valid[key].(string))
		if err != nil {
			return nil, errors.NewNotValid(err, key)
		}
		*target = d
	}
	if controllers, ok := valid["controllers"].([]interface{}); ok {
		for _, c := range controllers {
			fields := c.(map[string]interface{})
			controller := Controller{
				URL:                fields["url"].(string),
				Name:               fields["name"].(string),
				User:               fields["user"].(string),
				Password:           fields["password"].(string),
				Additional:         fields["additional"].(bool),
				InsecureSkipVerify: fields["insecure-skip-verify"].(bool),
			}
			if models, ok := fields["watch-models"].([]interface{}); ok {
				for _, m := range models {
					controller.WatchModels = append(controller.WatchModels, m.(string))
				}
			}
			cfg.Controllers = append(cfg.Controllers, controller)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

// Validate ensures that the config values are valid.
func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return errors.NotValidf("poll-interval %v", c.PollInterval)
	}
	if c.RetryDelay < 0 {
		return errors.NotValidf("retry-delay %v", c.RetryDelay)
	}
	if c.RetryAttempts < 1 {
		return errors.NotValidf("retry-attempts %d", c.RetryAttempts)
	}
	if c.CacheTTL < 0 {
		return errors.NotValidf("cache-ttl %v", c.CacheTTL)
	}
	if c.LoginTimeout < 0 {
		return errors.NotValidf("login-timeout %v", c.LoginTimeout)
	}
	if c.AuditEventsLimit < 1 {
		return errors.NotValidf("audit-events-limit %d", c.AuditEventsLimit)
	}
	seen := make(map[string]bool)
	for _, controller := range c.Controllers {
		if controller.URL == "" {
			return errors.NotValidf("controller without url")
		}
		if seen[controller.URL] {
			return errors.NotValidf("duplicate controller %q", controller.URL)
		}
		seen[controller.URL] = true
	}
	return nil
}

// ControllerName returns the configured name of the controller at url,
// or url itself.
func (c Config) ControllerName(url string) string {
	for _, controller := range c.Controllers {
		if controller.URL == url && controller.Name != "" {
			return controller.Name
		}
	}
	return url
}

// PollerConfig returns the poller configuration for one controller. The
// caller supplies the API, dispatcher, authenticator and clock.
func (c Config) PollerConfig(controller Controller) poller.Config {
	return poller.Config{
		WSControllerURL: controller.URL,
		PollInterval:    c.PollInterval,
		RetryDelay:      c.RetryDelay,
		RetryAttempts:   c.RetryAttempts,
		WatchedModels:   append([]string(nil), controller.WatchModels...),
	}
}

// ClientConfig returns the API client configuration for one controller.
// The caller supplies the sessions.
func (c Config) ClientConfig(controller Controller) api.ClientConfig {
	opts := api.DefaultDialOpts()
	opts.LoginTimeout = c.LoginTimeout
	opts.InsecureSkipVerify = controller.InsecureSkipVerify
	return api.ClientConfig{
		Info: api.Info{
			Addr:     controller.URL,
			Username: controller.User,
			Password: controller.Password,
		},
		DialOpts:             opts,
		AdditionalController: controller.Additional,
	}
}
