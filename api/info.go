// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"net/url"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/names/v5"
)

// Info holds the information needed to connect to a controller, or to
// one of its models.
type Info struct {
	// Addr is the controller API endpoint, for example
	// wss://10.0.0.1:17070/api.
	Addr string

	// ModelUUID selects a model endpoint. It is empty for a
	// controller connection.
	ModelUUID string

	// Username and Password are the local user credentials. When
	// Username is empty the login is anonymous, which only succeeds
	// against controllers that use an external identity provider.
	Username string
	Password string
}

// Validate ensures that the info values are valid.
func (info Info) Validate() error {
	if info.Addr == "" {
		return errors.NotValidf("missing Addr")
	}
	u, err := url.Parse(info.Addr)
	if err != nil {
		return errors.NotValidf("address %q", info.Addr)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.NotValidf("address %q scheme", info.Addr)
	}
	if !strings.HasSuffix(u.Path, "/api") {
		return errors.NotValidf("address %q without /api path", info.Addr)
	}
	if info.ModelUUID != "" && !names.IsValidModel(info.ModelUUID) {
		return errors.NotValidf("model UUID %q", info.ModelUUID)
	}
	if info.Username != "" && !names.IsValidUser(info.Username) {
		return errors.NotValidf("user name %q", info.Username)
	}
	return nil
}

// URL returns the endpoint to dial.
func (info Info) URL() string {
	if info.ModelUUID == "" {
		return info.Addr
	}
	return ModelURL(info.Addr, info.ModelUUID)
}

// ModelURL returns the model endpoint of the model with the given UUID
// on the controller at addr.
func ModelURL(addr, modelUUID string) string {
	u, err := url.Parse(addr)
	if err != nil || !strings.HasSuffix(u.Path, "/api") {
		return addr
	}
	u.Path = strings.TrimSuffix(u.Path, "/api") + "/model/" + modelUUID + "/api"
	return u.String()
}

// DialOpts holds configuration for connecting to a controller.
type DialOpts struct {
	// DialTimeout bounds the websocket handshake.
	DialTimeout time.Duration

	// LoginTimeout bounds the Admin.Login call.
	LoginTimeout time.Duration

	// PingInterval is how often a long lived connection pings the
	// controller. Zero disables the pinger.
	PingInterval time.Duration

	// InsecureSkipVerify skips verification of the controller
	// certificate, which is usually self signed.
	InsecureSkipVerify bool

	// Clock drives the pinger.
	Clock clock.Clock
}

// DefaultDialOpts returns a DialOpts representing the default
// parameters for contacting a controller.
func DefaultDialOpts() DialOpts {
	return DialOpts{
		DialTimeout:  30 * time.Second,
		LoginTimeout: 5 * time.Second,
		PingInterval: 20 * time.Second,
		Clock:        clock.WallClock,
	}
}
