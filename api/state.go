// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package api connects to controllers and their models over the
// websocket API and fetches what the dashboard stores.
package api

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/names/v5"
	"github.com/juju/version/v2"
	"gopkg.in/tomb.v2"

	"github.com/juju/juju-dashboard/rpc"
	"github.com/juju/juju-dashboard/rpc/jsoncodec"
	"github.com/juju/juju-dashboard/rpc/params"
)

var logger = loggo.GetLogger("dashboard.api")

// clientVersion is reported on login. Controllers accept clients one
// major version away only when the minor version is zero, so 3.0.0
// works against both 2.9 and 3.x controllers.
var clientVersion = version.MustParse("3.0.0")

// APICaller is implemented by the client-facing connection.
type APICaller interface {
	// APICall makes a call to the API server with the given object type,
	// id, request and parameters. The response is filled in with the
	// call's result if the call is successful.
	APICall(ctx context.Context, facade string, version int, id, method string, args, response interface{}) error

	// BestFacadeVersion returns the newest version of facade that both
	// sides support, or zero if the server does not offer it.
	BestFacadeVersion(facade string) int
}

// Connection represents a logged in connection to a controller or
// model endpoint.
type Connection interface {
	APICaller

	// Close closes the connection.
	Close() error

	// Broken returns a channel that is closed when the connection
	// fails.
	Broken() <-chan struct{}

	// ServerVersion returns the version of the server, if it was
	// reported at login.
	ServerVersion() (version.Number, bool)

	// ControllerTag returns the tag of the controller.
	ControllerTag() names.ControllerTag

	// UserIdentity returns the user tag the controller authenticated.
	UserIdentity() string

	// ControllerAccess returns the access the user holds on the
	// controller, as reported at login.
	ControllerAccess() string

	// Addr returns the address that was dialled.
	Addr() string
}

// OpenFunc is the type of Open.
type OpenFunc func(ctx context.Context, info Info, opts DialOpts) (Connection, error)

// state is the internal implementation of Connection.
type state struct {
	client *rpc.Conn
	addr   string
	clock  clock.Clock

	facadeVersions map[string][]int
	serverVersion  version.Number
	hasVersion     bool
	controllerTag  names.ControllerTag
	identity       string
	access         string

	tomb       tomb.Tomb
	brokenOnce sync.Once
	broken     chan struct{}
}

// Open dials the endpoint described by info and logs in.
func Open(ctx context.Context, info Info, opts DialOpts) (Connection, error) {
	if err := info.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.DialTimeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify,
		},
	}
	addr := info.URL()
	logger.Debugf("dialing %q", addr)
	ws, _, err := dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, errors.Annotatef(err, "dialing %q", addr)
	}
	client := rpc.NewConn(jsoncodec.NewWebsocket(ws))
	client.Start()

	st := &state{
		client: client,
		addr:   addr,
		clock:  opts.Clock,
		broken: make(chan struct{}),
	}
	if err := st.login(ctx, info, opts.LoginTimeout); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Debugf("closing %q after failed login: %v", addr, closeErr)
		}
		return nil, errors.Trace(err)
	}
	st.tomb.Go(func() error {
		return st.heartbeat(opts.PingInterval)
	})
	return st, nil
}

func (st *state) login(ctx context.Context, info Info, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	request := params.LoginRequest{
		ClientVersion: clientVersion.String(),
	}
	if info.Username != "" {
		request.AuthTag = names.NewUserTag(info.Username).String()
		request.Credentials = info.Password
	}
	var result params.LoginResult
	err := st.APICall(ctx, "Admin", facadeVersions["Admin"], "", "Login", &request, &result)
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Timeoutf("login to %q", st.addr)
	}
	if err != nil {
		return errors.Annotatef(err, "login to %q", st.addr)
	}

	st.facadeVersions = make(map[string][]int, len(result.Facades))
	for _, facade := range result.Facades {
		st.facadeVersions[facade.Name] = facade.Versions
	}
	if result.ServerVersion != "" {
		v, err := version.Parse(result.ServerVersion)
		if err != nil {
			return errors.Annotatef(err, "server version from %q", st.addr)
		}
		st.serverVersion, st.hasVersion = v, true
	}
	if result.ControllerTag != "" {
		tag, err := names.ParseControllerTag(result.ControllerTag)
		if err != nil {
			return errors.Annotatef(err, "controller tag from %q", st.addr)
		}
		st.controllerTag = tag
	}
	if result.UserInfo != nil {
		st.identity = result.UserInfo.Identity
		st.access = result.UserInfo.ControllerAccess
	}
	if st.identity == "" && info.Username != "" {
		st.identity = names.NewUserTag(info.Username).String()
	}
	return nil
}

// heartbeat pings the server until the connection is closed or a ping
// fails.
func (st *state) heartbeat(interval time.Duration) error {
	var tick <-chan time.Time
	if interval > 0 {
		tick = st.clock.After(interval)
	}
	for {
		select {
		case <-st.tomb.Dying():
			return tomb.ErrDying
		case <-st.client.Dead():
			st.markBroken()
			return nil
		case <-tick:
			if err := st.ping(); err != nil {
				logger.Infof("ping to %q failed: %v", st.addr, err)
				st.markBroken()
				return nil
			}
			tick = st.clock.After(interval)
		}
	}
}

func (st *state) ping() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-st.tomb.Dying():
			cancel()
		case <-ctx.Done():
		}
	}()
	return st.APICall(ctx, "Pinger", st.BestFacadeVersion("Pinger"), "", "Ping", nil, nil)
}

func (st *state) markBroken() {
	st.brokenOnce.Do(func() { close(st.broken) })
}

// APICall implements APICaller. Errors carrying a well known code are
// translated so that errors.Is works on them.
func (st *state) APICall(ctx context.Context, facade string, version int, id, method string, args, response interface{}) error {
	err := st.client.Call(ctx, rpc.Request{
		Type:    facade,
		Version: version,
		Id:      id,
		Action:  method,
	}, args, response)
	return errors.Trace(params.TranslateWellKnownError(err))
}

// BestFacadeVersion implements APICaller.
func (st *state) BestFacadeVersion(facade string) int {
	return bestVersion(facadeVersions[facade], st.facadeVersions[facade])
}

// Close implements Connection.
func (st *state) Close() error {
	st.tomb.Kill(nil)
	err := st.client.Close()
	if waitErr := st.tomb.Wait(); waitErr != nil && waitErr != tomb.ErrDying {
		logger.Debugf("heartbeat for %q: %v", st.addr, waitErr)
	}
	st.markBroken()
	return errors.Trace(err)
}

// Broken implements Connection.
func (st *state) Broken() <-chan struct{} {
	return st.broken
}

// ServerVersion implements Connection.
func (st *state) ServerVersion() (version.Number, bool) {
	return st.serverVersion, st.hasVersion
}

// ControllerTag implements Connection.
func (st *state) ControllerTag() names.ControllerTag {
	return st.controllerTag
}

// UserIdentity implements Connection.
func (st *state) UserIdentity() string {
	return st.identity
}

// ControllerAccess implements Connection.
func (st *state) ControllerAccess() string {
	return st.access
}

// Addr implements Connection.
func (st *state) Addr() string {
	return st.addr
}
