// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"context"
	"sort"
	"sync"

	"github.com/juju/errors"
	"github.com/juju/names/v5"

	"github.com/juju/juju-dashboard/internal/poller"
	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/rpc/params"
)

var (
	_ poller.ControllerAPI = (*Client)(nil)
	_ poller.DetailsAPI    = (*Client)(nil)
)

// ClientConfig holds the configuration for a Client.
type ClientConfig struct {
	// Info describes the controller endpoint. ModelUUID must be
	// empty, model endpoints are derived from Addr.
	Info     Info
	DialOpts DialOpts

	// Sessions records whether the controller is logged in.
	Sessions *Sessions

	// AdditionalController marks every controller listed by a JAAS
	// aggregator as added by the user rather than configured.
	AdditionalController bool

	// Open connects to an endpoint. It defaults to Open.
	Open OpenFunc
}

// Validate ensures that the config values are valid.
func (config ClientConfig) Validate() error {
	if err := config.Info.Validate(); err != nil {
		return errors.Trace(err)
	}
	if config.Info.ModelUUID != "" {
		return errors.NotValidf("model UUID %q on controller info", config.Info.ModelUUID)
	}
	if config.Sessions == nil {
		return errors.NotValidf("missing Sessions")
	}
	if config.Open == nil {
		return errors.NotValidf("missing Open")
	}
	return nil
}

// Client fetches what the dashboard stores from one controller. It
// keeps a long lived controller connection, reopened when it breaks,
// and opens short lived connections to model endpoints.
type Client struct {
	config ClientConfig

	mu   sync.Mutex
	conn Connection

	// features holds what each model endpoint offered when its status
	// was last fetched.
	featuresMu sync.Mutex
	features   map[string]store.ModelFeatures
}

// NewClient returns a Client for the controller described by config.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Open == nil {
		config.Open = Open
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Client{
		config:   config,
		features: make(map[string]store.ModelFeatures),
	}, nil
}

func (c *Client) wsControllerURL() string {
	return c.config.Info.Addr
}

func (c *Client) open(ctx context.Context, modelUUID string) (Connection, error) {
	info := c.config.Info
	info.ModelUUID = modelUUID
	conn, err := c.config.Open(ctx, info, c.config.DialOpts)
	if errors.Is(err, errors.Unauthorized) {
		c.config.Sessions.SetLoggedIn(c.wsControllerURL(), false)
	}
	return conn, errors.Trace(err)
}

// controllerConn returns the controller connection, dialling it if
// there is none or the last one broke.
func (c *Client) controllerConn(ctx context.Context) (Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		select {
		case <-c.conn.Broken():
			logger.Infof("connection to %q broken, reconnecting", c.wsControllerURL())
			c.closeConn()
		default:
			return c.conn, nil
		}
	}
	conn, err := c.open(ctx, "")
	if err != nil {
		return nil, errors.Trace(err)
	}
	c.conn = conn
	c.config.Sessions.SetLoggedIn(c.wsControllerURL(), true)
	if tag, err := names.ParseUserTag(conn.UserIdentity()); err == nil {
		c.config.Sessions.SetUser(c.wsControllerURL(), tag.Id(), conn.ControllerAccess())
	}
	return conn, nil
}

// closeConn must be called with mu held.
func (c *Client) closeConn() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil {
		logger.Debugf("closing connection to %q: %v", c.wsControllerURL(), err)
	}
	c.conn = nil
	c.config.Sessions.SetLoggedIn(c.wsControllerURL(), false)
}

// Close closes the controller connection and logs the controller out.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeConn()
	return nil
}

// Controllers implements poller.ControllerAPI. A JAAS aggregator lists
// the controllers it fronts, a direct controller describes itself from
// its config.
func (c *Client) Controllers(ctx context.Context) ([]params.ControllerInfo, error) {
	conn, err := c.controllerConn(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if v := conn.BestFacadeVersion("JIMM"); v > 0 {
		var result params.ListControllersResponse
		if err := conn.APICall(ctx, "JIMM", v, "", "ListControllers", nil, &result); err != nil {
			return nil, errors.Annotate(err, "listing JAAS controllers")
		}
		for i := range result.Controllers {
			result.Controllers[i].AdditionalController = c.config.AdditionalController
		}
		return result.Controllers, nil
	}

	var result params.ControllerConfigResult
	if err := conn.APICall(ctx, "Controller", conn.BestFacadeVersion("Controller"), "", "ControllerConfig", nil, &result); err != nil {
		return nil, errors.Annotate(err, "getting controller config")
	}
	name, _ := result.Config["controller-name"].(string)
	uuid, _ := result.Config["controller-uuid"].(string)
	if uuid == "" {
		uuid = conn.ControllerTag().Id()
	}
	info := params.ControllerInfo{Path: name, UUID: uuid}
	if v, ok := conn.ServerVersion(); ok {
		info.Version = v.String()
	}
	return []params.ControllerInfo{info}, nil
}

// ListModels implements poller.ControllerAPI.
func (c *Client) ListModels(ctx context.Context) (params.UserModelList, error) {
	var result params.UserModelList
	conn, err := c.controllerConn(ctx)
	if err != nil {
		return result, errors.Trace(err)
	}
	identity := conn.UserIdentity()
	if identity == "" {
		return result, errors.NotFoundf("user identity for %q", c.wsControllerURL())
	}
	err = conn.APICall(ctx, "ModelManager", conn.BestFacadeVersion("ModelManager"), "", "ListModels", params.Entity{Tag: identity}, &result)
	return result, errors.Annotate(err, "listing models")
}

// ModelInfo implements poller.ControllerAPI.
func (c *Client) ModelInfo(ctx context.Context, modelUUID string) (params.ModelInfoResults, error) {
	var results params.ModelInfoResults
	conn, err := c.controllerConn(ctx)
	if err != nil {
		return results, errors.Trace(err)
	}
	args := params.Entities{Entities: []params.Entity{{Tag: names.NewModelTag(modelUUID).String()}}}
	err = conn.APICall(ctx, "ModelManager", conn.BestFacadeVersion("ModelManager"), "", "ModelInfo", args, &results)
	return results, errors.Annotatef(err, "getting info of model %q", modelUUID)
}

// withModelConn runs fn over a short lived connection to a model
// endpoint.
func (c *Client) withModelConn(ctx context.Context, modelUUID string, fn func(Connection) error) error {
	conn, err := c.open(ctx, modelUUID)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Debugf("closing connection to model %q: %v", modelUUID, err)
		}
	}()
	return fn(conn)
}

// ModelStatus implements poller.ControllerAPI. The status is fetched
// over a model connection and carries the non-empty annotations of
// each application. The facades the endpoint offers are recorded as the
// model's features.
func (c *Client) ModelStatus(ctx context.Context, modelUUID string) (params.FullStatus, error) {
	var status params.FullStatus
	err := c.withModelConn(ctx, modelUUID, func(conn Connection) error {
		c.recordFeatures(modelUUID, conn)
		args := params.StatusParams{Patterns: []string{}}
		if err := conn.APICall(ctx, "Client", conn.BestFacadeVersion("Client"), "", "FullStatus", args, &status); err != nil {
			return errors.Annotatef(err, "getting status of model %q", modelUUID)
		}
		annotations, err := applicationAnnotations(ctx, conn, status.Applications)
		if err != nil {
			logger.Warningf("unable to get annotations of model %q: %v", modelUUID, err)
			return nil
		}
		status.Annotations = annotations
		return nil
	})
	return status, errors.Trace(err)
}

// recordFeatures notes the features a model endpoint offers. Secrets
// version 1 can only list.
func (c *Client) recordFeatures(modelUUID string, conn Connection) {
	secrets := conn.BestFacadeVersion("Secrets")
	c.featuresMu.Lock()
	defer c.featuresMu.Unlock()
	c.features[modelUUID] = store.ModelFeatures{
		ListSecrets:   secrets > 0,
		ManageSecrets: secrets > 1,
	}
}

// ModelFeatures implements poller.DetailsAPI.
func (c *Client) ModelFeatures(modelUUID string) (store.ModelFeatures, bool) {
	c.featuresMu.Lock()
	defer c.featuresMu.Unlock()
	features, ok := c.features[modelUUID]
	return features, ok
}

// ListSecrets implements poller.DetailsAPI. Secret values are never
// requested.
func (c *Client) ListSecrets(ctx context.Context, modelUUID string) ([]params.ListSecretResult, error) {
	var results params.ListSecretResults
	err := c.withModelConn(ctx, modelUUID, func(conn Connection) error {
		version := conn.BestFacadeVersion("Secrets")
		if version == 0 {
			return errors.NotSupportedf("secrets on model %q", modelUUID)
		}
		args := params.ListSecretsArgs{ShowSecrets: false}
		return errors.Annotatef(
			conn.APICall(ctx, "Secrets", version, "", "ListSecrets", args, &results),
			"listing secrets of model %q", modelUUID,
		)
	})
	return results.Results, errors.Trace(err)
}

// CharmInfo implements poller.DetailsAPI.
func (c *Client) CharmInfo(ctx context.Context, modelUUID, charmURL string) (params.Charm, error) {
	var charm params.Charm
	err := c.withModelConn(ctx, modelUUID, func(conn Connection) error {
		args := params.CharmURL{URL: charmURL}
		return errors.Annotatef(
			conn.APICall(ctx, "Charms", conn.BestFacadeVersion("Charms"), "", "CharmInfo", args, &charm),
			"getting charm %q", charmURL,
		)
	})
	return charm, errors.Trace(err)
}

// AuditEvents implements poller.DetailsAPI. Only JAAS aggregators
// offering JIMM version 3 or later keep audit events.
func (c *Client) AuditEvents(ctx context.Context, limit int) ([]params.AuditEvent, error) {
	conn, err := c.controllerConn(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	version := conn.BestFacadeVersion("JIMM")
	if version < 3 {
		return nil, errors.NotSupportedf("audit events on %q", c.wsControllerURL())
	}
	var result params.AuditEvents
	args := params.FindAuditEventsRequest{Limit: limit}
	if err := conn.APICall(ctx, "JIMM", version, "", "FindAuditEvents", args, &result); err != nil {
		return nil, errors.Annotate(err, "finding audit events")
	}
	return result.Events, nil
}

func applicationAnnotations(ctx context.Context, caller APICaller, applications map[string]params.ApplicationStatus) (map[string]map[string]string, error) {
	annotations := make(map[string]map[string]string)
	if len(applications) == 0 {
		return annotations, nil
	}
	appNames := make([]string, 0, len(applications))
	for name := range applications {
		appNames = append(appNames, name)
	}
	sort.Strings(appNames)
	args := params.Entities{Entities: make([]params.Entity, len(appNames))}
	for i, name := range appNames {
		args.Entities[i].Tag = names.NewApplicationTag(name).String()
	}

	var results params.AnnotationsGetResults
	if err := caller.APICall(ctx, "Annotations", caller.BestFacadeVersion("Annotations"), "", "Get", args, &results); err != nil {
		return nil, errors.Trace(err)
	}
	for _, result := range results.Results {
		if result.Error.Error != nil {
			logger.Debugf("annotations of %q: %v", result.EntityTag, result.Error.Error)
			continue
		}
		// Every entity gets a result, most have nothing set.
		if len(result.Annotations) == 0 {
			continue
		}
		tag, err := names.ParseApplicationTag(result.EntityTag)
		if err != nil {
			logger.Debugf("unexpected annotations entity %q", result.EntityTag)
			continue
		}
		annotations[tag.Id()] = result.Annotations
	}
	return annotations, nil
}

// WatchModel implements poller.ControllerAPI. The watcher owns a model
// connection that is closed when the watcher is stopped.
func (c *Client) WatchModel(ctx context.Context, modelUUID string) (poller.AllWatcher, error) {
	conn, err := c.open(ctx, modelUUID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var result params.AllWatcherId
	if err := conn.APICall(ctx, "Client", conn.BestFacadeVersion("Client"), "", "WatchAll", nil, &result); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Debugf("closing connection to model %q: %v", modelUUID, closeErr)
		}
		return nil, errors.Annotatef(err, "watching model %q", modelUUID)
	}
	watcher := NewAllWatcher(conn, result.AllWatcherId)
	watcher.closer = conn.Close
	return watcher, nil
}
