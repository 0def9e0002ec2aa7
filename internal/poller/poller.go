// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package poller feeds the store from one controller. It periodically
// fetches the controller and model lists and the status of every model,
// and follows the watcher deltas of the models being looked at.
package poller

import (
	"context"
	"sort"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/retry"
	"github.com/juju/worker/v4"
	"github.com/juju/worker/v4/catacomb"

	"github.com/juju/juju-dashboard/core/multiwatcher"
	"github.com/juju/juju-dashboard/internal/reconcile"
	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/rpc/params"
)

var logger = loggo.GetLogger("dashboard.poller")

// ControllerAPI is the connection to a single controller.
type ControllerAPI interface {
	// Controllers returns the controllers reachable through this
	// connection. A direct controller reports itself, JAAS reports every
	// controller it fronts.
	Controllers(ctx context.Context) ([]params.ControllerInfo, error)

	// ListModels returns the models the user can see.
	ListModels(ctx context.Context) (params.UserModelList, error)

	// ModelStatus returns the full status of a model.
	ModelStatus(ctx context.Context, modelUUID string) (params.FullStatus, error)

	// ModelInfo returns the model info of a model.
	ModelInfo(ctx context.Context, modelUUID string) (params.ModelInfoResults, error)

	// WatchModel starts an all watcher on a model.
	WatchModel(ctx context.Context, modelUUID string) (AllWatcher, error)
}

// DetailsAPI fetches what the dashboard shows beside the model status.
type DetailsAPI interface {
	// ModelFeatures returns the features learned from the model endpoint
	// when its status was last fetched.
	ModelFeatures(modelUUID string) (store.ModelFeatures, bool)

	// ListSecrets returns the secrets of a model, without their values.
	ListSecrets(ctx context.Context, modelUUID string) ([]params.ListSecretResult, error)

	// CharmInfo returns the charm with the URL, as deployed in a model.
	CharmInfo(ctx context.Context, modelUUID, charmURL string) (params.Charm, error)

	// AuditEvents returns the most recent audit events. It fails with
	// a not supported error unless the controller is a JAAS aggregator.
	AuditEvents(ctx context.Context, limit int) ([]params.AuditEvent, error)
}

// AllWatcher streams the deltas of one model.
type AllWatcher interface {
	// Next blocks until deltas are available or the context is done.
	Next(ctx context.Context) ([]multiwatcher.Delta, error)

	// Stop stops the watcher.
	Stop() error
}

// Dispatcher runs operations against the store.
type Dispatcher interface {
	Dispatch(name string, fn func(*store.Store)) error
	Read(fn func(*store.Store)) error
	ProcessDeltas(deltas []multiwatcher.Delta) (int, error)
}

// Config holds the resources and configuration for a Poller.
type Config struct {
	WSControllerURL string
	API             ControllerAPI
	Dispatcher      Dispatcher
	Authenticator   reconcile.Authenticator
	Clock           clock.Clock

	// Details is optional. Without it only controllers, models and
	// status are fetched.
	Details DetailsAPI

	// PollInterval is the time between polls.
	PollInterval time.Duration
	// RetryDelay and RetryAttempts control the retries of each call.
	RetryDelay    time.Duration
	RetryAttempts int

	// WatchedModels are followed through their watcher deltas.
	WatchedModels []string
}

// Validate ensures that the config values are valid.
func (config Config) Validate() error {
	if config.WSControllerURL == "" {
		return errors.NotValidf("missing WSControllerURL")
	}
	if config.API == nil {
		return errors.NotValidf("missing API")
	}
	if config.Dispatcher == nil {
		return errors.NotValidf("missing Dispatcher")
	}
	if config.Authenticator == nil {
		return errors.NotValidf("missing Authenticator")
	}
	if config.Clock == nil {
		return errors.NotValidf("missing Clock")
	}
	if config.PollInterval <= 0 {
		return errors.NotValidf("non-positive PollInterval")
	}
	if config.RetryDelay < 0 {
		return errors.NotValidf("negative RetryDelay")
	}
	if config.RetryAttempts < 1 {
		return errors.NotValidf("RetryAttempts %d", config.RetryAttempts)
	}
	return nil
}

// Poller is a worker that keeps the store up to date with one
// controller.
type Poller struct {
	catacomb catacomb.Catacomb
	config   Config
}

// New starts a Poller.
func New(config Config) (*Poller, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	p := &Poller{config: config}

	var watchers []worker.Worker
	for _, modelUUID := range config.WatchedModels {
		watchers = append(watchers, newModelWatcher(modelWatcherConfig{
			modelUUID:       modelUUID,
			wsControllerURL: config.WSControllerURL,
			api:             config.API,
			details:         config.Details,
			dispatcher:      config.Dispatcher,
		}))
	}
	if err := catacomb.Invoke(catacomb.Plan{
		Site: &p.catacomb,
		Work: p.loop,
		Init: watchers,
	}); err != nil {
		return nil, errors.Trace(err)
	}
	return p, nil
}

func (p *Poller) loop() error {
	ctx := p.catacomb.Context(context.Background())

	if err := p.poll(ctx); err != nil {
		return err
	}
	timer := p.config.Clock.NewTimer(p.config.PollInterval)
	defer timer.Stop()
	for {
		select {
		case <-p.catacomb.Dying():
			return p.catacomb.ErrDying()
		case <-timer.Chan():
			if err := p.poll(ctx); err != nil {
				return err
			}
			timer.Reset(p.config.PollInterval)
		}
	}
}

// poll refreshes everything this controller reports. Transport errors are
// logged and recorded in the store, only a stopped dispatcher is fatal.
func (p *Poller) poll(ctx context.Context) error {
	url := p.config.WSControllerURL

	controllers, err := callWithRetry(p, "fetching controllers", func() ([]params.ControllerInfo, error) {
		return p.config.API.Controllers(ctx)
	})
	if err != nil {
		logger.Warningf("unable to fetch controllers from %s: %v", url, err)
	} else if err := p.config.Dispatcher.Dispatch("updateControllerList", func(s *store.Store) {
		s.UpdateControllerList(controllers, url)
	}); err != nil {
		return errors.Trace(err)
	}

	if err := p.refreshAuditEvents(ctx); err != nil {
		return errors.Trace(err)
	}

	models, err := callWithRetry(p, "listing models", func() (params.UserModelList, error) {
		return p.config.API.ListModels(ctx)
	})
	if err != nil {
		if p.dying() {
			return p.catacomb.ErrDying()
		}
		logger.Errorf("unable to list models on %s: %v", url, err)
		return errors.Trace(p.config.Dispatcher.Dispatch("updateModelsError", func(s *store.Store) {
			s.UpdateModelsError(err.Error())
		}))
	}
	if err := p.config.Dispatcher.Dispatch("updateModelList", func(s *store.Store) {
		s.UpdateModelList(models, url)
		s.UpdateModelsError("")
	}); err != nil {
		return errors.Trace(err)
	}

	for _, modelUUID := range modelUUIDs(models) {
		if !p.config.Authenticator.IsLoggedIn(url) {
			logger.Infof("no longer logged in to %s, skipping model status", url)
			return nil
		}
		if err := p.refreshModel(ctx, modelUUID); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (p *Poller) refreshModel(ctx context.Context, modelUUID string) error {
	url := p.config.WSControllerURL

	status, err := callWithRetry(p, "fetching model status", func() (params.FullStatus, error) {
		return p.config.API.ModelStatus(ctx, modelUUID)
	})
	if err != nil {
		logger.Warningf("unable to fetch status of model %q from %s: %v", modelUUID, url, err)
		return nil
	}
	if err := p.config.Dispatcher.Dispatch("updateModelStatus", func(s *store.Store) {
		s.UpdateModelStatus(modelUUID, status, url)
	}); err != nil {
		return errors.Trace(err)
	}
	if p.config.Details != nil {
		if features, ok := p.config.Details.ModelFeatures(modelUUID); ok {
			if err := p.config.Dispatcher.Dispatch("updateModelFeatures", func(s *store.Store) {
				s.UpdateModelFeatures(modelUUID, features)
			}); err != nil {
				return errors.Trace(err)
			}
		}
	}

	info, err := callWithRetry(p, "fetching model info", func() (params.ModelInfoResults, error) {
		return p.config.API.ModelInfo(ctx, modelUUID)
	})
	if err != nil {
		logger.Warningf("unable to fetch info of model %q from %s: %v", modelUUID, url, err)
		return nil
	}
	if err := p.config.Dispatcher.Dispatch("updateModelInfo", func(s *store.Store) {
		s.UpdateModelInfo(info, url)
	}); err != nil {
		return errors.Trace(err)
	}

	if len(info.Results) == 0 || info.Results[0].Result == nil || !info.Results[0].Result.IsController {
		return nil
	}
	// The controller model knows where its controller runs.
	return errors.Trace(p.config.Dispatcher.Dispatch("addControllerCloudRegion", func(s *store.Store) {
		reconcile.Reconcile(s, p.config.Authenticator, url, info)
	}))
}

// refreshAuditEvents fetches the audit events when the controller keeps
// them. Controllers that do not keep them leave the store untouched.
func (p *Poller) refreshAuditEvents(ctx context.Context) error {
	if p.config.Details == nil {
		return nil
	}
	var limit int
	if err := p.config.Dispatcher.Read(func(s *store.Store) {
		limit = s.AuditEvents().Limit
	}); err != nil {
		return errors.Trace(err)
	}
	events, err := p.config.Details.AuditEvents(ctx, limit)
	if errors.Is(err, errors.NotSupported) {
		logger.Tracef("%s does not keep audit events", p.config.WSControllerURL)
		return nil
	}
	if err != nil {
		logger.Warningf("unable to fetch audit events from %s: %v", p.config.WSControllerURL, err)
		return errors.Trace(p.config.Dispatcher.Dispatch("updateAuditEventsErrors", func(s *store.Store) {
			s.UpdateAuditEventsErrors(err.Error())
		}))
	}
	return errors.Trace(p.config.Dispatcher.Dispatch("updateAuditEvents", func(s *store.Store) {
		s.UpdateAuditEvents(events)
	}))
}

// callWithRetry retries fn until it succeeds, fails fatally, runs out of
// attempts or the poller is stopped.
func callWithRetry[T any](p *Poller, what string, fn func() (T, error)) (T, error) {
	var result T
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			var err error
			result, err = fn()
			return err
		},
		IsFatalError: func(err error) bool {
			return errors.Is(err, errors.Unauthorized) || errors.Is(err, errors.NotFound)
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Debugf("%s from %s, attempt %d: %v", what, p.config.WSControllerURL, attempt, err)
		},
		Attempts: p.config.RetryAttempts,
		Delay:    p.config.RetryDelay,
		Clock:    p.config.Clock,
		Stop:     p.catacomb.Dying(),
	})
	if retry.IsAttemptsExceeded(err) {
		err = retry.LastError(err)
	}
	return result, errors.Annotate(err, what)
}

func modelUUIDs(models params.UserModelList) []string {
	var uuids []string
	for _, userModel := range models.UserModels {
		if userModel.Model.UUID != "" {
			uuids = append(uuids, userModel.Model.UUID)
		}
	}
	sort.Strings(uuids)
	return uuids
}

func (p *Poller) dying() bool {
	select {
	case <-p.catacomb.Dying():
		return true
	default:
		return false
	}
}

// Kill is part of the worker.Worker interface.
func (p *Poller) Kill() {
	p.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (p *Poller) Wait() error {
	return p.catacomb.Wait()
}
