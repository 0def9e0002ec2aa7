// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package poller

import (
	"context"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/worker/v4/catacomb"

	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/rpc/params"
)

type modelWatcherConfig struct {
	modelUUID       string
	wsControllerURL string
	api             ControllerAPI
	details         DetailsAPI
	dispatcher      Dispatcher
}

// modelWatcher follows the deltas of one model into the store.
type modelWatcher struct {
	catacomb catacomb.Catacomb
	config   modelWatcherConfig
}

func newModelWatcher(config modelWatcherConfig) *modelWatcher {
	w := &modelWatcher{config: config}
	// Invoke only fails for an invalid plan.
	_ = catacomb.Invoke(catacomb.Plan{
		Site: &w.catacomb,
		Work: w.loop,
	})
	return w
}

func (w *modelWatcher) loop() error {
	ctx := w.catacomb.Context(context.Background())
	uuid := w.config.modelUUID

	watcher, err := w.config.api.WatchModel(ctx, uuid)
	if err != nil {
		return w.dyingOr(errors.Annotatef(err, "watching model %q", uuid))
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			logger.Warningf("stopping watcher for model %q: %v", uuid, err)
		}
	}()

	if err := w.config.dispatcher.Dispatch("watchModel", func(s *store.Store) {
		s.WatchModel(uuid)
	}); err != nil {
		return errors.Trace(err)
	}

	// Seed the model from full status, deltas for the model itself only
	// arrive when it changes.
	status, err := w.config.api.ModelStatus(ctx, uuid)
	if err != nil {
		logger.Warningf("unable to seed watched model %q from %s: %v", uuid, w.config.wsControllerURL, err)
	} else if err := w.config.dispatcher.Dispatch("populateMissingAllWatcherData", func(s *store.Store) {
		s.PopulateMissingAllWatcherData(uuid, status)
	}); err != nil {
		return errors.Trace(err)
	} else if err := w.fetchDetails(ctx, status); err != nil {
		return errors.Trace(err)
	}

	for {
		deltas, err := watcher.Next(ctx)
		if err != nil {
			return w.dyingOr(errors.Annotatef(err, "reading deltas for model %q", uuid))
		}
		applied, err := w.config.dispatcher.ProcessDeltas(deltas)
		if err != nil {
			return errors.Trace(err)
		}
		logger.Tracef("applied %d of %d deltas for model %q", applied, len(deltas), uuid)
	}
}

// fetchDetails loads the secrets and charms of the watched model. Only
// failing to dispatch is an error.
func (w *modelWatcher) fetchDetails(ctx context.Context, status params.FullStatus) error {
	if w.config.details == nil {
		return nil
	}
	uuid := w.config.modelUUID

	features, _ := w.config.details.ModelFeatures(uuid)
	if features.ListSecrets {
		if err := w.fetchSecrets(ctx); err != nil {
			return errors.Trace(err)
		}
	}

	var missing []string
	if err := w.config.dispatcher.Read(func(s *store.Store) {
		for _, url := range charmURLs(status) {
			if !s.HasCharm(url) {
				missing = append(missing, url)
			}
		}
	}); err != nil {
		return errors.Trace(err)
	}
	var charms []params.Charm
	for _, url := range missing {
		charm, err := w.config.details.CharmInfo(ctx, uuid, url)
		if err != nil {
			logger.Warningf("unable to fetch charm %q for model %q: %v", url, uuid, err)
			continue
		}
		charms = append(charms, charm)
	}
	if len(charms) == 0 {
		return nil
	}
	return errors.Trace(w.config.dispatcher.Dispatch("updateCharms", func(s *store.Store) {
		s.UpdateCharms(charms)
	}))
}

func (w *modelWatcher) fetchSecrets(ctx context.Context) error {
	uuid := w.config.modelUUID
	if err := w.config.dispatcher.Dispatch("secretsLoading", func(s *store.Store) {
		if secrets, ok := s.Secrets(uuid); !ok || !secrets.Loaded {
			s.SecretsLoading(uuid)
		}
	}); err != nil {
		return errors.Trace(err)
	}
	secrets, err := w.config.details.ListSecrets(ctx, uuid)
	if err != nil {
		logger.Warningf("unable to list secrets of model %q: %v", uuid, err)
		return errors.Trace(w.config.dispatcher.Dispatch("setSecretsErrors", func(s *store.Store) {
			s.SetSecretsErrors(uuid, err.Error())
		}))
	}
	return errors.Trace(w.config.dispatcher.Dispatch("updateSecrets", func(s *store.Store) {
		s.UpdateSecrets(uuid, secrets)
	}))
}

// charmURLs returns the distinct charm URLs of the applications, sorted.
func charmURLs(status params.FullStatus) []string {
	urls := set.NewStrings()
	for _, app := range status.Applications {
		if app.Charm != "" {
			urls.Add(app.Charm)
		}
	}
	return urls.SortedValues()
}

// dyingOr returns ErrDying when the watcher is being stopped, as the
// error is then just the cancelled context.
func (w *modelWatcher) dyingOr(err error) error {
	select {
	case <-w.catacomb.Dying():
		return w.catacomb.ErrDying()
	default:
		return err
	}
}

// Kill is part of the worker.Worker interface.
func (w *modelWatcher) Kill() {
	w.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *modelWatcher) Wait() error {
	return w.catacomb.Wait()
}
