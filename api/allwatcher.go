// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"context"

	"github.com/juju/errors"

	"github.com/juju/juju-dashboard/core/multiwatcher"
	"github.com/juju/juju-dashboard/rpc/params"
)

// AllWatcher holds information allowing us to get Deltas describing
// changes to the entire model.
type AllWatcher struct {
	caller APICaller
	id     string
	// closer releases the model connection the watcher runs on.
	closer func() error
}

// NewAllWatcher returns an AllWatcher instance which interacts with a
// watcher created by the WatchAll API call.
func NewAllWatcher(caller APICaller, id string) *AllWatcher {
	return &AllWatcher{
		caller: caller,
		id:     id,
	}
}

// Next returns a new set of deltas from a watcher previously created
// by the WatchAll API call. It will block until there are deltas to
// return.
func (watcher *AllWatcher) Next(ctx context.Context) ([]multiwatcher.Delta, error) {
	var info params.AllWatcherNextResults
	err := watcher.caller.APICall(ctx,
		"AllWatcher",
		watcher.caller.BestFacadeVersion("AllWatcher"),
		watcher.id,
		"Next",
		nil, &info,
	)
	return info.Deltas, errors.Trace(err)
}

// Stop shuts down a watcher previously created by the WatchAll API
// call, and closes the connection it was created on.
func (watcher *AllWatcher) Stop() error {
	err := watcher.caller.APICall(context.Background(),
		"AllWatcher",
		watcher.caller.BestFacadeVersion("AllWatcher"),
		watcher.id,
		"Stop",
		nil, nil,
	)
	if watcher.closer != nil {
		if closeErr := watcher.closer(); closeErr != nil {
			logger.Debugf("closing watcher %q connection: %v", watcher.id, closeErr)
		}
	}
	return errors.Trace(err)
}
