// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package store

import (
	"github.com/juju/juju-dashboard/core/multiwatcher"
	"github.com/juju/juju-dashboard/internal/allwatcher"
	"github.com/juju/juju-dashboard/rpc/params"
)

// ProcessAllWatcherDeltas folds the deltas into the watched models in
// order, returning how many were applied. The revision only moves when a
// delta was applied; the controller sends deltas for changes alone.
func (s *Store) ProcessAllWatcherDeltas(deltas []multiwatcher.Delta) int {
	applied := allwatcher.ProcessDeltas(s.modelWatcherData, deltas)
	if applied > 0 {
		s.bump()
	}
	return applied
}

// PopulateMissingAllWatcherData seeds the model slot of a watched model
// with the cloud, region, type and version from its full status, where
// the deltas have not supplied them. Models that are not being watched
// are ignored.
func (s *Store) PopulateMissingAllWatcherData(uuid string, status params.FullStatus) {
	model, ok := s.modelWatcherData[uuid]
	if !ok {
		logger.Tracef("model %q is not watched, not seeding", uuid)
		return
	}
	var before multiwatcher.ModelInfo
	if model.Model != nil {
		before = *model.Model
	}
	model.SeedModel(uuid,
		status.Model.CloudTag,
		status.Model.CloudRegion,
		status.Model.Type,
		status.Model.Version,
	)
	// Seeding only fills empty strings, so comparing them is enough.
	after := *model.Model
	if before.ModelUUID != after.ModelUUID ||
		before.CloudTag != after.CloudTag ||
		before.Region != after.Region ||
		before.Type != after.Type ||
		before.Version != after.Version {
		s.bump()
	}
}

// WatchModel starts the delta fed view of a model. Deltas create the view
// on their own, this lets the full status seed it before the first delta.
func (s *Store) WatchModel(uuid string) {
	if _, ok := s.modelWatcherData[uuid]; ok {
		return
	}
	s.modelWatcherData.Ensure(uuid)
	s.bump()
}

// ClearModelWatcherData forgets the delta fed view of a model, for when
// its watcher stops.
func (s *Store) ClearModelWatcherData(uuid string) {
	if _, ok := s.modelWatcherData[uuid]; !ok {
		return
	}
	delete(s.modelWatcherData, uuid)
	s.bump()
}
