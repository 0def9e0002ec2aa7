// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package store

import (
	"reflect"
	"strings"

	"github.com/juju/names/v5"

	"github.com/juju/juju-dashboard/rpc/params"
)

// UpdateModelList replaces the models reported by one controller. Models
// that controller no longer reports are removed together with their
// snapshots, models of other controllers are left alone.
func (s *Store) UpdateModelList(models params.UserModelList, wsControllerURL string) {
	next := make(map[string]ModelListEntry, len(s.models))
	for uuid, entry := range s.models {
		if entry.WSControllerURL != wsControllerURL {
			next[uuid] = entry
		}
	}
	for _, userModel := range models.UserModels {
		uuid := userModel.Model.UUID
		if uuid == "" {
			logger.Debugf("skipping model %q without uuid from %s", userModel.Model.Name, wsControllerURL)
			continue
		}
		next[uuid] = ModelListEntry{
			UUID:            uuid,
			Name:            userModel.Model.Name,
			OwnerTag:        ownerTag(userModel.Model),
			Type:            userModel.Model.Type,
			WSControllerURL: wsControllerURL,
			LastConnection:  userModel.LastConnection,
		}
	}
	for uuid := range s.models {
		if _, ok := next[uuid]; !ok {
			logger.Debugf("model %q no longer reported by %s", uuid, wsControllerURL)
		}
	}

	changed := !s.modelsLoaded || !reflect.DeepEqual(next, s.models)
	s.models = next
	for uuid := range s.modelData {
		if _, ok := s.models[uuid]; !ok {
			delete(s.modelData, uuid)
			changed = true
		}
	}
	s.modelsLoaded = true
	if changed {
		s.bump()
	}
}

// ownerTag returns the owner of the model as a user tag string. Older
// controllers send owner-tag, newer ones a bare qualifier.
func ownerTag(model params.Model) string {
	owner := model.OwnerTag
	if owner == "" {
		owner = model.Qualifier
	}
	if owner == "" || strings.HasPrefix(owner, names.UserTagKind+"-") {
		return owner
	}
	// NewUserTag panics on names it cannot parse.
	if names.IsValidUser(owner) {
		return names.NewUserTag(owner).String()
	}
	return names.UserTagKind + "-" + owner
}

// UpdateModelStatus stores the full status of a model, creating its
// snapshot if needed. Only the rendered fields are kept; timestamps,
// branches and anything else in the payload are dropped.
func (s *Store) UpdateModelStatus(modelUUID string, status params.FullStatus, wsControllerURL string) {
	data, exists := s.modelData[modelUUID]
	if !exists {
		data = &ModelData{}
	}
	next := *data
	next.UUID = modelUUID
	next.Annotations = status.Annotations
	next.Applications = status.Applications
	next.Machines = status.Machines
	next.Model = status.Model
	next.Offers = status.Offers
	next.Relations = status.Relations
	next.RemoteApplications = status.RemoteApplications
	if exists && reflect.DeepEqual(next, *data) {
		logger.Tracef("status for model %q from %s unchanged", modelUUID, wsControllerURL)
		return
	}
	*data = next
	s.modelData[modelUUID] = data
	s.bump()
	logger.Tracef("stored status for model %q from %s", modelUUID, wsControllerURL)
}

// UpdateModelInfo stores the first model info result against its
// snapshot. Info for a model without a snapshot is dropped, the status
// request for it may have failed or the model may have gone away.
func (s *Store) UpdateModelInfo(info params.ModelInfoResults, wsControllerURL string) {
	if len(info.Results) == 0 || info.Results[0].Result == nil {
		logger.Debugf("no model info in response from %s", wsControllerURL)
		return
	}
	result := info.Results[0].Result
	data, ok := s.modelData[result.UUID]
	if !ok {
		logger.Debugf("dropping model info for unknown model %q from %s", result.UUID, wsControllerURL)
		return
	}
	if reflect.DeepEqual(data.Info, result) {
		return
	}
	data.Info = result
	s.bump()
}

// UpdateModelsError records the error from the last model list request.
// An empty message clears it.
func (s *Store) UpdateModelsError(message string) {
	if s.modelsError == message {
		return
	}
	s.modelsError = message
	s.bump()
}

// UpdateModelFeatures records the features of a model.
func (s *Store) UpdateModelFeatures(modelUUID string, features ModelFeatures) {
	if current, ok := s.modelFeatures[modelUUID]; ok && current == features {
		return
	}
	s.modelFeatures[modelUUID] = features
	s.bump()
}

// ModelFeatures returns the features recorded for a model.
func (s *Store) ModelFeatures(modelUUID string) (ModelFeatures, bool) {
	features, ok := s.modelFeatures[modelUUID]
	return features, ok
}

// ClearModelData forgets every model, snapshot and model feature.
func (s *Store) ClearModelData() {
	if len(s.models) == 0 && len(s.modelData) == 0 && len(s.modelFeatures) == 0 &&
		s.modelsError == "" && !s.modelsLoaded {
		return
	}
	s.models = make(map[string]ModelListEntry)
	s.modelData = make(map[string]*ModelData)
	s.modelFeatures = make(map[string]ModelFeatures)
	s.modelsError = ""
	s.modelsLoaded = false
	s.bump()
}
