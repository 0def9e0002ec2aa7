// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package store

// setDestroyState records the state of a destroy request, reporting
// whether it changed.
func (s *Store) setDestroyState(modelTag string, state DestroyModelState) bool {
	if current, ok := s.destroyModel[modelTag]; ok && current == state {
		return false
	}
	s.destroyModel[modelTag] = state
	return true
}

// DestroyModels starts tracking destroy requests for the model tags.
func (s *Store) DestroyModels(modelTags []string) {
	changed := false
	for _, tag := range modelTags {
		changed = s.setDestroyState(tag, DestroyModelState{}) || changed
	}
	if changed {
		s.bump()
	}
}

// UpdateDestroyModelsLoading marks the destroy requests as in flight.
func (s *Store) UpdateDestroyModelsLoading(modelTags []string) {
	changed := false
	for _, tag := range modelTags {
		state := s.destroyModel[tag]
		state.Loading = true
		changed = s.setDestroyState(tag, state) || changed
	}
	if changed {
		s.bump()
	}
}

// UpdateModelsDestroyed marks the destroy requests as completed.
func (s *Store) UpdateModelsDestroyed(modelTags []string) {
	changed := false
	for _, tag := range modelTags {
		changed = s.setDestroyState(tag, DestroyModelState{Loaded: true}) || changed
	}
	if changed {
		s.bump()
	}
}

// DestroyModelErrors records failed destroy requests, keyed by model tag.
func (s *Store) DestroyModelErrors(errs map[string]string) {
	changed := false
	for tag, message := range errs {
		changed = s.setDestroyState(tag, DestroyModelState{
			Loaded: true,
			Errors: message,
		}) || changed
	}
	if changed {
		s.bump()
	}
}

// ClearDestroyedModel stops tracking the destroy request of a model.
func (s *Store) ClearDestroyedModel(modelTag string) {
	if _, ok := s.destroyModel[modelTag]; !ok {
		return
	}
	delete(s.destroyModel, modelTag)
	s.bump()
}

// DestroyModel returns the tracked destroy requests keyed by model tag.
func (s *Store) DestroyModel() map[string]DestroyModelState {
	result := make(map[string]DestroyModelState, len(s.destroyModel))
	for tag, state := range s.destroyModel {
		result[tag] = state
	}
	return result
}

// AddCommandHistory appends a console command to the history of a model.
// Every command is recorded, a repeated command is a new entry.
func (s *Store) AddCommandHistory(modelUUID string, item CommandHistoryItem) {
	item.Messages = append([]string(nil), item.Messages...)
	s.commandHistory[modelUUID] = append(s.commandHistory[modelUUID], item)
	s.bump()
}

// CommandHistory returns the console history of a model, oldest first.
func (s *Store) CommandHistory(modelUUID string) []CommandHistoryItem {
	return append([]CommandHistoryItem(nil), s.commandHistory[modelUUID]...)
}
