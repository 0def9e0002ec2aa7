// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package store

import (
	"reflect"

	"github.com/juju/juju-dashboard/rpc/params"
)

// ModelSecrets tracks the secrets listed for a model.
type ModelSecrets struct {
	Items   []params.ListSecretResult `json:"items"`
	Errors  string                    `json:"errors,omitempty"`
	Loading bool                      `json:"loading"`
	Loaded  bool                      `json:"loaded"`

	// Content is the revealed value of one secret, if one was asked
	// for.
	Content *SecretsContent `json:"content,omitempty"`
}

// SecretsContent tracks the revealed value of a secret.
type SecretsContent struct {
	Content map[string]string `json:"content"`
	Errors  string            `json:"errors,omitempty"`
	Loading bool              `json:"loading"`
	Loaded  bool              `json:"loaded"`
}

// updateSecrets applies fn to the secrets of a model, creating them if
// needed, and bumps the revision if anything changed.
func (s *Store) updateSecrets(modelUUID string, fn func(*ModelSecrets)) {
	current, exists := s.secrets[modelUUID]
	next := current
	if current.Content != nil {
		content := *current.Content
		next.Content = &content
	}
	fn(&next)
	if exists && reflect.DeepEqual(next, current) {
		return
	}
	s.secrets[modelUUID] = next
	s.bump()
}

// SecretsLoading marks the secrets of a model as being fetched.
func (s *Store) SecretsLoading(modelUUID string) {
	s.updateSecrets(modelUUID, func(secrets *ModelSecrets) {
		secrets.Loading = true
	})
}

// UpdateSecrets stores the secrets listed for a model.
func (s *Store) UpdateSecrets(modelUUID string, items []params.ListSecretResult) {
	s.updateSecrets(modelUUID, func(secrets *ModelSecrets) {
		secrets.Items = append([]params.ListSecretResult(nil), items...)
		secrets.Errors = ""
		secrets.Loading = false
		secrets.Loaded = true
	})
}

// SetSecretsErrors records why the secrets of a model could not be
// listed. Previously listed secrets are kept.
func (s *Store) SetSecretsErrors(modelUUID, message string) {
	s.updateSecrets(modelUUID, func(secrets *ModelSecrets) {
		secrets.Errors = message
		secrets.Loading = false
		secrets.Loaded = true
	})
}

// ClearSecrets forgets the secrets of a model.
func (s *Store) ClearSecrets(modelUUID string) {
	if _, ok := s.secrets[modelUUID]; !ok {
		return
	}
	delete(s.secrets, modelUUID)
	s.bump()
}

// SecretsContentLoading marks a secret value of a model as being fetched.
func (s *Store) SecretsContentLoading(modelUUID string) {
	s.updateSecrets(modelUUID, func(secrets *ModelSecrets) {
		if secrets.Content == nil {
			secrets.Content = &SecretsContent{}
		}
		secrets.Content.Loading = true
	})
}

// UpdateSecretsContent stores a revealed secret value.
func (s *Store) UpdateSecretsContent(modelUUID string, content map[string]string) {
	s.updateSecrets(modelUUID, func(secrets *ModelSecrets) {
		secrets.Content = &SecretsContent{
			Content: copyStrings(content),
			Loaded:  true,
		}
	})
}

// SetSecretsContentErrors records why a secret value could not be
// revealed. Any previously revealed value is dropped.
func (s *Store) SetSecretsContentErrors(modelUUID, message string) {
	s.updateSecrets(modelUUID, func(secrets *ModelSecrets) {
		secrets.Content = &SecretsContent{
			Errors: message,
			Loaded: true,
		}
	})
}

// ClearSecretsContent forgets the revealed secret value of a model.
func (s *Store) ClearSecretsContent(modelUUID string) {
	secrets, ok := s.secrets[modelUUID]
	if !ok || secrets.Content == nil {
		return
	}
	secrets.Content = nil
	s.secrets[modelUUID] = secrets
	s.bump()
}

// Secrets returns the secrets tracked for a model.
func (s *Store) Secrets(modelUUID string) (ModelSecrets, bool) {
	secrets, ok := s.secrets[modelUUID]
	if !ok {
		return ModelSecrets{}, false
	}
	secrets.Items = append([]params.ListSecretResult(nil), secrets.Items...)
	if secrets.Content != nil {
		content := *secrets.Content
		content.Content = copyStrings(content.Content)
		secrets.Content = &content
	}
	return secrets, true
}

func copyStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
