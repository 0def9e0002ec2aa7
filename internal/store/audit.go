// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package store

import (
	"reflect"

	"github.com/juju/juju-dashboard/rpc/params"
)

// DefaultAuditEventsLimit is how many audit events are fetched unless
// configured otherwise.
const DefaultAuditEventsLimit = 50

// AuditEventsState tracks the audit events fetched from JAAS.
type AuditEventsState struct {
	Items   []params.AuditEvent `json:"items"`
	Errors  string              `json:"errors,omitempty"`
	Loading bool                `json:"loading"`
	Loaded  bool                `json:"loaded"`
	Limit   int                 `json:"limit"`
}

func (s *Store) setAuditEvents(next AuditEventsState) {
	if reflect.DeepEqual(next, s.auditEvents) {
		return
	}
	s.auditEvents = next
	s.bump()
}

// FetchAuditEvents marks the audit events as being fetched.
func (s *Store) FetchAuditEvents() {
	next := s.auditEvents
	next.Loading = true
	s.setAuditEvents(next)
}

// UpdateAuditEvents stores the fetched audit events.
func (s *Store) UpdateAuditEvents(events []params.AuditEvent) {
	next := s.auditEvents
	next.Items = append([]params.AuditEvent(nil), events...)
	next.Errors = ""
	next.Loading = false
	next.Loaded = true
	s.setAuditEvents(next)
}

// UpdateAuditEventsErrors records why the audit events could not be
// fetched. An empty message clears the error.
func (s *Store) UpdateAuditEventsErrors(message string) {
	next := s.auditEvents
	next.Errors = message
	if message != "" {
		next.Loading = false
	}
	s.setAuditEvents(next)
}

// UpdateAuditEventsLimit sets how many audit events are fetched. A
// non-positive limit restores the default.
func (s *Store) UpdateAuditEventsLimit(limit int) {
	if limit <= 0 {
		limit = DefaultAuditEventsLimit
	}
	next := s.auditEvents
	next.Limit = limit
	s.setAuditEvents(next)
}

// ClearAuditEvents forgets the fetched audit events. The limit is kept.
func (s *Store) ClearAuditEvents() {
	s.setAuditEvents(AuditEventsState{Limit: s.auditEvents.Limit})
}

// AuditEvents returns the audit events state.
func (s *Store) AuditEvents() AuditEventsState {
	result := s.auditEvents
	result.Items = append([]params.AuditEvent(nil), result.Items...)
	return result
}
