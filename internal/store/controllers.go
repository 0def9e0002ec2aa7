// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package store

import (
	"reflect"

	"github.com/juju/juju-dashboard/rpc/params"
)

// UpdateControllerList replaces the controllers reported by one
// websocket URL. A controller listed without a location keeps the one
// reconciled from its controller model, so a fresh list does not undo
// the last reconciliation.
func (s *Store) UpdateControllerList(controllers []params.ControllerInfo, wsControllerURL string) {
	current, known := s.controllers[wsControllerURL]
	next := append([]params.ControllerInfo(nil), controllers...)
	for i, controller := range next {
		if controller.Location != nil || controller.UUID == "" {
			continue
		}
		for _, existing := range current {
			if existing.UUID == controller.UUID && existing.Location != nil {
				location := *existing.Location
				next[i].Location = &location
				break
			}
		}
	}
	if known && reflect.DeepEqual(next, current) {
		return
	}
	if s.controllers == nil {
		s.controllers = make(map[string][]params.ControllerInfo)
	}
	s.controllers[wsControllerURL] = next
	s.bump()
}

// ClearControllerData forgets every controller. The list is then known
// to be empty, rather than not yet received.
func (s *Store) ClearControllerData() {
	if s.controllers != nil && len(s.controllers) == 0 {
		return
	}
	s.controllers = make(map[string][]params.ControllerInfo)
	s.bump()
}
