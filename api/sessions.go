// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

import (
	"sync"

	"github.com/juju/collections/set"
)

// Sessions records which controllers currently hold a logged in
// connection. It satisfies the authenticator the reconciler and the
// pollers consult before writing controller data.
type Sessions struct {
	mu       sync.Mutex
	loggedIn set.Strings
	users    map[string]sessionUser
}

type sessionUser struct {
	name             string
	controllerAccess string
}

// NewSessions returns a Sessions with no controller logged in.
func NewSessions() *Sessions {
	return &Sessions{
		loggedIn: set.NewStrings(),
		users:    make(map[string]sessionUser),
	}
}

// SetLoggedIn records whether wsControllerURL is logged in.
func (s *Sessions) SetLoggedIn(wsControllerURL string, loggedIn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loggedIn {
		s.loggedIn.Add(wsControllerURL)
	} else {
		s.loggedIn.Remove(wsControllerURL)
		delete(s.users, wsControllerURL)
	}
}

// SetUser records who is logged in to wsControllerURL and the access
// they hold on the controller.
func (s *Sessions) SetUser(wsControllerURL, name, controllerAccess string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[wsControllerURL] = sessionUser{name: name, controllerAccess: controllerAccess}
}

// User returns who is logged in to wsControllerURL. Both results are
// empty when nobody is.
func (s *Sessions) User(wsControllerURL string) (name, controllerAccess string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[wsControllerURL]
	return user.name, user.controllerAccess
}

// IsLoggedIn reports whether wsControllerURL is logged in.
func (s *Sessions) IsLoggedIn(wsControllerURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn.Contains(wsControllerURL)
}

// LoggedIn returns the logged in controller URLs, sorted.
func (s *Sessions) LoggedIn() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn.SortedValues()
}
