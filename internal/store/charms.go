// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package store

import (
	"github.com/juju/collections/set"

	"github.com/juju/juju-dashboard/rpc/params"
)

// UpdateCharms adds charms that are not yet known. A charm is known by
// its URL; a charm already stored is not replaced.
func (s *Store) UpdateCharms(charms []params.Charm) {
	known := set.NewStrings()
	for _, charm := range s.charms {
		known.Add(charm.URL)
	}
	added := 0
	for _, charm := range charms {
		if charm.URL == "" || known.Contains(charm.URL) {
			continue
		}
		known.Add(charm.URL)
		s.charms = append(s.charms, charm)
		added++
	}
	if added > 0 {
		s.bump()
	}
}

// Charms returns the known charms in the order they were added.
func (s *Store) Charms() []params.Charm {
	return append([]params.Charm(nil), s.charms...)
}

// HasCharm reports whether the charm with the URL is known.
func (s *Store) HasCharm(url string) bool {
	for _, charm := range s.charms {
		if charm.URL == url {
			return true
		}
	}
	return false
}
