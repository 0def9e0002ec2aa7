// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package views

import (
	"github.com/juju/juju-dashboard/internal/query"
	"github.com/juju/juju-dashboard/internal/store"
)

// AuditEvents is the audit log together with the values it can be
// filtered on.
type AuditEvents struct {
	store.AuditEventsState `yaml:",inline"`

	Facets query.AuditEventFacets `json:"facets" yaml:"facets"`
}

// AuditLog returns the audit events fetched from JAAS.
func AuditLog(st *store.Store) AuditEvents {
	state := st.AuditEvents()
	return AuditEvents{
		AuditEventsState: state,
		Facets:           query.AuditFacets(state.Items),
	}
}

// Charm is a deployed charm.
type Charm struct {
	URL      string `json:"url" yaml:"url"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Revision int    `json:"revision" yaml:"revision"`
	Summary  string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Charms returns the known charms in the order they were fetched.
func Charms(st *store.Store) []Charm {
	var result []Charm
	for _, charm := range st.Charms() {
		view := Charm{URL: charm.URL, Revision: charm.Revision}
		if charm.Meta != nil {
			view.Name = charm.Meta.Name
			view.Summary = charm.Meta.Summary
		}
		result = append(result, view)
	}
	return result
}
