// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package query

import (
	"github.com/juju/collections/set"

	"github.com/juju/juju-dashboard/rpc/params"
)

// AuditEventFacets holds the distinct values found in a set of audit
// events, for offering as filter choices.
type AuditEventFacets struct {
	Users   []string `json:"users"`
	Models  []string `json:"models"`
	Facades []string `json:"facades"`
	Methods []string `json:"methods"`
}

// AuditFacets returns the sorted distinct users, models, facades and
// methods of the events. Empty values are left out.
func AuditFacets(events []params.AuditEvent) AuditEventFacets {
	users := set.NewStrings()
	models := set.NewStrings()
	facades := set.NewStrings()
	methods := set.NewStrings()
	add := func(values set.Strings, value string) {
		if value != "" {
			values.Add(value)
		}
	}
	for _, event := range events {
		add(users, UserName(event.UserTag))
		add(models, event.Model)
		add(facades, event.FacadeName)
		add(methods, event.FacadeMethod)
	}
	return AuditEventFacets{
		Users:   users.SortedValues(),
		Models:  models.SortedValues(),
		Facades: facades.SortedValues(),
		Methods: methods.SortedValues(),
	}
}
