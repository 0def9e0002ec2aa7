// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/juju-dashboard/internal/views"
)

// replaySummary is the summary of the store after a replay.
type replaySummary struct {
	views.Summary `yaml:",inline"`
	DeltasApplied int `json:"deltas-applied" yaml:"deltas-applied"`

	// AuditEvents is only set if the recording fetched any.
	AuditEvents *views.AuditEvents `json:"audit-events,omitempty" yaml:"audit-events,omitempty"`
	Charms      []views.Charm      `json:"charms,omitempty" yaml:"charms,omitempty"`
}
