// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"github.com/juju/errors"
	"github.com/juju/version/v2"
)

// JAASControllerUUID is the UUID reported by every JAAS aggregator,
// whichever deployment it fronts.
const JAASControllerUUID = "a030379a-940f-4760-8fcf-3062b41a04e7"

// ControllerInfo describes a controller known to the dashboard. Direct
// controllers fill Path, UUID and Version. Controllers listed through
// JAAS report Name, AgentVersion and Status instead.
type ControllerInfo struct {
	Path                 string              `json:"path,omitempty"`
	Name                 string              `json:"name,omitempty"`
	UUID                 string              `json:"uuid"`
	Version              string              `json:"version,omitempty"`
	AgentVersion         string              `json:"agent-version,omitempty"`
	Status               *EntityStatus       `json:"status,omitempty"`
	Location             *ControllerLocation `json:"location,omitempty"`
	Public               bool                `json:"Public,omitempty"`
	AdditionalController bool                `json:"additionalController,omitempty"`
}

// ControllerLocation is where a controller runs.
type ControllerLocation struct {
	Cloud  string `json:"cloud,omitempty"`
	Region string `json:"region,omitempty"`
}

// ControllerVersion returns the parsed agent version of the controller,
// preferring Version over AgentVersion.
func (c ControllerInfo) ControllerVersion() (version.Number, error) {
	raw := c.Version
	if raw == "" {
		raw = c.AgentVersion
	}
	if raw == "" {
		return version.Zero, errors.NotFoundf("version for controller %q", c.UUID)
	}
	v, err := version.Parse(raw)
	if err != nil {
		return version.Zero, errors.Annotatef(err, "controller %q", c.UUID)
	}
	return v, nil
}
