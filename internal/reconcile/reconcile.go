// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package reconcile back-fills the cloud and region of a controller from
// the model info of its controller model.
package reconcile

import (
	"strings"

	"github.com/juju/loggo"
	"github.com/juju/names/v5"

	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/rpc/params"
)

var logger = loggo.GetLogger("dashboard.reconcile")

// Authenticator reports whether the dashboard currently holds an
// authenticated connection to a controller.
type Authenticator interface {
	IsLoggedIn(wsControllerURL string) bool
}

// CanReconcile reports whether controller data reported by
// wsControllerURL may be updated.
func CanReconcile(auth Authenticator, wsControllerURL string) bool {
	return auth != nil && auth.IsLoggedIn(wsControllerURL)
}

// AddControllerCloudRegion returns a copy of controllers with the location
// of the controller hosting the model set from the model info. The
// second result is false if no controller matched.
//
// The location carries the cloud region as the cloud and the bare cloud
// name as the region, matching what the dashboard has always displayed.
func AddControllerCloudRegion(controllers []params.ControllerInfo, info params.ModelInfo) ([]params.ControllerInfo, bool) {
	updated := make([]params.ControllerInfo, len(controllers))
	copy(updated, controllers)
	found := false
	for i, controller := range updated {
		if controller.UUID == "" || controller.UUID != info.ControllerUUID {
			continue
		}
		updated[i].Location = &params.ControllerLocation{
			Cloud:  info.CloudRegion,
			Region: strings.TrimPrefix(info.CloudTag, names.CloudTagKind+"-"),
		}
		found = true
	}
	return updated, found
}

// Reconcile applies the model info to the controllers reported by
// wsControllerURL. It does nothing, and returns false, if the caller is no
// longer logged in to that controller, if the controllers of that URL are
// not known, or if the info carries no result.
func Reconcile(s *store.Store, auth Authenticator, wsControllerURL string, results params.ModelInfoResults) bool {
	if len(results.Results) == 0 || results.Results[0].Result == nil {
		logger.Debugf("no model info to reconcile from %s", wsControllerURL)
		return false
	}
	if !CanReconcile(auth, wsControllerURL) {
		logger.Infof("not reconciling controller data for %s: not logged in", wsControllerURL)
		return false
	}
	controllers, ok := s.ControllersFor(wsControllerURL)
	if !ok {
		logger.Warningf("attempting to update non-existent controller: %s", wsControllerURL)
		return false
	}
	updated, found := AddControllerCloudRegion(controllers, *results.Results[0].Result)
	if !found {
		logger.Debugf("controller %q not reported by %s", results.Results[0].Result.ControllerUUID, wsControllerURL)
	}
	s.UpdateControllerList(updated, wsControllerURL)
	return true
}
