// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api

// facadeVersions lists the best version of facades that we know about. This
// will be used to pick out a default version for communication, given the list
// of known versions that the API server tells us it is capable of supporting.
// JIMM is only served by JAAS aggregators.
var facadeVersions = map[string]int{
	"Admin":        3,
	"AllWatcher":   4,
	"Annotations":  2,
	"Charms":       7,
	"Client":       7,
	"Controller":   12,
	"JIMM":         4,
	"ModelManager": 10,
	"Pinger":       1,
	"Secrets":      2,
}

// SupportedFacadeVersions returns the newest version of each facade the
// dashboard knows how to use.
func SupportedFacadeVersions() map[string]int {
	result := make(map[string]int, len(facadeVersions))
	for name, version := range facadeVersions {
		result[name] = version
	}
	return result
}

// bestVersion tries to find the newest version in the version list that we can
// use.
func bestVersion(desiredVersion int, versions []int) int {
	best := 0
	for _, version := range versions {
		if version <= desiredVersion && version > best {
			best = version
		}
	}
	return best
}
