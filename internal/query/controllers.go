// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package query

import (
	"fmt"
	"sort"

	"github.com/juju/errors"

	"github.com/juju/juju-dashboard/rpc/params"
)

// JAASName is the display name of any JAAS aggregator.
const JAASName = "JAAS"

// unknownVersion groups controllers whose version cannot be parsed.
const unknownVersion = "unknown"

// ControllerName resolves a controller UUID to a display name. The JAAS
// UUID always resolves to JAASName. Otherwise the first controller with
// a matching UUID gives its path, or its name when it has no path. An
// unknown UUID is returned unchanged.
func ControllerName(controllers map[string][]params.ControllerInfo, controllerUUID string) string {
	if controllerUUID == params.JAASControllerUUID {
		return JAASName
	}
	controller, _, err := ControllerByUUID(controllers, controllerUUID)
	if err != nil {
		return controllerUUID
	}
	if controller.Path != "" {
		return controller.Path
	}
	if controller.Name != "" {
		return controller.Name
	}
	return controllerUUID
}

// ControllerByUUID finds a controller by UUID across every websocket URL
// and returns it together with the URL that reported it. URLs are
// searched in sorted order.
func ControllerByUUID(controllers map[string][]params.ControllerInfo, controllerUUID string) (params.ControllerInfo, string, error) {
	urls := make([]string, 0, len(controllers))
	for url := range controllers {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	for _, url := range urls {
		for _, controller := range controllers[url] {
			if controller.UUID == controllerUUID {
				return controller, url, nil
			}
		}
	}
	return params.ControllerInfo{}, "", errors.NotFoundf("controller %q", controllerUUID)
}

// ControllersCount returns the number of controllers across every
// websocket URL.
func ControllersCount(controllers map[string][]params.ControllerInfo) int {
	count := 0
	for _, list := range controllers {
		count += len(list)
	}
	return count
}

// ControllersByVersion counts controllers per major.minor version.
func ControllersByVersion(controllers map[string][]params.ControllerInfo) map[string]int {
	result := make(map[string]int)
	for _, list := range controllers {
		for _, controller := range list {
			v, err := controller.ControllerVersion()
			if err != nil {
				logger.Tracef("%v", err)
				result[unknownVersion]++
				continue
			}
			result[fmt.Sprintf("%d.%d", v.Major, v.Minor)]++
		}
	}
	return result
}
