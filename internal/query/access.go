// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package query

import (
	"sort"
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/names/v5"

	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/rpc/params"
)

// Access levels a user can hold on a model.
const (
	ReadAccess  = "read"
	WriteAccess = "write"
	AdminAccess = "admin"
	OwnerAccess = "owner"
)

var administerAccess = set.NewStrings(AdminAccess, WriteAccess, OwnerAccess)

// ModelAccess returns the access activeUser has to the model. The model's
// own user list wins; the controller level access is the fallback. The
// empty string means no access is known.
func ModelAccess(model store.ModelData, activeUser, controllerAccess string) string {
	if model.Info != nil {
		for _, user := range model.Info.Users {
			if user.UserName == activeUser && user.Access != "" {
				return user.Access
			}
		}
	}
	return controllerAccess
}

// CanAdministerModel reports whether activeUser may change the model.
func CanAdministerModel(activeUser string, users []params.ModelUserInfo) bool {
	for _, user := range users {
		if user.UserName == activeUser {
			return administerAccess.Contains(user.Access)
		}
	}
	return false
}

// Users returns every user with access to any of the models, sorted.
func Users(models map[string]store.ModelData) []string {
	users := set.NewStrings()
	for _, model := range models {
		if model.Info == nil {
			continue
		}
		for _, user := range model.Info.Users {
			if user.UserName != "" {
				users.Add(user.UserName)
			}
		}
	}
	return users.SortedValues()
}

// ExternalUsers returns the users that come from an identity provider
// rather than the controller itself, sorted.
func ExternalUsers(models map[string]store.ModelData) []string {
	var external []string
	for _, user := range Users(models) {
		if isExternal(user) {
			external = append(external, user)
		}
	}
	return external
}

// UserDomains returns the identity provider domains of the external
// users, sorted.
func UserDomains(models map[string]store.ModelData) []string {
	domains := set.NewStrings()
	for _, user := range Users(models) {
		if _, domain, ok := strings.Cut(user, "@"); ok && domain != "" {
			domains.Add(domain)
		}
	}
	return domains.SortedValues()
}

func isExternal(user string) bool {
	if !names.IsValidUser(user) {
		return strings.Contains(user, "@")
	}
	return !names.NewUserTag(user).IsLocal()
}

// FullModelName qualifies a model name with its controller,
// "controller/model".
func FullModelName(controllerName, modelName string) string {
	return controllerName + "/" + modelName
}

// ModelUUIDByName finds the UUID of a snapshot given "owner/model" or
// a bare model name. A bare name matches the first model of that name
// owned by anyone.
func ModelUUIDByName(models map[string]store.ModelData, name string) (string, bool) {
	owner, modelName, qualified := strings.Cut(name, "/")
	if !qualified {
		owner, modelName = "", name
	}
	for _, uuid := range sortedUUIDs(models) {
		info := models[uuid].Info
		if info == nil || info.Name != modelName {
			continue
		}
		if !qualified || UserName(info.OwnerTag) == owner {
			return uuid, true
		}
	}
	return "", false
}

// ModelUUIDFromList finds the UUID of a model list entry by name and
// owner. The owner may carry a domain; an empty owner matches anyone.
// Entries are searched in UUID order.
func ModelUUIDFromList(models map[string]store.ModelListEntry, modelName, owner string) (string, bool) {
	uuids := make([]string, 0, len(models))
	for uuid := range models {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)
	for _, uuid := range uuids {
		entry := models[uuid]
		if entry.Name != modelName {
			continue
		}
		if owner == "" || UserName(entry.OwnerTag) == owner {
			return uuid, true
		}
	}
	return "", false
}

// ModelControllerData is a controller together with the websocket URL
// that reported it.
type ModelControllerData struct {
	params.ControllerInfo
	URL string `json:"url"`
}

// ModelControllerByUUID returns the controller that hosts a model.
func ModelControllerByUUID(controllers map[string][]params.ControllerInfo, model store.ModelData) (ModelControllerData, bool) {
	if model.Info == nil || model.Info.ControllerUUID == "" {
		return ModelControllerData{}, false
	}
	controller, url, err := ControllerByUUID(controllers, model.Info.ControllerUUID)
	if err != nil {
		return ModelControllerData{}, false
	}
	return ModelControllerData{ControllerInfo: controller, URL: url}, true
}
