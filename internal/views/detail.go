// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package views

import (
	"strings"

	"github.com/juju/names/v5"
	"github.com/juju/naturalsort"

	"github.com/juju/juju-dashboard/internal/config"
	"github.com/juju/juju-dashboard/internal/query"
	"github.com/juju/juju-dashboard/internal/store"
)

// Viewers reports who the dashboard is logged in as on each controller.
type Viewers interface {
	// User returns the user logged in to the controller and the access
	// they hold on it. Both are empty when nobody is logged in.
	User(wsControllerURL string) (name, controllerAccess string)
}

// ModelDetail is the full view of one model.
type ModelDetail struct {
	Model `yaml:",inline"`

	// FullName is the model name qualified by its controller.
	FullName string `json:"full-name" yaml:"full-name"`

	// Access is what the logged in user may do with the model, and
	// CanAdminister whether that includes changing it.
	Access        string `json:"access,omitempty" yaml:"access,omitempty"`
	CanAdminister bool   `json:"can-administer" yaml:"can-administer"`

	ControllerURL  string   `json:"controller-url,omitempty" yaml:"controller-url,omitempty"`
	ControllerUUID string   `json:"controller-uuid,omitempty" yaml:"controller-uuid,omitempty"`
	Users          []string `json:"users,omitempty" yaml:"users,omitempty"`

	Features       *store.ModelFeatures       `json:"features,omitempty" yaml:"features,omitempty"`
	Destroy        *store.DestroyModelState   `json:"destroy,omitempty" yaml:"destroy,omitempty"`
	CommandHistory []store.CommandHistoryItem `json:"command-history,omitempty" yaml:"command-history,omitempty"`
	Secrets        *store.ModelSecrets        `json:"secrets,omitempty" yaml:"secrets,omitempty"`

	// Applications, Units and Machines count the entities of each
	// severity.
	Applications map[string]int `json:"applications" yaml:"applications"`
	Units        map[string]int `json:"units" yaml:"units"`
	Machines     map[string]int `json:"machines" yaml:"machines"`

	// UnknownStatuses names the applications reporting a status this
	// dashboard does not know, most likely from a newer controller.
	UnknownStatuses []string `json:"unknown-statuses,omitempty" yaml:"unknown-statuses,omitempty"`
}

// ModelDetailByUUID returns the full view of one model as seen by the
// user logged in to the controller that listed it. The second result is
// false if the store holds no data for it.
func ModelDetailByUUID(st *store.Store, cfg *config.Config, viewers Viewers, uuid string) (ModelDetail, bool) {
	data, ok := st.ModelDataByUUID(uuid)
	if !ok {
		return ModelDetail{}, false
	}
	controllers, _ := st.Controllers()
	entry := st.Models()[uuid]
	detail := ModelDetail{
		Model: SummariseModel(data, entry, controllers, cfg),
	}
	detail.FullName = query.FullModelName(detail.Controller, detail.Name)

	activeUser, controllerAccess := viewers.User(entry.WSControllerURL)
	detail.Access = query.ModelAccess(data, activeUser, controllerAccess)
	if data.Info != nil {
		detail.CanAdminister = query.CanAdministerModel(activeUser, data.Info.Users)
	}
	if controller, ok := query.ModelControllerByUUID(controllers, data); ok {
		detail.ControllerURL = controller.URL
		detail.ControllerUUID = controller.UUID
	}
	single := map[string]store.ModelData{uuid: data}
	detail.Users = query.Users(single)

	if features, ok := st.ModelFeatures(uuid); ok {
		detail.Features = &features
	}
	if state, ok := st.DestroyModel()[names.NewModelTag(uuid).String()]; ok {
		detail.Destroy = &state
	}
	detail.CommandHistory = st.CommandHistory(uuid)
	if secrets, ok := st.Secrets(uuid); ok {
		detail.Secrets = &secrets
	}

	detail.Applications = make(map[string]int)
	for level, apps := range query.GroupedApplications(single) {
		detail.Applications[level.String()] = len(apps)
	}
	detail.Units = make(map[string]int)
	for level, units := range query.GroupedUnits(single) {
		detail.Units[level.String()] = len(units)
	}
	detail.Machines = make(map[string]int)
	for level, machines := range query.GroupedMachines(single) {
		detail.Machines[level.String()] = len(machines)
	}
	for _, name := range sortedNames(data.Applications) {
		if !query.KnownStatus(data.Applications[name]) {
			detail.UnknownStatuses = append(detail.UnknownStatuses, name)
		}
	}
	return detail, true
}

// ModelUUID resolves a model reference, "owner/model" or a bare model
// name, to a UUID. Models with a status snapshot are searched first,
// then the model list.
func ModelUUID(st *store.Store, name string) (string, bool) {
	if uuid, ok := query.ModelUUIDByName(st.ModelData(), name); ok {
		return uuid, true
	}
	owner, modelName, qualified := strings.Cut(name, "/")
	if !qualified {
		owner, modelName = "", name
	}
	return query.ModelUUIDFromList(st.Models(), modelName, owner)
}

// StatusCounts returns how many models matching filters there are of
// each severity.
func StatusCounts(st *store.Store, memo *query.Memo, filters query.Filters) map[string]int {
	counts := make(map[string]int)
	for level, n := range query.StatusCounts(memo.GroupByStatus(st, filters)) {
		counts[level.String()] = n
	}
	return counts
}

func sortedNames[V any](m map[string]V) []string {
	result := make([]string, 0, len(m))
	for name := range m {
		result = append(result, name)
	}
	naturalsort.Sort(result)
	return result
}
