// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package query

import (
	"strings"

	"github.com/juju/naturalsort"

	"github.com/juju/juju-dashboard/core/severity"
	"github.com/juju/juju-dashboard/core/status"
	"github.com/juju/juju-dashboard/internal/allwatcher"
	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/rpc/params"
)

// StatusGroups holds the models of each severity.
type StatusGroups map[severity.Severity][]store.ModelData

func newStatusGroups() StatusGroups {
	groups := make(StatusGroups)
	for _, s := range severity.All() {
		groups[s] = []store.ModelData{}
	}
	return groups
}

// GroupByStatus filters the models and groups them by their aggregate
// severity. Every severity has an entry, possibly empty.
func GroupByStatus(models map[string]store.ModelData, filters Filters) StatusGroups {
	filtered := Filter(models, filters)
	groups := newStatusGroups()
	for _, uuid := range sortedUUIDs(filtered) {
		model := filtered[uuid]
		highest := severity.ClassifyAggregate(model.Applications).Highest
		groups[highest] = append(groups[highest], model)
	}
	return groups
}

// GroupByCloud filters the models and groups them by cloud name. Models
// without a cloud are left out.
func GroupByCloud(models map[string]store.ModelData, filters Filters) map[string][]store.ModelData {
	return groupBy(Filter(models, filters), func(attrs Attributes) string {
		return attrs.Cloud
	})
}

// GroupByOwner filters the models and groups them by owner name. Models
// without an owner are left out.
func GroupByOwner(models map[string]store.ModelData, filters Filters) map[string][]store.ModelData {
	return groupBy(Filter(models, filters), func(attrs Attributes) string {
		return attrs.Owner
	})
}

func groupBy(models map[string]store.ModelData, key func(Attributes) string) map[string][]store.ModelData {
	grouped := make(map[string][]store.ModelData)
	for _, uuid := range sortedUUIDs(models) {
		model := models[uuid]
		k := key(ModelAttributes(model))
		if k == "" {
			continue
		}
		grouped[k] = append(grouped[k], model)
	}
	return grouped
}

// StatusCounts returns how many models there are of each severity.
func StatusCounts(groups StatusGroups) map[severity.Severity]int {
	counts := make(map[severity.Severity]int, len(groups))
	for _, s := range severity.All() {
		counts[s] = len(groups[s])
	}
	return counts
}

// GroupedMachines returns every machine of every model, grouped by the
// severity of its agent.
func GroupedMachines(models map[string]store.ModelData) map[severity.Severity][]params.MachineStatus {
	grouped := map[severity.Severity][]params.MachineStatus{}
	for _, s := range severity.All() {
		grouped[s] = []params.MachineStatus{}
	}
	for _, uuid := range sortedUUIDs(models) {
		machines := models[uuid].Machines
		for _, id := range sortedKeys(machines) {
			machine := machines[id]
			sev := severity.OfMachine(machine)
			grouped[sev] = append(grouped[sev], machine)
		}
	}
	return grouped
}

// GroupedUnits returns every unit of every model, grouped by the
// severity of its agent.
func GroupedUnits(models map[string]store.ModelData) map[severity.Severity][]params.UnitStatus {
	grouped := map[severity.Severity][]params.UnitStatus{}
	for _, s := range severity.All() {
		grouped[s] = []params.UnitStatus{}
	}
	for _, uuid := range sortedUUIDs(models) {
		apps := models[uuid].Applications
		for _, appName := range sortedKeys(apps) {
			units := apps[appName].Units
			for _, unitID := range sortedKeys(units) {
				unit := units[unitID]
				sev := severity.OfUnit(unit)
				grouped[sev] = append(grouped[sev], unit)
			}
		}
	}
	return grouped
}

// GroupedApplications returns every application of every model, grouped
// by severity.
func GroupedApplications(models map[string]store.ModelData) map[severity.Severity][]params.ApplicationStatus {
	grouped := map[severity.Severity][]params.ApplicationStatus{}
	for _, s := range severity.All() {
		grouped[s] = []params.ApplicationStatus{}
	}
	for _, uuid := range sortedUUIDs(models) {
		apps := models[uuid].Applications
		for _, appName := range sortedKeys(apps) {
			app := apps[appName]
			sev := severity.OfApplication(app)
			grouped[sev] = append(grouped[sev], app)
		}
	}
	return grouped
}

// ApplicationSeverities returns, for a watched model, the worst severity
// of each application's units, taking both the workload and the agent
// status into account.
func ApplicationSeverities(model *allwatcher.ModelData) map[string]severity.Severity {
	if model == nil {
		return nil
	}
	result := make(map[string]severity.Severity)
	for _, unit := range model.Units {
		unitSeverity := severity.Max(
			severity.Workload(unit.WorkloadStatus.Current),
			severity.UnitAgent(unit.AgentStatus.Current),
		)
		app := unit.Application
		if app == "" {
			app, _, _ = strings.Cut(unit.Name, "/")
		}
		result[app] = severity.Max(result[app], unitSeverity)
	}
	return result
}

// ModelSeverity returns the aggregate severity of a model snapshot.
func ModelSeverity(model store.ModelData) severity.Severity {
	return severity.ClassifyAggregate(model.Applications).Highest
}

// KnownStatus reports whether the application status is one a controller
// would send, to flag snapshots from newer controllers in the output.
func KnownStatus(app params.ApplicationStatus) bool {
	return status.Status(app.Status.Status).KnownWorkloadStatus()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	naturalsort.Sort(keys)
	return keys
}
