// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package allwatcher folds AllWatcher delta streams into per model entity
// maps.
package allwatcher

import (
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/loggo"
	"github.com/juju/names/v5"

	"github.com/juju/juju-dashboard/core/multiwatcher"
)

var logger = loggo.GetLogger("dashboard.allwatcher")

// annotationTagPrefix is stripped from annotation tags so annotations are
// keyed by application name.
const annotationTagPrefix = names.ApplicationTagKind + "-"

// ModelWatcherData holds the delta fed view of every watched model, keyed
// by model UUID.
type ModelWatcherData map[string]*ModelData

// ModelData is the delta fed view of a single model. Each map is keyed by
// the natural id of its kind.
type ModelData struct {
	Actions      map[string]multiwatcher.ActionInfo      `json:"actions"`
	Annotations  map[string]map[string]string            `json:"annotations"`
	Applications map[string]multiwatcher.ApplicationInfo `json:"applications"`
	Charms       map[string]multiwatcher.CharmInfo       `json:"charms"`
	Machines     map[string]multiwatcher.MachineInfo     `json:"machines"`
	Relations    map[string]multiwatcher.RelationInfo    `json:"relations"`
	Units        map[string]multiwatcher.UnitInfo        `json:"units"`
	Model        *multiwatcher.ModelInfo                 `json:"model,omitempty"`

	// removedApplications remembers applications whose latest delta was a
	// remove, so that a straggling unit delta does not resurrect them.
	removedApplications set.Strings
}

// NewModelData returns an empty ModelData.
func NewModelData() *ModelData {
	return &ModelData{
		Actions:             make(map[string]multiwatcher.ActionInfo),
		Annotations:         make(map[string]map[string]string),
		Applications:        make(map[string]multiwatcher.ApplicationInfo),
		Charms:              make(map[string]multiwatcher.CharmInfo),
		Machines:            make(map[string]multiwatcher.MachineInfo),
		Relations:           make(map[string]multiwatcher.RelationInfo),
		Units:               make(map[string]multiwatcher.UnitInfo),
		removedApplications: set.NewStrings(),
	}
}

// Ensure returns the ModelData for the uuid, creating it if needed.
func (d ModelWatcherData) Ensure(uuid string) *ModelData {
	model, ok := d[uuid]
	if !ok {
		model = NewModelData()
		d[uuid] = model
	}
	return model
}

// ProcessDeltas applies the deltas to data strictly in order and returns
// how many were applied. Deltas without a model UUID, and deltas for
// kinds that are not tracked, are skipped.
func ProcessDeltas(data ModelWatcherData, deltas []multiwatcher.Delta) int {
	applied := 0
	for _, delta := range deltas {
		if delta.Entity == nil {
			logger.Debugf("skipping %s delta without entity", delta.Type)
			continue
		}
		id := delta.Entity.EntityId()
		if id.ModelUUID == "" {
			logger.Debugf("skipping %s %s delta without model uuid", id.Kind, delta.Type)
			continue
		}
		if processDelta(data.Ensure(id.ModelUUID), delta) {
			applied++
		}
	}
	return applied
}

func processDelta(model *ModelData, delta multiwatcher.Delta) bool {
	removed := delta.Removed()
	switch entity := delta.Entity.(type) {
	case *multiwatcher.ActionInfo:
		if removed {
			delete(model.Actions, entity.Id)
		} else {
			model.Actions[entity.Id] = copyActionInfo(*entity)
		}
	case *multiwatcher.AnnotationInfo:
		key := strings.TrimPrefix(entity.Tag, annotationTagPrefix)
		if removed {
			delete(model.Annotations, key)
		} else {
			model.Annotations[key] = copyStringMap(entity.Annotations)
		}
	case *multiwatcher.ApplicationInfo:
		if removed {
			delete(model.Applications, entity.Name)
			if model.removedApplications == nil {
				model.removedApplications = set.NewStrings()
			}
			model.removedApplications.Add(entity.Name)
			return true
		}
		app := copyApplicationInfo(*entity)
		app.UnitCount = model.unitCount(entity.Name)
		model.Applications[entity.Name] = app
		model.removedApplications.Remove(entity.Name)
	case *multiwatcher.CharmInfo:
		if removed {
			delete(model.Charms, entity.CharmURL)
		} else {
			model.Charms[entity.CharmURL] = copyCharmInfo(*entity)
		}
	case *multiwatcher.MachineInfo:
		if removed {
			delete(model.Machines, entity.Id)
		} else {
			model.Machines[entity.Id] = copyMachineInfo(*entity)
		}
	case *multiwatcher.ModelInfo:
		// Models are never removed from the view, a dying model is
		// reported through its life and status.
		if removed {
			return false
		}
		model.mergeModel(*entity)
	case *multiwatcher.RelationInfo:
		if removed {
			delete(model.Relations, entity.Key)
		} else {
			model.Relations[entity.Key] = copyRelationInfo(*entity)
		}
	case *multiwatcher.UnitInfo:
		if removed {
			delete(model.Units, entity.Name)
		} else {
			model.Units[entity.Name] = copyUnitInfo(*entity)
		}
		model.updateUnitCount(unitApplication(*entity), !removed)
	default:
		logger.Tracef("ignoring %s delta for untracked kind %q", delta.Type, delta.Entity.EntityId().Kind)
		return false
	}
	return true
}

// mergeModel replaces the model with the incoming delta, keeping the
// fields seeded from full status when the delta does not carry them.
func (m *ModelData) mergeModel(incoming multiwatcher.ModelInfo) {
	merged := copyModelInfo(incoming)
	if existing := m.Model; existing != nil {
		if merged.CloudTag == "" {
			merged.CloudTag = existing.CloudTag
		}
		if merged.Region == "" {
			merged.Region = existing.Region
		}
		if merged.Type == "" {
			merged.Type = existing.Type
		}
		if merged.Version == "" {
			merged.Version = existing.Version
		}
	}
	m.Model = &merged
}

// SeedModel fills the given fields of the model slot where they are still
// empty, creating the slot if no model delta has arrived yet.
func (m *ModelData) SeedModel(modelUUID, cloudTag, region, modelType, version string) {
	if m.Model == nil {
		m.Model = &multiwatcher.ModelInfo{ModelUUID: modelUUID}
	}
	if m.Model.CloudTag == "" {
		m.Model.CloudTag = cloudTag
	}
	if m.Model.Region == "" {
		m.Model.Region = region
	}
	if m.Model.Type == "" {
		m.Model.Type = modelType
	}
	if m.Model.Version == "" {
		m.Model.Version = version
	}
}

func (m *ModelData) unitCount(appName string) int {
	count := 0
	for _, unit := range m.Units {
		if unitApplication(unit) == appName {
			count++
		}
	}
	return count
}

// updateUnitCount refreshes the unit count of the application. Units can
// arrive before their application, in which case a placeholder is created
// so the count has somewhere to live.
func (m *ModelData) updateUnitCount(appName string, allowPlaceholder bool) {
	if appName == "" {
		return
	}
	app, ok := m.Applications[appName]
	if !ok {
		if !allowPlaceholder || m.removedApplications.Contains(appName) {
			return
		}
		app = multiwatcher.ApplicationInfo{Name: appName}
		for _, unit := range m.Units {
			if unitApplication(unit) == appName {
				app.ModelUUID = unit.ModelUUID
				break
			}
		}
	}
	app.UnitCount = m.unitCount(appName)
	m.Applications[appName] = app
}

func unitApplication(unit multiwatcher.UnitInfo) string {
	if unit.Application != "" {
		return unit.Application
	}
	if app, err := names.UnitApplication(unit.Name); err == nil {
		return app
	}
	if i := strings.Index(unit.Name, "/"); i > 0 {
		return unit.Name[:i]
	}
	return ""
}
