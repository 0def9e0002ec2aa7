// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package allwatcher

import (
	"time"

	"github.com/juju/juju-dashboard/core/multiwatcher"
)

// The stored entities are copies so that a caller holding on to a decoded
// delta cannot mutate the view behind the store's back.

func copyActionInfo(a multiwatcher.ActionInfo) multiwatcher.ActionInfo {
	a.Parameters = copyDataMap(a.Parameters)
	a.Results = copyDataMap(a.Results)
	return a
}

func copyApplicationInfo(a multiwatcher.ApplicationInfo) multiwatcher.ApplicationInfo {
	a.Constraints = copyDataMap(a.Constraints)
	a.Status = copyStatusInfo(a.Status)
	return a
}

func copyCharmInfo(c multiwatcher.CharmInfo) multiwatcher.CharmInfo {
	c.Config = copyDataMap(c.Config)
	return c
}

func copyMachineInfo(m multiwatcher.MachineInfo) multiwatcher.MachineInfo {
	m.AgentStatus = copyStatusInfo(m.AgentStatus)
	m.InstanceStatus = copyStatusInfo(m.InstanceStatus)
	if m.HardwareCharacteristics != nil {
		hc := *m.HardwareCharacteristics
		m.HardwareCharacteristics = &hc
	}
	if m.SupportedContainers != nil {
		m.SupportedContainers = append([]string(nil), m.SupportedContainers...)
	}
	if m.Jobs != nil {
		m.Jobs = append([]string(nil), m.Jobs...)
	}
	if m.Addresses != nil {
		m.Addresses = append([]multiwatcher.Address(nil), m.Addresses...)
	}
	return m
}

func copyModelInfo(m multiwatcher.ModelInfo) multiwatcher.ModelInfo {
	m.Config = copyDataMap(m.Config)
	m.Constraints = copyDataMap(m.Constraints)
	m.Status = copyStatusInfo(m.Status)
	return m
}

func copyRelationInfo(r multiwatcher.RelationInfo) multiwatcher.RelationInfo {
	if r.Endpoints != nil {
		r.Endpoints = append([]multiwatcher.Endpoint(nil), r.Endpoints...)
	}
	return r
}

func copyUnitInfo(u multiwatcher.UnitInfo) multiwatcher.UnitInfo {
	u.AgentStatus = copyStatusInfo(u.AgentStatus)
	u.WorkloadStatus = copyStatusInfo(u.WorkloadStatus)
	if u.Ports != nil {
		u.Ports = append([]multiwatcher.Port(nil), u.Ports...)
	}
	if u.PortRanges != nil {
		u.PortRanges = append([]multiwatcher.PortRange(nil), u.PortRanges...)
	}
	return u
}

func copyStatusInfo(info multiwatcher.StatusInfo) multiwatcher.StatusInfo {
	var cSince *time.Time
	if info.Since != nil {
		s := *info.Since
		cSince = &s
	}
	info.Since = cSince
	info.Data = copyDataMap(info.Data)
	return info
}

func copyDataMap(data map[string]interface{}) map[string]interface{} {
	var cData map[string]interface{}
	if data != nil {
		cData = make(map[string]interface{}, len(data))
		for i, d := range data {
			cData[i] = d
		}
	}
	return cData
}

func copyStringMap(data map[string]string) map[string]string {
	var cData map[string]string
	if data != nil {
		cData = make(map[string]string, len(data))
		for i, d := range data {
			cData[i] = d
		}
	}
	return cData
}
