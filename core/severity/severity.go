// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package severity reduces the status values reported for applications,
// units and machines to a three level severity used for grouping and
// alerting.
package severity

import (
	"sort"

	"github.com/juju/errors"
	"github.com/juju/naturalsort"

	"github.com/juju/juju-dashboard/core/status"
	"github.com/juju/juju-dashboard/rpc/params"
)

// Severity is the health level of an entity. Values are ordered, higher
// is worse.
type Severity int

const (
	Running Severity = iota
	Alert
	Blocked
)

// Terminal is the highest severity. Nothing is worse.
const Terminal = Blocked

// All returns every severity in ascending order.
func All() []Severity {
	return []Severity{Running, Alert, Blocked}
}

// String returns the lower case name of the severity.
func (s Severity) String() string {
	switch s {
	case Running:
		return "running"
	case Alert:
		return "alert"
	case Blocked:
		return "blocked"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return errors.Trace(err)
	}
	*s = v
	return nil
}

// Parse returns the severity with the given name.
func Parse(name string) (Severity, error) {
	for _, s := range All() {
		if s.String() == name {
			return s, nil
		}
	}
	return Running, errors.NotValidf("severity %q", name)
}

// Max returns the worse of the two severities.
func Max(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}

var (
	applicationSeverities = map[status.Status]Severity{
		status.Blocked: Blocked,
		status.Unknown: Alert,
	}
	unitAgentSeverities = map[status.Status]Severity{
		status.Lost:       Blocked,
		status.Failed:     Blocked,
		status.Allocating: Alert,
		status.Executing:  Alert,
		status.Rebooting:  Alert,
	}
	machineAgentSeverities = map[status.Status]Severity{
		status.Down:    Blocked,
		status.Pending: Alert,
	}
	workloadSeverities = map[status.Status]Severity{
		status.Blocked:     Blocked,
		status.Maintenance: Alert,
		status.Waiting:     Alert,
	}
)

func lookup(table map[status.Status]Severity, s status.Status) Severity {
	if sev, ok := table[s]; ok {
		return sev
	}
	return Running
}

// Application classifies an application status.
func Application(s status.Status) Severity {
	return lookup(applicationSeverities, s)
}

// UnitAgent classifies the agent status of a unit.
func UnitAgent(s status.Status) Severity {
	return lookup(unitAgentSeverities, s)
}

// MachineAgent classifies the agent status of a machine.
func MachineAgent(s status.Status) Severity {
	return lookup(machineAgentSeverities, s)
}

// Workload classifies the workload status of a unit.
func Workload(s status.Status) Severity {
	return lookup(workloadSeverities, s)
}

// OfApplication classifies an application from its full status.
func OfApplication(app params.ApplicationStatus) Severity {
	return Application(status.Status(app.Status.Status))
}

// OfUnit classifies a unit from its full status by its agent status.
func OfUnit(unit params.UnitStatus) Severity {
	return UnitAgent(status.Status(unit.AgentStatus.Status))
}

// OfMachine classifies a machine from its full status.
func OfMachine(machine params.MachineStatus) Severity {
	return MachineAgent(status.Status(machine.AgentStatus.Status))
}

// Message explains why a model reached the terminal severity. UnitID is
// empty when the application itself is terminal.
type Message struct {
	AppName string `json:"appName"`
	UnitID  string `json:"unitId,omitempty"`
	Message string `json:"message"`
}

// Summary is the aggregate classification of a model.
type Summary struct {
	Highest  Severity  `json:"highestStatus"`
	Messages []Message `json:"messages"`
}

// ClassifyAggregate returns the highest severity over the applications
// and their units, with a message for every terminal application and
// every terminal unit of a non terminal application. Applications are
// visited in name order and units in natural order, so the messages are
// stable across calls.
func ClassifyAggregate(apps map[string]params.ApplicationStatus) Summary {
	summary := Summary{
		Highest:  Running,
		Messages: []Message{},
	}
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, appName := range names {
		app := apps[appName]
		appSeverity := OfApplication(app)
		summary.Highest = Max(summary.Highest, appSeverity)
		if appSeverity == Terminal {
			summary.Messages = append(summary.Messages, Message{
				AppName: appName,
				Message: app.Status.Info,
			})
			continue
		}

		unitIDs := make([]string, 0, len(app.Units))
		for id := range app.Units {
			unitIDs = append(unitIDs, id)
		}
		naturalsort.Sort(unitIDs)
		for _, unitID := range unitIDs {
			unit := app.Units[unitID]
			unitSeverity := OfUnit(unit)
			summary.Highest = Max(summary.Highest, unitSeverity)
			if unitSeverity == Terminal {
				summary.Messages = append(summary.Messages, Message{
					AppName: appName,
					UnitID:  unitID,
					Message: unit.AgentStatus.Info,
				})
			}
		}
	}
	return summary
}
