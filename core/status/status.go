// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status

// Status is a status value as reported by a controller, for machine
// agents, unit agents, unit and application workloads, relations and
// models. The dashboard only ever observes status values, it never sets
// them, so unrecognised values are carried through untouched.
type Status string

// String returns a string representation of the Status.
func (s Status) String() string {
	return string(s)
}

const (
	// Status values common to machine and unit agents.

	// Error means the entity requires human intervention
	// in order to operate correctly.
	Error Status = "error"

	// Started is set when the entity is actively participating in the
	// model.
	Started Status = "started"
)

const (
	// Status values specific to machine agents.

	// Pending is set when the machine is not yet participating in the
	// model.
	Pending Status = "pending"

	// Stopped is set when the machine's agent will perform no further
	// action.
	Stopped Status = "stopped"

	// Down is set when the machine ought to be signalling activity, but
	// it cannot be detected.
	Down Status = "down"
)

const (
	// Status values specific to unit agents.

	// Failed is set when the unit agent has failed in some way.
	Failed Status = "failed"

	// Allocating is set when the machine on which a unit is to be hosted
	// is still being spun up in the cloud.
	Allocating Status = "allocating"

	// Rebooting is set when the machine on which this agent is running is
	// being rebooted.
	Rebooting Status = "rebooting"

	// Executing is set when the agent is running a hook or action.
	Executing Status = "executing"

	// Idle is set when the agent is installed and running and has
	// nothing to do.
	Idle Status = "idle"

	// Lost is set when the unit agent has not communicated with the
	// controller for an unexpectedly long time.
	Lost Status = "lost"
)

const (
	// Status values specific to applications and units, reflecting the
	// state of the software itself.

	// Maintenance is set when the unit is not yet providing services, but
	// is actively doing stuff in preparation for providing those services.
	Maintenance Status = "maintenance"

	// Terminated is set when the unit used to exist but is now gone.
	Terminated Status = "terminated"

	// Unknown is set when the charm has not called status-set yet, or
	// when an application has no status of its own.
	Unknown Status = "unknown"

	// Waiting is set when the unit is unable to progress to an active
	// state because an application to which it is related is not running.
	Waiting Status = "waiting"

	// Blocked is set when the unit needs manual intervention to get back
	// to the running state.
	Blocked Status = "blocked"

	// Active is set when the unit believes it is correctly offering all
	// the services it has been asked to offer.
	Active Status = "active"
)

const (
	// Status values specific to models.

	Available  Status = "available"
	Busy       Status = "busy"
	Destroying Status = "destroying"
	Suspended  Status = "suspended"
)

const (
	// Status values specific to relations.

	Joining Status = "joining"
	Joined  Status = "joined"
	Broken  Status = "broken"
)

// KnownMachineStatus returns true if status has a known value for a machine
// agent.
func (s Status) KnownMachineStatus() bool {
	switch s {
	case
		Error,
		Started,
		Pending,
		Stopped,
		Down:
		return true
	}
	return false
}

// KnownAgentStatus returns true if status has a known value for a unit
// agent.
func (s Status) KnownAgentStatus() bool {
	switch s {
	case
		Allocating,
		Error,
		Failed,
		Lost,
		Rebooting,
		Executing,
		Idle:
		return true
	}
	return false
}

// KnownWorkloadStatus returns true if status has a known value for a
// unit or application workload.
func (s Status) KnownWorkloadStatus() bool {
	switch s {
	case
		Blocked,
		Maintenance,
		Waiting,
		Active,
		Unknown,
		Terminated,
		Error:
		return true
	}
	return false
}

// KnownModelStatus returns true if status has a known value for a model.
func (s Status) KnownModelStatus() bool {
	switch s {
	case
		Available,
		Busy,
		Destroying,
		Suspended,
		Error:
		return true
	}
	return false
}
