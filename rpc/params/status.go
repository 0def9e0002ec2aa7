// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"time"
)

// FullStatus holds information about the status of a juju model, as
// returned by the Client.FullStatus facade call.
type FullStatus struct {
	Model               ModelStatusInfo                    `json:"model"`
	Machines            map[string]MachineStatus           `json:"machines"`
	Applications        map[string]ApplicationStatus       `json:"applications"`
	RemoteApplications  map[string]RemoteApplicationStatus `json:"remote-applications"`
	Offers              map[string]ApplicationOfferStatus  `json:"offers"`
	Relations           []RelationStatus                   `json:"relations"`
	Annotations         map[string]map[string]string       `json:"annotations,omitempty"`
	Branches            map[string]BranchStatus            `json:"branches,omitempty"`
	ControllerTimestamp *time.Time                         `json:"controller-timestamp,omitempty"`
}

// ModelStatusInfo holds status information about the model itself.
type ModelStatusInfo struct {
	Name             string         `json:"name"`
	Type             string         `json:"type"`
	CloudTag         string         `json:"cloud-tag"`
	CloudRegion      string         `json:"region,omitempty"`
	Version          string         `json:"version"`
	AvailableVersion string         `json:"available-version"`
	ModelStatus      DetailedStatus `json:"model-status"`
	MeterStatus      MeterStatus    `json:"meter-status"`
	SLA              string         `json:"sla"`
}

// MachineStatus holds status info about a machine.
type MachineStatus struct {
	AgentStatus    DetailedStatus `json:"agent-status"`
	InstanceStatus DetailedStatus `json:"instance-status"`

	DNSName     string                   `json:"dns-name"`
	IPAddresses []string                 `json:"ip-addresses,omitempty"`
	InstanceId  string                   `json:"instance-id"`
	DisplayName string                   `json:"display-name"`
	Series      string                   `json:"series,omitempty"`
	Base        Base                     `json:"base"`
	Id          string                   `json:"id"`
	Containers  map[string]MachineStatus `json:"containers"`
	Constraints string                   `json:"constraints"`
	Hardware    string                   `json:"hardware"`
	Jobs        []string                 `json:"jobs"`
	HasVote     bool                     `json:"has-vote"`
	WantsVote   bool                     `json:"wants-vote"`
}

// Base holds the OS name and channel of a machine or application.
type Base struct {
	Name    string `json:"name"`
	Channel string `json:"channel"`
}

// ApplicationStatus holds status info about an application.
type ApplicationStatus struct {
	Charm            string                 `json:"charm"`
	CharmVersion     string                 `json:"charm-version"`
	CharmChannel     string                 `json:"charm-channel,omitempty"`
	Series           string                 `json:"series,omitempty"`
	Base             Base                   `json:"base"`
	Exposed          bool                   `json:"exposed"`
	Life             string                 `json:"life"`
	Relations        map[string][]string    `json:"relations"`
	CanUpgradeTo     string                 `json:"can-upgrade-to"`
	SubordinateTo    []string               `json:"subordinate-to"`
	Units            map[string]UnitStatus  `json:"units"`
	MeterStatuses    map[string]MeterStatus `json:"meter-statuses"`
	Status           DetailedStatus         `json:"status"`
	WorkloadVersion  string                 `json:"workload-version"`
	EndpointBindings map[string]string      `json:"endpoint-bindings"`
	PublicAddress    string                 `json:"public-address"`
}

// MeterStatus represents the meter status of a unit or model.
type MeterStatus struct {
	Color   string `json:"color"`
	Message string `json:"message"`
}

// UnitStatus holds status info about a unit.
type UnitStatus struct {
	// AgentStatus holds the status for a unit's agent.
	AgentStatus DetailedStatus `json:"agent-status"`

	// WorkloadStatus holds the status for a unit's workload.
	WorkloadStatus  DetailedStatus `json:"workload-status"`
	WorkloadVersion string         `json:"workload-version"`

	Machine       string                `json:"machine"`
	OpenedPorts   []string              `json:"opened-ports"`
	PublicAddress string                `json:"public-address"`
	Charm         string                `json:"charm"`
	Subordinates  map[string]UnitStatus `json:"subordinates"`
	Leader        bool                  `json:"leader,omitempty"`
}

// RelationStatus holds status info about a relation.
type RelationStatus struct {
	Id        int              `json:"id"`
	Key       string           `json:"key"`
	Interface string           `json:"interface"`
	Scope     string           `json:"scope"`
	Endpoints []EndpointStatus `json:"endpoints"`
	Status    DetailedStatus   `json:"status"`
}

// EndpointStatus holds status info about a single endpoint.
type EndpointStatus struct {
	ApplicationName string `json:"application"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	Subordinate     bool   `json:"subordinate"`
}

// String returns the endpoint in application:name form.
func (epStatus *EndpointStatus) String() string {
	return epStatus.ApplicationName + ":" + epStatus.Name
}

// RemoteApplicationStatus holds status info about a remote application
// consumed from another model.
type RemoteApplicationStatus struct {
	OfferURL  string              `json:"offer-url"`
	OfferName string              `json:"offer-name"`
	Endpoints []RemoteEndpoint    `json:"endpoints"`
	Life      string              `json:"life"`
	Relations map[string][]string `json:"relations"`
	Status    DetailedStatus      `json:"status"`
}

// RemoteEndpoint describes an endpoint offered by a remote application.
type RemoteEndpoint struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Interface string `json:"interface"`
	Limit     int    `json:"limit"`
}

// ApplicationOfferStatus holds status info about an application offer.
type ApplicationOfferStatus struct {
	OfferName            string                    `json:"offer-name"`
	ApplicationName      string                    `json:"application-name"`
	CharmURL             string                    `json:"charm"`
	Endpoints            map[string]RemoteEndpoint `json:"endpoints"`
	ActiveConnectedCount int                       `json:"active-connected-count"`
	TotalConnectedCount  int                       `json:"total-connected-count"`
}

// BranchStatus holds status info about a model generation.
type BranchStatus struct {
	AssignedUnits map[string][]string `json:"assigned-units"`
	Created       int64               `json:"created"`
	CreatedBy     string              `json:"created-by"`
}

// DetailedStatus holds status info about a machine, unit agent, workload
// or application.
type DetailedStatus struct {
	Status  string                 `json:"status"`
	Info    string                 `json:"info"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Since   *time.Time             `json:"since,omitempty"`
	Kind    string                 `json:"kind,omitempty"`
	Version string                 `json:"version,omitempty"`
	Life    string                 `json:"life,omitempty"`
}
