// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"time"
)

// UserModelList holds the models a user can see on one controller, as
// returned by ModelManager.ListModels.
type UserModelList struct {
	UserModels []UserModel `json:"user-models"`
}

// UserModel holds information about a model and the last time the
// requesting user connected to it.
type UserModel struct {
	Model          Model      `json:"model"`
	LastConnection *time.Time `json:"last-connection"`
}

// Model holds the identity of a model. Older controllers report the
// owner as a user tag in OwnerTag, newer ones report a bare user name
// in Qualifier.
type Model struct {
	Name      string `json:"name"`
	UUID      string `json:"uuid"`
	Type      string `json:"type"`
	OwnerTag  string `json:"owner-tag,omitempty"`
	Qualifier string `json:"qualifier,omitempty"`
}

// ModelInfoResults holds the results of a ModelManager.ModelInfo call.
type ModelInfoResults struct {
	Results []ModelInfoResult `json:"results"`
}

// ModelInfoResult holds the result of a ModelInfo call for one model.
type ModelInfoResult struct {
	Result *ModelInfo `json:"result,omitempty"`
	Error  *Error     `json:"error,omitempty"`
}

// ModelInfo holds information about a model.
type ModelInfo struct {
	Name               string             `json:"name"`
	Type               string             `json:"type"`
	UUID               string             `json:"uuid"`
	ControllerUUID     string             `json:"controller-uuid"`
	IsController       bool               `json:"is-controller"`
	ProviderType       string             `json:"provider-type,omitempty"`
	DefaultSeries      string             `json:"default-series,omitempty"`
	CloudTag           string             `json:"cloud-tag"`
	CloudRegion        string             `json:"cloud-region,omitempty"`
	CloudCredentialTag string             `json:"cloud-credential-tag,omitempty"`
	OwnerTag           string             `json:"owner-tag"`
	Life               string             `json:"life"`
	Status             EntityStatus       `json:"status,omitempty"`
	Users              []ModelUserInfo    `json:"users"`
	Machines           []ModelMachineInfo `json:"machines"`
	SLA                *ModelSLAInfo      `json:"sla,omitempty"`
	AgentVersion       string             `json:"agent-version,omitempty"`
}

// EntityStatus holds the status of an entity.
type EntityStatus struct {
	Status string                 `json:"status"`
	Info   string                 `json:"info"`
	Data   map[string]interface{} `json:"data,omitempty"`
	Since  *time.Time             `json:"since,omitempty"`
}

// ModelUserInfo holds information on a user who has access to a model.
type ModelUserInfo struct {
	UserName       string     `json:"user"`
	DisplayName    string     `json:"display-name"`
	LastConnection *time.Time `json:"last-connection"`
	Access         string     `json:"access"`
}

// ModelMachineInfo holds information about a machine in a model.
type ModelMachineInfo struct {
	Id          string `json:"id"`
	DisplayName string `json:"display-name,omitempty"`
	InstanceId  string `json:"instance-id,omitempty"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
	HasVote     bool   `json:"has-vote,omitempty"`
	WantsVote   bool   `json:"wants-vote,omitempty"`
}

// ModelSLAInfo describes the SLA level of a model.
type ModelSLAInfo struct {
	Level string `json:"level"`
	Owner string `json:"owner"`
}
