// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"github.com/juju/juju-dashboard/core/multiwatcher"
)

// LoginRequest holds credentials for the Admin.Login call.
type LoginRequest struct {
	AuthTag       string `json:"auth-tag"`
	Credentials   string `json:"credentials"`
	Nonce         string `json:"nonce"`
	ClientVersion string `json:"client-version,omitempty"`
}

// FacadeVersions describes the available facade and the versions the
// server supports for it.
type FacadeVersions struct {
	Name     string `json:"name"`
	Versions []int  `json:"versions"`
}

// AuthUserInfo describes a logged in user.
type AuthUserInfo struct {
	DisplayName      string `json:"display-name"`
	Identity         string `json:"identity"`
	ControllerAccess string `json:"controller-access"`
	ModelAccess      string `json:"model-access"`
}

// LoginResult holds the result of an Admin.Login call.
type LoginResult struct {
	ControllerTag string           `json:"controller-tag,omitempty"`
	ModelTag      string           `json:"model-tag,omitempty"`
	Facades       []FacadeVersions `json:"facades,omitempty"`
	UserInfo      *AuthUserInfo    `json:"user-info,omitempty"`
	ServerVersion string           `json:"server-version,omitempty"`
}

// Entity identifies a single entity.
type Entity struct {
	Tag string `json:"tag"`
}

// Entities identifies multiple entities.
type Entities struct {
	Entities []Entity `json:"entities"`
}

// StatusParams holds the patterns for a Client.FullStatus call. An empty
// list asks for the whole model.
type StatusParams struct {
	Patterns []string `json:"patterns"`
}

// AllWatcherId holds the id of a model AllWatcher.
type AllWatcherId struct {
	AllWatcherId string `json:"watcher-id"`
}

// AllWatcherNextResults holds deltas returned from calling AllWatcher.Next.
type AllWatcherNextResults struct {
	Deltas []multiwatcher.Delta `json:"deltas"`
}

// AnnotationsGetResult holds the annotations of one entity.
type AnnotationsGetResult struct {
	EntityTag   string            `json:"entity"`
	Annotations map[string]string `json:"annotations"`
	Error       ErrorResult       `json:"error,omitempty"`
}

// AnnotationsGetResults holds the results of an Annotations.Get call.
type AnnotationsGetResults struct {
	Results []AnnotationsGetResult `json:"results"`
}

// ControllerConfigResult holds the controller configuration.
type ControllerConfigResult struct {
	Config map[string]interface{} `json:"config"`
}
