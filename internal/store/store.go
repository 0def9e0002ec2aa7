// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package store holds the normalised view of every model and controller
// the dashboard knows about.
//
// A Store is not safe for concurrent use. It is owned by a single
// goroutine, see the dispatcher package.
package store

import (
	"time"

	"github.com/juju/loggo"

	"github.com/juju/juju-dashboard/internal/allwatcher"
	"github.com/juju/juju-dashboard/rpc/params"
)

var logger = loggo.GetLogger("dashboard.store")

// ModelListEntry is one model visible to the user, as reported by the
// model list of the controller at WSControllerURL.
type ModelListEntry struct {
	UUID            string     `json:"uuid"`
	Name            string     `json:"name"`
	OwnerTag        string     `json:"ownerTag"`
	Type            string     `json:"type"`
	WSControllerURL string     `json:"wsControllerURL"`
	LastConnection  *time.Time `json:"lastConnection,omitempty"`
}

// ModelData is the status snapshot of a single model. Only the fields
// the dashboard renders are kept from the full status.
type ModelData struct {
	UUID               string                                    `json:"uuid"`
	Info               *params.ModelInfo                         `json:"info,omitempty"`
	Annotations        map[string]map[string]string              `json:"annotations,omitempty"`
	Applications       map[string]params.ApplicationStatus       `json:"applications"`
	Machines           map[string]params.MachineStatus           `json:"machines"`
	Model              params.ModelStatusInfo                    `json:"model"`
	Offers             map[string]params.ApplicationOfferStatus  `json:"offers"`
	Relations          []params.RelationStatus                   `json:"relations"`
	RemoteApplications map[string]params.RemoteApplicationStatus `json:"remote-applications"`
}

// ModelFeatures records which optional features a model supports, as
// learned from the facades its endpoint offers.
type ModelFeatures struct {
	ListSecrets   bool `json:"listSecrets"`
	ManageSecrets bool `json:"manageSecrets"`
}

// DestroyModelState tracks a request to destroy a model.
type DestroyModelState struct {
	Loading bool   `json:"loading"`
	Loaded  bool   `json:"loaded"`
	Errors  string `json:"errors,omitempty"`
}

// CommandHistoryItem is a command run against a model from the dashboard
// console, with its output.
type CommandHistoryItem struct {
	Command  string   `json:"command"`
	Messages []string `json:"messages"`
}

// Store is the normalised container. The zero value is not usable, use
// New.
type Store struct {
	models           map[string]ModelListEntry
	modelData        map[string]*ModelData
	modelWatcherData allwatcher.ModelWatcherData
	modelFeatures    map[string]ModelFeatures
	modelsError      string
	modelsLoaded     bool

	// controllers is nil until the first controller list arrives.
	controllers map[string][]params.ControllerInfo

	destroyModel   map[string]DestroyModelState
	commandHistory map[string][]CommandHistoryItem

	secrets     map[string]ModelSecrets
	auditEvents AuditEventsState
	charms      []params.Charm

	revision uint64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		models:           make(map[string]ModelListEntry),
		modelData:        make(map[string]*ModelData),
		modelWatcherData: make(allwatcher.ModelWatcherData),
		modelFeatures:    make(map[string]ModelFeatures),
		destroyModel:     make(map[string]DestroyModelState),
		commandHistory:   make(map[string][]CommandHistoryItem),
		secrets:          make(map[string]ModelSecrets),
		auditEvents:      AuditEventsState{Limit: DefaultAuditEventsLimit},
	}
}

// Revision increases with every mutation. Derived views can be cached
// against it.
func (s *Store) Revision() uint64 {
	return s.revision
}

func (s *Store) bump() {
	s.revision++
}

// Models returns the model list keyed by model UUID.
func (s *Store) Models() map[string]ModelListEntry {
	result := make(map[string]ModelListEntry, len(s.models))
	for uuid, entry := range s.models {
		result[uuid] = entry
	}
	return result
}

// ModelData returns the model snapshots keyed by model UUID. The
// snapshots are shallow copies and must not be modified.
func (s *Store) ModelData() map[string]ModelData {
	result := make(map[string]ModelData, len(s.modelData))
	for uuid, data := range s.modelData {
		result[uuid] = *data
	}
	return result
}

// ModelDataByUUID returns the snapshot of one model.
func (s *Store) ModelDataByUUID(uuid string) (ModelData, bool) {
	data, ok := s.modelData[uuid]
	if !ok {
		return ModelData{}, false
	}
	return *data, true
}

// ModelWatcherData returns the delta fed view of the watched models. It
// must not be modified.
func (s *Store) ModelWatcherData() allwatcher.ModelWatcherData {
	return s.modelWatcherData
}

// ModelsLoaded reports whether any model list has been received since the
// last clear.
func (s *Store) ModelsLoaded() bool {
	return s.modelsLoaded
}

// ModelsError returns the last error reported while listing models, or
// the empty string.
func (s *Store) ModelsError() string {
	return s.modelsError
}

// Controllers returns the controllers keyed by the websocket URL of the
// controller that reported them. The second result is false when no
// controller list has been received yet.
func (s *Store) Controllers() (map[string][]params.ControllerInfo, bool) {
	if s.controllers == nil {
		return nil, false
	}
	result := make(map[string][]params.ControllerInfo, len(s.controllers))
	for url, controllers := range s.controllers {
		result[url] = append([]params.ControllerInfo(nil), controllers...)
	}
	return result, true
}

// ControllersFor returns the controllers reported by one websocket URL.
func (s *Store) ControllersFor(wsControllerURL string) ([]params.ControllerInfo, bool) {
	controllers, ok := s.controllers[wsControllerURL]
	if !ok {
		return nil, false
	}
	return append([]params.ControllerInfo(nil), controllers...), true
}
