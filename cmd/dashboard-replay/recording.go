// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"encoding/json"

	"github.com/juju/collections/set"
	"github.com/juju/errors"

	"github.com/juju/juju-dashboard/core/multiwatcher"
	"github.com/juju/juju-dashboard/internal/reconcile"
	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/rpc/params"
)

// Recording is a captured sequence of controller responses.
type Recording struct {
	// Controller is the websocket URL steps are attributed to unless
	// they name their own.
	Controller string `json:"controller"`

	// LoggedOut lists the controllers the dashboard had lost its session
	// with. Controller data they report is not reconciled.
	LoggedOut []string `json:"logged-out,omitempty"`

	// Users names who the dashboard is logged in as, keyed by
	// controller URL.
	Users map[string]RecordedUser `json:"users,omitempty"`

	Steps []Step `json:"steps"`
}

// RecordedUser is the user a controller session was opened as.
type RecordedUser struct {
	Name             string `json:"name"`
	ControllerAccess string `json:"controller-access,omitempty"`
}

// ModelStatus is the full status of one model.
type ModelStatus struct {
	UUID   string            `json:"uuid"`
	Status params.FullStatus `json:"status"`
}

// ModelFeatures is what the endpoint of one model offers.
type ModelFeatures struct {
	UUID     string              `json:"uuid"`
	Features store.ModelFeatures `json:"features"`
}

// CommandHistory is a console command run against one model.
type CommandHistory struct {
	UUID string                   `json:"uuid"`
	Item store.CommandHistoryItem `json:"item"`
}

// ModelSecrets is the secrets listing of one model.
type ModelSecrets struct {
	UUID  string                    `json:"uuid"`
	Items []params.ListSecretResult `json:"items"`
}

// SecretsContent is a revealed secret value of one model.
type SecretsContent struct {
	UUID    string            `json:"uuid"`
	Content map[string]string `json:"content"`
}

// ModelError is a failure reported for one model.
type ModelError struct {
	UUID    string `json:"uuid"`
	Message string `json:"message"`
}

// Step is one recorded response. Exactly one of its payloads is set.
type Step struct {
	Controller string `json:"controller,omitempty"`

	Controllers      []params.ControllerInfo  `json:"controllers,omitempty"`
	Models           *params.UserModelList    `json:"models,omitempty"`
	ModelsError      *string                  `json:"models-error,omitempty"`
	Status           *ModelStatus             `json:"status,omitempty"`
	Info             *params.ModelInfoResults `json:"info,omitempty"`
	Features         *ModelFeatures           `json:"features,omitempty"`
	Watch            string                   `json:"watch,omitempty"`
	Populate         *ModelStatus             `json:"populate,omitempty"`
	Deltas           []multiwatcher.Delta     `json:"deltas,omitempty"`
	Unwatch          string                   `json:"unwatch,omitempty"`
	ClearModels      bool                     `json:"clear-models,omitempty"`
	ClearControllers bool                     `json:"clear-controllers,omitempty"`

	// Destroy requests and their progress, by model tag.
	Destroy        []string          `json:"destroy,omitempty"`
	DestroyLoading []string          `json:"destroy-loading,omitempty"`
	Destroyed      []string          `json:"destroyed,omitempty"`
	DestroyErrors  map[string]string `json:"destroy-errors,omitempty"`
	ClearDestroyed string            `json:"clear-destroyed,omitempty"`

	Command *CommandHistory `json:"command,omitempty"`

	SecretsLoading        string          `json:"secrets-loading,omitempty"`
	Secrets               *ModelSecrets   `json:"secrets,omitempty"`
	SecretsError          *ModelError     `json:"secrets-error,omitempty"`
	ClearSecrets          string          `json:"clear-secrets,omitempty"`
	SecretsContentLoading string          `json:"secrets-content-loading,omitempty"`
	SecretsContent        *SecretsContent `json:"secrets-content,omitempty"`
	SecretsContentError   *ModelError     `json:"secrets-content-error,omitempty"`
	ClearSecretsContent   string          `json:"clear-secrets-content,omitempty"`

	FetchAuditEvents bool                `json:"fetch-audit-events,omitempty"`
	AuditEvents      []params.AuditEvent `json:"audit-events,omitempty"`
	AuditEventsError *string             `json:"audit-events-error,omitempty"`
	AuditEventsLimit *int                `json:"audit-events-limit,omitempty"`
	ClearAuditEvents bool                `json:"clear-audit-events,omitempty"`

	Charms []params.Charm `json:"charms,omitempty"`
}

// ParseRecording decodes and validates a recording.
func ParseRecording(data []byte) (*Recording, error) {
	var r Recording
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Annotate(err, "decoding recording")
	}
	if err := r.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &r, nil
}

// Validate ensures every step carries exactly one payload and can be
// attributed to a controller.
func (r *Recording) Validate() error {
	for i, step := range r.Steps {
		if n := step.payloads(); n != 1 {
			return errors.NotValidf("step %d with %d payloads", i, n)
		}
		if step.Controller == "" && r.Controller == "" {
			return errors.NotValidf("step %d without controller", i)
		}
	}
	return nil
}

func (s Step) payloads() int {
	var n int
	for _, present := range []bool{
		s.Controllers != nil,
		s.Models != nil,
		s.ModelsError != nil,
		s.Status != nil,
		s.Info != nil,
		s.Features != nil,
		s.Watch != "",
		s.Populate != nil,
		s.Deltas != nil,
		s.Unwatch != "",
		s.ClearModels,
		s.ClearControllers,
		s.Destroy != nil,
		s.DestroyLoading != nil,
		s.Destroyed != nil,
		s.DestroyErrors != nil,
		s.ClearDestroyed != "",
		s.Command != nil,
		s.SecretsLoading != "",
		s.Secrets != nil,
		s.SecretsError != nil,
		s.ClearSecrets != "",
		s.SecretsContentLoading != "",
		s.SecretsContent != nil,
		s.SecretsContentError != nil,
		s.ClearSecretsContent != "",
		s.FetchAuditEvents,
		s.AuditEvents != nil,
		s.AuditEventsError != nil,
		s.AuditEventsLimit != nil,
		s.ClearAuditEvents,
		s.Charms != nil,
	} {
		if present {
			n++
		}
	}
	return n
}

// sessions answers for the controllers of a recording.
type sessions struct {
	loggedOut set.Strings
	users     map[string]RecordedUser
}

func newSessions(r *Recording) sessions {
	return sessions{
		loggedOut: set.NewStrings(r.LoggedOut...),
		users:     r.Users,
	}
}

// IsLoggedIn is part of the reconcile.Authenticator interface.
func (s sessions) IsLoggedIn(wsControllerURL string) bool {
	return !s.loggedOut.Contains(wsControllerURL)
}

// User is part of the views.Viewers interface. Nobody is logged in to
// a controller the recording lost its session with.
func (s sessions) User(wsControllerURL string) (string, string) {
	if !s.IsLoggedIn(wsControllerURL) {
		return "", ""
	}
	user := s.users[wsControllerURL]
	return user.Name, user.ControllerAccess
}

// Dispatcher runs store operations. It is implemented by
// *dispatcher.Dispatcher.
type Dispatcher interface {
	Dispatch(name string, fn func(*store.Store)) error
	ProcessDeltas(deltas []multiwatcher.Delta) (int, error)
}

// Replay feeds every step of the recording to the dispatcher in order.
// It returns the number of deltas applied.
func Replay(d Dispatcher, r *Recording) (int, error) {
	auth := newSessions(r)
	var applied int
	for i, step := range r.Steps {
		url := step.Controller
		if url == "" {
			url = r.Controller
		}
		n, err := step.apply(d, auth, url)
		if err != nil {
			return applied, errors.Annotatef(err, "replaying step %d", i)
		}
		applied += n
	}
	return applied, nil
}

func (s Step) apply(d Dispatcher, auth reconcile.Authenticator, url string) (int, error) {
	switch {
	case s.Controllers != nil:
		return 0, d.Dispatch("updateControllerList", func(st *store.Store) {
			st.UpdateControllerList(s.Controllers, url)
		})
	case s.Models != nil:
		return 0, d.Dispatch("updateModelList", func(st *store.Store) {
			st.UpdateModelList(*s.Models, url)
			st.UpdateModelsError("")
		})
	case s.ModelsError != nil:
		return 0, d.Dispatch("updateModelsError", func(st *store.Store) {
			st.UpdateModelsError(*s.ModelsError)
		})
	case s.Status != nil:
		return 0, d.Dispatch("updateModelStatus", func(st *store.Store) {
			st.UpdateModelStatus(s.Status.UUID, s.Status.Status, url)
		})
	case s.Info != nil:
		if err := d.Dispatch("updateModelInfo", func(st *store.Store) {
			st.UpdateModelInfo(*s.Info, url)
		}); err != nil {
			return 0, errors.Trace(err)
		}
		if !isControllerModel(*s.Info) {
			return 0, nil
		}
		return 0, d.Dispatch("addControllerCloudRegion", func(st *store.Store) {
			reconcile.Reconcile(st, auth, url, *s.Info)
		})
	case s.Features != nil:
		return 0, d.Dispatch("updateModelFeatures", func(st *store.Store) {
			st.UpdateModelFeatures(s.Features.UUID, s.Features.Features)
		})
	case s.Watch != "":
		return 0, d.Dispatch("watchModel", func(st *store.Store) {
			st.WatchModel(s.Watch)
		})
	case s.Populate != nil:
		return 0, d.Dispatch("populateMissingAllWatcherData", func(st *store.Store) {
			st.PopulateMissingAllWatcherData(s.Populate.UUID, s.Populate.Status)
		})
	case s.Deltas != nil:
		return d.ProcessDeltas(s.Deltas)
	case s.Unwatch != "":
		return 0, d.Dispatch("clearModelWatcherData", func(st *store.Store) {
			st.ClearModelWatcherData(s.Unwatch)
		})
	case s.ClearModels:
		return 0, d.Dispatch("clearModelData", func(st *store.Store) {
			st.ClearModelData()
		})
	case s.ClearControllers:
		return 0, d.Dispatch("clearControllerData", func(st *store.Store) {
			st.ClearControllerData()
		})
	}
	return s.applyBookkeeping(d)
}

// applyBookkeeping replays the steps that track dashboard requests
// rather than controller state.
func (s Step) applyBookkeeping(d Dispatcher) (int, error) {
	switch {
	case s.Destroy != nil:
		return 0, d.Dispatch("destroyModels", func(st *store.Store) {
			st.DestroyModels(s.Destroy)
		})
	case s.DestroyLoading != nil:
		return 0, d.Dispatch("updateDestroyModelsLoading", func(st *store.Store) {
			st.UpdateDestroyModelsLoading(s.DestroyLoading)
		})
	case s.Destroyed != nil:
		return 0, d.Dispatch("updateModelsDestroyed", func(st *store.Store) {
			st.UpdateModelsDestroyed(s.Destroyed)
		})
	case s.DestroyErrors != nil:
		return 0, d.Dispatch("destroyModelErrors", func(st *store.Store) {
			st.DestroyModelErrors(s.DestroyErrors)
		})
	case s.ClearDestroyed != "":
		return 0, d.Dispatch("clearDestroyedModel", func(st *store.Store) {
			st.ClearDestroyedModel(s.ClearDestroyed)
		})
	case s.Command != nil:
		return 0, d.Dispatch("addCommandHistory", func(st *store.Store) {
			st.AddCommandHistory(s.Command.UUID, s.Command.Item)
		})
	case s.SecretsLoading != "":
		return 0, d.Dispatch("secretsLoading", func(st *store.Store) {
			st.SecretsLoading(s.SecretsLoading)
		})
	case s.Secrets != nil:
		return 0, d.Dispatch("updateSecrets", func(st *store.Store) {
			st.UpdateSecrets(s.Secrets.UUID, s.Secrets.Items)
		})
	case s.SecretsError != nil:
		return 0, d.Dispatch("setSecretsErrors", func(st *store.Store) {
			st.SetSecretsErrors(s.SecretsError.UUID, s.SecretsError.Message)
		})
	case s.ClearSecrets != "":
		return 0, d.Dispatch("clearSecrets", func(st *store.Store) {
			st.ClearSecrets(s.ClearSecrets)
		})
	case s.SecretsContentLoading != "":
		return 0, d.Dispatch("secretsContentLoading", func(st *store.Store) {
			st.SecretsContentLoading(s.SecretsContentLoading)
		})
	case s.SecretsContent != nil:
		return 0, d.Dispatch("updateSecretsContent", func(st *store.Store) {
			st.UpdateSecretsContent(s.SecretsContent.UUID, s.SecretsContent.Content)
		})
	case s.SecretsContentError != nil:
		return 0, d.Dispatch("setSecretsContentErrors", func(st *store.Store) {
			st.SetSecretsContentErrors(s.SecretsContentError.UUID, s.SecretsContentError.Message)
		})
	case s.ClearSecretsContent != "":
		return 0, d.Dispatch("clearSecretsContent", func(st *store.Store) {
			st.ClearSecretsContent(s.ClearSecretsContent)
		})
	case s.FetchAuditEvents:
		return 0, d.Dispatch("fetchAuditEvents", func(st *store.Store) {
			st.FetchAuditEvents()
		})
	case s.AuditEvents != nil:
		return 0, d.Dispatch("updateAuditEvents", func(st *store.Store) {
			st.UpdateAuditEvents(s.AuditEvents)
		})
	case s.AuditEventsError != nil:
		return 0, d.Dispatch("updateAuditEventsErrors", func(st *store.Store) {
			st.UpdateAuditEventsErrors(*s.AuditEventsError)
		})
	case s.AuditEventsLimit != nil:
		return 0, d.Dispatch("updateAuditEventsLimit", func(st *store.Store) {
			st.UpdateAuditEventsLimit(*s.AuditEventsLimit)
		})
	case s.ClearAuditEvents:
		return 0, d.Dispatch("clearAuditEvents", func(st *store.Store) {
			st.ClearAuditEvents()
		})
	case s.Charms != nil:
		return 0, d.Dispatch("updateCharms", func(st *store.Store) {
			st.UpdateCharms(s.Charms)
		})
	}
	return 0, errors.NotValidf("empty step")
}

func isControllerModel(info params.ModelInfoResults) bool {
	return len(info.Results) > 0 && info.Results[0].Result != nil && info.Results[0].Result.IsController
}
