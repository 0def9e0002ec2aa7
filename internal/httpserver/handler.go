// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package httpserver serves the dashboard views as JSON, together with
// the engine metrics.
package httpserver

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/juju/juju-dashboard/internal/config"
	"github.com/juju/juju-dashboard/internal/query"
	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/internal/views"
)

var logger = loggo.GetLogger("dashboard.httpserver")

// StoreReader runs read only functions against the store.
type StoreReader interface {
	Read(fn func(*store.Store)) error
}

// Sessions reports the controllers the engine is logged in to, and as
// whom.
type Sessions interface {
	views.Viewers
	LoggedIn() []string
}

// HandlerConfig holds what the view handlers read from.
type HandlerConfig struct {
	Store    StoreReader
	Memo     *query.Memo
	Config   *config.Config
	Sessions Sessions
	Gatherer prometheus.Gatherer
}

// Validate ensures that the config values are valid.
func (config HandlerConfig) Validate() error {
	if config.Store == nil {
		return errors.NotValidf("missing Store")
	}
	if config.Memo == nil {
		return errors.NotValidf("missing Memo")
	}
	if config.Config == nil {
		return errors.NotValidf("missing Config")
	}
	if config.Sessions == nil {
		return errors.NotValidf("missing Sessions")
	}
	if config.Gatherer == nil {
		return errors.NotValidf("missing Gatherer")
	}
	return nil
}

// ControllersResponse is the body of /controllers.
type ControllersResponse struct {
	Controllers []views.Controller `json:"controllers"`
	LoggedIn    []string           `json:"logged-in"`
	Count       int                `json:"count"`
	Versions    map[string]int     `json:"versions"`
}

// ModelUUIDResponse is the body of /model-uuid.
type ModelUUIDResponse struct {
	UUID string `json:"uuid"`
}

type handler struct {
	config HandlerConfig
}

// NewHandler returns the handler serving:
//
//	GET /models                 models grouped by ?group=status|cloud|owner
//	GET /models/{uuid}          one model in full
//	GET /models/{uuid}/watched  the delta fed view of a watched model
//	GET /model-uuid             the UUID of ?name=[owner/]model
//	GET /controllers            the known controllers
//	GET /audit-events           the JAAS audit log
//	GET /charms                 the charms of the watched models
//	GET /metrics                prometheus metrics
func NewHandler(config HandlerConfig) (http.Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	h := &handler{config: config}
	r := mux.NewRouter()
	r.HandleFunc("/models", h.serveModels).Methods(http.MethodGet)
	r.HandleFunc("/models/{uuid}", h.serveModel).Methods(http.MethodGet)
	r.HandleFunc("/models/{uuid}/watched", h.serveWatched).Methods(http.MethodGet)
	r.HandleFunc("/model-uuid", h.serveModelUUID).Methods(http.MethodGet)
	r.HandleFunc("/controllers", h.serveControllers).Methods(http.MethodGet)
	r.HandleFunc("/audit-events", h.serveAuditEvents).Methods(http.MethodGet)
	r.HandleFunc("/charms", h.serveCharms).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r, nil
}

func (h *handler) serveModels(w http.ResponseWriter, req *http.Request) {
	values := req.URL.Query()
	groupBy := values.Get("group")
	if groupBy == "" {
		groupBy = views.GroupByStatus
	}
	if err := views.ValidateGroupBy(groupBy); err != nil {
		sendError(w, err)
		return
	}
	filters := query.Filters{
		Cloud:      listParam(values["cloud"]),
		Credential: listParam(values["credential"]),
		Region:     listParam(values["region"]),
		Owner:      listParam(values["owner"]),
		Custom:     listParam(values["search"]),
	}
	summary := views.Summary{GroupBy: groupBy}
	if err := h.config.Store.Read(func(st *store.Store) {
		summary.Groups = views.Groups(st, h.config.Memo, h.config.Config, groupBy, filters)
		summary.StatusCounts = views.StatusCounts(st, h.config.Memo, filters)
		summary.ModelsLoaded = st.ModelsLoaded()
		summary.ModelsError = st.ModelsError()
	}); err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, summary)
}

func (h *handler) serveModel(w http.ResponseWriter, req *http.Request) {
	uuid := mux.Vars(req)["uuid"]
	var (
		model views.ModelDetail
		found bool
	)
	if err := h.config.Store.Read(func(st *store.Store) {
		model, found = views.ModelDetailByUUID(st, h.config.Config, h.config.Sessions, uuid)
	}); err != nil {
		sendError(w, err)
		return
	}
	if !found {
		sendError(w, errors.NotFoundf("model %q", uuid))
		return
	}
	sendJSON(w, model)
}

func (h *handler) serveWatched(w http.ResponseWriter, req *http.Request) {
	uuid := mux.Vars(req)["uuid"]
	var (
		watched views.Watched
		found   bool
	)
	if err := h.config.Store.Read(func(st *store.Store) {
		watched, found = views.WatchedModel(st, uuid)
	}); err != nil {
		sendError(w, err)
		return
	}
	if !found {
		sendError(w, errors.NotFoundf("watched model %q", uuid))
		return
	}
	sendJSON(w, watched)
}

func (h *handler) serveControllers(w http.ResponseWriter, req *http.Request) {
	response := ControllersResponse{
		Controllers: []views.Controller{},
		LoggedIn:    h.config.Sessions.LoggedIn(),
	}
	if err := h.config.Store.Read(func(st *store.Store) {
		response.Controllers = append(response.Controllers, views.Controllers(st)...)
		totals := views.CountControllers(st)
		response.Count, response.Versions = totals.Count, totals.Versions
	}); err != nil {
		sendError(w, err)
		return
	}
	if response.LoggedIn == nil {
		response.LoggedIn = []string{}
	}
	sendJSON(w, response)
}

func (h *handler) serveModelUUID(w http.ResponseWriter, req *http.Request) {
	name := req.URL.Query().Get("name")
	if name == "" {
		sendError(w, errors.NotValidf("empty model name"))
		return
	}
	var (
		uuid  string
		found bool
	)
	if err := h.config.Store.Read(func(st *store.Store) {
		uuid, found = views.ModelUUID(st, name)
	}); err != nil {
		sendError(w, err)
		return
	}
	if !found {
		sendError(w, errors.NotFoundf("model %q", name))
		return
	}
	sendJSON(w, ModelUUIDResponse{UUID: uuid})
}

func (h *handler) serveAuditEvents(w http.ResponseWriter, req *http.Request) {
	var log views.AuditEvents
	if err := h.config.Store.Read(func(st *store.Store) {
		log = views.AuditLog(st)
	}); err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, log)
}

func (h *handler) serveCharms(w http.ResponseWriter, req *http.Request) {
	charms := []views.Charm{}
	if err := h.config.Store.Read(func(st *store.Store) {
		charms = append(charms, views.Charms(st)...)
	}); err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, charms)
}

// listParam flattens repeated and comma separated query values.
func listParam(values []string) []string {
	var result []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
	}
	return result
}
