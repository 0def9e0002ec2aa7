// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package views renders the store as the summaries served by the daemon
// and printed by the replay command. Every function reads the store and
// so must run on the dispatcher.
package views

import (
	"time"

	"github.com/juju/errors"
	"github.com/juju/naturalsort"

	"github.com/juju/juju-dashboard/core/severity"
	"github.com/juju/juju-dashboard/internal/config"
	"github.com/juju/juju-dashboard/internal/query"
	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/rpc/params"
)

// The ways models can be grouped.
const (
	GroupByStatus = "status"
	GroupByCloud  = "cloud"
	GroupByOwner  = "owner"
)

// ValidateGroupBy returns a NotValid error for an unknown grouping.
func ValidateGroupBy(groupBy string) error {
	switch groupBy {
	case GroupByStatus, GroupByCloud, GroupByOwner:
		return nil
	}
	return errors.NotValidf("group %q", groupBy)
}

// Summary is the grouped model list with the controllers and watched
// models next to it.
type Summary struct {
	GroupBy      string         `json:"group-by" yaml:"group-by"`
	Groups       []Group        `json:"groups" yaml:"groups"`
	StatusCounts map[string]int `json:"status-counts,omitempty" yaml:"status-counts,omitempty"`
	Controllers  []Controller   `json:"controllers,omitempty" yaml:"controllers,omitempty"`
	Watched      []Watched      `json:"watched,omitempty" yaml:"watched,omitempty"`
	ModelsLoaded bool           `json:"models-loaded" yaml:"models-loaded"`
	ModelsError  string         `json:"models-error,omitempty" yaml:"models-error,omitempty"`

	// Users lists everyone with access to a model, ExternalUsers the
	// ones from an identity provider and UserDomains those providers.
	Users         []string `json:"users,omitempty" yaml:"users,omitempty"`
	ExternalUsers []string `json:"external-users,omitempty" yaml:"external-users,omitempty"`
	UserDomains   []string `json:"user-domains,omitempty" yaml:"user-domains,omitempty"`
}

// Group is one bucket of models, named by the status, cloud or owner
// the models share.
type Group struct {
	Name   string  `json:"name" yaml:"name"`
	Models []Model `json:"models" yaml:"models"`
}

// Model is the list view of one model: where it runs, who owns it and
// the worst status among its applications.
type Model struct {
	Name           string     `json:"name" yaml:"name"`
	UUID           string     `json:"uuid" yaml:"uuid"`
	Status         string     `json:"status" yaml:"status"`
	Controller     string     `json:"controller,omitempty" yaml:"controller,omitempty"`
	Cloud          string     `json:"cloud,omitempty" yaml:"cloud,omitempty"`
	Region         string     `json:"region,omitempty" yaml:"region,omitempty"`
	Owner          string     `json:"owner,omitempty" yaml:"owner,omitempty"`
	LastConnection *time.Time `json:"last-connection,omitempty" yaml:"last-connection,omitempty"`
	Messages       []Message  `json:"messages,omitempty" yaml:"messages,omitempty"`

	// Level is the severity behind Status.
	Level severity.Severity `json:"-" yaml:"-"`
}

// Message is a status message of an application or unit that is not
// running normally.
type Message struct {
	Application string `json:"application" yaml:"application"`
	Unit        string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Message     string `json:"message" yaml:"message"`
}

// Controller describes a controller reported by a controller URL. A
// JAAS URL reports every controller it fronts.
type Controller struct {
	Name    string `json:"name" yaml:"name"`
	UUID    string `json:"uuid" yaml:"uuid"`
	URL     string `json:"url" yaml:"url"`
	Version string `json:"version" yaml:"version"`
	Cloud   string `json:"cloud,omitempty" yaml:"cloud,omitempty"`
	Region  string `json:"region,omitempty" yaml:"region,omitempty"`
}

// Watched is the delta fed view of a watched model.
type Watched struct {
	UUID         string            `json:"uuid" yaml:"uuid"`
	Applications map[string]string `json:"applications" yaml:"applications"`
	Units        int               `json:"units" yaml:"units"`
	Machines     int               `json:"machines" yaml:"machines"`
}

// Summarise reads the grouped models, the controllers, the watched
// models and the users out of the store. An unknown grouping yields no
// groups.
func Summarise(st *store.Store, memo *query.Memo, cfg *config.Config, groupBy string, filters query.Filters) Summary {
	models := st.ModelData()
	return Summary{
		GroupBy:       groupBy,
		Groups:        Groups(st, memo, cfg, groupBy, filters),
		StatusCounts:  StatusCounts(st, memo, filters),
		Controllers:   Controllers(st),
		Watched:       WatchedModels(st),
		ModelsLoaded:  st.ModelsLoaded(),
		ModelsError:   st.ModelsError(),
		Users:         query.Users(models),
		ExternalUsers: query.ExternalUsers(models),
		UserDomains:   query.UserDomains(models),
	}
}

// Groups returns the models matching filters, grouped by groupBy. Status
// groups are ordered worst first and always present, the other groups
// are in natural order of their names.
func Groups(st *store.Store, memo *query.Memo, cfg *config.Config, groupBy string, filters query.Filters) []Group {
	controllers, _ := st.Controllers()
	entries := st.Models()
	newModel := func(m store.ModelData) Model {
		return SummariseModel(m, entries[m.UUID], controllers, cfg)
	}

	var result []Group
	switch groupBy {
	case GroupByStatus:
		groups := memo.GroupByStatus(st, filters)
		all := severity.All()
		for i := len(all) - 1; i >= 0; i-- {
			group := Group{Name: all[i].String(), Models: []Model{}}
			for _, m := range groups[all[i]] {
				group.Models = append(group.Models, newModel(m))
			}
			result = append(result, group)
		}
	case GroupByCloud, GroupByOwner:
		var groups map[string][]store.ModelData
		if groupBy == GroupByCloud {
			groups = memo.GroupByCloud(st, filters)
		} else {
			groups = memo.GroupByOwner(st, filters)
		}
		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		naturalsort.Sort(names)
		for _, name := range names {
			group := Group{Name: name}
			for _, m := range groups[name] {
				group.Models = append(group.Models, newModel(m))
			}
			result = append(result, group)
		}
	}
	return result
}

// Controllers returns every known controller, ordered by the URL that
// reported it.
func Controllers(st *store.Store) []Controller {
	controllers, _ := st.Controllers()
	urls := make([]string, 0, len(controllers))
	for url := range controllers {
		urls = append(urls, url)
	}
	naturalsort.Sort(urls)

	var result []Controller
	for _, url := range urls {
		for _, c := range controllers[url] {
			version := "unknown"
			if v, err := c.ControllerVersion(); err == nil {
				version = v.String()
			}
			controller := Controller{
				Name:    query.ControllerName(controllers, c.UUID),
				UUID:    c.UUID,
				URL:     url,
				Version: version,
			}
			if c.Location != nil {
				controller.Cloud = c.Location.Cloud
				controller.Region = c.Location.Region
			}
			result = append(result, controller)
		}
	}
	return result
}

// WatchedModels returns the watched models in natural order of UUID.
func WatchedModels(st *store.Store) []Watched {
	watched := st.ModelWatcherData()
	uuids := make([]string, 0, len(watched))
	for uuid := range watched {
		uuids = append(uuids, uuid)
	}
	naturalsort.Sort(uuids)

	var result []Watched
	for _, uuid := range uuids {
		w, _ := WatchedModel(st, uuid)
		result = append(result, w)
	}
	return result
}

// WatchedModel returns the view of one watched model. The second result
// is false if the model is not watched.
func WatchedModel(st *store.Store, uuid string) (Watched, bool) {
	data, ok := st.ModelWatcherData()[uuid]
	if !ok || data == nil {
		return Watched{}, false
	}
	w := Watched{
		UUID:         uuid,
		Applications: make(map[string]string),
		Units:        len(data.Units),
		Machines:     len(data.Machines),
	}
	for name := range data.Applications {
		w.Applications[name] = severity.Running.String()
	}
	for name, s := range query.ApplicationSeverities(data) {
		w.Applications[name] = s.String()
	}
	return w, true
}

// ModelByUUID returns the view of one model. The second result is false
// if the store holds no data for it.
func ModelByUUID(st *store.Store, cfg *config.Config, uuid string) (Model, bool) {
	m, ok := st.ModelDataByUUID(uuid)
	if !ok {
		return Model{}, false
	}
	controllers, _ := st.Controllers()
	return SummariseModel(m, st.Models()[uuid], controllers, cfg), true
}

// SummariseModel returns the view of one model. Its controller is named
// from the model info when there is some, or from the configuration of
// the controller that listed it.
func SummariseModel(m store.ModelData, entry store.ModelListEntry, controllers map[string][]params.ControllerInfo, cfg *config.Config) Model {
	attrs := query.ModelAttributes(m)
	classified := severity.ClassifyAggregate(m.Applications)
	summary := Model{
		Name:           attrs.Name,
		UUID:           m.UUID,
		Status:         classified.Highest.String(),
		Cloud:          attrs.Cloud,
		Region:         attrs.Region,
		Owner:          attrs.Owner,
		LastConnection: entry.LastConnection,
		Level:          classified.Highest,
	}
	if summary.Name == "" {
		summary.Name = entry.Name
	}
	if m.Info != nil && m.Info.ControllerUUID != "" {
		summary.Controller = query.ControllerName(controllers, m.Info.ControllerUUID)
	} else if entry.WSControllerURL != "" {
		summary.Controller = cfg.ControllerName(entry.WSControllerURL)
	}
	for _, msg := range classified.Messages {
		summary.Messages = append(summary.Messages, Message{
			Application: msg.AppName,
			Unit:        msg.UnitID,
			Message:     msg.Message,
		})
	}
	return summary
}

// ControllerTotals counts the known controllers, in total and by version.
type ControllerTotals struct {
	Count    int            `json:"count" yaml:"count"`
	Versions map[string]int `json:"versions" yaml:"versions"`
}

// CountControllers returns the controller totals.
func CountControllers(st *store.Store) ControllerTotals {
	controllers, _ := st.Controllers()
	return ControllerTotals{
		Count:    query.ControllersCount(controllers),
		Versions: query.ControllersByVersion(controllers),
	}
}
