// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/juju/ansiterm"
	"github.com/juju/errors"
	"github.com/juju/naturalsort"

	"github.com/juju/juju-dashboard/cmd"
	"github.com/juju/juju-dashboard/core/severity"
	"github.com/juju/juju-dashboard/internal/query"
	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/internal/views"
)

// SeverityColor holds the colors used for each model severity.
var SeverityColor = map[severity.Severity]*ansiterm.Context{
	severity.Running: ansiterm.Foreground(ansiterm.Green),
	severity.Alert:   ansiterm.Foreground(ansiterm.Yellow),
	severity.Blocked: ansiterm.Foreground(ansiterm.Red),
}

var groupTitles = map[string]string{
	views.GroupByStatus: "Status",
	views.GroupByCloud:  "Cloud",
	views.GroupByOwner:  "Owner",
}

// formatTabular writes a replaySummary as tables of controllers, models
// and the messages of troubled models, or a single model in full.
func (c *replayCommand) formatTabular(writer io.Writer, value interface{}) error {
	tw := cmd.TabWriter(writer)
	if c.color {
		tw.SetColorCapable(true)
	}
	w := cmd.Wrapper{TabWriter: tw}
	switch v := value.(type) {
	case replaySummary:
		if err := formatSummary(&w, v); err != nil {
			return errors.Trace(err)
		}
	case views.ModelDetail:
		formatModelDetail(&w, v)
	default:
		return errors.Errorf("expected value of type %T or %T, got %T", replaySummary{}, views.ModelDetail{}, value)
	}
	return errors.Trace(tw.Flush())
}

func formatSummary(w *cmd.Wrapper, summary replaySummary) error {
	if len(summary.Controllers) > 0 {
		w.Println("Controller", "Version", "Cloud/Region", "URL")
		for _, controller := range summary.Controllers {
			w.Println(controller.Name, controller.Version, cloudRegion(controller.Cloud, controller.Region), controller.URL)
		}
		w.Println()
	}

	byStatus := summary.GroupBy == views.GroupByStatus
	header := []interface{}{groupTitles[summary.GroupBy], "Model"}
	if !byStatus {
		header = append(header, "Status")
	}
	header = append(header, "Controller", "Cloud/Region", "Owner", "Last connection")
	w.Println(header...)
	var troubled []views.Model
	for _, group := range summary.Groups {
		for _, model := range group.Models {
			if byStatus {
				w.PrintColor(SeverityColor[model.Level], group.Name)
				w.Print(model.Name)
			} else {
				w.Print(group.Name, model.Name)
				w.PrintColor(SeverityColor[model.Level], model.Status)
			}
			w.Println(model.Controller, cloudRegion(model.Cloud, model.Region), model.Owner, lastConnection(model))
			if len(model.Messages) > 0 {
				troubled = append(troubled, model)
			}
		}
	}

	if len(troubled) > 0 {
		w.Println()
		w.Println("Model", "App", "Unit", "Message")
		for _, model := range troubled {
			for _, msg := range model.Messages {
				w.Println(model.Name, msg.Application, msg.Unit, msg.Message)
			}
		}
	}
	if len(summary.Watched) > 0 {
		w.Println()
		w.Println("Watched", "App", "Status", "Units", "Machines")
		for _, watched := range summary.Watched {
			apps := make([]string, 0, len(watched.Applications))
			for name := range watched.Applications {
				apps = append(apps, name)
			}
			naturalsort.Sort(apps)
			for _, app := range apps {
				level, err := severity.Parse(watched.Applications[app])
				if err != nil {
					return errors.Trace(err)
				}
				w.Print(watched.UUID, app)
				w.PrintColor(SeverityColor[level], level)
				w.Println(watched.Units, watched.Machines)
			}
		}
	}
	if len(summary.Charms) > 0 {
		w.Println()
		w.Println("Charm", "Revision", "Summary")
		for _, charm := range summary.Charms {
			w.Println(charm.URL, charm.Revision, charm.Summary)
		}
	}
	if audit := summary.AuditEvents; audit != nil {
		w.Println()
		w.Println("Time", "User", "Model", "Facade", "Method")
		for _, event := range audit.Items {
			w.Println(humanize.Time(event.Time), query.UserName(event.UserTag), event.Model, event.FacadeName, event.FacadeMethod)
		}
		if audit.Errors != "" {
			fmt.Fprintf(w, "Fetching audit events failed: %s\n", audit.Errors)
		}
	}
	if summary.ModelsError != "" {
		w.Println()
		fmt.Fprintf(w, "Listing models failed: %s\n", summary.ModelsError)
	}
	return nil
}

// formatModelDetail writes one model, the severity of its entities and
// what the dashboard has tracked for it.
func formatModelDetail(w *cmd.Wrapper, model views.ModelDetail) {
	w.Println("Model", "Status", "Cloud/Region", "Access", "Last connection")
	w.Print(model.FullName)
	w.PrintColor(SeverityColor[model.Level], model.Status)
	access := model.Access
	if access == "" {
		access = "-"
	}
	w.Println(cloudRegion(model.Cloud, model.Region), access, lastConnection(model.Model))

	w.Println()
	header := []interface{}{"Entity"}
	for _, level := range severity.All() {
		header = append(header, level.String())
	}
	w.Println(header...)
	for _, row := range []struct {
		name   string
		counts map[string]int
	}{
		{"applications", model.Applications},
		{"units", model.Units},
		{"machines", model.Machines},
	} {
		w.Print(row.name)
		for _, level := range severity.All() {
			w.Print(row.counts[level.String()])
		}
		w.Println()
	}

	if len(model.Messages) > 0 {
		w.Println()
		w.Println("App", "Unit", "Message")
		for _, msg := range model.Messages {
			w.Println(msg.Application, msg.Unit, msg.Message)
		}
	}
	if secrets := model.Secrets; secrets != nil && len(secrets.Items) > 0 {
		w.Println()
		w.Println("Secret", "Label", "Revision", "Owner")
		for _, secret := range secrets.Items {
			w.Println(secret.URI, secret.Label, secret.LatestRevision, secret.OwnerTag)
		}
	}
	if len(model.CommandHistory) > 0 {
		w.Println()
		w.Println("Command", "Output")
		for _, item := range model.CommandHistory {
			w.Println(item.Command, strings.Join(item.Messages, " "))
		}
	}
	if model.Destroy != nil {
		w.Println()
		fmt.Fprintf(w, "Destroy requested: %s\n", destroyState(*model.Destroy))
	}
}

func destroyState(state store.DestroyModelState) string {
	switch {
	case state.Errors != "":
		return "failed, " + state.Errors
	case state.Loaded:
		return "destroyed"
	case state.Loading:
		return "in progress"
	}
	return "pending"
}

func cloudRegion(cloud, region string) string {
	if region == "" {
		return cloud
	}
	return cloud + "/" + region
}

func lastConnection(model views.Model) string {
	if model.LastConnection == nil {
		return "never connected"
	}
	return humanize.Time(*model.LastConnection)
}
