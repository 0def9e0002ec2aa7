// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"os"
	"strings"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"
	"github.com/juju/pubsub/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/juju/juju-dashboard/cmd"
	"github.com/juju/juju-dashboard/internal/config"
	"github.com/juju/juju-dashboard/internal/dispatcher"
	"github.com/juju/juju-dashboard/internal/query"
	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/internal/views"
)

var logger = loggo.GetLogger("dashboard.replay")

const replayDoc = `
Replays a recording of controller responses through the dashboard store
and prints the resulting models, grouped by status, cloud or owner. With
--model only the named model is shown, in full.

A recording is a JSON document naming the controller the responses came
from and a list of steps, each holding one response: a controller list,
a model list, a model status, a model info, watcher deltas and so on.

Examples:

    dashboard-replay recording.json
    dashboard-replay --group cloud --owner eggman@external recording.json
    dashboard-replay --config dashboard.yaml --format yaml recording.json
    dashboard-replay --model admin/db recording.json
`

// listValue implements gnuflag.Value for flags taking a comma separated
// list. Repeating the flag extends the list.
type listValue struct {
	values *[]string
}

func (v listValue) Set(s string) error {
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*v.values = append(*v.values, item)
		}
	}
	return nil
}

func (v listValue) String() string {
	if v.values == nil {
		return ""
	}
	return strings.Join(*v.values, ",")
}

type replayCommand struct {
	out        cmd.Output
	configFile cmd.FileVar
	groupBy    string
	color      bool
	filters    query.Filters
	model      string

	recordingPath string
	clock         clock.Clock
}

func newReplayCommand() *replayCommand {
	return &replayCommand{clock: clock.WallClock}
}

// Info is part of the cmd.Command interface.
func (c *replayCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "dashboard-replay",
		Args:    "<recording>",
		Purpose: "Replay recorded controller responses and show the model status.",
		Doc:     replayDoc,
	}
}

// SetFlags is part of the cmd.Command interface.
func (c *replayCommand) SetFlags(f *gnuflag.FlagSet) {
	c.out.AddFlags(f, "tabular", map[string]cmd.Formatter{
		"yaml":    cmd.FormatYaml,
		"json":    cmd.FormatJson,
		"tabular": c.formatTabular,
	})
	f.Var(&c.configFile, "config", "Path to the dashboard configuration")
	f.StringVar(&c.groupBy, "group", views.GroupByStatus, "Group models by status, cloud or owner")
	f.BoolVar(&c.color, "color", false, "Force the use of color in tabular output")
	f.Var(listValue{&c.filters.Cloud}, "cloud", "Only show models on these clouds")
	f.Var(listValue{&c.filters.Credential}, "credential", "Only show models using these credentials")
	f.Var(listValue{&c.filters.Region}, "region", "Only show models in these regions")
	f.Var(listValue{&c.filters.Owner}, "owner", "Only show models owned by these users")
	f.Var(listValue{&c.filters.Custom}, "search", "Only show models whose attributes contain these terms")
	f.StringVar(&c.model, "model", "", "Show one model, by [owner/]name or UUID")
}

// Init is part of the cmd.Command interface.
func (c *replayCommand) Init(args []string) error {
	if err := views.ValidateGroupBy(c.groupBy); err != nil {
		return errors.Trace(err)
	}
	if len(args) == 0 {
		return errors.New("no recording specified")
	}
	c.recordingPath = args[0]
	return cmd.CheckEmpty(args[1:])
}

// Run is part of the cmd.Command interface.
func (c *replayCommand) Run(ctx *cmd.Context) error {
	cfg, err := c.readConfig(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	if err := loggo.ConfigureLoggers(cfg.LoggingConfig); err != nil {
		return errors.Annotate(err, "configuring logging")
	}

	data, err := os.ReadFile(ctx.AbsPath(c.recordingPath))
	if err != nil {
		return errors.Annotate(err, "reading recording")
	}
	recording, err := ParseRecording(data)
	if err != nil {
		return errors.Trace(err)
	}

	d, err := dispatcher.New(dispatcher.Config{
		Clock: c.clock,
		Hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
			Logger: loggo.GetLogger("dashboard.replay.hub"),
		}),
		Store:                store.New(),
		PrometheusRegisterer: prometheus.NewRegistry(),
	})
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		d.Kill()
		if err := d.Wait(); err != nil {
			logger.Errorf("stopping dispatcher: %v", err)
		}
	}()
	unsubscribe := d.Subscribe(func(change dispatcher.Change) {
		logger.Debugf("%s moved the store to revision %d", change.Operation, change.Revision)
	})
	defer unsubscribe()

	applied, err := Replay(d, recording)
	if err != nil {
		return errors.Trace(err)
	}
	logger.Infof("replayed %d steps, %d deltas applied", len(recording.Steps), applied)

	if c.model != "" {
		detail, err := c.modelDetail(d, cfg, newSessions(recording))
		if err != nil {
			return errors.Trace(err)
		}
		return c.out.Write(ctx, detail)
	}

	memo := query.NewMemo(cfg.CacheTTL)
	var summary replaySummary
	if err := d.Read(func(st *store.Store) {
		summary.Summary = views.Summarise(st, memo, cfg, c.groupBy, c.filters)
		if audit := views.AuditLog(st); audit.Loading || audit.Loaded || audit.Errors != "" {
			summary.AuditEvents = &audit
		}
		summary.Charms = views.Charms(st)
	}); err != nil {
		return errors.Trace(err)
	}
	summary.DeltasApplied = applied
	return c.out.Write(ctx, summary)
}

// modelDetail resolves --model, a UUID or [owner/]name, and returns the
// full view of that model.
func (c *replayCommand) modelDetail(d *dispatcher.Dispatcher, cfg *config.Config, viewers views.Viewers) (views.ModelDetail, error) {
	var (
		detail views.ModelDetail
		found  bool
	)
	err := d.Read(func(st *store.Store) {
		uuid := c.model
		if _, ok := st.ModelDataByUUID(uuid); !ok {
			if resolved, ok := views.ModelUUID(st, c.model); ok {
				uuid = resolved
			}
		}
		detail, found = views.ModelDetailByUUID(st, cfg, viewers, uuid)
	})
	if err != nil {
		return views.ModelDetail{}, errors.Trace(err)
	}
	if !found {
		return views.ModelDetail{}, errors.NotFoundf("model %q", c.model)
	}
	return detail, nil
}

func (c *replayCommand) readConfig(ctx *cmd.Context) (*config.Config, error) {
	if !c.configFile.IsSet() {
		return config.Parse(nil)
	}
	data, err := c.configFile.Read(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "reading config")
	}
	cfg, err := config.Parse(data)
	return cfg, errors.Annotatef(err, "config %q", c.configFile.Path)
}
