// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package views_test

import (
	"time"

	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/juju-dashboard/internal/query"
	"github.com/juju/juju-dashboard/internal/store"
	"github.com/juju/juju-dashboard/internal/views"
	"github.com/juju/juju-dashboard/rpc/params"
)

type viewers map[string][2]string

func (v viewers) User(wsControllerURL string) (string, string) {
	user := v[wsControllerURL]
	return user[0], user[1]
}

func (s *summarySuite) addUsers(users ...params.ModelUserInfo) {
	s.store.UpdateModelInfo(params.ModelInfoResults{Results: []params.ModelInfoResult{{
		Result: &params.ModelInfo{
			Name:           "db",
			UUID:           "uuid-db",
			ControllerUUID: "ctrl-1",
			CloudTag:       "cloud-aws",
			CloudRegion:    "us-east-1",
			OwnerTag:       "user-admin",
			Users:          users,
		},
	}}}, wsURL)
}

func (s *summarySuite) TestModelDetail(c *gc.C) {
	s.addUsers(
		params.ModelUserInfo{UserName: "admin", Access: "admin"},
		params.ModelUserInfo{UserName: "eggman@external", Access: "read"},
	)
	s.store.UpdateModelFeatures("uuid-db", store.ModelFeatures{ListSecrets: true})
	s.store.DestroyModels([]string{"model-uuid-db"})
	s.store.AddCommandHistory("uuid-db", store.CommandHistoryItem{Command: "status", Messages: []string{"ok"}})
	s.store.UpdateSecrets("uuid-db", []params.ListSecretResult{{URI: "secret:one"}})

	detail, ok := views.ModelDetailByUUID(s.store, s.cfg, viewers{wsURL: {"admin", "superuser"}}, "uuid-db")
	c.Assert(ok, jc.IsTrue)
	c.Check(detail.Name, gc.Equals, "db")
	c.Check(detail.Status, gc.Equals, "blocked")
	c.Check(detail.FullName, gc.Equals, "admin/production/db")
	c.Check(detail.Access, gc.Equals, "admin")
	c.Check(detail.CanAdminister, jc.IsTrue)
	c.Check(detail.ControllerURL, gc.Equals, wsURL)
	c.Check(detail.ControllerUUID, gc.Equals, "ctrl-1")
	c.Check(detail.Users, jc.DeepEquals, []string{"admin", "eggman@external"})
	c.Check(detail.Features, jc.DeepEquals, &store.ModelFeatures{ListSecrets: true})
	c.Check(detail.Destroy, jc.DeepEquals, &store.DestroyModelState{})
	c.Check(detail.CommandHistory, jc.DeepEquals, []store.CommandHistoryItem{{Command: "status", Messages: []string{"ok"}}})
	c.Assert(detail.Secrets, gc.NotNil)
	c.Check(detail.Secrets.Items, gc.HasLen, 1)
	c.Check(detail.Applications, jc.DeepEquals, map[string]int{"running": 0, "alert": 0, "blocked": 1})
	c.Check(detail.Units, jc.DeepEquals, map[string]int{"running": 0, "alert": 0, "blocked": 0})
	c.Check(detail.Machines, jc.DeepEquals, map[string]int{"running": 0, "alert": 0, "blocked": 0})
	c.Check(detail.UnknownStatuses, gc.HasLen, 0)
}

func (s *summarySuite) TestModelDetailReadOnlyViewer(c *gc.C) {
	s.addUsers(params.ModelUserInfo{UserName: "eggman@external", Access: "read"})
	detail, ok := views.ModelDetailByUUID(s.store, s.cfg, viewers{wsURL: {"eggman@external", "login"}}, "uuid-db")
	c.Assert(ok, jc.IsTrue)
	c.Check(detail.Access, gc.Equals, "read")
	c.Check(detail.CanAdminister, jc.IsFalse)

	// Without an entry in the model users the controller access applies.
	detail, _ = views.ModelDetailByUUID(s.store, s.cfg, viewers{wsURL: {"admin", "superuser"}}, "uuid-db")
	c.Check(detail.Access, gc.Equals, "superuser")
	c.Check(detail.CanAdminister, jc.IsFalse)
}

func (s *summarySuite) TestModelDetailWithoutInfo(c *gc.C) {
	s.store.UpdateModelStatus("uuid-web", params.FullStatus{
		Model: params.ModelStatusInfo{Name: "web"},
		Applications: map[string]params.ApplicationStatus{
			"nginx": {Status: params.DetailedStatus{Status: "sleeping"}},
		},
	}, wsURL)
	detail, ok := views.ModelDetailByUUID(s.store, s.cfg, viewers{}, "uuid-web")
	c.Assert(ok, jc.IsTrue)
	c.Check(detail.FullName, gc.Equals, "production/web")
	c.Check(detail.Access, gc.Equals, "")
	c.Check(detail.ControllerURL, gc.Equals, "")
	c.Check(detail.Features, gc.IsNil)
	c.Check(detail.Destroy, gc.IsNil)
	c.Check(detail.UnknownStatuses, jc.DeepEquals, []string{"nginx"})

	_, ok = views.ModelDetailByUUID(s.store, s.cfg, viewers{}, "uuid-missing")
	c.Check(ok, jc.IsFalse)
}

func (s *summarySuite) TestModelUUID(c *gc.C) {
	uuid, ok := views.ModelUUID(s.store, "admin/db")
	c.Check(ok, jc.IsTrue)
	c.Check(uuid, gc.Equals, "uuid-db")

	uuid, ok = views.ModelUUID(s.store, "db")
	c.Check(ok, jc.IsTrue)
	c.Check(uuid, gc.Equals, "uuid-db")

	// web has no model info, so only the model list knows it.
	uuid, ok = views.ModelUUID(s.store, "web")
	c.Check(ok, jc.IsTrue)
	c.Check(uuid, gc.Equals, "uuid-web")

	_, ok = views.ModelUUID(s.store, "eggman/db")
	c.Check(ok, jc.IsFalse)
}

func (s *summarySuite) TestStatusCountsAndUsers(c *gc.C) {
	s.addUsers(
		params.ModelUserInfo{UserName: "admin", Access: "admin"},
		params.ModelUserInfo{UserName: "eggman@external", Access: "read"},
	)
	summary := views.Summarise(s.store, query.NewMemo(0), s.cfg, views.GroupByStatus, query.Filters{})
	c.Check(summary.StatusCounts, jc.DeepEquals, map[string]int{"running": 0, "alert": 1, "blocked": 1})
	c.Check(summary.ModelsLoaded, jc.IsTrue)
	c.Check(summary.Users, jc.DeepEquals, []string{"admin", "eggman@external"})
	c.Check(summary.ExternalUsers, jc.DeepEquals, []string{"eggman@external"})
	c.Check(summary.UserDomains, jc.DeepEquals, []string{"external"})
}

func (s *summarySuite) TestCountControllers(c *gc.C) {
	c.Check(views.CountControllers(s.store), jc.DeepEquals, views.ControllerTotals{
		Count:    1,
		Versions: map[string]int{"3.1": 1},
	})
}

func (s *summarySuite) TestAuditLog(c *gc.C) {
	events := []params.AuditEvent{{
		Time:         time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		UserTag:      "user-admin",
		Model:        "db",
		FacadeName:   "ModelManager",
		FacadeMethod: "DestroyModels",
	}}
	s.store.UpdateAuditEvents(events)
	log := views.AuditLog(s.store)
	c.Check(log.Items, jc.DeepEquals, events)
	c.Check(log.Loaded, jc.IsTrue)
	c.Check(log.Limit, gc.Equals, store.DefaultAuditEventsLimit)
	c.Check(log.Facets, jc.DeepEquals, query.AuditEventFacets{
		Users:   []string{"admin"},
		Models:  []string{"db"},
		Facades: []string{"ModelManager"},
		Methods: []string{"DestroyModels"},
	})
}

func (s *summarySuite) TestCharms(c *gc.C) {
	c.Check(views.Charms(s.store), gc.HasLen, 0)
	s.store.UpdateCharms([]params.Charm{
		{URL: "ch:amd64/postgresql-10", Revision: 10, Meta: &params.CharmMeta{Name: "postgresql", Summary: "Database"}},
		{URL: "local:redis-0"},
	})
	c.Check(views.Charms(s.store), jc.DeepEquals, []views.Charm{
		{URL: "ch:amd64/postgresql-10", Name: "postgresql", Revision: 10, Summary: "Database"},
		{URL: "local:redis-0"},
	})
}
