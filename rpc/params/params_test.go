// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params_test

import (
	"encoding/json"

	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/version/v2"
	gc "gopkg.in/check.v1"

	"github.com/juju/juju-dashboard/rpc/params"
)

type paramsSuite struct{}

var _ = gc.Suite(&paramsSuite{})

const fullStatusJSON = `{
	"model": {"name": "default", "type": "iaas", "cloud-tag": "cloud-aws", "region": "us-east-1", "version": "3.4.0"},
	"applications": {
		"mysql": {
			"charm": "mysql",
			"status": {"status": "blocked", "info": "needs a relation"},
			"units": {"mysql/0": {"agent-status": {"status": "idle"}, "workload-status": {"status": "active"}}}
		}
	},
	"remote-applications": {"pg": {"offer-url": "admin/db.pg"}},
	"controller-timestamp": "2024-03-01T10:00:00Z"
}`

func (*paramsSuite) TestFullStatusWireNames(c *gc.C) {
	var status params.FullStatus
	err := json.Unmarshal([]byte(fullStatusJSON), &status)
	c.Assert(err, jc.ErrorIsNil)

	c.Check(status.Model.CloudTag, gc.Equals, "cloud-aws")
	c.Check(status.Model.CloudRegion, gc.Equals, "us-east-1")
	c.Check(status.Applications["mysql"].Status.Info, gc.Equals, "needs a relation")
	c.Check(status.Applications["mysql"].Units["mysql/0"].AgentStatus.Status, gc.Equals, "idle")
	c.Check(status.RemoteApplications["pg"].OfferURL, gc.Equals, "admin/db.pg")
	c.Check(status.ControllerTimestamp, gc.NotNil)
}

func (*paramsSuite) TestUserModelListOwnerShapes(c *gc.C) {
	var list params.UserModelList
	err := json.Unmarshal([]byte(`{"user-models": [
		{"model": {"name": "a", "uuid": "u1", "type": "iaas", "owner-tag": "user-eggman@external"}},
		{"model": {"name": "b", "uuid": "u2", "type": "caas", "qualifier": "sonic"}}
	]}`), &list)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(list.UserModels, gc.HasLen, 2)
	c.Check(list.UserModels[0].Model.OwnerTag, gc.Equals, "user-eggman@external")
	c.Check(list.UserModels[1].Model.Qualifier, gc.Equals, "sonic")
}

func (*paramsSuite) TestErrorMessage(c *gc.C) {
	c.Check(params.Error{Message: "boom"}.Error(), gc.Equals, "boom")
	c.Check(params.Error{Message: "boom", Code: "not found"}.Error(), gc.Equals, "boom (not found)")
}

func (*paramsSuite) TestControllerVersion(c *gc.C) {
	v, err := params.ControllerInfo{UUID: "c1", Version: "3.4.1"}.ControllerVersion()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(v, gc.Equals, version.MustParse("3.4.1"))

	v, err = params.ControllerInfo{UUID: "c1", AgentVersion: "2.9.42"}.ControllerVersion()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(v, gc.Equals, version.MustParse("2.9.42"))

	_, err = params.ControllerInfo{UUID: "c1"}.ControllerVersion()
	c.Check(errors.Is(err, errors.NotFound), jc.IsTrue)

	_, err = params.ControllerInfo{UUID: "c1", Version: "not-a-version"}.ControllerVersion()
	c.Check(err, gc.ErrorMatches, `controller "c1": .*`)
}
