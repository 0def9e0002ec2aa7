// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status_test

import (
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/juju-dashboard/core/status"
)

type StatusSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&StatusSuite{})

func (s *StatusSuite) TestKnownStatuses(c *gc.C) {
	for _, test := range []struct {
		status status.Status
		check  func(status.Status) bool
		known  bool
	}{
		{status.Down, status.Status.KnownMachineStatus, true},
		{status.Lost, status.Status.KnownMachineStatus, false},
		{status.Lost, status.Status.KnownAgentStatus, true},
		{status.Executing, status.Status.KnownAgentStatus, true},
		{status.Blocked, status.Status.KnownAgentStatus, false},
		{status.Blocked, status.Status.KnownWorkloadStatus, true},
		{status.Status("exploded"), status.Status.KnownWorkloadStatus, false},
		{status.Busy, status.Status.KnownModelStatus, true},
		{status.Joined, status.Status.KnownModelStatus, false},
	} {
		c.Check(test.check(test.status), gc.Equals, test.known, gc.Commentf("status %q", test.status))
	}
}

func (s *StatusSuite) TestString(c *gc.C) {
	c.Assert(status.Maintenance.String(), jc.DeepEquals, "maintenance")
}
