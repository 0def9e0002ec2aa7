// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Command dashboardd keeps the dashboard store in sync with the
// configured controllers and serves its views over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/juju/juju-dashboard/cmd"
)

func main() {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR %v\n", err)
		os.Exit(2)
	}
	os.Exit(cmd.Main(newDaemonCommand(), ctx, os.Args[1:]))
}
