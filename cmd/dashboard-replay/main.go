// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Command dashboard-replay feeds recorded controller responses through the
// dashboard store and prints the classified models.
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
	os.Exit(cmd.Main(newReplayCommand(), ctx, os.Args[1:]))
}
