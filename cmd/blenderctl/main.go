// Command blenderctl is the operator-facing remote client for the
// coordination engine's REST API.
package main

import (
	"os"

	"github.com/flightblender/coordination-engine/cmd/blenderctl/commands"
)

// version, commit, and date are set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		commands.PrintErr("%v", err)
		os.Exit(1)
	}
}
