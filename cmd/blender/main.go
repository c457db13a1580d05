// Command blender is the coordination engine server: the strategic
// deconfliction and remote-ID coordination service operators run against
// the DSS and their own flight declarations.
package main

import (
	"os"

	"github.com/flightblender/coordination-engine/cmd/blender/commands"
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
