// Package declaration implements flight declaration commands for blenderctl,
// grounded on the reference client's cmd/dfsctl/commands/group package
// (parent Cmd + one file per subcommand, table/json/yaml rendering via
// cmdutil.PrintOutput).
package declaration

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for flight declaration management.
var Cmd = &cobra.Command{
	Use:     "declaration",
	Aliases: []string{"decl"},
	Short:   "Flight declaration management",
	Long: `Manage flight declarations against the coordination engine: submit new
declarations, inspect their state, and drive them through the ASTM
F3548-21 lifecycle (activate, end, withdraw, cancel, contingency).

Examples:
  # Submit a new declaration
  blenderctl declaration create --geojson volume.json --bounds "1,1,2,2" \
    --party acme-drones --start 2026-08-01T10:00:00Z --end 2026-08-01T11:00:00Z

  # List all declarations
  blenderctl declaration list

  # Get one declaration
  blenderctl declaration get 3f29c1e4-...

  # Activate a declaration
  blenderctl declaration activate 3f29c1e4-...`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(activateCmd)
	Cmd.AddCommand(endCmd)
	Cmd.AddCommand(withdrawCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(contingentCmd)
	Cmd.AddCommand(recoverCmd)
}
