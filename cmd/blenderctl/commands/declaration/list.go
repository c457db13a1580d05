package declaration

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flightblender/coordination-engine/cmd/blenderctl/cmdutil"
	"github.com/flightblender/coordination-engine/pkg/apiclient"
	"github.com/flightblender/coordination-engine/pkg/flightstate"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all flight declarations",
	Long: `List every flight declaration known to the coordination engine.

Examples:
  blenderctl declaration list
  blenderctl declaration list -o json`,
	RunE: runList,
}

// List renders a slice of declarations as a table.
type List []apiclient.Declaration

// Headers implements output.TableRenderer.
func (l List) Headers() []string {
	return []string{"ID", "STATE", "PARTY", "START", "END", "APPROVED"}
}

// Rows implements output.TableRenderer.
func (l List) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, d := range l {
		rows = append(rows, []string{
			d.ID,
			flightstate.State(d.State).String(),
			cmdutil.EmptyOr(d.OriginatingParty, "-"),
			d.StartDatetime.Format("2006-01-02T15:04Z"),
			d.EndDatetime.Format("2006-01-02T15:04Z"),
			fmt.Sprintf("%t", d.IsApproved),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	decls, err := client.ListDeclarations()
	if err != nil {
		return fmt.Errorf("failed to list declarations: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, decls, len(decls) == 0, "No flight declarations found.", List(decls))
}
