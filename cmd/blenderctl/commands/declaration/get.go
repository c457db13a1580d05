package declaration

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flightblender/coordination-engine/cmd/blenderctl/cmdutil"
	"github.com/flightblender/coordination-engine/pkg/flightstate"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a flight declaration",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	d, err := client.GetDeclaration(args[0])
	if err != nil {
		return fmt.Errorf("failed to get declaration: %w", err)
	}

	pairs := [][2]string{
		{"ID", d.ID},
		{"State", flightstate.State(d.State).String()},
		{"Originating Party", d.OriginatingParty},
		{"Submitted By", d.SubmittedBy},
		{"Bounds", d.Bounds},
		{"Operational Intent Ref", d.OperationalIntentRef},
		{"OVN", d.OVN},
		{"Start", d.StartDatetime.Format("2006-01-02T15:04:05Z")},
		{"End", d.EndDatetime.Format("2006-01-02T15:04:05Z")},
		{"Approved", fmt.Sprintf("%t", d.IsApproved)},
	}

	return cmdutil.PrintResource(os.Stdout, d, pairs)
}
