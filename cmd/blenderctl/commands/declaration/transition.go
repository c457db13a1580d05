package declaration

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flightblender/coordination-engine/cmd/blenderctl/cmdutil"
	"github.com/flightblender/coordination-engine/pkg/flightstate"
)

// transitionCmd builds a cobra command that submits a single fixed
// flightstate.Event against a declaration identified by its first argument.
func transitionCmd(use, short string, event flightstate.Event) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(args[0], event)
		},
	}
}

func runTransition(id string, event flightstate.Event) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	d, err := client.ChangeState(id, string(event))
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", event, err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Declaration %s is now %s.", d.ID, flightstate.State(d.State)))
	return cmdutil.PrintResource(os.Stdout, d, [][2]string{
		{"ID", d.ID},
		{"State", flightstate.State(d.State).String()},
	})
}

var activateCmd = transitionCmd("activate", "Activate an accepted declaration", flightstate.EventOperatorActivates)
var endCmd = transitionCmd("end", "Confirm a declaration has ended", flightstate.EventOperatorConfirmsEnded)
var withdrawCmd = transitionCmd("withdraw", "Withdraw a declaration before activation", flightstate.EventOperatorWithdraws)
var cancelCmd = transitionCmd("cancel", "Cancel an accepted declaration", flightstate.EventOperatorCancels)
var contingentCmd = transitionCmd("contingency", "Declare a contingency for an activated declaration", flightstate.EventOperatorInitiatesContingent)
var recoverCmd = transitionCmd("recover", "Return a nonconforming declaration to its coordinated intent", flightstate.EventOperatorReturnsToCoordinatedOpIntent)
