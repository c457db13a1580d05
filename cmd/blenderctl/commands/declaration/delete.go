package declaration

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flightblender/coordination-engine/cmd/blenderctl/cmdutil"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a flight declaration",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	if err := client.DeleteDeclaration(args[0]); err != nil {
		return fmt.Errorf("failed to delete declaration: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Declaration %s deleted.", args[0]))
	return nil
}
