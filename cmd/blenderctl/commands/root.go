// Package commands implements the blenderctl CLI: a remote operator client
// over the coordination engine's REST API (cobra, persistent --server/--token/
// --output flags synced into cmdutil.Flags).
package commands

import (
	"os"

	declarationcmd "github.com/flightblender/coordination-engine/cmd/blenderctl/commands/declaration"
	"github.com/flightblender/coordination-engine/cmd/blenderctl/cmdutil"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "blenderctl",
	Short: "Coordination engine control - remote operator client",
	Long: `blenderctl drives the flight declaration lifecycle against a running
coordination engine over its REST API: submitting declarations, inspecting
their state, and requesting lifecycle transitions (activate, end, withdraw,
cancel, declare contingent).

Use "blenderctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Token, _ = cmd.Flags().GetString("token")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "Coordination engine base URL (overrides BLENDER_SERVER)")
	rootCmd.PersistentFlags().String("token", "", "Bearer access token (overrides BLENDER_TOKEN)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(declarationcmd.Cmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
