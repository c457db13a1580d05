// Package cmdutil provides shared flag state and output helpers for
// blenderctl commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/flightblender/coordination-engine/internal/cli/output"
	"github.com/flightblender/coordination-engine/pkg/apiclient"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the persistent flag values shared by every subcommand.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
}

// GetClient builds an apiclient.Client from the --server/--token flags,
// falling back to the BLENDER_SERVER/BLENDER_TOKEN environment variables.
// Unlike the reference client, blenderctl has no login/context flow: access
// tokens are minted offline with `blenderctl token issue` against the
// server's own JWT signing secret, not exchanged over HTTP.
func GetClient() (*apiclient.Client, error) {
	serverURL := Flags.ServerURL
	if serverURL == "" {
		serverURL = os.Getenv("BLENDER_SERVER")
	}
	if serverURL == "" {
		return nil, fmt.Errorf("no server URL configured; pass --server or set BLENDER_SERVER")
	}

	token := Flags.Token
	if token == "" {
		token = os.Getenv("BLENDER_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("no access token configured; pass --token, set BLENDER_TOKEN, or run 'blenderctl token issue'")
	}

	return apiclient.New(serverURL).WithToken(token), nil
}

// GetOutputFormat parses the --output flag.
func GetOutputFormat() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// PrintOutput prints data in the configured format. For table format,
// emptyMsg is shown when isEmpty is true; otherwise tableRenderer lays out
// the rows.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormat()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintResource prints a single resource, using SimpleTable for table format.
func PrintResource(w io.Writer, data any, pairs [][2]string) error {
	format, err := GetOutputFormat()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return output.SimpleTable(w, pairs)
	}
}

// PrintSuccess prints a success message, suppressed outside table format.
func PrintSuccess(msg string) {
	format, err := GetOutputFormat()
	if err != nil || format != output.FormatTable {
		return
	}
	fmt.Println(msg)
}

// EmptyOr returns fallback when s is empty, s otherwise. Used by table
// renderers to avoid printing blank cells.
func EmptyOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
