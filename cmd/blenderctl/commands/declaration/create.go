package declaration

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/flightblender/coordination-engine/cmd/blenderctl/cmdutil"
	"github.com/flightblender/coordination-engine/pkg/apiclient"
)

var (
	createGeoJSONPath string
	createBounds      string
	createParty       string
	createTypeOfOp    int
	createStart       string
	createEnd         string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit a new flight declaration",
	Long: `Submit a new flight declaration to the coordination engine.

The geojson flag takes a path to an already-decoded flight volume GeoJSON
document; bounds is the "minLng,minLat,maxLng,maxLat" bounding box used for fast
spatial lookups (parsing GeoJSON into a bounding box is not performed by
blenderctl - pass the box you already computed).

Examples:
  blenderctl declaration create --geojson volume.json --bounds "1,1,2,2" \
    --party acme-drones --start 2026-08-01T10:00:00Z --end 2026-08-01T11:00:00Z`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createGeoJSONPath, "geojson", "", "Path to the flight volume GeoJSON document")
	createCmd.Flags().StringVar(&createBounds, "bounds", "", `Bounding box "minLng,minLat,maxLng,maxLat"`)
	createCmd.Flags().StringVar(&createParty, "party", "", "Originating party identifier")
	createCmd.Flags().IntVar(&createTypeOfOp, "type", 0, "Type of operation code")
	createCmd.Flags().StringVar(&createStart, "start", "", "Start time (RFC3339)")
	createCmd.Flags().StringVar(&createEnd, "end", "", "End time (RFC3339)")
	_ = createCmd.MarkFlagRequired("geojson")
	_ = createCmd.MarkFlagRequired("bounds")
	_ = createCmd.MarkFlagRequired("party")
	_ = createCmd.MarkFlagRequired("start")
	_ = createCmd.MarkFlagRequired("end")
}

func runCreate(cmd *cobra.Command, args []string) error {
	geojson, err := os.ReadFile(createGeoJSONPath)
	if err != nil {
		return fmt.Errorf("reading geojson file: %w", err)
	}

	start, err := time.Parse(time.RFC3339, createStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, createEnd)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	d, err := client.CreateDeclaration(&apiclient.CreateDeclarationRequest{
		FlightDeclarationGeoJSON: string(geojson),
		Bounds:                   createBounds,
		OriginatingParty:         createParty,
		TypeOfOperation:          createTypeOfOp,
		StartDatetime:            start,
		EndDatetime:              end,
	})
	if err != nil {
		return fmt.Errorf("failed to create declaration: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Declaration %s submitted.", d.ID))
	return cmdutil.PrintResource(os.Stdout, d, [][2]string{
		{"ID", d.ID},
		{"Originating Party", d.OriginatingParty},
	})
}
