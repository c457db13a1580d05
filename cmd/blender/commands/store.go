package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/flightblender/coordination-engine/internal/logger"
	"github.com/flightblender/coordination-engine/pkg/deconfliction"
	"github.com/flightblender/coordination-engine/pkg/dssclient"
	"github.com/flightblender/coordination-engine/pkg/flightdecl"
	"github.com/flightblender/coordination-engine/pkg/flightdecl/store"
	"github.com/flightblender/coordination-engine/pkg/opint"
	"github.com/flightblender/coordination-engine/pkg/scheduler"
	"github.com/flightblender/coordination-engine/pkg/spatialindex"
)

// defaultAltitudeLowerM and defaultAltitudeUpperM bound the altitude band
// submitted to the DSS for declarations whose GeoJSON isn't parsed for an
// altitude range (spec.md Non-goals excludes a GeoJSON parser; see
// DESIGN.md's Open Question decision on altitude banding). 120m matches the
// common small-UAS ceiling used throughout original_source/ fixtures.
const (
	defaultAltitudeLowerM = 0.0
	defaultAltitudeUpperM = 120.0
)

// submittingStore decorates *flightdecl/store.Store so that Create both
// persists the declaration and, asynchronously via the scheduler, runs
// self-deconfliction and DSS submission for it — closing the gap left by
// flight_declaration_operations/views.py's FlightDeclarationCreate, whose
// Create serializer save() triggers the same two steps as Celery tasks.
type submittingStore struct {
	*store.Store

	planner   *deconfliction.Planner
	scheduler *scheduler.Scheduler
	dss       *dssclient.Client
	opints    *opint.Store
	audience  string
}

// newSubmittingStore constructs a submittingStore. audience is the DSS
// audience string used for the operational intent submission call.
func newSubmittingStore(base *store.Store, planner *deconfliction.Planner, sched *scheduler.Scheduler, dss *dssclient.Client, opints *opint.Store, audience string) *submittingStore {
	return &submittingStore{
		Store:     base,
		planner:   planner,
		scheduler: sched,
		dss:       dss,
		opints:    opints,
		audience:  audience,
	}
}

// Create persists d, then enqueues self-deconfliction and DSS submission as
// a background job. The HTTP response returns as soon as the declaration is
// persisted; DSS acceptance happens out of band, matching the reference
// system's async task boundary.
func (s *submittingStore) Create(ctx context.Context, d *flightdecl.Declaration) error {
	if err := s.Store.Create(ctx, d); err != nil {
		return err
	}

	box, err := parseBounds(d.Bounds)
	if err != nil {
		logger.Warn("declaration has unparseable bounds, skipping DSS submission",
			logger.DeclarationID(d.ID), logger.Err(err))
		return nil
	}

	candidate := deconfliction.Candidate{
		DeclarationID: d.ID,
		Bounds:        box,
		StartTime:     d.StartDatetime,
		EndTime:       d.EndDatetime,
	}

	s.scheduler.Submit(scheduler.JobSubmitDeclarationToDSS, func(ctx context.Context) error {
		return s.submitToDSS(ctx, d.ID, box, candidate)
	})

	return nil
}

func (s *submittingStore) submitToDSS(ctx context.Context, declarationID string, box spatialindex.Box, candidate deconfliction.Candidate) error {
	d, err := s.Store.Get(ctx, declarationID)
	if err != nil {
		return fmt.Errorf("reloading declaration before DSS submission: %w", err)
	}

	result, err := s.planner.Evaluate(ctx, candidate)
	if err != nil {
		return fmt.Errorf("evaluating self-deconfliction: %w", err)
	}
	if !result.SelfDeconflicted {
		logger.Warn("declaration failed self-deconfliction, not submitting to DSS",
			logger.DeclarationID(declarationID))
		return nil
	}

	volume := opint.Volume{
		Outline:        boxOutline(box),
		AltitudeLowerM: defaultAltitudeLowerM,
		AltitudeUpperM: defaultAltitudeUpperM,
		StartTime:      d.StartDatetime,
		EndTime:        d.EndDatetime,
	}

	submitResult, err := s.dss.SubmitOperationalIntent(ctx, s.audience, []opint.Volume{volume}, nil, candidate.Priority, "Accepted")
	if err != nil {
		return fmt.Errorf("submitting operational intent to DSS: %w", err)
	}

	snap := &opint.Snapshot{
		DeclarationID: declarationID,
		Reference:     submitResult.Reference,
		Volumes:       []opint.Volume{volume},
		Priority:      candidate.Priority,
		Bounds:        box,
		Subscribers:   submitResult.Subscribers,
	}
	if err := s.opints.Put(ctx, snap); err != nil {
		return fmt.Errorf("caching operational intent snapshot: %w", err)
	}

	d.OperationalIntentRef = submitResult.Reference.ID
	d.OVN = submitResult.Reference.OVN
	d.IsApproved = !result.InsideGeofence
	return s.Store.Update(ctx, d)
}

// parseBounds parses the "minLng,minLat,maxLng,maxLat" bounds string stored
// on every flight declaration (mirrors rid_operations/rtree_helper.py's
// `operational_intent_view['bounds'].split(",")`).
func parseBounds(bounds string) (spatialindex.Box, error) {
	var box spatialindex.Box
	parts := strings.Split(bounds, ",")
	if len(parts) != 4 {
		return box, fmt.Errorf("bounds must have 4 comma-separated values, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return box, fmt.Errorf("parsing bounds value %q: %w", p, err)
		}
		box[i] = v
	}
	return box, nil
}

// boxOutline turns a bounding box into a closed rectangular outline, the
// shape pkg/opint.Volume expects, since the candidate's only known geometry
// is its bounding box.
func boxOutline(box spatialindex.Box) []opint.LatLng {
	return []opint.LatLng{
		{Lng: box[0], Lat: box[1]},
		{Lng: box[2], Lat: box[1]},
		{Lng: box[2], Lat: box[3]},
		{Lng: box[0], Lat: box[3]},
	}
}
