package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/flightblender/coordination-engine/internal/logger"
	"github.com/flightblender/coordination-engine/pkg/conformance"
	"github.com/flightblender/coordination-engine/pkg/flightdecl"
	"github.com/flightblender/coordination-engine/pkg/flightstate"
	"github.com/flightblender/coordination-engine/pkg/opint"
	"github.com/flightblender/coordination-engine/pkg/telemetry"
)

// declarationLoader is the subset of flightdecl/store.Store the conformance
// checker needs to load the declaration it's checking.
type declarationLoader interface {
	Get(ctx context.Context, id string) (*flightdecl.Declaration, error)
}

// eventSubmitter is the subset of *orchestrator.Orchestrator the conformance
// checker needs: submitting the flightstate.Event a non-conformance code
// implies. Declared locally (rather than importing orchestrator.Orchestrator
// directly) because the orchestrator itself depends on the scheduler this
// checker is wired into — setOrchestrator breaks that construction cycle.
type eventSubmitter interface {
	Submit(ctx context.Context, declarationID string, event flightstate.Event) (*flightdecl.Declaration, error)
	SubmitConformance(ctx context.Context, declarationID string, newState flightstate.State, event flightstate.Event) (*flightdecl.Declaration, error)
}

// conformanceChecker implements scheduler.ConformanceChecker: given a
// declaration id, it loads the declaration and its latest telemetry sample,
// evaluates both pkg/conformance checks, and submits whatever state-change
// event the result implies back through the orchestrator.
//
// The scheduler must exist before the orchestrator (the orchestrator needs
// the scheduler to start/stop monitoring) and the orchestrator must exist
// before this checker can call it back — a three-way cycle. setOrchestrator
// breaks it: the checker is constructed with a nil orchestrator, wired into
// the scheduler, and only after the orchestrator itself is constructed does
// serve.go call setOrchestrator to complete the wiring.
type conformanceChecker struct {
	declarations declarationLoader
	telemetry    *telemetry.Store
	orchestrator eventSubmitter
}

func newConformanceChecker(declarations declarationLoader, tel *telemetry.Store) *conformanceChecker {
	return &conformanceChecker{declarations: declarations, telemetry: tel}
}

// setOrchestrator completes construction once the orchestrator exists.
func (c *conformanceChecker) setOrchestrator(o eventSubmitter) {
	c.orchestrator = o
}

// CheckConformance loads declarationID's current state and latest telemetry,
// runs both conformance checks, and submits the resulting state change if
// either check returns a non-OK code. The returned bool reports whether the
// declaration has not yet reached a terminal state and monitoring should
// continue: per spec.md §9, a declaration's periodic job "tracks declaration
// state (start on Activated, stop on Ended)", so a non-conformance detection
// that only pushes the declaration into Nonconforming or Contingent must not
// stop the job, or a later escalation (spec.md §8 S4's 2 → 3 → (next check) 4)
// could never be observed.
func (c *conformanceChecker) CheckConformance(ctx context.Context, declarationID string) (bool, error) {
	d, err := c.declarations.Get(ctx, declarationID)
	if err != nil {
		return false, fmt.Errorf("loading declaration for conformance check: %w", err)
	}

	if isTerminalState(d.State) {
		return false, nil
	}

	decl := conformance.Declaration{
		ID:               d.ID,
		State:            d.State,
		StartTime:        d.StartDatetime,
		EndTime:          d.EndDatetime,
		HasAuthorization: d.IsApproved,
	}
	if box, err := parseBounds(d.Bounds); err == nil {
		decl.Volumes = []opint.Volume{{
			Outline:        boxOutline(box),
			AltitudeLowerM: defaultAltitudeLowerM,
			AltitudeUpperM: defaultAltitudeUpperM,
			StartTime:      d.StartDatetime,
			EndTime:        d.EndDatetime,
		}}
	}

	sample, telErr := c.telemetry.Latest(ctx, declarationID)
	now := time.Now()

	// A telemetry sample drives the position/time checks first (Check);
	// CheckAuthorization only runs once that sample is itself conformant.
	// With no sample at all there is nothing for Check to evaluate against,
	// so CheckAuthorization runs on its own — spec.md §4.7.2 describes it as
	// evaluated "independently of a specific telemetry sample" by the
	// periodic job, which is exactly this no-sample case (C9b/C10/C11).
	var code conformance.Code
	if telErr == nil {
		decl.AircraftID = sample.AircraftID
		decl.LatestTelemetryAt = sample.Timestamp
		tel := telemetry.ToConformanceTelemetry(*sample)
		code = conformance.Check(decl, tel, now)
		if code == conformance.OK {
			code = conformance.CheckAuthorization(decl, now)
		}
	} else {
		code = conformance.CheckAuthorization(decl, now)
	}

	state := d.State
	if code != conformance.OK {
		logger.Warn("conformance check failed",
			logger.DeclarationID(declarationID), logger.ConformanceCode(string(code)))

		if event, target, ok := conformance.EventFor(code, d.State); ok && c.orchestrator != nil {
			updated, err := c.orchestrator.SubmitConformance(ctx, declarationID, target, event)
			if err != nil {
				return false, fmt.Errorf("submitting conformance event: %w", err)
			}
			state = updated.State
		}
	}

	return !isTerminalState(state), nil
}

// isTerminalState reports whether s is one of the states that ends the
// periodic conformance job: Ended via the normal lifecycle, or one of the
// operator-only terminal states that can also be reached without ever
// activating (Withdrawn, Cancelled, Rejected).
func isTerminalState(s flightstate.State) bool {
	return s == flightstate.Ended || s == flightstate.Withdrawn || s == flightstate.Cancelled || s == flightstate.Rejected
}
