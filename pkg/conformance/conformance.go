// Package conformance implements component F: evaluating a telemetry sample
// against a declaration's declared envelope and emitting a non-conformance
// code (or OK). Grounded on
// original_source/conformance_monitoring_operations/conformance_checks_handler.py
// and custom_signals.py for the C3-C11 codes and their event mappings.
package conformance

import (
	"time"

	"github.com/flightblender/coordination-engine/pkg/flightstate"
	"github.com/flightblender/coordination-engine/pkg/opint"
)

// Code is a non-conformance finding, or OK if the telemetry sample is
// conformant.
type Code string

const (
	OK  Code = "OK"
	C3  Code = "C3"
	C4  Code = "C4"
	C5  Code = "C5"
	C6  Code = "C6"
	C7a Code = "C7a"
	C7b Code = "C7b"
	C9a Code = "C9a"
	C9b Code = "C9b"
	C10 Code = "C10"
	C11 Code = "C11"
)

// telemetryFreshnessWindow is how long a telemetry-silence gap is tolerated
// for an Activated declaration before C9a fires (spec.md §4.6).
const telemetryFreshnessWindow = 15 * time.Second

// Declaration is the subset of flightdecl.Declaration state the engine
// checks telemetry against.
type Declaration struct {
	ID                string
	AircraftID        string
	State             flightstate.State
	StartTime         time.Time
	EndTime           time.Time
	Volumes           []opint.Volume
	HasAuthorization  bool
	LatestTelemetryAt time.Time // zero value means never received
}

// Telemetry is a single position report.
type Telemetry struct {
	AircraftID string
	Lat        float64
	Lng        float64
	AltitudeM  float64
	Timestamp  time.Time
}

// Check evaluates telemetry against d as of now, returning the first
// applicable non-conformance code in the priority order the reference
// system checks them, or OK.
func Check(d Declaration, t Telemetry, now time.Time) Code {
	if t.AircraftID != "" && d.AircraftID != "" && t.AircraftID != d.AircraftID {
		return C3
	}

	if !inStateSet(d.State, flightstate.Accepted, flightstate.Activated, flightstate.Nonconforming) {
		return C4
	}
	if d.State != flightstate.Activated {
		return C5
	}

	if t.Timestamp.Before(d.StartTime) || t.Timestamp.After(d.EndTime) {
		return C6
	}

	containing, ok := containingVolume(d.Volumes, t.Lat, t.Lng)
	if !ok {
		return C7a
	}
	if t.AltitudeM < containing.AltitudeLowerM || t.AltitudeM > containing.AltitudeUpperM {
		return C7b
	}

	return OK
}

// CheckAuthorization evaluates the authorization-presence/staleness checks
// (C9a, C9b, C10, C11), run independently of a specific telemetry sample by
// the periodic conformance job (spec.md §4.7.2).
//
// C9a/C9b are evaluated for both Activated and Nonconforming declarations,
// not just Activated: spec.md §8 S4 requires a continued telemetry silence
// to keep escalating on each subsequent check (2 → 3 → (next check) 4), so
// the staleness check must still run once the declaration has already been
// pushed into Nonconforming by an earlier check.
func CheckAuthorization(d Declaration, now time.Time) Code {
	if !d.HasAuthorization {
		return C11
	}
	if !inStateSet(d.State, flightstate.Activated, flightstate.Nonconforming, flightstate.Contingent) {
		return C10
	}
	if d.State == flightstate.Contingent {
		return OK
	}
	if d.LatestTelemetryAt.IsZero() {
		return C9b
	}
	if now.Sub(d.LatestTelemetryAt) > telemetryFreshnessWindow {
		return C9a
	}
	return OK
}

func inStateSet(s flightstate.State, set ...flightstate.State) bool {
	for _, c := range set {
		if s == c {
			return true
		}
	}
	return false
}

// containingVolume returns the first declared volume whose outline contains
// (lat, lng), using a standard even-odd-rule point-in-polygon test.
func containingVolume(volumes []opint.Volume, lat, lng float64) (opint.Volume, bool) {
	for _, v := range volumes {
		if pointInPolygon(v.Outline, lat, lng) {
			return v, true
		}
	}
	return opint.Volume{}, false
}

func pointInPolygon(outline []opint.LatLng, lat, lng float64) bool {
	if len(outline) < 3 {
		return false
	}
	inside := false
	j := len(outline) - 1
	for i := range outline {
		xi, yi := outline[i].Lng, outline[i].Lat
		xj, yj := outline[j].Lng, outline[j].Lat

		intersects := (yi > lat) != (yj > lat) &&
			lng < (xj-xi)*(lat-yi)/(yj-yi)+xi
		if intersects {
			inside = !inside
		}
		j = i
	}
	return inside
}

// EventFor maps a non-conformance code to the flightstate.Event and target
// state the Orchestrator should drive, per spec.md §4.6's code→event table.
// OK has no event: Testable Property 6 requires the conformance worker
// never emit an event for an OK result.
//
// Unlike an operator-submitted event, a conformance code's target state is
// not computed by running event through flightstate.Transition from the
// declaration's current state — several codes are detected from states the
// FSM has no transition out of for that event (C4/C5 fire exactly when the
// state is NOT Activated; C10 fires from Accepted; C9a's first detection
// fires from Activated, which has no EventTimeout transition). The target
// state returned here is set directly by the caller
// (orchestrator.Orchestrator.SubmitConformance), matching the reference
// system's custom_signals.py handlers, which write new_state onto the
// declaration and pass event only to manage_operation_state_transition for
// side-effect dispatch, never through the state machine's on_event.
//
// C9a is the one code whose target depends on the declaration's current
// state: the first detection (from Activated) escalates to Nonconforming;
// once already Nonconforming, a continued staleness detection escalates to
// Contingent via the FSM's existing Nonconforming+EventTimeout transition,
// which needs no bypass.
func EventFor(code Code, current flightstate.State) (flightstate.Event, flightstate.State, bool) {
	switch code {
	case C3:
		return flightstate.EventBlenderConfirmsContingent, flightstate.Contingent, true
	case C4, C5:
		return flightstate.EventBlenderConfirmsContingent, flightstate.Nonconforming, true
	case C6:
		return flightstate.EventUADepartsEarlyLateOutsideOpIntent, flightstate.Nonconforming, true
	case C7a, C7b:
		return flightstate.EventUAExitsCoordinatedOpIntent, flightstate.Nonconforming, true
	case C9a:
		if current == flightstate.Nonconforming {
			return flightstate.EventTimeout, flightstate.Contingent, true
		}
		return flightstate.EventTimeout, flightstate.Nonconforming, true
	case C9b, C10, C11:
		return flightstate.EventBlenderConfirmsContingent, flightstate.Contingent, true
	default:
		return "", 0, false
	}
}
