package conformance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flightblender/coordination-engine/pkg/flightstate"
	"github.com/flightblender/coordination-engine/pkg/opint"
)

func sampleDeclaration() Declaration {
	start := time.Now().Add(-time.Minute)
	end := time.Now().Add(time.Hour)
	return Declaration{
		ID:         "decl-1",
		AircraftID: "N12345",
		State:      flightstate.Activated,
		StartTime:  start,
		EndTime:    end,
		Volumes: []opint.Volume{
			{
				Outline: []opint.LatLng{
					{Lat: 45.0, Lng: 7.0},
					{Lat: 45.0, Lng: 7.1},
					{Lat: 45.1, Lng: 7.1},
					{Lat: 45.1, Lng: 7.0},
				},
				AltitudeLowerM: 0,
				AltitudeUpperM: 120,
			},
		},
		HasAuthorization:  true,
		LatestTelemetryAt: time.Now(),
	}
}

func TestCheckReturnsOKForConformantTelemetry(t *testing.T) {
	d := sampleDeclaration()
	telemetry := Telemetry{AircraftID: d.AircraftID, Lat: 45.05, Lng: 7.05, AltitudeM: 50, Timestamp: time.Now()}

	assert.Equal(t, OK, Check(d, telemetry, time.Now()))
}

func TestCheckFlagsMismatchedAircraftID(t *testing.T) {
	d := sampleDeclaration()
	telemetry := Telemetry{AircraftID: "OTHER", Lat: 45.05, Lng: 7.05, AltitudeM: 50, Timestamp: time.Now()}

	assert.Equal(t, C3, Check(d, telemetry, time.Now()))
}

func TestCheckFlagsNonActivatedState(t *testing.T) {
	d := sampleDeclaration()
	d.State = flightstate.Nonconforming
	telemetry := Telemetry{AircraftID: d.AircraftID, Lat: 45.05, Lng: 7.05, AltitudeM: 50, Timestamp: time.Now()}

	assert.Equal(t, C5, Check(d, telemetry, time.Now()))
}

func TestCheckFlagsTimestampOutsideWindow(t *testing.T) {
	d := sampleDeclaration()
	telemetry := Telemetry{AircraftID: d.AircraftID, Lat: 45.05, Lng: 7.05, AltitudeM: 50, Timestamp: d.EndTime.Add(time.Hour)}

	assert.Equal(t, C6, Check(d, telemetry, time.Now()))
}

func TestCheckFlagsPositionOutsideVolume(t *testing.T) {
	d := sampleDeclaration()
	telemetry := Telemetry{AircraftID: d.AircraftID, Lat: 50.0, Lng: 10.0, AltitudeM: 50, Timestamp: time.Now()}

	assert.Equal(t, C7a, Check(d, telemetry, time.Now()))
}

func TestCheckFlagsAltitudeOutsideBand(t *testing.T) {
	d := sampleDeclaration()
	telemetry := Telemetry{AircraftID: d.AircraftID, Lat: 45.05, Lng: 7.05, AltitudeM: 500, Timestamp: time.Now()}

	assert.Equal(t, C7b, Check(d, telemetry, time.Now()))
}

func TestCheckAuthorizationFlagsMissingAuthorization(t *testing.T) {
	d := sampleDeclaration()
	d.HasAuthorization = false

	assert.Equal(t, C11, CheckAuthorization(d, time.Now()))
}

func TestCheckAuthorizationFlagsStaleTelemetry(t *testing.T) {
	d := sampleDeclaration()
	d.LatestTelemetryAt = time.Now().Add(-30 * time.Second)

	assert.Equal(t, C9a, CheckAuthorization(d, time.Now()))
}

func TestCheckAuthorizationFlagsNoTelemetryEver(t *testing.T) {
	d := sampleDeclaration()
	d.LatestTelemetryAt = time.Time{}

	assert.Equal(t, C9b, CheckAuthorization(d, time.Now()))
}

func TestCheckAuthorizationOKWhenFresh(t *testing.T) {
	d := sampleDeclaration()

	assert.Equal(t, OK, CheckAuthorization(d, time.Now()))
}

func TestCheckAuthorizationFlagsStaleTelemetryWhileNonconforming(t *testing.T) {
	d := sampleDeclaration()
	d.State = flightstate.Nonconforming
	d.LatestTelemetryAt = time.Now().Add(-30 * time.Second)

	assert.Equal(t, C9a, CheckAuthorization(d, time.Now()), "a continued silence must keep firing once already Nonconforming")
}

func TestCheckAuthorizationSkipsStalenessOnceContingent(t *testing.T) {
	d := sampleDeclaration()
	d.State = flightstate.Contingent
	d.LatestTelemetryAt = time.Time{}

	assert.Equal(t, OK, CheckAuthorization(d, time.Now()), "Contingent is already the terminal corrective state for telemetry loss")
}

func TestCheckAuthorizationFlagsC10FromAccepted(t *testing.T) {
	d := sampleDeclaration()
	d.State = flightstate.Accepted

	assert.Equal(t, C10, CheckAuthorization(d, time.Now()))
}

func TestEventForMapsEveryCodeToAReachableTarget(t *testing.T) {
	cases := []struct {
		code    Code
		current flightstate.State
		event   flightstate.Event
		target  flightstate.State
	}{
		{C3, flightstate.Activated, flightstate.EventBlenderConfirmsContingent, flightstate.Contingent},
		{C4, flightstate.Contingent, flightstate.EventBlenderConfirmsContingent, flightstate.Nonconforming},
		{C5, flightstate.Accepted, flightstate.EventBlenderConfirmsContingent, flightstate.Nonconforming},
		{C6, flightstate.Activated, flightstate.EventUADepartsEarlyLateOutsideOpIntent, flightstate.Nonconforming},
		{C7a, flightstate.Activated, flightstate.EventUAExitsCoordinatedOpIntent, flightstate.Nonconforming},
		{C7b, flightstate.Activated, flightstate.EventUAExitsCoordinatedOpIntent, flightstate.Nonconforming},
		{C9b, flightstate.Activated, flightstate.EventBlenderConfirmsContingent, flightstate.Contingent},
		{C10, flightstate.Accepted, flightstate.EventBlenderConfirmsContingent, flightstate.Contingent},
		{C11, flightstate.Activated, flightstate.EventBlenderConfirmsContingent, flightstate.Contingent},
	}
	for _, tc := range cases {
		event, target, ok := EventFor(tc.code, tc.current)
		assert.True(t, ok, "code %s", tc.code)
		assert.Equal(t, tc.event, event, "code %s event", tc.code)
		assert.Equal(t, tc.target, target, "code %s target", tc.code)
		// Every mapped target must either be directly settable (the
		// conformance-driven bypass) or already reachable via the plain FSM;
		// both are satisfied by orchestrator.SubmitConformance, but for the
		// cases still backed by a real Transition case (C6/C7a/C7b), confirm
		// that case actually exists so this table can't drift from flightstate.go.
		if tc.event == flightstate.EventUADepartsEarlyLateOutsideOpIntent || tc.event == flightstate.EventUAExitsCoordinatedOpIntent {
			next, transitionOK := flightstate.Transition(tc.current, tc.event)
			assert.True(t, transitionOK, "code %s should have a real Transition case", tc.code)
			assert.Equal(t, tc.target, next, "code %s Transition target", tc.code)
		}
	}
}

func TestEventForC9aEscalatesAccordingToCurrentState(t *testing.T) {
	event, target, ok := EventFor(C9a, flightstate.Activated)
	assert.True(t, ok)
	assert.Equal(t, flightstate.EventTimeout, event)
	assert.Equal(t, flightstate.Nonconforming, target, "first detection escalates Activated to Nonconforming")

	event, target, ok = EventFor(C9a, flightstate.Nonconforming)
	assert.True(t, ok)
	assert.Equal(t, flightstate.EventTimeout, event)
	assert.Equal(t, flightstate.Contingent, target, "continued staleness escalates Nonconforming to Contingent")

	next, transitionOK := flightstate.Transition(flightstate.Nonconforming, flightstate.EventTimeout)
	assert.True(t, transitionOK, "Nonconforming+EventTimeout must already be a real Transition case")
	assert.Equal(t, flightstate.Contingent, next)
}

func TestEventForReturnsFalseForOK(t *testing.T) {
	_, _, ok := EventFor(OK, flightstate.Activated)
	assert.False(t, ok)
}
