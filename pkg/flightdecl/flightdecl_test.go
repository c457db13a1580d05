package flightdecl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightblender/coordination-engine/pkg/flightstate"
)

func sampleDeclaration() *Declaration {
	start := time.Now().Add(time.Hour)
	end := start.Add(30 * time.Minute)
	return New(`{"type":"Polygon"}`, "45.0,7.0,45.1,7.1", "Test Operator", start, end, OperationVLOS)
}

func TestNewDeclarationStartsNotSubmitted(t *testing.T) {
	d := sampleDeclaration()
	assert.Equal(t, flightstate.NotSubmitted, d.State)
	assert.NotEmpty(t, d.ID)
}

func TestValidateRejectsMissingGeoJSON(t *testing.T) {
	d := sampleDeclaration()
	d.FlightDeclarationGeoJSON = ""
	assert.Error(t, d.Validate())
}

func TestValidateRejectsEndBeforeStart(t *testing.T) {
	d := sampleDeclaration()
	d.EndDatetime = d.StartDatetime.Add(-time.Minute)
	assert.Error(t, d.Validate())
}

func TestValidateAcceptsWellFormedDeclaration(t *testing.T) {
	d := sampleDeclaration()
	assert.NoError(t, d.Validate())
}

func TestApplyEventAdvancesState(t *testing.T) {
	d := sampleDeclaration()
	require.NoError(t, d.ApplyEvent(flightstate.EventDSSAccepts))
	assert.Equal(t, flightstate.Accepted, d.State)

	require.NoError(t, d.ApplyEvent(flightstate.EventOperatorActivates))
	assert.Equal(t, flightstate.Activated, d.State)
}

func TestApplyEventRejectsInvalidTransition(t *testing.T) {
	d := sampleDeclaration()
	err := d.ApplyEvent(flightstate.EventOperatorActivates)
	assert.Error(t, err)
	assert.Equal(t, flightstate.NotSubmitted, d.State)
}
