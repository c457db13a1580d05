package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightblender/coordination-engine/pkg/kvstore/memory"
)

func sampleAt(declarationID string, ts time.Time) Sample {
	return Sample{
		DeclarationID: declarationID,
		AircraftID:    "aircraft-1",
		Lat:           45.0,
		Lng:           7.0,
		AltitudeM:     95,
		Timestamp:     ts,
	}
}

func TestRecordAndLatestRoundTrip(t *testing.T) {
	store := New(memory.New())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Record(ctx, sampleAt("decl-1", now)))

	got, err := store.Latest(ctx, "decl-1")
	require.NoError(t, err)
	assert.Equal(t, "aircraft-1", got.AircraftID)
	assert.WithinDuration(t, now, got.Timestamp, time.Millisecond)
}

func TestLatestReflectsMostRecentSample(t *testing.T) {
	store := New(memory.New())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Record(ctx, sampleAt("decl-1", now)))
	later := sampleAt("decl-1", now.Add(time.Minute))
	later.Lat = 46.0
	require.NoError(t, store.Record(ctx, later))

	got, err := store.Latest(ctx, "decl-1")
	require.NoError(t, err)
	assert.Equal(t, 46.0, got.Lat)
}

func TestHistoryReturnsAppendedSamples(t *testing.T) {
	store := New(memory.New())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Record(ctx, sampleAt("decl-1", now)))
	require.NoError(t, store.Record(ctx, sampleAt("decl-1", now.Add(time.Minute))))

	entries, err := store.History(ctx, "decl-1", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLatestMissingDeclarationErrors(t *testing.T) {
	store := New(memory.New())
	_, err := store.Latest(context.Background(), "unknown")
	assert.Error(t, err)
}

func TestToConformanceTelemetry(t *testing.T) {
	now := time.Now()
	s := sampleAt("decl-1", now)
	ct := ToConformanceTelemetry(s)
	assert.Equal(t, s.AircraftID, ct.AircraftID)
	assert.Equal(t, s.Lat, ct.Lat)
	assert.Equal(t, s.Timestamp, ct.Timestamp)
}
