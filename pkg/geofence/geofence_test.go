package geofence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightblender/coordination-engine/pkg/kvstore/memory"
)

func TestPutAndActiveRoundTrip(t *testing.T) {
	store := New(memory.New())
	ctx := context.Background()

	g := &Geofence{
		ID:        "gf-1",
		Bounds:    [4]float64{7.0, 45.0, 7.1, 45.1},
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Put(ctx, g))

	active, err := store.Active(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, "gf-1", active[0].ID)
}

func TestActiveExcludesExpiredGeofences(t *testing.T) {
	store := New(memory.New())
	ctx := context.Background()

	g := &Geofence{
		ID:        "gf-expired",
		StartTime: time.Now().Add(-2 * time.Hour),
		EndTime:   time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Put(ctx, g))

	active, err := store.Active(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestDeleteRemovesGeofence(t *testing.T) {
	store := New(memory.New())
	ctx := context.Background()

	g := &Geofence{ID: "gf-1", StartTime: time.Now().Add(-time.Hour), EndTime: time.Now().Add(time.Hour)}
	require.NoError(t, store.Put(ctx, g))
	require.NoError(t, store.Delete(ctx, "gf-1"))

	active, err := store.Active(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, active)
}
