package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightblender/coordination-engine/pkg/blendererrors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerGetSetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "flight_opint.decl-1", []byte("opint-1")))

	val, err := s.Get(ctx, "flight_opint.decl-1")
	require.NoError(t, err)
	assert.Equal(t, "opint-1", string(val))
}

func TestBadgerGetMissingKeyReturnsNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.True(t, blendererrors.Is(err, blendererrors.ErrNotFound))
}

func TestBadgerSetWithTTLExpires(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetWithTTL(ctx, "opint_flightref.opint-1", []byte("decl-1"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := s.Get(ctx, "opint_flightref.opint-1")
	require.Error(t, err)
	assert.True(t, blendererrors.Is(err, blendererrors.ErrNotFound))
}

func TestBadgerSetIfAbsent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.SetIfAbsent(ctx, "lock.decl-1", []byte("holder-a"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetIfAbsent(ctx, "lock.decl-1", []byte("holder-b"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerScanKeysMatchesPattern(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "all_uss_flights-uss1", []byte("{}")))
	require.NoError(t, s.Set(ctx, "all_uss_flights-uss2", []byte("{}")))
	require.NoError(t, s.Set(ctx, "flight_opint.decl-1", []byte("{}")))

	keys, err := s.ScanKeys(ctx, "all_uss_flights-*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"all_uss_flights-uss1", "all_uss_flights-uss2"}, keys)
}

func TestBadgerStreamXAddAndXRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.XAdd(ctx, "telemetry.decl-1", "", map[string]string{"seq": string(rune('0' + i))})
		require.NoError(t, err)
	}

	entries, err := s.XRange(ctx, "telemetry.decl-1", "-", "+", 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, string(rune('0'+i)), e.Fields["seq"])
	}
}

func TestBadgerStreamXTrim(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := s.XAdd(ctx, "telemetry.decl-1", "", map[string]string{"seq": string(rune('0' + i))})
		require.NoError(t, err)
	}

	require.NoError(t, s.XTrim(ctx, "telemetry.decl-1", 3))

	entries, err := s.XRange(ctx, "telemetry.decl-1", "-", "+", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestBadgerStreamXReadGroupAdvancesCursor(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.XAdd(ctx, "notify.decl-1", "", map[string]string{"seq": string(rune('0' + i))})
		require.NoError(t, err)
	}

	first, err := s.XReadGroup(ctx, "peer-uss-notifiers", "worker-1", "notify.decl-1", 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := s.XReadGroup(ctx, "peer-uss-notifiers", "worker-1", "notify.decl-1", 10)
	require.NoError(t, err)
	require.Len(t, second, 3)
}
