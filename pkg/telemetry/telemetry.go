// Package telemetry persists aircraft position reports in the KV store
// (component A), mirroring pkg/opint's dual-write pattern: a fast
// last-known-position key plus an append-only stream for history/replay.
// Grounded on original_source/rid_operations/ (telemetry ingestion) and
// pkg/opint/store.go (the dual-write shape this package reuses).
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flightblender/coordination-engine/pkg/conformance"
	"github.com/flightblender/coordination-engine/pkg/kvstore"
)

// TTL is how long the last-known-position key survives without a fresh
// report before it expires, matching the freshness window conformance
// checking cares about (pkg/conformance's telemetryFreshnessWindow is much
// shorter; this is a generous outer bound so a quiet flight's last fix is
// still recoverable for a while after it goes stale).
const TTL = 24 * time.Hour

// streamMaxLen bounds the per-declaration history stream so a long-running
// flight doesn't grow it unbounded.
const streamMaxLen = 4096

// Sample is a single position report for one declaration's aircraft.
type Sample struct {
	DeclarationID string    `json:"declaration_id"`
	AircraftID    string    `json:"aircraft_id"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	AltitudeM     float64   `json:"altitude_m"`
	Timestamp     time.Time `json:"timestamp"`
}

func key(declarationID string) string {
	return fmt.Sprintf("telemetry_latest.%s", declarationID)
}

func streamName(declarationID string) string {
	return fmt.Sprintf("telemetry_stream.%s", declarationID)
}

// Store persists telemetry samples in a kvstore.KVStream: the last-known-
// position key needs plain Get/SetWithTTL, the history log needs the stream
// primitives, and every backend the engine ships hands out both together.
type Store struct {
	kv kvstore.KVStream
}

// New wraps a kvstore.KVStream.
func New(kv kvstore.KVStream) *Store {
	return &Store{kv: kv}
}

// Record writes s as the declaration's latest known position and appends it
// to the declaration's history stream.
func (s *Store) Record(ctx context.Context, sample Sample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshaling telemetry sample: %w", err)
	}

	if err := s.kv.SetWithTTL(ctx, key(sample.DeclarationID), data, TTL); err != nil {
		return fmt.Errorf("writing latest telemetry sample: %w", err)
	}

	fields := map[string]string{
		"aircraft_id": sample.AircraftID,
		"lat":         fmt.Sprintf("%g", sample.Lat),
		"lng":         fmt.Sprintf("%g", sample.Lng),
		"altitude_m":  fmt.Sprintf("%g", sample.AltitudeM),
		"timestamp":   sample.Timestamp.Format(time.RFC3339Nano),
	}
	if _, err := s.kv.XAdd(ctx, streamName(sample.DeclarationID), "*", fields); err != nil {
		return fmt.Errorf("appending telemetry history: %w", err)
	}
	if err := s.kv.XTrim(ctx, streamName(sample.DeclarationID), streamMaxLen); err != nil {
		return fmt.Errorf("trimming telemetry history: %w", err)
	}
	return nil
}

// Latest returns the most recent sample recorded for declarationID.
func (s *Store) Latest(ctx context.Context, declarationID string) (*Sample, error) {
	data, err := s.kv.Get(ctx, key(declarationID))
	if err != nil {
		return nil, err
	}
	var sample Sample
	if err := json.Unmarshal(data, &sample); err != nil {
		return nil, fmt.Errorf("unmarshaling telemetry sample: %w", err)
	}
	return &sample, nil
}

// History returns up to count of the most recent history stream entries for
// declarationID, oldest first.
func (s *Store) History(ctx context.Context, declarationID string, count int) ([]kvstore.StreamEntry, error) {
	entries, err := s.kv.XRange(ctx, streamName(declarationID), "-", "+", 0)
	if err != nil {
		return nil, err
	}
	if count > 0 && len(entries) > count {
		entries = entries[len(entries)-count:]
	}
	return entries, nil
}

// ToConformanceTelemetry converts sample into the shape pkg/conformance.Check
// consumes.
func ToConformanceTelemetry(sample Sample) conformance.Telemetry {
	return conformance.Telemetry{
		AircraftID: sample.AircraftID,
		Lat:        sample.Lat,
		Lng:        sample.Lng,
		AltitudeM:  sample.AltitudeM,
		Timestamp:  sample.Timestamp,
	}
}
