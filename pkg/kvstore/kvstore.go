// Package kvstore defines the key-value and append-only stream abstraction
// that every flight-declaration, operational-intent, and conformance record
// is persisted through. The spatial index and in-memory FSM projections are
// ephemeral: they are rebuilt from these records on demand, never the other
// way around.
package kvstore

import (
	"context"
	"time"
)

// Entry is a single key-value record along with its expiry, if any.
type Entry struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time // zero value means no expiry
}

// Store is a flat key-value store with optional per-key TTL.
//
// Keys follow the dotted namespace convention used throughout the engine,
// e.g. "flight_opint.<declaration_id>" or "opint_flightref.<opint_id>".
type Store interface {
	// Get returns the value stored at key. Returns a NotFound
	// blendererrors.CoordinationError if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key with no expiry, overwriting any existing entry.
	Set(ctx context.Context, key string, value []byte) error

	// SetWithTTL stores value at key, expiring it after ttl elapses.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetIfAbsent atomically stores value at key only if it does not already
	// exist (or has expired). Returns false if the key was already present.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes key. It is not an error to delete a missing key.
	Delete(ctx context.Context, key string) error

	// ScanKeys returns all non-expired keys matching the glob-style pattern
	// (e.g. "flight_opint.*" or "all_uss_flights-*").
	ScanKeys(ctx context.Context, pattern string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// StreamEntry is one record in an append-only stream, analogous to a Redis
// stream entry: an opaque monotonically increasing ID plus a field map.
type StreamEntry struct {
	ID     string
	Fields map[string]string
}

// Stream is an ordered, append-only log used for telemetry and operational
// update message fan-out, mirroring the xadd/xrange/xtrim/consumer-group
// semantics the engine relies on for replay and at-least-once delivery.
type Stream interface {
	// XAdd appends fields to the stream, returning the assigned entry ID.
	// An empty id requests auto-generation ("*").
	XAdd(ctx context.Context, stream, id string, fields map[string]string) (string, error)

	// XRange returns entries in [start, end] (inclusive), oldest first.
	// Use "-" and "+" for unbounded start/end, matching Redis conventions.
	XRange(ctx context.Context, stream, start, end string, count int) ([]StreamEntry, error)

	// XTrim trims the stream to at most maxLen entries, discarding the oldest.
	XTrim(ctx context.Context, stream string, maxLen int64) error

	// XReadGroup reads up to count new entries for consumer within group,
	// creating the group if it does not already exist.
	XReadGroup(ctx context.Context, group, consumer, stream string, count int) ([]StreamEntry, error)
}

// KVStream combines Store and Stream, the shape every component in the
// engine is actually handed.
type KVStream interface {
	Store
	Stream
}
