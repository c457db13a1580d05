package opint

import (
	"context"
	"fmt"

	"github.com/flightblender/coordination-engine/pkg/kvstore"
)

// Store persists OperationalIntentSnapshots and their reverse index in a
// kvstore.Store. Put and Delete write flight_opint.<id> and
// opint_flightref.<opint_id> as two separate KV operations with no lock
// around them; they are not applied atomically, and a failure between the
// two leaves one key written without the other.
type Store struct {
	kv kvstore.Store
}

// New wraps a kvstore.Store.
func New(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Put writes the snapshot and, if the DSS has assigned a reference id,
// its reverse index entry, both with TTL.
func (s *Store) Put(ctx context.Context, snap *Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling operational intent snapshot: %w", err)
	}
	if err := s.kv.SetWithTTL(ctx, Key(snap.DeclarationID), data, TTL); err != nil {
		return fmt.Errorf("writing operational intent snapshot: %w", err)
	}

	if snap.Reference.ID == "" {
		return nil
	}

	reverse, err := MarshalReverseIndex(snap.DeclarationID)
	if err != nil {
		return fmt.Errorf("marshaling reverse index entry: %w", err)
	}
	if err := s.kv.SetWithTTL(ctx, ReverseIndexKey(snap.Reference.ID), reverse, TTL); err != nil {
		return fmt.Errorf("writing reverse index entry: %w", err)
	}
	return nil
}

// Get loads the snapshot for declarationID.
func (s *Store) Get(ctx context.Context, declarationID string) (*Snapshot, error) {
	data, err := s.kv.Get(ctx, Key(declarationID))
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Delete removes the snapshot and, if present, its reverse index entry.
func (s *Store) Delete(ctx context.Context, declarationID string) error {
	snap, err := s.Get(ctx, declarationID)
	if err == nil && snap.Reference.ID != "" {
		_ = s.kv.Delete(ctx, ReverseIndexKey(snap.Reference.ID))
	}
	return s.kv.Delete(ctx, Key(declarationID))
}

// ResolveDeclarationID looks up the declaration id owning opintID via the
// reverse index.
func (s *Store) ResolveDeclarationID(ctx context.Context, opintID string) (string, error) {
	data, err := s.kv.Get(ctx, ReverseIndexKey(opintID))
	if err != nil {
		return "", err
	}
	return UnmarshalReverseIndex(data)
}

// ScanActive returns every currently-live operational intent snapshot,
// used by the Deconfliction Planner (component E) to seed its per-query
// spatial index.
func (s *Store) ScanActive(ctx context.Context) ([]*Snapshot, error) {
	keys, err := s.kv.ScanKeys(ctx, "flight_opint.*")
	if err != nil {
		return nil, fmt.Errorf("scanning operational intent snapshots: %w", err)
	}

	snaps := make([]*Snapshot, 0, len(keys))
	for _, key := range keys {
		data, err := s.kv.Get(ctx, key)
		if err != nil {
			continue // expired between scan and get; skip rather than fail the batch
		}
		snap, err := Unmarshal(data)
		if err != nil {
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
