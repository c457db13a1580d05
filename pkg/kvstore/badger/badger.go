// Package badger provides a durable, embedded kvstore.KVStream backed by
// BadgerDB. It is the store used in production deployments; pkg/kvstore/memory
// is used for local development and tests.
package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/flightblender/coordination-engine/pkg/blendererrors"
	"github.com/flightblender/coordination-engine/pkg/kvstore"
)

// Store is a BadgerDB-backed implementation of kvstore.KVStream.
type Store struct {
	db *badgerdb.DB
}

// Open opens (creating if necessary) a BadgerDB database rooted at dir.
func Open(dir string) (*Store, error) {
	opts := badgerdb.DefaultOptions(dir).WithLogger(nil)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ============================================================================
// CRUD Operations
// ============================================================================
//
// These methods are thin wrappers around BadgerDB with no business logic;
// callers in pkg/flightdecl, pkg/opint, and pkg/scheduler own the semantics
// of what gets stored under which key.

func keyKV(key string) []byte {
	return []byte("kv:" + key)
}

type storedValue struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sv storedValue
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyKV(key))
		if err == badgerdb.ErrKeyNotFound {
			return blendererrors.NewNotFoundError(key, "kv entry")
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sv)
		})
	})
	if err != nil {
		return nil, err
	}

	if !sv.ExpiresAt.IsZero() && time.Now().After(sv.ExpiresAt) {
		_ = s.Delete(ctx, key)
		return nil, blendererrors.NewNotFoundError(key, "kv entry")
	}

	return sv.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sv := storedValue{Value: value}
	if ttl > 0 {
		sv.ExpiresAt = time.Now().Add(ttl)
	}
	encoded, err := json.Marshal(sv)
	if err != nil {
		return fmt.Errorf("failed to encode kv entry: %w", err)
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		entry := badgerdb.NewEntry(keyKV(key), encoded)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (s *Store) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var created bool
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(keyKV(key))
		if err == nil {
			created = false
			return nil
		}
		if err != badgerdb.ErrKeyNotFound {
			return err
		}

		sv := storedValue{Value: value}
		if ttl > 0 {
			sv.ExpiresAt = time.Now().Add(ttl)
		}
		encoded, encErr := json.Marshal(sv)
		if encErr != nil {
			return encErr
		}

		entry := badgerdb.NewEntry(keyKV(key), encoded)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		if setErr := txn.SetEntry(entry); setErr != nil {
			return setErr
		}
		created = true
		return nil
	})
	return created, err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		err := txn.Delete(keyKV(key))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

func (s *Store) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matched []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		prefix := keyKV("")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := strings.TrimPrefix(string(it.Item().Key()), "kv:")
			if ok, _ := path.Match(pattern, key); ok {
				matched = append(matched, key)
			}
		}
		return nil
	})
	return matched, err
}

// ============================================================================
// Stream Operations
// ============================================================================
//
// Streams are encoded as "stream:<name>:<seq>" keys with a zero-padded,
// monotonically increasing sequence number so BadgerDB's prefix iteration
// naturally returns entries in insertion order. Consumer group read cursors
// are stored under "group:<stream>:<group>".

func keyStreamSeq(stream string) []byte {
	return []byte("streamseq:" + stream)
}

func keyStreamEntry(stream, id string) []byte {
	return []byte("stream:" + stream + ":" + id)
}

func keyGroupCursor(stream, group string) []byte {
	return []byte("group:" + stream + ":" + group)
}

func (s *Store) nextStreamID(txn *badgerdb.Txn, stream string) (string, error) {
	seq := uint64(0)
	item, err := txn.Get(keyStreamSeq(stream))
	if err == nil {
		if valErr := item.Value(func(val []byte) error {
			seq = binary.BigEndian.Uint64(val)
			return nil
		}); valErr != nil {
			return "", valErr
		}
	} else if err != badgerdb.ErrKeyNotFound {
		return "", err
	}

	seq++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	if err := txn.Set(keyStreamSeq(stream), buf); err != nil {
		return "", err
	}

	return fmt.Sprintf("%020d-%020d", time.Now().UnixMilli(), seq), nil
}

func (s *Store) XAdd(ctx context.Context, stream, id string, fields map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var assignedID string
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		var genErr error
		if id == "" || id == "*" {
			assignedID, genErr = s.nextStreamID(txn, stream)
		} else {
			assignedID = id
		}
		if genErr != nil {
			return genErr
		}

		encoded, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		return txn.Set(keyStreamEntry(stream, assignedID), encoded)
	})
	return assignedID, err
}

func (s *Store) readStreamEntries(txn *badgerdb.Txn, stream, start, end string, limit int) ([]kvstore.StreamEntry, error) {
	var entries []kvstore.StreamEntry

	it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte("stream:" + stream + ":")
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		fullKey := string(it.Item().Key())
		id := strings.TrimPrefix(fullKey, "stream:"+stream+":")

		if start != "-" && strings.Compare(id, start) < 0 {
			continue
		}
		if end != "+" && strings.Compare(id, end) > 0 {
			continue
		}

		var fields map[string]string
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &fields)
		}); err != nil {
			return nil, err
		}

		entries = append(entries, kvstore.StreamEntry{ID: id, Fields: fields})
		if limit > 0 && len(entries) >= limit {
			break
		}
	}

	return entries, nil
}

func (s *Store) XRange(ctx context.Context, stream, start, end string, count int) ([]kvstore.StreamEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []kvstore.StreamEntry
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var rangeErr error
		entries, rangeErr = s.readStreamEntries(txn, stream, start, end, count)
		return rangeErr
	})
	return entries, err
}

func (s *Store) XTrim(ctx context.Context, stream string, maxLen int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		entries, err := s.readStreamEntries(txn, stream, "-", "+", 0)
		if err != nil {
			return err
		}
		if int64(len(entries)) <= maxLen {
			return nil
		}

		toDrop := entries[:int64(len(entries))-maxLen]
		for _, e := range toDrop {
			if err := txn.Delete(keyStreamEntry(stream, e.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) XReadGroup(ctx context.Context, group, consumer, stream string, count int) ([]kvstore.StreamEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []kvstore.StreamEntry
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		cursor := ""
		item, err := txn.Get(keyGroupCursor(stream, group))
		if err == nil {
			if valErr := item.Value(func(val []byte) error {
				cursor = string(val)
				return nil
			}); valErr != nil {
				return valErr
			}
		} else if err != badgerdb.ErrKeyNotFound {
			return err
		}

		start := "-"
		if cursor != "" {
			start = cursor + "\x00" // exclusive start: anything strictly greater
		}

		entries, rangeErr := s.readStreamEntries(txn, stream, start, "+", count)
		if rangeErr != nil {
			return rangeErr
		}
		if len(entries) == 0 {
			return nil
		}

		result = entries
		return txn.Set(keyGroupCursor(stream, group), []byte(entries[len(entries)-1].ID))
	})
	return result, err
}

var _ kvstore.KVStream = (*Store)(nil)
