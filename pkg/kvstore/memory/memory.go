// Package memory provides an in-process, non-persistent kvstore.KVStream
// implementation. It is the default store for local development and tests;
// production deployments use pkg/kvstore/badger instead.
package memory

import (
	"context"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/flightblender/coordination-engine/pkg/blendererrors"
	"github.com/flightblender/coordination-engine/pkg/kvstore"
)

// Store is an in-memory implementation of kvstore.KVStream guarded by a
// single RWMutex. It is safe for concurrent use but offers no durability.
type Store struct {
	mu      sync.RWMutex
	entries map[string]kvstore.Entry

	streamsMu sync.Mutex
	streams   map[string][]kvstore.StreamEntry
	groups    map[string]map[string]int // stream -> group -> next unread index
	seq       int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		entries: make(map[string]kvstore.Entry),
		streams: make(map[string][]kvstore.StreamEntry),
		groups:  make(map[string]map[string]int),
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || isExpired(entry) {
		return nil, blendererrors.NewNotFoundError(key, "kv entry")
	}
	return entry.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := kvstore.Entry{Key: key, Value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *Store) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok && !isExpired(existing) {
		return false, nil
	}

	entry := kvstore.Entry{Key: key, Value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = entry
	return true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *Store) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []string
	for key, entry := range s.entries {
		if isExpired(entry) {
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)
	return matched, nil
}

func (s *Store) Close() error {
	return nil
}

func isExpired(e kvstore.Entry) bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// XAdd appends fields to stream, assigning a monotonically increasing ID
// when id is empty or "*".
func (s *Store) XAdd(ctx context.Context, stream, id string, fields map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()

	if id == "" || id == "*" {
		s.seq++
		id = strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + strconv.FormatInt(s.seq, 10)
	}

	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}

	s.streams[stream] = append(s.streams[stream], kvstore.StreamEntry{ID: id, Fields: copied})
	return id, nil
}

func (s *Store) XRange(ctx context.Context, stream, start, end string, count int) ([]kvstore.StreamEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()

	entries := s.streams[stream]
	var result []kvstore.StreamEntry
	for _, e := range entries {
		if start != "-" && strings.Compare(e.ID, start) < 0 {
			continue
		}
		if end != "+" && strings.Compare(e.ID, end) > 0 {
			continue
		}
		result = append(result, e)
		if count > 0 && len(result) >= count {
			break
		}
	}
	return result, nil
}

func (s *Store) XTrim(ctx context.Context, stream string, maxLen int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()

	entries := s.streams[stream]
	if int64(len(entries)) <= maxLen {
		return nil
	}
	s.streams[stream] = entries[int64(len(entries))-maxLen:]
	return nil
}

func (s *Store) XReadGroup(ctx context.Context, group, consumer, stream string, count int) ([]kvstore.StreamEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()

	groups, ok := s.groups[stream]
	if !ok {
		groups = make(map[string]int)
		s.groups[stream] = groups
	}

	offset := groups[group]
	entries := s.streams[stream]
	if offset >= len(entries) {
		return nil, nil
	}

	end := offset + count
	if count <= 0 || end > len(entries) {
		end = len(entries)
	}

	result := append([]kvstore.StreamEntry(nil), entries[offset:end]...)
	groups[group] = end
	return result, nil
}

var _ kvstore.KVStream = (*Store)(nil)
