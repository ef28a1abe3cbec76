package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryBackend keeps records in process memory. It is the default
// backend and the test double for the Redis one.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]*Record
	closed  bool
}

// NewMemoryBackend creates an empty in-memory archive.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]*Record)}
}

// Save implements Backend.
func (b *MemoryBackend) Save(_ context.Context, rec *Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	cp := *rec
	b.records[rec.Result.SessionID] = &cp
	return nil
}

// Load implements Backend.
func (b *MemoryBackend) Load(_ context.Context, sessionID string) (*Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}
	rec, ok := b.records[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// List implements Backend.
func (b *MemoryBackend) List(_ context.Context, customerID string, limit int) ([]*Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}

	var out []*Record
	for _, rec := range b.records {
		if rec.CustomerID == customerID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ArchivedAt.After(out[j].ArchivedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Purge implements Backend.
func (b *MemoryBackend) Purge(_ context.Context, cutoff time.Time) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}

	removed := 0
	for id, rec := range b.records {
		if rec.ArchivedAt.Before(cutoff) {
			delete(b.records, id)
			removed++
		}
	}
	return removed, nil
}

// Close implements Backend.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.records = nil
	return nil
}
