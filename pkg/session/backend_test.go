package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/triagekit-dev/triagekit/support"
)

func testRecord(sessionID, customerID string, archivedAt time.Time) *Record {
	return &Record{
		Result: &support.Result{
			SessionID:        sessionID,
			ResolutionStatus: support.StatusResolved,
			QueryType:        support.QueryGeneral,
			UrgencyLevel:     support.UrgencyMedium,
			SentimentLevel:   support.SentimentNeutral,
		},
		CustomerID: customerID,
		ArchivedAt: archivedAt,
	}
}

func setupMiniredis(t *testing.T) *RedisBackend {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisBackendFromClient(client, "test:", 0)

	t.Cleanup(func() {
		_ = backend.Close()
	})
	return backend
}

// backends lists every Backend implementation under one contract test.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"redis":  setupMiniredis(t),
	}
}

func TestBackend_SaveAndLoad(t *testing.T) {
	ctx := context.Background()

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := testRecord("sess-1", "cust-1", time.Now().UTC())
			if err := backend.Save(ctx, rec); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, err := backend.Load(ctx, "sess-1")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.Result.SessionID != "sess-1" {
				t.Errorf("session ID = %s, want sess-1", loaded.Result.SessionID)
			}
			if loaded.CustomerID != "cust-1" {
				t.Errorf("customer ID = %s, want cust-1", loaded.CustomerID)
			}
			if loaded.Result.ResolutionStatus != support.StatusResolved {
				t.Errorf("status = %s, want resolved", loaded.Result.ResolutionStatus)
			}
		})
	}
}

func TestBackend_LoadNotFound(t *testing.T) {
	ctx := context.Background()

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := backend.Load(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestBackend_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				rec := testRecord(fmt.Sprintf("sess-%d", i), "cust-1", base.Add(time.Duration(i)*time.Minute))
				if err := backend.Save(ctx, rec); err != nil {
					t.Fatalf("Save failed: %v", err)
				}
			}
			// A different customer's record must not appear.
			if err := backend.Save(ctx, testRecord("sess-other", "cust-2", base)); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			records, err := backend.List(ctx, "cust-1", 0)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(records) != 3 {
				t.Fatalf("List returned %d records, want 3", len(records))
			}
			if records[0].Result.SessionID != "sess-2" || records[2].Result.SessionID != "sess-0" {
				t.Errorf("records not newest first: %s .. %s",
					records[0].Result.SessionID, records[2].Result.SessionID)
			}

			limited, err := backend.List(ctx, "cust-1", 2)
			if err != nil {
				t.Fatalf("List with limit failed: %v", err)
			}
			if len(limited) != 2 {
				t.Errorf("limited List returned %d records, want 2", len(limited))
			}
		})
	}
}

func TestBackend_Purge(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			stale := testRecord("sess-old", "cust-1", now.Add(-48*time.Hour))
			fresh := testRecord("sess-new", "cust-1", now)
			for _, rec := range []*Record{stale, fresh} {
				if err := backend.Save(ctx, rec); err != nil {
					t.Fatalf("Save failed: %v", err)
				}
			}

			removed, err := backend.Purge(ctx, now.Add(-24*time.Hour))
			if err != nil {
				t.Fatalf("Purge failed: %v", err)
			}
			if removed != 1 {
				t.Errorf("Purge removed %d records, want 1", removed)
			}

			if _, err := backend.Load(ctx, "sess-old"); !errors.Is(err, ErrNotFound) {
				t.Errorf("stale record still loadable, err = %v", err)
			}
			if _, err := backend.Load(ctx, "sess-new"); err != nil {
				t.Errorf("fresh record lost: %v", err)
			}
		})
	}
}

func TestBackend_ClosedOperationsFail(t *testing.T) {
	ctx := context.Background()

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := backend.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if err := backend.Save(ctx, testRecord("sess-1", "cust-1", time.Now())); !errors.Is(err, ErrClosed) {
				t.Errorf("Save after Close = %v, want ErrClosed", err)
			}
			if _, err := backend.Load(ctx, "sess-1"); !errors.Is(err, ErrClosed) {
				t.Errorf("Load after Close = %v, want ErrClosed", err)
			}
		})
	}
}

func TestMemoryBackend_CopiesOnLoad(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	rec := testRecord("sess-1", "cust-1", time.Now())
	if err := backend.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := backend.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	loaded.CustomerID = "mutated"

	again, err := backend.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if again.CustomerID != "cust-1" {
		t.Errorf("stored record mutated through a loaded copy: %s", again.CustomerID)
	}
}

func TestRedisBackend_StaleIndexEntrySkipped(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisBackendFromClient(client, "test:", time.Minute)
	t.Cleanup(func() { _ = backend.Close() })

	ctx := context.Background()
	if err := backend.Save(ctx, testRecord("sess-1", "cust-1", time.Now())); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Expire the record key; the customer index still references it.
	mr.FastForward(2 * time.Minute)

	records, err := backend.List(ctx, "cust-1", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List returned %d records for expired session, want 0", len(records))
	}
}

func TestNewRedisBackend_RequiresAddr(t *testing.T) {
	if _, err := NewRedisBackend(RedisConfig{}); err == nil {
		t.Error("expected error for empty address")
	}
}
