package session

import (
	"context"
	"testing"
	"time"

	"github.com/triagekit-dev/triagekit/support"
)

func TestArchive_StoreAndGet(t *testing.T) {
	a, err := NewArchive(NewMemoryBackend())
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	result := &support.Result{
		SessionID:        "sess-1",
		ResolutionStatus: support.StatusResolved,
	}
	if err := a.Store(ctx, "cust-1", result); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	rec, err := a.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.CustomerID != "cust-1" {
		t.Errorf("customer ID = %s, want cust-1", rec.CustomerID)
	}
	if rec.ArchivedAt.IsZero() {
		t.Error("ArchivedAt not stamped")
	}
}

func TestArchive_RejectsNonTerminalResult(t *testing.T) {
	a, err := NewArchive(NewMemoryBackend())
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}
	defer a.Close()

	result := &support.Result{
		SessionID:        "sess-1",
		ResolutionStatus: support.StatusInProgress,
	}
	if err := a.Store(context.Background(), "cust-1", result); err == nil {
		t.Error("expected error archiving a non-terminal session")
	}
}

func TestArchive_History(t *testing.T) {
	a, err := NewArchive(NewMemoryBackend())
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	for _, id := range []string{"sess-1", "sess-2", "sess-3"} {
		result := &support.Result{SessionID: id, ResolutionStatus: support.StatusEscalated}
		if err := a.Store(ctx, "cust-1", result); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	records, err := a.History(ctx, "cust-1", 2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("History returned %d records, want 2", len(records))
	}
}

func TestArchive_RetentionOption(t *testing.T) {
	a, err := NewArchive(NewMemoryBackend(), WithRetention(time.Hour))
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}
	defer a.Close()

	if a.retention != time.Hour {
		t.Errorf("retention = %v, want 1h", a.retention)
	}
}

func TestArchive_SweepPurgesExpired(t *testing.T) {
	backend := NewMemoryBackend()
	a, err := NewArchive(backend, WithRetention(time.Hour))
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	stale := testRecord("sess-old", "cust-1", time.Now().Add(-2*time.Hour))
	if err := backend.Save(ctx, stale); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := a.Store(ctx, "cust-1", &support.Result{
		SessionID:        "sess-new",
		ResolutionStatus: support.StatusResolved,
	}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	a.sweep()

	if _, err := a.Get(ctx, "sess-old"); err == nil {
		t.Error("expired record survived the sweep")
	}
	if _, err := a.Get(ctx, "sess-new"); err != nil {
		t.Errorf("fresh record lost in sweep: %v", err)
	}
}
