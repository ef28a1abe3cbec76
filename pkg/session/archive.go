package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/triagekit-dev/triagekit/support"
)

const (
	// DefaultRetention is how long records stay in the archive.
	DefaultRetention = 7 * 24 * time.Hour

	// defaultSweepSchedule purges expired records hourly.
	defaultSweepSchedule = "@hourly"
)

// Archive wraps a Backend with retention sweeping.
type Archive struct {
	backend   Backend
	retention time.Duration
	cron      *cron.Cron
}

// ArchiveOption configures an Archive.
type ArchiveOption func(*Archive)

// WithRetention overrides the default record retention.
func WithRetention(d time.Duration) ArchiveOption {
	return func(a *Archive) {
		a.retention = d
	}
}

// NewArchive creates an archive over backend and starts the hourly
// retention sweep.
func NewArchive(backend Backend, opts ...ArchiveOption) (*Archive, error) {
	a := &Archive{
		backend:   backend,
		retention: DefaultRetention,
		cron:      cron.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if _, err := a.cron.AddFunc(defaultSweepSchedule, a.sweep); err != nil {
		return nil, fmt.Errorf("schedule retention sweep: %w", err)
	}
	a.cron.Start()
	return a, nil
}

// Store archives one completed session result.
func (a *Archive) Store(ctx context.Context, customerID string, result *support.Result) error {
	if !result.ResolutionStatus.Terminal() {
		return fmt.Errorf("refusing to archive non-terminal session %s (%s)",
			result.SessionID, result.ResolutionStatus)
	}
	return a.backend.Save(ctx, &Record{
		Result:     result,
		CustomerID: customerID,
		ArchivedAt: time.Now(),
	})
}

// Get retrieves an archived session by ID.
func (a *Archive) Get(ctx context.Context, sessionID string) (*Record, error) {
	return a.backend.Load(ctx, sessionID)
}

// History returns a customer's recent sessions, newest first.
func (a *Archive) History(ctx context.Context, customerID string, limit int) ([]*Record, error) {
	return a.backend.List(ctx, customerID, limit)
}

// sweep purges records past retention.
func (a *Archive) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := a.backend.Purge(ctx, time.Now().Add(-a.retention))
	if err != nil {
		log.Printf("Session archive sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Session archive sweep removed %d expired records", removed)
	}
}

// Close stops the sweeper and closes the backend.
func (a *Archive) Close() error {
	a.cron.Stop()
	return a.backend.Close()
}
