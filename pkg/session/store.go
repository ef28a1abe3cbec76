// Package session archives completed triage sessions so recent outcomes
// can be inspected after the fact. The archive is a bounded cache of the
// caller output surface, not durable storage: the memory backend is the
// default, the Redis backend suits multi-node deployments, and records
// expire on a sweep schedule either way.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/triagekit-dev/triagekit/support"
)

var (
	// ErrNotFound is returned when a session record doesn't exist.
	ErrNotFound = errors.New("session record not found")
	// ErrClosed is returned when operating on a closed backend.
	ErrClosed = errors.New("session archive is closed")
)

// Record is one archived session outcome.
type Record struct {
	Result     *support.Result `json:"result"`
	CustomerID string          `json:"customer_id"`
	ArchivedAt time.Time       `json:"archived_at"`
}

// Backend abstracts record storage. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Save stores a record keyed by its session ID.
	Save(ctx context.Context, rec *Record) error

	// Load retrieves a record by session ID.
	// Returns ErrNotFound if no record exists.
	Load(ctx context.Context, sessionID string) (*Record, error)

	// List returns records for a customer, newest first. limit <= 0
	// means no limit.
	List(ctx context.Context, customerID string, limit int) ([]*Record, error)

	// Purge removes records archived before the cutoff and reports how
	// many were removed.
	Purge(ctx context.Context, cutoff time.Time) (int, error)

	// Close releases backend resources.
	Close() error
}
