package storage

import (
	"context"
	"time"
)

// Storage abstracts persistence for the charge ledger.
type Storage interface {
	SaveCharge(ctx context.Context, rec ChargeRecord) error
	// GetCharge returns nil, nil when no record has the given id.
	GetCharge(ctx context.Context, id string) (*ChargeRecord, error)
	// ListCharges returns the newest records first. limit <= 0 means no limit.
	ListCharges(ctx context.Context, limit int) ([]ChargeRecord, error)
	// PruneCharges deletes records created before the cutoff.
	PruneCharges(ctx context.Context, before time.Time) (int64, error)

	Ping(ctx context.Context) error
	// Close releases any resources (no-op for in-memory).
	Close() error
}
