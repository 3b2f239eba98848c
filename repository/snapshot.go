package repository

import (
	"context"

	"github.com/taskdesk/backend/domain"
)

// SnapshotRepository is the persistence port for the whole document.
// Load on a store that has never been written returns the seeded default
// snapshot; Save replaces the entire document.
type SnapshotRepository interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snap *domain.Snapshot) error
	Ping(ctx context.Context) error
	Close() error
}
