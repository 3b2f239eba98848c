package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
)

// The document lives in a single row; every Save replaces it wholesale,
// matching the single-writer snapshot model.
const documentRowID = 1

type snapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository returns a Postgres-backed implementation of
// SnapshotRepository storing the document as one JSONB row.
func NewSnapshotRepository(pool *pgxpool.Pool) repository.SnapshotRepository {
	return &snapshotRepository{pool: pool}
}

func (r *snapshotRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	const query = `
	SELECT doc
	FROM snapshots
	WHERE id = $1
	`
	var raw []byte
	err := r.pool.QueryRow(ctx, query, documentRowID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSnapshot(), nil
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "read snapshot row", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "decode snapshot row", err)
	}
	if snap.Tasks == nil {
		snap.Tasks = []domain.Task{}
	}
	if snap.Assignees == nil {
		snap.Assignees = []string{}
	}
	return &snap, nil
}

func (r *snapshotRepository) Save(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return domain.ErrInvalidPayload
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "encode snapshot", err)
	}

	const query = `
	INSERT INTO snapshots (id, doc, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, query, documentRowID, raw); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "write snapshot row", err)
	}
	return nil
}

func (r *snapshotRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return domain.NewError(domain.ErrCodePersistence, "postgres pool not initialized")
	}
	if err := r.pool.Ping(ctx); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "postgres unavailable", err)
	}
	return nil
}

func (r *snapshotRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}
