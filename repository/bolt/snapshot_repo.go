package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bboltlib "go.etcd.io/bbolt"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
)

const defaultBucket = "snapshot"

var documentKey = []byte("document")

type snapshotRepository struct {
	db     *bboltlib.DB
	bucket []byte
}

// NewSnapshotRepository opens the bbolt file and ensures the snapshot
// bucket exists.
func NewSnapshotRepository(path string, bucket string) (repository.SnapshotRepository, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "create snapshot directory", err)
	}
	db, err := bboltlib.Open(path, 0o600, &bboltlib.Options{Timeout: time.Second})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "open snapshot database", err)
	}

	if err := db.Update(func(tx *bboltlib.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, domain.WrapError(domain.ErrCodePersistence, "ensure snapshot bucket", err)
	}

	return &snapshotRepository{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

func (r *snapshotRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	err := r.db.View(func(tx *bboltlib.Tx) error {
		if v := tx.Bucket(r.bucket).Get(documentKey); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "read snapshot document", err)
	}
	if raw == nil {
		return domain.DefaultSnapshot(), nil
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "decode snapshot document", err)
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
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap == nil {
		return domain.ErrInvalidPayload
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "encode snapshot", err)
	}

	if err := r.db.Update(func(tx *bboltlib.Tx) error {
		return tx.Bucket(r.bucket).Put(documentKey, raw)
	}); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "write snapshot document", err)
	}
	return nil
}

func (r *snapshotRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.View(func(tx *bboltlib.Tx) error {
		if tx.Bucket(r.bucket) == nil {
			return bboltlib.ErrBucketNotFound
		}
		return nil
	})
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "snapshot database unavailable", err)
	}
	return nil
}

func (r *snapshotRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
