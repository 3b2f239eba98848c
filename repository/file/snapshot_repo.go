package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
)

type snapshotRepository struct {
	path string
}

// NewSnapshotRepository creates a JSON-file-backed snapshot store. The
// parent directory is created on first use.
func NewSnapshotRepository(path string) (repository.SnapshotRepository, error) {
	if path == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "snapshot file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "create snapshot directory", err)
	}
	return &snapshotRepository{path: path}, nil
}

func (r *snapshotRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.DefaultSnapshot(), nil
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "read snapshot file", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "decode snapshot file", err)
	}
	if snap.Tasks == nil {
		snap.Tasks = []domain.Task{}
	}
	if snap.Assignees == nil {
		snap.Assignees = []string{}
	}
	return &snap, nil
}

// Save writes the document to a temp file and renames it over the target,
// so a crash mid-write never leaves a truncated snapshot behind.
func (r *snapshotRepository) Save(ctx context.Context, snap *domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap == nil {
		return domain.ErrInvalidPayload
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "encode snapshot", err)
	}

	tmp := fmt.Sprintf("%s.tmp", r.path)
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "write snapshot file", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "replace snapshot file", err)
	}
	return nil
}

func (r *snapshotRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(r.path)
	info, err := os.Stat(dir)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "snapshot directory unavailable", err)
	}
	if !info.IsDir() {
		return domain.NewError(domain.ErrCodePersistence, "snapshot path parent is not a directory")
	}
	return nil
}

func (r *snapshotRepository) Close() error {
	return nil
}
