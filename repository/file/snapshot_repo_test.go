package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskdesk/backend/domain"
)

func TestLoadFreshReturnsDefaults(t *testing.T) {
	repo, err := NewSnapshotRepository(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatalf("NewSnapshotRepository: %v", err)
	}

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Users) == 0 || len(snap.Assignees) == 0 {
		t.Fatalf("fresh snapshot not seeded: %+v", snap)
	}
	if len(snap.Tasks) != 0 {
		t.Fatalf("fresh snapshot has tasks: %+v", snap.Tasks)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	repo, err := NewSnapshotRepository(path)
	if err != nil {
		t.Fatalf("NewSnapshotRepository: %v", err)
	}
	ctx := context.Background()

	accepted := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	snap := &domain.Snapshot{
		Tasks: []domain.Task{{
			ID:         1700000000000,
			Text:       "Fix outlet",
			Assignee:   "Alex",
			Status:     domain.StatusInProgress,
			Priority:   domain.PriorityHigh,
			Author:     "A B",
			CreatedAt:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			AcceptedAt: &accepted,
		}},
		Assignees: []string{"Alex"},
		Users:     []domain.User{{ID: 1, FirstName: "Admin", IsAdmin: true, Password: "admin123"}},
	}

	if err := repo.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Tasks) != 1 || loaded.Tasks[0].ID != snap.Tasks[0].ID {
		t.Fatalf("tasks = %+v", loaded.Tasks)
	}
	if loaded.Tasks[0].AcceptedAt == nil || !loaded.Tasks[0].AcceptedAt.Equal(accepted) {
		t.Errorf("acceptedAt = %v, want %v", loaded.Tasks[0].AcceptedAt, accepted)
	}
	if loaded.Users[0].Password != "admin123" {
		t.Error("the persisted document must carry passwords")
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	repo, err := NewSnapshotRepository(path)
	if err != nil {
		t.Fatalf("NewSnapshotRepository: %v", err)
	}

	if _, err := repo.Load(context.Background()); !domain.IsDomainError(err, domain.ErrCodePersistence) {
		t.Fatalf("err = %v, want PERSISTENCE", err)
	}
}

func TestPing(t *testing.T) {
	repo, err := NewSnapshotRepository(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatalf("NewSnapshotRepository: %v", err)
	}
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
