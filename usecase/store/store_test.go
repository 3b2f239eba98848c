package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
	"github.com/taskdesk/backend/usecase/view"
)

// memoryRepo keeps the snapshot in memory, cloning on both sides so the
// store cannot alias "persisted" state.
type memoryRepo struct {
	snap    *domain.Snapshot
	saves   int
	loadErr error
	saveErr error
}

var _ repository.SnapshotRepository = (*memoryRepo)(nil)

func (m *memoryRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snap == nil {
		return domain.DefaultSnapshot(), nil
	}
	return m.snap.Clone(), nil
}

func (m *memoryRepo) Save(ctx context.Context, snap *domain.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = snap.Clone()
	m.saves++
	return nil
}

func (m *memoryRepo) Ping(ctx context.Context) error { return nil }
func (m *memoryRepo) Close() error                   { return nil }

var (
	adminSession = domain.Session{UserID: 1, Name: "Admin", Admin: true}
	userSession  = domain.Session{UserID: 2, Name: "A B", Admin: false}
)

func newTestStore(t *testing.T, snap *domain.Snapshot) (*Store, *memoryRepo) {
	t.Helper()
	repo := &memoryRepo{snap: snap}
	return New(repo, nil, nil), repo
}

func validInput() CreateTaskInput {
	return CreateTaskInput{
		Text:        "Fix outlet",
		Department:  "Lab1",
		ContactName: "Ivanov",
		RoomNumber:  "101",
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	st, repo := newTestStore(t, nil)

	task, err := st.CreateTask(context.Background(), userSession, validInput())
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if task.Status != domain.StatusNew {
		t.Errorf("status = %q, want %q", task.Status, domain.StatusNew)
	}
	if task.Priority != domain.PriorityMedium {
		t.Errorf("priority = %q, want %q", task.Priority, domain.PriorityMedium)
	}
	if task.Author != "A B" {
		t.Errorf("author = %q, want %q", task.Author, "A B")
	}
	if task.AcceptedAt != nil || task.CompletedAt != nil || task.TimeSpent != nil {
		t.Errorf("terminal timestamps must start nil: accepted=%v completed=%v spent=%v",
			task.AcceptedAt, task.CompletedAt, task.TimeSpent)
	}
	if task.ID == 0 {
		t.Error("id not assigned")
	}
	if task.CreatedAt.IsZero() {
		t.Error("createdAt not set")
	}
	if repo.saves != 1 {
		t.Errorf("saves = %d, want 1", repo.saves)
	}
	if len(repo.snap.Tasks) != 1 {
		t.Fatalf("persisted task count = %d, want 1", len(repo.snap.Tasks))
	}
}

func TestCreateTaskMissingFields(t *testing.T) {
	st, repo := newTestStore(t, nil)

	_, err := st.CreateTask(context.Background(), userSession, CreateTaskInput{
		Text:       "  ",
		Department: "Lab1",
	})
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("err = %v, want INVALID", err)
	}
	for _, field := range []string{"text", "contact_name", "room_number"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not name missing field %q", err, field)
		}
	}
	if strings.Contains(err.Error(), "department") {
		t.Errorf("error %q names a field that was present", err)
	}
	if repo.saves != 0 {
		t.Errorf("saves = %d, want 0 on validation failure", repo.saves)
	}
}

func TestCreateTaskUnknownAssignee(t *testing.T) {
	st, _ := newTestStore(t, nil)

	input := validInput()
	input.Assignee = "Nobody"
	_, err := st.CreateTask(context.Background(), userSession, input)
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("err = %v, want INVALID", err)
	}
}

func TestLifecycleTimestamps(t *testing.T) {
	st, _ := newTestStore(t, nil)
	ctx := context.Background()

	task, err := st.CreateTask(ctx, userSession, validInput())
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	task, err = st.SetStatus(ctx, userSession, task.ID, domain.StatusInProgress, nil)
	if err != nil {
		t.Fatalf("SetStatus in_progress: %v", err)
	}
	if task.AcceptedAt == nil {
		t.Fatal("in_progress task must have acceptedAt")
	}
	accepted := *task.AcceptedAt

	task, err = st.SetStatus(ctx, userSession, task.ID, domain.StatusDone, &domain.Elapsed{Hours: 1, Minutes: 30})
	if err != nil {
		t.Fatalf("SetStatus done: %v", err)
	}
	if task.CompletedAt == nil || task.TimeSpent == nil {
		t.Fatal("done task must have completedAt and timeSpent")
	}
	if *task.TimeSpent != "1ч 30м" {
		t.Errorf("timeSpent = %q, want %q", *task.TimeSpent, "1ч 30м")
	}
	if task.AcceptedAt == nil || !task.AcceptedAt.Equal(accepted) {
		t.Error("acceptedAt must survive completion")
	}
}

func TestToggleBackKeepsAcceptedAt(t *testing.T) {
	st, _ := newTestStore(t, nil)
	ctx := context.Background()

	task, _ := st.CreateTask(ctx, userSession, validInput())
	task, _ = st.SetStatus(ctx, userSession, task.ID, domain.StatusInProgress, nil)
	task, err := st.SetStatus(ctx, userSession, task.ID, domain.StatusNew, nil)
	if err != nil {
		t.Fatalf("SetStatus new: %v", err)
	}
	if task.AcceptedAt == nil {
		t.Error("acceptedAt records that work once started; it must not be cleared")
	}
	if task.CompletedAt != nil || task.TimeSpent != nil {
		t.Error("non-done task must not carry completion fields")
	}
}

func TestDoneRequiresValidElapsed(t *testing.T) {
	st, _ := newTestStore(t, nil)
	ctx := context.Background()

	task, _ := st.CreateTask(ctx, userSession, validInput())

	cases := []struct {
		name    string
		elapsed *domain.Elapsed
	}{
		{"nil elapsed", nil},
		{"negative hours", &domain.Elapsed{Hours: -1, Minutes: 0}},
		{"minutes overflow", &domain.Elapsed{Hours: 0, Minutes: 60}},
		{"negative minutes", &domain.Elapsed{Hours: 1, Minutes: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := st.SetStatus(ctx, userSession, task.ID, domain.StatusDone, tc.elapsed)
			if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Errorf("err = %v, want INVALID", err)
			}
		})
	}
}

func TestDoneTaskIsAdminOnly(t *testing.T) {
	st, _ := newTestStore(t, nil)
	ctx := context.Background()

	task, _ := st.CreateTask(ctx, userSession, validInput())
	if _, err := st.SetStatus(ctx, userSession, task.ID, domain.StatusDone, &domain.Elapsed{Hours: 2}); err != nil {
		t.Fatalf("SetStatus done: %v", err)
	}

	text := "rewritten"
	if _, err := st.UpdateTask(ctx, userSession, task.ID, TaskPatch{Text: &text}); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("non-admin update of done task: err = %v, want FORBIDDEN", err)
	}
	if _, err := st.SetStatus(ctx, userSession, task.ID, domain.StatusInProgress, nil); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("non-admin reopen of done task: err = %v, want FORBIDDEN", err)
	}
	if err := st.DeleteTask(ctx, userSession, task.ID); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("non-admin delete of done task: err = %v, want FORBIDDEN", err)
	}

	updated, err := st.UpdateTask(ctx, adminSession, task.ID, TaskPatch{Text: &text})
	if err != nil {
		t.Fatalf("admin update of done task: %v", err)
	}
	if updated.Text != text {
		t.Errorf("text = %q, want %q", updated.Text, text)
	}

	reopened, err := st.SetStatus(ctx, adminSession, task.ID, domain.StatusInProgress, nil)
	if err != nil {
		t.Fatalf("admin reopen: %v", err)
	}
	if reopened.CompletedAt != nil || reopened.TimeSpent != nil {
		t.Error("reopened task must not carry completion fields")
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	st, _ := newTestStore(t, nil)

	text := "x"
	_, err := st.UpdateTask(context.Background(), adminSession, 404, TaskPatch{Text: &text})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestDeleteTaskAbsentIsSuccess(t *testing.T) {
	st, repo := newTestStore(t, nil)

	if err := st.DeleteTask(context.Background(), userSession, 12345); err != nil {
		t.Fatalf("delete of absent id must succeed, got %v", err)
	}
	if repo.saves != 0 {
		t.Errorf("saves = %d, want 0 for a no-op delete", repo.saves)
	}
}

func TestAddAssignee(t *testing.T) {
	st, repo := newTestStore(t, &domain.Snapshot{Assignees: []string{"Alex"}})
	ctx := context.Background()

	if err := st.AddAssignee(ctx, userSession, "Maria"); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("non-admin add: err = %v, want FORBIDDEN", err)
	}
	if err := st.AddAssignee(ctx, adminSession, "   "); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("blank name: err = %v, want INVALID", err)
	}
	if err := st.AddAssignee(ctx, adminSession, "Maria"); err != nil {
		t.Fatalf("AddAssignee: %v", err)
	}
	if err := st.AddAssignee(ctx, adminSession, "  Maria "); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Errorf("duplicate (trimmed) name: err = %v, want CONFLICT", err)
	}
	if got := len(repo.snap.Assignees); got != 2 {
		t.Errorf("assignee count = %d, want 2", got)
	}
}

func TestRemoveAssigneeCascades(t *testing.T) {
	snap := &domain.Snapshot{
		Assignees: []string{"Alex", "Maria"},
		Tasks: []domain.Task{
			{ID: 1, Text: "a", Status: domain.StatusNew, Assignee: "Alex", Author: "A B", CreatedAt: time.Now()},
			{ID: 2, Text: "b", Status: domain.StatusInProgress, Assignee: "Alex", Author: "A B", CreatedAt: time.Now()},
			{ID: 3, Text: "c", Status: domain.StatusNew, Assignee: "Maria", Author: "A B", CreatedAt: time.Now()},
		},
	}
	st, repo := newTestStore(t, snap)

	assignees, err := st.RemoveAssignee(context.Background(), adminSession, "Alex")
	if err != nil {
		t.Fatalf("RemoveAssignee: %v", err)
	}
	if len(assignees) != 1 || assignees[0] != "Maria" {
		t.Errorf("roster = %v, want [Maria]", assignees)
	}
	if repo.saves != 1 {
		t.Errorf("saves = %d, want exactly one snapshot write", repo.saves)
	}
	for _, task := range repo.snap.Tasks {
		if task.Assignee == "Alex" {
			t.Errorf("task %d still references the removed assignee", task.ID)
		}
	}
	if repo.snap.Tasks[2].Assignee != "Maria" {
		t.Errorf("unrelated task was rewritten: %+v", repo.snap.Tasks[2])
	}

	count := 0
	for range view.FilterTasks(repo.snap.Tasks, view.Criteria{Assignee: "Alex"}) {
		count++
	}
	if count != 0 {
		t.Errorf("filter by removed assignee yielded %d tasks, want 0", count)
	}
}

func TestRemoveAssigneeAbsentIsSuccess(t *testing.T) {
	st, repo := newTestStore(t, &domain.Snapshot{Assignees: []string{"Alex"}})

	assignees, err := st.RemoveAssignee(context.Background(), adminSession, "Ghost")
	if err != nil {
		t.Fatalf("remove of absent name must succeed, got %v", err)
	}
	if len(assignees) != 1 {
		t.Errorf("roster = %v, want unchanged", assignees)
	}
	if repo.saves != 0 {
		t.Errorf("saves = %d, want 0 for a no-op removal", repo.saves)
	}
}

func TestPersistenceErrorSurfaces(t *testing.T) {
	repo := &memoryRepo{saveErr: domain.NewError(domain.ErrCodePersistence, "disk full")}
	st := New(repo, nil, nil)

	_, err := st.CreateTask(context.Background(), userSession, validInput())
	if !domain.IsDomainError(err, domain.ErrCodePersistence) {
		t.Fatalf("err = %v, want PERSISTENCE", err)
	}

	repo.loadErr = errors.New("backend gone")
	if _, _, err := st.Data(context.Background()); err == nil {
		t.Fatal("load failure must surface")
	}
}

func TestCurrentUser(t *testing.T) {
	st, _ := newTestStore(t, nil)
	ctx := context.Background()

	user, err := st.CurrentUser(ctx, adminSession)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.ID != 1 || !user.IsAdmin || user.FirstName != "Admin" {
		t.Errorf("user = %+v", user)
	}

	_, err = st.CurrentUser(ctx, domain.Session{UserID: 999})
	if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("unknown caller: err = %v, want UNAUTHORIZED", err)
	}
}

// Full round-trip of the reference scenario: create as a plain user, then
// complete with 1h30m.
func TestCompletionScenario(t *testing.T) {
	st, _ := newTestStore(t, nil)
	ctx := context.Background()

	task, err := st.CreateTask(ctx, userSession, CreateTaskInput{
		Text:        "Fix outlet",
		Department:  "Lab1",
		ContactName: "Ivanov",
		RoomNumber:  "101",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Author != "A B" || task.Status != domain.StatusNew {
		t.Fatalf("created task = %+v", task)
	}

	done, err := st.SetStatus(ctx, userSession, task.ID, domain.StatusDone, &domain.Elapsed{Hours: 1, Minutes: 30})
	if err != nil {
		t.Fatalf("SetStatus done: %v", err)
	}
	if done.TimeSpent == nil || *done.TimeSpent != "1ч 30м" {
		t.Errorf("timeSpent = %v, want 1ч 30м", done.TimeSpent)
	}
	if done.CompletedAt == nil {
		t.Error("completedAt must be set")
	}
}
