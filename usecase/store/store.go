package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/internal/idgen"
	"github.com/taskdesk/backend/repository"
)

// Store is the single source of truth for tickets and the assignee roster.
// Every mutation loads the current snapshot, applies one change, and
// persists the whole document back before returning. Mutations serialize on
// a mutex; the model is single-writer and is not safe behind concurrent
// replicas sharing one snapshot store.
type Store struct {
	repo   repository.SnapshotRepository
	ids    idgen.Generator
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

func New(repo repository.SnapshotRepository, ids idgen.Generator, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = idgen.NewClock()
	}
	return &Store{
		repo:   repo,
		ids:    ids,
		logger: logger,
		now:    time.Now,
	}
}

// CreateTaskInput carries the caller-supplied fields for a new ticket.
type CreateTaskInput struct {
	Text        string
	Assignee    string
	Priority    domain.Priority
	Department  string
	ContactName string
	RoomNumber  string
}

// TaskPatch is the allow-listed partial update. Nil fields are left
// untouched; unknown payload keys never reach the record.
type TaskPatch struct {
	Text        *string
	Assignee    *string
	Priority    *domain.Priority
	Department  *string
	ContactName *string
	RoomNumber  *string
}

// CreateTask validates required fields, stamps identity and timestamps,
// appends the ticket and persists the snapshot.
func (s *Store) CreateTask(ctx context.Context, sess domain.Session, input CreateTaskInput) (*domain.Task, error) {
	input.Text = strings.TrimSpace(input.Text)
	input.Assignee = strings.TrimSpace(input.Assignee)
	input.Department = strings.TrimSpace(input.Department)
	input.ContactName = strings.TrimSpace(input.ContactName)
	input.RoomNumber = strings.TrimSpace(input.RoomNumber)

	var missing []string
	if input.Text == "" {
		missing = append(missing, "text")
	}
	if input.Department == "" {
		missing = append(missing, "department")
	}
	if input.ContactName == "" {
		missing = append(missing, "contact_name")
	}
	if input.RoomNumber == "" {
		missing = append(missing, "room_number")
	}
	if len(missing) > 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}

	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unknown priority %q", input.Priority))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	if input.Assignee != "" && !snap.HasAssignee(input.Assignee) {
		return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unknown assignee %q", input.Assignee))
	}

	task := domain.Task{
		ID:          s.ids.Next(),
		Text:        input.Text,
		Assignee:    input.Assignee,
		Status:      domain.StatusNew,
		Priority:    input.Priority,
		Author:      sess.Name,
		Department:  input.Department,
		ContactName: input.ContactName,
		RoomNumber:  input.RoomNumber,
		CreatedAt:   s.now(),
	}

	snap.Tasks = append(snap.Tasks, task)
	if err := s.repo.Save(ctx, snap); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask merges the patch over the existing record. Once a ticket is
// done only an admin may touch it.
func (s *Store) UpdateTask(ctx context.Context, sess domain.Session, id int64, patch TaskPatch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := snap.TaskByID(id)
	if idx < 0 {
		return nil, domain.ErrTaskNotFound
	}

	task := &snap.Tasks[idx]
	if task.IsDone() && !sess.Admin {
		return nil, domain.NewError(domain.ErrCodeForbidden, "completed tasks may only be changed by an admin")
	}

	if patch.Text != nil {
		task.Text = *patch.Text
	}
	if patch.Assignee != nil {
		assignee := strings.TrimSpace(*patch.Assignee)
		if assignee != "" && !snap.HasAssignee(assignee) {
			return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unknown assignee %q", assignee))
		}
		task.Assignee = assignee
	}
	if patch.Priority != nil {
		if !patch.Priority.IsValid() {
			return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unknown priority %q", *patch.Priority))
		}
		task.Priority = *patch.Priority
	}
	if patch.Department != nil {
		task.Department = *patch.Department
	}
	if patch.ContactName != nil {
		task.ContactName = *patch.ContactName
	}
	if patch.RoomNumber != nil {
		task.RoomNumber = *patch.RoomNumber
	}

	if err := s.repo.Save(ctx, snap); err != nil {
		return nil, err
	}
	updated := *task
	return &updated, nil
}

// SetStatus drives the ticket lifecycle. Completing a ticket requires a
// valid elapsed time; leaving the done state requires an admin.
func (s *Store) SetStatus(ctx context.Context, sess domain.Session, id int64, status domain.Status, elapsed *domain.Elapsed) (*domain.Task, error) {
	if !status.IsValid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unknown status %q", status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := snap.TaskByID(id)
	if idx < 0 {
		return nil, domain.ErrTaskNotFound
	}

	task := &snap.Tasks[idx]
	if task.IsDone() && !sess.Admin {
		return nil, domain.NewError(domain.ErrCodeForbidden, "completed tasks may only be changed by an admin")
	}

	switch status {
	case domain.StatusInProgress:
		if task.AcceptedAt == nil {
			now := s.now()
			task.AcceptedAt = &now
		}
		task.CompletedAt = nil
		task.TimeSpent = nil
	case domain.StatusNew:
		// AcceptedAt is kept: it records that work once started.
		task.CompletedAt = nil
		task.TimeSpent = nil
	case domain.StatusDone:
		if elapsed == nil || !elapsed.IsValid() {
			return nil, domain.NewError(domain.ErrCodeInvalid, "elapsed time required: hours >= 0 and 0 <= minutes < 60")
		}
		now := s.now()
		spent := elapsed.String()
		task.CompletedAt = &now
		task.TimeSpent = &spent
	}
	task.Status = status

	if err := s.repo.Save(ctx, snap); err != nil {
		return nil, err
	}
	updated := *task
	return &updated, nil
}

// DeleteTask removes the ticket. A missing id is success, not an error.
func (s *Store) DeleteTask(ctx context.Context, sess domain.Session, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}

	idx := snap.TaskByID(id)
	if idx < 0 {
		return nil
	}
	if snap.Tasks[idx].IsDone() && !sess.Admin {
		return domain.NewError(domain.ErrCodeForbidden, "completed tasks may only be deleted by an admin")
	}

	snap.Tasks = slices.Delete(snap.Tasks, idx, idx+1)
	return s.repo.Save(ctx, snap)
}

// AddAssignee appends a unique trimmed name to the roster. Admin only.
func (s *Store) AddAssignee(ctx context.Context, sess domain.Session, name string) error {
	if !sess.Admin {
		return domain.ErrAdminOnly
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewError(domain.ErrCodeInvalid, "assignee name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if snap.HasAssignee(name) {
		return domain.NewError(domain.ErrCodeConflict, fmt.Sprintf("assignee %q already exists", name))
	}

	snap.Assignees = append(snap.Assignees, name)
	return s.repo.Save(ctx, snap)
}

// RemoveAssignee drops the name from the roster and moves every ticket
// pointing at it back to the general pool, in one snapshot write. Removing
// a name that is not on the roster is success. Admin only.
func (s *Store) RemoveAssignee(ctx context.Context, sess domain.Session, name string) ([]string, error) {
	if !sess.Admin {
		return nil, domain.ErrAdminOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.HasAssignee(name) {
		return slices.Clone(snap.Assignees), nil
	}

	snap.Assignees = slices.DeleteFunc(snap.Assignees, func(a string) bool { return a == name })

	reassigned := 0
	for i := range snap.Tasks {
		if snap.Tasks[i].Assignee == name {
			snap.Tasks[i].Assignee = ""
			reassigned++
		}
	}

	if err := s.repo.Save(ctx, snap); err != nil {
		return nil, err
	}
	s.logger.Info("assignee removed",
		zap.String("name", name),
		zap.Int("tasks_reassigned", reassigned),
	)
	return slices.Clone(snap.Assignees), nil
}

// Data returns a detached copy of the current tickets and roster.
func (s *Store) Data(ctx context.Context) ([]domain.Task, []string, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	clone := snap.Clone()
	return clone.Tasks, clone.Assignees, nil
}

// CurrentUser resolves the caller's record from the static user list, so
// responses can carry the full account summary rather than just a name.
func (s *Store) CurrentUser(ctx context.Context, sess domain.Session) (*domain.User, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	user := snap.UserByID(sess.UserID)
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	out := *user
	return &out, nil
}
