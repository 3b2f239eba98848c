package domain

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a ticket.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority is the ticket urgency level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a ticket record. An empty Assignee means the ticket sits
// in the general (unassigned) pool.
type Task struct {
	ID          int64      `json:"id"`
	Text        string     `json:"text"`
	Assignee    string     `json:"assignee,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Author      string     `json:"author"`
	Department  string     `json:"department,omitempty"`
	ContactName string     `json:"contact_name,omitempty"`
	RoomNumber  string     `json:"room_number,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	TimeSpent   *string    `json:"time_spent,omitempty"`
}

func (t *Task) IsDone() bool {
	return t != nil && t.Status == StatusDone
}

// Elapsed is the amount of work time reported when a ticket is completed.
type Elapsed struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func (e Elapsed) IsValid() bool {
	return e.Hours >= 0 && e.Minutes >= 0 && e.Minutes < 60
}

// String renders the elapsed time in the display form used across the
// product, e.g. "1ч 30м".
func (e Elapsed) String() string {
	return fmt.Sprintf("%dч %dм", e.Hours, e.Minutes)
}
