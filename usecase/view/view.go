package view

import (
	"iter"
	"time"

	"github.com/taskdesk/backend/domain"
)

// Assignee filter sentinels. AssigneeGeneral selects tickets in the
// unassigned pool; AssigneeAll (or an empty value) disables the filter.
const (
	AssigneeAll     = "all"
	AssigneeGeneral = "general"
)

// DisplayLayout is the ru-RU style timestamp format used everywhere the
// product shows a date.
const DisplayLayout = "02.01.2006, 15:04:05"

// Criteria selects a subset of tickets. All set criteria are combined
// with AND.
type Criteria struct {
	// Date keeps only tickets created on the same calendar day, evaluated
	// in Location. Nil disables the filter.
	Date *time.Time
	// HideCompleted drops tickets in the done state.
	HideCompleted bool
	// Assignee keeps tickets assigned to the exact name; see the sentinels
	// above.
	Assignee string
	// Location is the viewer's zone for the Date comparison. Nil falls
	// back to time.Local.
	Location *time.Location
}

// FilterTasks returns a lazy, restartable sequence over the snapshot's
// tickets in insertion order. The input slice is never mutated.
func FilterTasks(tasks []domain.Task, c Criteria) iter.Seq[domain.Task] {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return func(yield func(domain.Task) bool) {
		for _, t := range tasks {
			if c.HideCompleted && t.Status == domain.StatusDone {
				continue
			}
			if !matchAssignee(t, c.Assignee) {
				continue
			}
			if c.Date != nil && !sameDay(t.CreatedAt, *c.Date, loc) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

func matchAssignee(t domain.Task, filter string) bool {
	switch filter {
	case "", AssigneeAll:
		return true
	case AssigneeGeneral:
		return t.Assignee == ""
	default:
		return t.Assignee == filter
	}
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Stats are status counts over the full, unfiltered collection.
type Stats struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
}

func ComputeStats(tasks []domain.Task) Stats {
	stats := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusNew:
			stats.New++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusDone:
			stats.Done++
		}
	}
	return stats
}

// FormatDisplayTimestamp renders a stored timestamp for display, or "-"
// when there is nothing to show. Pure and idempotent: a string already in
// display form passes through unchanged.
func FormatDisplayTimestamp(value any, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	switch v := value.(type) {
	case nil:
		return "-"
	case time.Time:
		return formatTime(v, loc)
	case *time.Time:
		if v == nil {
			return "-"
		}
		return formatTime(*v, loc)
	case string:
		if _, err := time.Parse(DisplayLayout, v); err == nil {
			return v
		}
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return formatTime(ts, loc)
		}
		return "-"
	default:
		return "-"
	}
}

func formatTime(ts time.Time, loc *time.Location) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.In(loc).Format(DisplayLayout)
}
