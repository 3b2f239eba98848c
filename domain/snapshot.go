package domain

// Snapshot is the whole persisted document. Every mutation rewrites it in
// full; there is no partial update.
type Snapshot struct {
	Tasks     []Task   `json:"tasks"`
	Assignees []string `json:"assignees"`
	Users     []User   `json:"users"`
}

// DefaultSnapshot seeds a fresh installation with the stock assignee roster
// and the two stock accounts.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		Tasks:     []Task{},
		Assignees: []string{"Иванов И.И.", "Петров П.П.", "Сидоров С.С."},
		Users: []User{
			{ID: 1, FirstName: "Admin", LastName: "", IsAdmin: true, Password: "admin123"},
			{ID: 2, FirstName: "Иван", LastName: "Иванов", IsAdmin: false, Password: "user123"},
		},
	}
}

// Clone returns a deep copy so read paths never alias store-owned slices.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Tasks:     make([]Task, len(s.Tasks)),
		Assignees: make([]string, len(s.Assignees)),
		Users:     make([]User, len(s.Users)),
	}
	copy(out.Tasks, s.Tasks)
	copy(out.Assignees, s.Assignees)
	copy(out.Users, s.Users)
	return out
}

// UserByID looks up an account in the static user list.
func (s *Snapshot) UserByID(id int64) *User {
	if s == nil {
		return nil
	}
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// TaskByID returns the index of the task with the given id, or -1.
func (s *Snapshot) TaskByID(id int64) int {
	if s == nil {
		return -1
	}
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// HasAssignee reports whether the name is on the current roster.
func (s *Snapshot) HasAssignee(name string) bool {
	if s == nil {
		return false
	}
	for _, a := range s.Assignees {
		if a == name {
			return true
		}
	}
	return false
}
