package transport

import "github.com/taskdesk/backend/domain"

type LoginRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type TaskCreateRequest struct {
	Text        string `json:"text"`
	Assignee    string `json:"assignee"`
	Priority    string `json:"priority"`
	Department  string `json:"department"`
	ContactName string `json:"contact_name"`
	RoomNumber  string `json:"room_number"`
}

// TaskPatchRequest mirrors the store's allow-listed patch: absent keys stay
// untouched, unknown keys are dropped during decoding.
type TaskPatchRequest struct {
	Text        *string `json:"text"`
	Assignee    *string `json:"assignee"`
	Priority    *string `json:"priority"`
	Department  *string `json:"department"`
	ContactName *string `json:"contact_name"`
	RoomNumber  *string `json:"room_number"`
}

type StatusRequest struct {
	Status  string `json:"status"`
	Hours   *int   `json:"hours"`
	Minutes *int   `json:"minutes"`
}

type AssigneeRequest struct {
	Name string `json:"name"`
}

// UserSummary is the public projection of a user record; the password
// never leaves the snapshot.
type UserSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

func NewUserSummary(u *domain.User) UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
	}
}

type LoginResponse struct {
	User  UserSummary `json:"user"`
	Token string      `json:"token"`
}

type DataResponse struct {
	Tasks       []domain.Task `json:"tasks"`
	Assignees   []string      `json:"assignees"`
	CurrentUser UserSummary   `json:"current_user"`
}

type AssigneeListResponse struct {
	Assignees []string `json:"assignees"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
