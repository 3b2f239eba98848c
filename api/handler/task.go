package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/api/transport"
	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/pkg/httpcontext"
	"github.com/taskdesk/backend/usecase/store"
	"github.com/taskdesk/backend/usecase/view"
)

type TaskHandler struct {
	baseHandler
	store    *store.Store
	location *time.Location
}

func NewTaskHandler(st *store.Store, location *time.Location, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	if location == nil {
		location = time.Local
	}
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       st,
		location:    location,
	}
}

// @Summary List tasks with optional filters
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	if _, ok := h.session(ctx); !ok {
		return
	}

	criteria := view.Criteria{
		Assignee:      string(ctx.QueryArgs().Peek("assignee")),
		HideCompleted: ctx.QueryArgs().GetBool("hide_completed"),
		Location:      h.location,
	}
	if raw := string(ctx.QueryArgs().Peek("date")); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, h.location)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "date must be YYYY-MM-DD", nil))
			return
		}
		criteria.Date = &day
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, _, err := h.store.Data(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	filtered := make([]domain.Task, 0, len(tasks))
	for t := range view.FilterTasks(tasks, criteria) {
		filtered = append(filtered, t)
	}
	h.respondSuccess(ctx, http.StatusOK, filtered)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	sess, ok := h.session(ctx)
	if !ok {
		return
	}

	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.store.CreateTask(stdCtx, sess, store.CreateTaskInput{
		Text:        req.Text,
		Assignee:    req.Assignee,
		Priority:    domain.Priority(req.Priority),
		Department:  req.Department,
		ContactName: req.ContactName,
		RoomNumber:  req.RoomNumber,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Patch task fields
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	sess, ok := h.session(ctx)
	if !ok {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.TaskPatchRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	patch := store.TaskPatch{
		Text:        req.Text,
		Assignee:    req.Assignee,
		Department:  req.Department,
		ContactName: req.ContactName,
		RoomNumber:  req.RoomNumber,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		patch.Priority = &p
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.store.UpdateTask(stdCtx, sess, id, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Move task through its lifecycle
// @Tags tasks
// @Router /api/v1/tasks/{id}/status [put]
func (h *TaskHandler) SetStatus(ctx *fasthttp.RequestCtx) {
	sess, ok := h.session(ctx)
	if !ok {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.StatusRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	var elapsed *domain.Elapsed
	if req.Hours != nil || req.Minutes != nil {
		e := domain.Elapsed{}
		if req.Hours != nil {
			e.Hours = *req.Hours
		}
		if req.Minutes != nil {
			e.Minutes = *req.Minutes
		}
		elapsed = &e
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.store.SetStatus(stdCtx, sess, id, domain.Status(req.Status), elapsed)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	sess, ok := h.session(ctx)
	if !ok {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.store.DeleteTask(stdCtx, sess, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.SuccessResponse{Success: true})
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid task id", nil))
		return 0, false
	}
	return id, true
}
