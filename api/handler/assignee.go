package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/api/transport"
	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/pkg/httpcontext"
	"github.com/taskdesk/backend/usecase/store"
)

type AssigneeHandler struct {
	baseHandler
	store *store.Store
}

func NewAssigneeHandler(st *store.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *AssigneeHandler {
	return &AssigneeHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       st,
	}
}

// @Summary Add assignee to the roster
// @Tags assignees
// @Router /api/v1/assignees [post]
func (h *AssigneeHandler) AddAssignee(ctx *fasthttp.RequestCtx) {
	sess, ok := h.session(ctx)
	if !ok {
		return
	}

	var req transport.AssigneeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.store.AddAssignee(stdCtx, sess, req.Name); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.SuccessResponse{Success: true})
}

// @Summary Remove assignee and release their tasks
// @Tags assignees
// @Router /api/v1/assignees/{name} [delete]
func (h *AssigneeHandler) RemoveAssignee(ctx *fasthttp.RequestCtx) {
	sess, ok := h.session(ctx)
	if !ok {
		return
	}

	// PathUnescape, not QueryUnescape: a literal "+" in a roster name must
	// survive the decode.
	name, _ := ctx.UserValue("name").(string)
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if name == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing assignee name", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	assignees, err := h.store.RemoveAssignee(stdCtx, sess, name)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.AssigneeListResponse{Assignees: assignees})
}
