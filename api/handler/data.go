package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/api/transport"
	"github.com/taskdesk/backend/pkg/httpcontext"
	"github.com/taskdesk/backend/usecase/store"
	"github.com/taskdesk/backend/usecase/view"
)

type DataHandler struct {
	baseHandler
	store *store.Store
}

func NewDataHandler(st *store.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *DataHandler {
	return &DataHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       st,
	}
}

// @Summary Full document: tasks, roster and caller identity
// @Tags data
// @Router /api/v1/data [get]
func (h *DataHandler) GetData(ctx *fasthttp.RequestCtx) {
	sess, ok := h.session(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, assignees, err := h.store.Data(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	user, err := h.store.CurrentUser(stdCtx, sess)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.DataResponse{
		Tasks:       tasks,
		Assignees:   assignees,
		CurrentUser: transport.NewUserSummary(user),
	})
}

// @Summary Status counts over the unfiltered collection
// @Tags data
// @Router /api/v1/stats [get]
func (h *DataHandler) GetStats(ctx *fasthttp.RequestCtx) {
	if _, ok := h.session(ctx); !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, _, err := h.store.Data(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view.ComputeStats(tasks))
}
