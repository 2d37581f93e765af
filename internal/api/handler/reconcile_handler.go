package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"attendance-sync/internal/dto"
	"attendance-sync/internal/service"
	pkgerrors "attendance-sync/pkg/errors"
	"attendance-sync/pkg/response"
)

// ReconcileHandler 对账 HTTP 处理器
type ReconcileHandler struct {
	reconcileSvc service.ReconcileService
}

// NewReconcileHandler 创建 ReconcileHandler
func NewReconcileHandler(reconcileSvc service.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{reconcileSvc: reconcileSvc}
}

// Run 执行一轮对账
// GET /api/v1/reconcile?limit=1000&dry=1
func (h *ReconcileHandler) Run(c *gin.Context) {
	req := &dto.ReconcileRequest{DryRun: queryBool(c, "dry")}
	if limit, ok := queryInt(c, "limit"); ok {
		req.Limit = limit
	}

	resp, err := h.reconcileSvc.Reconcile(c.Request.Context(), req)
	if err != nil {
		h.handleReconcileError(c, err)
		return
	}

	response.OK(c, resp)
}

// Requeue 将超过重试上限被搁置的原始打卡重新排队
// POST /api/v1/reconcile/requeue
func (h *ReconcileHandler) Requeue(c *gin.Context) {
	resp, err := h.reconcileSvc.Requeue(c.Request.Context())
	if err != nil {
		h.handleReconcileError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *ReconcileHandler) handleReconcileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrReconcileInProgress):
		response.Conflict(c, 20001, "已有对账任务正在执行")
	case errors.Is(err, pkgerrors.ErrConcurrentReconcile):
		response.Conflict(c, 20002, "原始打卡已被其他对账任务处理，请重试")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
