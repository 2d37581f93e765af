package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"attendance-sync/internal/service"
	"attendance-sync/pkg/response"
)

// QueryHandler 原始打卡 / 考勤记录查询处理器
type QueryHandler struct {
	querySvc service.QueryService
}

// NewQueryHandler 创建 QueryHandler
func NewQueryHandler(querySvc service.QueryService) *QueryHandler {
	return &QueryHandler{querySvc: querySvc}
}

// ListPunches 原始打卡列表
// GET /api/v1/punches?take=&skip=&activeOnly=&from=&to=
func (h *QueryHandler) ListPunches(c *gin.Context) {
	items, total, err := h.querySvc.ListRawPunches(c.Request.Context(), bindListQuery(c))
	if err != nil {
		handleQueryError(c, err)
		return
	}

	response.OKPage(c, items, len(items), total)
}

// ListAttendance 考勤记录列表
// GET /api/v1/attendance?take=&skip=&activeOnly=&from=&to=
func (h *QueryHandler) ListAttendance(c *gin.Context) {
	items, total, err := h.querySvc.ListAttendance(c.Request.Context(), bindListQuery(c))
	if err != nil {
		handleQueryError(c, err)
		return
	}

	response.OKPage(c, items, len(items), total)
}

// handleQueryError 列表查询与导出共用的参数错误映射
func handleQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 30001, "日期格式错误，应为 YYYY-MM-DD 或 RFC3339")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 30002, "开始时间不能晚于结束时间")
	default:
		response.InternalError(c)
	}
}
