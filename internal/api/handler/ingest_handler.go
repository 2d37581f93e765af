package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-sync/internal/dto"
	"attendance-sync/internal/service"
	"attendance-sync/pkg/response"
)

// IngestHandler 批量上报 HTTP 处理器（设备网关 / 补传工具使用）
type IngestHandler struct {
	ingestSvc service.IngestService
}

// NewIngestHandler 创建 IngestHandler
func NewIngestHandler(ingestSvc service.IngestService) *IngestHandler {
	return &IngestHandler{ingestSvc: ingestSvc}
}

// Batch 批量上报
// POST /api/v1/ingest/batch
func (h *IngestHandler) Batch(c *gin.Context) {
	var req dto.BatchIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 超限交给 BodyLimit 中间件统一返回 413
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(err)
			return
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "请求体不是合法的 JSON", err.Error())
		return
	}

	response.OK(c, h.ingestSvc.IngestBatch(c.Request.Context(), req.Items))
}
