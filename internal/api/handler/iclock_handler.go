package handler

import (
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"attendance-sync/internal/service"
	"attendance-sync/pkg/response"
)

// iclockOK 设备协议统一应答；设备收到非 200 或其他内容会持续重推
const iclockOK = "OK"

// IclockHandler 考勤设备推送协议（ADMS /iclock）处理器
// 所有接口无论处理结果如何都返回 200 "OK"
type IclockHandler struct {
	ingestSvc service.IngestService
}

// NewIclockHandler 创建 IclockHandler
func NewIclockHandler(ingestSvc service.IngestService) *IclockHandler {
	return &IclockHandler{ingestSvc: ingestSvc}
}

// PushData 设备上报数据
// POST /iclock/cdata?SN=xxx&table=ATTLOG
func (h *IclockHandler) PushData(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		// 读取失败（如超出正文上限）时丢弃本次推送
		_ = c.Error(err)
		response.Text(c, iclockOK)
		return
	}

	// 写入失败已由 service 记录日志，设备侧一律应答 OK
	if _, err := h.ingestSvc.Ingest(c.Request.Context(), c.Query("SN"), c.Query("table"), string(body)); err != nil {
		_ = c.Error(err)
	}
	response.Text(c, iclockOK)
}

// Handshake 设备上线握手，下发推送参数
// GET /iclock/cdata?SN=xxx
func (h *IclockHandler) Handshake(c *gin.Context) {
	sn := strings.TrimSpace(c.Query("SN"))

	var b strings.Builder
	fmt.Fprintf(&b, "GET OPTION FROM: %s\n", sn)
	b.WriteString("ATTLOGStamp=None\n")
	b.WriteString("OPERLOGStamp=9999\n")
	b.WriteString("ErrorDelay=30\n")
	b.WriteString("Delay=10\n")
	b.WriteString("TransTimes=00:00;14:05\n")
	b.WriteString("TransInterval=1\n")
	b.WriteString("TransFlag=TransData AttLog\n")
	b.WriteString("Realtime=1\n")
	b.WriteString("Encrypt=None\n")

	response.Text(c, b.String())
}

// GetRequest 设备轮询待执行命令；本服务不下发命令
// GET /iclock/getrequest?SN=xxx
func (h *IclockHandler) GetRequest(c *gin.Context) {
	response.Text(c, iclockOK)
}
