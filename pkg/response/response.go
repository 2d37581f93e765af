package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 统一错误响应结构
type ErrorBody struct {
	OK      bool   `json:"ok"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Page 分页响应结构 { ok, total, count, items }
type Page struct {
	OK    bool        `json:"ok"`
	Total int64       `json:"total"`
	Count int         `json:"count"`
	Items interface{} `json:"items"`
}

// ── 成功响应 ──

// OK 200 成功响应，body 自带 ok 字段
func OK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// OKPage 200 分页成功
func OKPage(c *gin.Context, items interface{}, count int, total int64) {
	c.JSON(http.StatusOK, Page{
		OK:    true,
		Total: total,
		Count: count,
		Items: items,
	})
}

// Text 200 纯文本响应（设备协议应答）
func Text(c *gin.Context, body string) {
	c.String(http.StatusOK, body)
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, ErrorBody{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}
