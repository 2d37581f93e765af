package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"attendance-sync/internal/dto"
)

// queryBool 解析布尔型查询参数，仅 "1" / "true"（不区分大小写）视为真
func queryBool(c *gin.Context, key string) bool {
	v := strings.TrimSpace(c.Query(key))
	return v == "1" || strings.EqualFold(v, "true")
}

// queryInt 解析整型查询参数，缺省或非法时返回 (0, false)
func queryInt(c *gin.Context, key string) (int, bool) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// bindListQuery 解析列表查询参数
// take / skip 非法时按缺省处理，由 service 层统一规整范围
func bindListQuery(c *gin.Context) *dto.ListQuery {
	q := &dto.ListQuery{
		ActiveOnly: queryBool(c, "activeOnly"),
		From:       c.Query("from"),
		To:         c.Query("to"),
	}
	if take, ok := queryInt(c, "take"); ok {
		q.Take = &take
	}
	if skip, ok := queryInt(c, "skip"); ok {
		q.Skip = skip
	}
	return q
}
