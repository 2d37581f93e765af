package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"attendance-sync/pkg/jwt"
	"attendance-sync/pkg/response"
)

// 上下文键
const (
	operatorKey = "operator"
	roleKey     = "role"
)

// JWTAuth 管理接口 JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并校验外部签发的 Token；
// 未配置密钥时整体放行（内网部署）
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtMgr == nil || !jwtMgr.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set(operatorKey, claims.Subject)
		c.Set(roleKey, claims.Role)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 未启用鉴权（上下文中无角色）时放行
func RoleAuth(jwtMgr *jwt.Manager, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtMgr == nil || !jwtMgr.Enabled() {
			c.Next()
			return
		}

		role, _ := c.Get(roleKey)
		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
