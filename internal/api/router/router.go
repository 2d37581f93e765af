package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendance-sync/config"
	"attendance-sync/internal/api/handler"
	"attendance-sync/internal/api/middleware"
	"attendance-sync/pkg/jwt"
	"attendance-sync/pkg/redis"
)

// 管理接口限流：每 IP 每路由每分钟
const (
	adminRateLimit  = 120
	adminRateWindow = time.Minute
)

// Pinger 就绪探针依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时管理接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db Pinger, logger *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// ── 设备协议（不鉴权、不限流） ──
	iclock := r.Group("/iclock")
	iclock.Use(middleware.BodyLimit(cfg.Ingest.MaxBodyBytes))
	{
		iclock.POST("/cdata", h.Iclock.PushData)
		iclock.GET("/cdata", h.Iclock.Handshake)
		iclock.GET("/getrequest", h.Iclock.GetRequest)
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 批量上报与设备同源，不鉴权、不限流
		v1.POST("/ingest/batch", middleware.BodyLimit(cfg.Ingest.MaxBodyBytes), h.Ingest.Batch)

		var limiter middleware.RateLimiter
		if rdb != nil {
			limiter = rdb
		}

		admin := v1.Group("")
		admin.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
		admin.Use(middleware.JWTAuth(jwtMgr))
		admin.Use(middleware.RateLimit(limiter, adminRateLimit, adminRateWindow))
		{
			admin.GET("/punches", middleware.RoleAuth(jwtMgr, "admin", "hr"), h.Query.ListPunches)
			admin.GET("/attendance", middleware.RoleAuth(jwtMgr, "admin", "hr"), h.Query.ListAttendance)
			admin.GET("/attendance/export", middleware.RoleAuth(jwtMgr, "admin", "hr"), h.Export.ExportAttendance)

			admin.GET("/reconcile", middleware.RoleAuth(jwtMgr, "admin"), h.Reconcile.Run)
			admin.POST("/reconcile/requeue", middleware.RoleAuth(jwtMgr, "admin"), h.Reconcile.Requeue)
		}
	}

	return r
}
