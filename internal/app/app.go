package app

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendance-sync/config"
	"attendance-sync/internal/repository"
	"attendance-sync/internal/service"
	"attendance-sync/pkg/audit"
	"attendance-sync/pkg/database"
	"attendance-sync/pkg/mq"
	"attendance-sync/pkg/redis"
)

// App 进程级依赖（HTTP 服务与对账命令共用）
type App struct {
	DB        *gorm.DB
	Redis     *redis.Client // 未启用或连接失败时为 nil
	Publisher *mq.Publisher // 未配置时为 nil
	Repo      *repository.Repository
	Service   *service.Service

	logger *zap.Logger
}

// New 按配置组装依赖：数据库（含迁移）→ Redis（可选）→ RabbitMQ（可选）→ Repository → Service
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}

	a := &App{DB: db, logger: logger}

	if cfg.Database.Driver == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			a.Close()
			return nil, err
		}
	}

	// Redis 可选：连接失败时降级为进程内对账锁、管理接口不限流
	var locker service.RunLocker
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，对账锁降级为进程内互斥", zap.Error(err))
		} else {
			a.Redis = rdb
			locker = rdb
		}
	}

	// RabbitMQ 可选：仅用于发布对账完成事件
	var notifier service.Notifier
	if cfg.MQ.URL != "" {
		pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, logger)
		if err != nil {
			logger.Warn("RabbitMQ 连接失败，对账事件将不会发布", zap.Error(err))
		} else {
			a.Publisher = pub
			notifier = pub
		}
	}

	var auditWriter service.AuditWriter = audit.Discard{}
	if cfg.Ingest.AuditDir != "" {
		fw, err := audit.NewFileWriter(cfg.Ingest.AuditDir)
		if err != nil {
			logger.Warn("设备审计目录不可用，审计文件将不会写入", zap.Error(err))
		} else {
			auditWriter = fw
		}
	}

	a.Repo = repository.NewRepository(db)
	a.Service = service.NewService(cfg, a.Repo, auditWriter, locker, notifier, logger)
	return a, nil
}

// Close 释放外部连接
func (a *App) Close() {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.logger.Warn("关闭 RabbitMQ 连接失败", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.Warn("关闭 Redis 连接失败", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
