package service

import (
	"go.uber.org/zap"

	"attendance-sync/config"
	"attendance-sync/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Ingest    IngestService
	Reconcile ReconcileService
	Query     QueryService
	Export    ExportService
}

// NewService 创建 Service 聚合
// locker 为 nil 时对账使用进程内单飞锁；notifier 为 nil 时不发布对账事件
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	audit AuditWriter,
	locker RunLocker,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	opts := ReconcileOptions{
		DefaultLimit: cfg.Reconcile.DefaultLimit,
		MaxLimit:     cfg.Reconcile.MaxLimit,
		MaxAttempts:  cfg.Reconcile.MaxAttempts,
		LockTTL:      cfg.Reconcile.LockTTL,
	}
	return &Service{
		Ingest:    NewIngestService(repo, audit, cfg.Ingest.BatchSize, logger),
		Reconcile: NewReconcileService(repo, locker, notifier, opts, logger),
		Query:     NewQueryService(repo, logger),
		Export:    NewExportService(repo, logger),
	}
}
