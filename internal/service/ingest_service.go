package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendance-sync/internal/dto"
	"attendance-sync/internal/model"
	"attendance-sync/internal/repository"
)

// AuditWriter 设备推送审计写入能力
// 与事务路径完全解耦：调用方忽略其返回的错误
type AuditWriter interface {
	Append(serialNumber, table, body string) error
}

// IngestService 设备上报业务接口
//
// 设计说明：
//   - 设备收到非 200 会疯狂重试，因此本服务从不向设备暴露错误
//   - 未知 / 停用设备的推送静默丢弃，插入数为 0
//   - 纯追加写入，不做去重（去重由对账阶段的 processed 标记承担）
type IngestService interface {
	// Ingest 处理单台设备推送，返回写入的原始打卡条数
	Ingest(ctx context.Context, serialNumber, table, body string) (int, error)
	// IngestBatch 逐条独立处理批量推送，单条失败不影响其他条目
	IngestBatch(ctx context.Context, items []dto.BatchIngestItem) *dto.BatchIngestResponse
}

type ingestService struct {
	repo      *repository.Repository
	audit     AuditWriter
	batchSize int
	logger    *zap.Logger
}

// NewIngestService 创建 IngestService 实例
func NewIngestService(repo *repository.Repository, audit AuditWriter, batchSize int, logger *zap.Logger) IngestService {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &ingestService{repo: repo, audit: audit, batchSize: batchSize, logger: logger}
}

// ────────────────────── Ingest ──────────────────────

func (s *ingestService) Ingest(ctx context.Context, serialNumber, table, body string) (int, error) {
	serialNumber = strings.TrimSpace(serialNumber)
	s.writeAudit(serialNumber, table, body)

	if !IsAttlogTable(table) {
		return 0, nil
	}

	var tuples []PunchTuple
	for t := range ParseAttlog(body) {
		tuples = append(tuples, t)
	}
	if len(tuples) == 0 {
		return 0, nil
	}

	device, err := s.repo.Device.GetActiveBySerial(ctx, serialNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("未知或停用设备推送，已忽略",
				zap.String("sn", serialNumber),
				zap.Int("lines", len(tuples)),
			)
			return 0, nil
		}
		s.logger.Error("查询设备失败", zap.String("sn", serialNumber), zap.Error(err))
		return 0, err
	}

	punches := make([]model.RawPunch, 0, len(tuples))
	for _, t := range tuples {
		punches = append(punches, model.RawPunch{
			DeviceID: device.ID,
			DeviceSN: device.SerialNumber,
			EmpCode:  t.UserID,
			LogTime:  t.LogTime,
			Status:   t.Status,
			WorkCode: t.WorkCode,
			RawLine:  t.RawLine,
		})
	}

	if err := s.repo.RawPunch.BatchCreate(ctx, punches, s.batchSize); err != nil {
		s.logger.Error("写入原始打卡失败",
			zap.String("sn", serialNumber),
			zap.Int("count", len(punches)),
			zap.Error(err),
		)
		return 0, err
	}

	s.logger.Debug("原始打卡已写入", zap.String("sn", serialNumber), zap.Int("count", len(punches)))
	return len(punches), nil
}

// ────────────────────── IngestBatch ──────────────────────

func (s *ingestService) IngestBatch(ctx context.Context, items []dto.BatchIngestItem) *dto.BatchIngestResponse {
	results := make([]dto.BatchIngestResult, 0, len(items))
	for _, item := range items {
		inserted, err := s.Ingest(ctx, item.SN, item.Table, item.Body)
		if err != nil {
			// 已在 Ingest 中记录日志；该条按 0 计
			inserted = 0
		}
		results = append(results, dto.BatchIngestResult{
			SN:       item.SN,
			Table:    item.Table,
			Inserted: inserted,
		})
	}
	return &dto.BatchIngestResponse{OK: true, Results: results}
}

// ── 内部辅助方法 ──

func (s *ingestService) writeAudit(serialNumber, table, body string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(serialNumber, table, body); err != nil {
		s.logger.Debug("写设备审计文件失败", zap.String("sn", serialNumber), zap.Error(err))
	}
}
