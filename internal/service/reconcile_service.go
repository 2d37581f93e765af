package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendance-sync/internal/dto"
	"attendance-sync/internal/model"
	"attendance-sync/internal/repository"
	pkgerrors "attendance-sync/pkg/errors"
)

const (
	reconcileLockName       = "attendance:reconcile"
	reconciledRoutingKey    = "attendance.reconciled"
	reconcileResultResolved = "ok"
)

// RunLocker 对账单飞锁
// 生产环境由 Redis 实现（多实例互斥），开发模式退化为进程内互斥
type RunLocker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

// Notifier 对账完成事件发布能力（提交后尽力而为）
type Notifier interface {
	PublishJSON(ctx context.Context, routingKey string, event interface{}) error
}

// ReconcileOptions 对账参数
type ReconcileOptions struct {
	DefaultLimit int
	MaxLimit     int
	MaxAttempts  int // 0 表示无限重试
	LockTTL      time.Duration
}

// ReconciledEvent 对账完成事件
type ReconciledEvent struct {
	FinishedAt            time.Time `json:"finishedAt"`
	Picked                int       `json:"picked"`
	Inserted              int       `json:"inserted"`
	SkippedNoDevice       int       `json:"skippedNoDevice"`
	SkippedInactiveDevice int       `json:"skippedInactiveDevice"`
	SkippedNoMapping      int       `json:"skippedNoMapping"`
	FirstRawPunchID       int64     `json:"firstRawPunchId,omitempty"`
	LastRawPunchID        int64     `json:"lastRawPunchId,omitempty"`
}

// ReconcileService 对账业务接口
//
// 设计说明：
//   - 一次对账在单个事务内完成：选取 → 解析 → 标记 processed → 写考勤记录
//   - 先标记后插入；标记影响行数与可对账条数不一致时整体回滚
//   - 无法解析的记录保持未处理，下一轮继续尝试；配置了 max_attempts 时超限搁置
//   - dry run 不加锁、不写库，事务总是回滚
type ReconcileService interface {
	Reconcile(ctx context.Context, req *dto.ReconcileRequest) (*dto.ReconcileResponse, error)
	// Requeue 清除搁置记录的尝试次数，使其重新参与对账
	Requeue(ctx context.Context) (*dto.RequeueResponse, error)
}

type reconcileService struct {
	repo     *repository.Repository
	locker   RunLocker
	notifier Notifier
	opts     ReconcileOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewReconcileService 创建 ReconcileService 实例
// locker 为 nil 时使用进程内互斥；notifier 可为 nil
func NewReconcileService(
	repo *repository.Repository,
	locker RunLocker,
	notifier Notifier,
	opts ReconcileOptions,
	logger *zap.Logger,
) ReconcileService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 5000
	}
	if opts.DefaultLimit <= 0 || opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = min(1000, opts.MaxLimit)
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Minute
	}
	return &reconcileService{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// ClampLimit 规整单次对账条数：0 取默认值，其余截断到 [1, max]
func ClampLimit(limit, defaultLimit, maxLimit int) int {
	switch {
	case limit == 0:
		return defaultLimit
	case limit < 1:
		return 1
	case limit > maxLimit:
		return maxLimit
	}
	return limit
}

// ────────────────────── Reconcile ──────────────────────

func (s *reconcileService) Reconcile(ctx context.Context, req *dto.ReconcileRequest) (*dto.ReconcileResponse, error) {
	limit := ClampLimit(req.Limit, s.opts.DefaultLimit, s.opts.MaxLimit)

	if !req.DryRun {
		release, ok, err := s.locker.TryLock(ctx, reconcileLockName, s.opts.LockTTL)
		if err != nil {
			s.logger.Error("获取对账锁失败", zap.Error(err))
			return nil, err
		}
		if !ok {
			return nil, pkgerrors.ErrReconcileInProgress
		}
		defer release()
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	resp, err := s.run(ctx, txRepo, limit, req.DryRun)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	if req.DryRun {
		if tx != nil {
			tx.Rollback()
		}
		return resp, nil
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交对账事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("对账完成",
		zap.Int("picked", resp.Picked),
		zap.Int("inserted", resp.Inserted),
		zap.Int("skipped_no_device", resp.SkippedNoDevice),
		zap.Int("skipped_inactive_device", resp.SkippedInactiveDevice),
		zap.Int("skipped_no_mapping", resp.SkippedNoMapping),
		zap.Int64("skipped_parked", resp.SkippedParked),
	)
	s.notify(ctx, resp)

	return resp, nil
}

// run 在给定（事务内）Repository 上执行一次对账
func (s *reconcileService) run(ctx context.Context, txRepo *repository.Repository, limit int, dryRun bool) (*dto.ReconcileResponse, error) {
	punches, err := txRepo.RawPunch.PickUnprocessed(ctx, limit, s.opts.MaxAttempts, !dryRun)
	if err != nil {
		s.logger.Error("选取未处理原始打卡失败", zap.Error(err))
		return nil, err
	}

	parked, err := txRepo.RawPunch.CountParked(ctx, s.opts.MaxAttempts)
	if err != nil {
		s.logger.Error("统计搁置原始打卡失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.ReconcileResponse{
		OK:            true,
		DryRun:        dryRun,
		Picked:        len(punches),
		SkippedParked: parked,
		Details:       make([]dto.ReconcileDetail, 0, len(punches)),
	}

	now := s.now()
	res := newResolver(txRepo)
	var (
		records   []model.AttendanceRecord
		succeeded []int64
		skips     []model.RawPunchSkip
	)

	for i := range punches {
		p := &punches[i]
		detail := dto.ReconcileDetail{
			RawPunchID: p.ID,
			DeviceID:   p.DeviceID,
			DeviceSN:   p.DeviceSN,
			EmpCode:    p.EmpCode,
		}

		device, mapping, reason, err := res.resolve(ctx, p)
		if err != nil {
			s.logger.Error("解析原始打卡失败", zap.Int64("raw_punch_id", p.ID), zap.Error(err))
			return nil, err
		}

		switch reason {
		case model.SkipReasonDeviceNotFound:
			resp.SkippedNoDevice++
		case model.SkipReasonDeviceInactive:
			resp.SkippedInactiveDevice++
		case model.SkipReasonMappingNotFound:
			resp.SkippedNoMapping++
		default:
			resp.Resolved++
			employeeID := mapping.EmployeeID
			detail.EmployeeID = &employeeID
			succeeded = append(succeeded, p.ID)
			records = append(records, model.AttendanceRecord{
				RawPunchID: p.ID,
				ProviderID: device.ProviderID,
				CompanyID:  device.CompanyID,
				BranchID:   device.BranchID,
				DeviceID:   device.ID,
				EmployeeID: mapping.EmployeeID,
				LogTime:    p.LogTime,
				Exported:   false,
			})
		}

		if reason != "" {
			detail.Result = reason
			skips = append(skips, model.RawPunchSkip{
				RawPunchID:    p.ID,
				Reason:        reason,
				Attempts:      1,
				LastAttemptAt: now,
			})
		} else {
			detail.Result = reconcileResultResolved
		}
		resp.Details = append(resp.Details, detail)
	}

	if dryRun {
		return resp, nil
	}

	// 先标记后插入：影响行数不足说明有并发对账已处理了其中部分记录
	marked, err := txRepo.RawPunch.MarkProcessed(ctx, succeeded)
	if err != nil {
		s.logger.Error("标记原始打卡已处理失败", zap.Error(err))
		return nil, err
	}
	if marked != int64(len(succeeded)) {
		s.logger.Warn("标记行数与可对账条数不一致，回滚本轮对账",
			zap.Int64("marked", marked),
			zap.Int("expected", len(succeeded)),
		)
		return nil, pkgerrors.ErrConcurrentReconcile
	}
	resp.PreMarkedProcessed = int(marked)

	if err := txRepo.AttendanceRecord.BatchCreate(ctx, records); err != nil {
		s.logger.Error("写入考勤记录失败", zap.Int("count", len(records)), zap.Error(err))
		return nil, err
	}
	resp.Inserted = len(records)

	if s.opts.MaxAttempts > 0 {
		if err := txRepo.PunchSkip.DeleteByRawPunchIDs(ctx, succeeded); err != nil {
			s.logger.Error("清除跳过记录失败", zap.Error(err))
			return nil, err
		}
		if err := txRepo.PunchSkip.Record(ctx, skips); err != nil {
			s.logger.Error("记录跳过次数失败", zap.Error(err))
			return nil, err
		}
	}

	return resp, nil
}

func (s *reconcileService) notify(ctx context.Context, resp *dto.ReconcileResponse) {
	if s.notifier == nil || resp.Picked == 0 {
		return
	}
	event := ReconciledEvent{
		FinishedAt:            s.now(),
		Picked:                resp.Picked,
		Inserted:              resp.Inserted,
		SkippedNoDevice:       resp.SkippedNoDevice,
		SkippedInactiveDevice: resp.SkippedInactiveDevice,
		SkippedNoMapping:      resp.SkippedNoMapping,
	}
	if n := len(resp.Details); n > 0 {
		event.FirstRawPunchID = resp.Details[0].RawPunchID
		event.LastRawPunchID = resp.Details[n-1].RawPunchID
	}
	if err := s.notifier.PublishJSON(ctx, reconciledRoutingKey, event); err != nil {
		s.logger.Warn("发布对账完成事件失败", zap.Error(err))
	}
}

// ────────────────────── Requeue ──────────────────────

func (s *reconcileService) Requeue(ctx context.Context) (*dto.RequeueResponse, error) {
	n, err := s.repo.PunchSkip.ResetParked(ctx, s.opts.MaxAttempts)
	if err != nil {
		s.logger.Error("重置搁置记录失败", zap.Error(err))
		return nil, err
	}
	if n > 0 {
		s.logger.Info("搁置原始打卡已重新排队", zap.Int64("count", n))
	}
	return &dto.RequeueResponse{OK: true, Requeued: n}, nil
}

// ────────────────────── 单轮解析缓存 ──────────────────────

type mappingKey struct {
	deviceID int64
	empCode  string
}

// resolver 单轮对账内缓存设备与工号映射查询结果（含未命中）
type resolver struct {
	repo     *repository.Repository
	devices  map[int64]*model.Device
	mappings map[mappingKey]*model.EmployeeCodeMapping
}

func newResolver(repo *repository.Repository) *resolver {
	return &resolver{
		repo:     repo,
		devices:  make(map[int64]*model.Device),
		mappings: make(map[mappingKey]*model.EmployeeCodeMapping),
	}
}

// resolve 返回设备与映射；无法解析时 reason 为跳过原因
func (r *resolver) resolve(ctx context.Context, p *model.RawPunch) (*model.Device, *model.EmployeeCodeMapping, string, error) {
	device, err := r.device(ctx, p.DeviceID)
	if err != nil {
		return nil, nil, "", err
	}
	if device == nil {
		return nil, nil, model.SkipReasonDeviceNotFound, nil
	}
	if !device.IsActive() {
		return device, nil, model.SkipReasonDeviceInactive, nil
	}

	mapping, err := r.mapping(ctx, device.ID, p.EmpCode)
	if err != nil {
		return nil, nil, "", err
	}
	if mapping == nil {
		return device, nil, model.SkipReasonMappingNotFound, nil
	}
	return device, mapping, "", nil
}

func (r *resolver) device(ctx context.Context, id int64) (*model.Device, error) {
	if d, ok := r.devices[id]; ok {
		return d, nil
	}
	d, err := r.repo.Device.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		d = nil
	}
	r.devices[id] = d
	return d, nil
}

func (r *resolver) mapping(ctx context.Context, deviceID int64, empCode string) (*model.EmployeeCodeMapping, error) {
	key := mappingKey{deviceID: deviceID, empCode: empCode}
	if m, ok := r.mappings[key]; ok {
		return m, nil
	}
	m, err := r.repo.EmployeeMapping.GetByDeviceAndCode(ctx, deviceID, empCode)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		m = nil
	}
	r.mappings[key] = m
	return m, nil
}

// ────────────────────── LocalLocker ──────────────────────

// LocalLocker 进程内单飞锁，未启用 Redis 时使用
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalLocker 创建进程内单飞锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

// TryLock 非阻塞加锁；ttl 对进程内锁无意义
func (l *LocalLocker) TryLock(_ context.Context, name string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.Mutex{}
		l.locks[name] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, false, nil
	}
	var once sync.Once
	return func() { once.Do(m.Unlock) }, true, nil
}
