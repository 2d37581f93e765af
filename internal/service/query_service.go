package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"attendance-sync/internal/dto"
	"attendance-sync/internal/model"
	"attendance-sync/internal/repository"
)

// ── 列表查询模块业务错误 ──

var (
	ErrInvalidDate      = errors.New("日期格式错误，应为 YYYY-MM-DD 或 RFC3339")
	ErrInvalidTimeRange = errors.New("开始时间不能晚于结束时间")
)

const (
	defaultTake = 200
	maxTake     = 1000

	dateLayout = "2006-01-02"
)

// 接受的时间参数格式（按顺序尝试）
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// QueryService 原始打卡与考勤记录只读查询接口
type QueryService interface {
	ListRawPunches(ctx context.Context, q *dto.ListQuery) ([]dto.RawPunchResponse, int64, error)
	ListAttendance(ctx context.Context, q *dto.ListQuery) ([]dto.AttendanceRecordResponse, int64, error)
}

type queryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewQueryService 创建 QueryService 实例
func NewQueryService(repo *repository.Repository, logger *zap.Logger) QueryService {
	return &queryService{repo: repo, logger: logger}
}

// ────────────────────── ListRawPunches ──────────────────────

func (s *queryService) ListRawPunches(ctx context.Context, q *dto.ListQuery) ([]dto.RawPunchResponse, int64, error) {
	filter, err := BuildListFilter(q)
	if err != nil {
		return nil, 0, err
	}

	punches, total, err := s.repo.RawPunch.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询原始打卡失败", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.RawPunchResponse, 0, len(punches))
	for i := range punches {
		items = append(items, toRawPunchResponse(&punches[i]))
	}
	return items, total, nil
}

// ────────────────────── ListAttendance ──────────────────────

func (s *queryService) ListAttendance(ctx context.Context, q *dto.ListQuery) ([]dto.AttendanceRecordResponse, int64, error) {
	filter, err := BuildListFilter(q)
	if err != nil {
		return nil, 0, err
	}

	records, total, err := s.repo.AttendanceRecord.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.AttendanceRecordResponse, 0, len(records))
	for i := range records {
		items = append(items, toAttendanceRecordResponse(&records[i]))
	}
	return items, total, nil
}

// ── 内部辅助方法 ──

// BuildListFilter 将查询参数规整为仓储层过滤条件
// take 默认 200、截断到 [1, 1000]；skip 小于 0 按 0 处理；
// 纯日期的 to 覆盖当天整天
func BuildListFilter(q *dto.ListQuery) (repository.ListFilter, error) {
	filter := repository.ListFilter{
		Limit:      defaultTake,
		Offset:     max(q.Skip, 0),
		ActiveOnly: q.ActiveOnly,
	}
	if q.Take != nil {
		filter.Limit = min(max(*q.Take, 1), maxTake)
	}

	if q.From != "" {
		from, _, err := parseTimeParam(q.From)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if q.To != "" {
		to, dateOnly, err := parseTimeParam(q.To)
		if err != nil {
			return filter, err
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return filter, ErrInvalidTimeRange
	}
	return filter, nil
}

// parseTimeParam 解析时间参数，dateOnly 表示输入为纯日期
func parseTimeParam(value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, ErrInvalidDate
}

func toRawPunchResponse(p *model.RawPunch) dto.RawPunchResponse {
	return dto.RawPunchResponse{
		ID:        p.ID,
		DeviceID:  p.DeviceID,
		DeviceSN:  p.DeviceSN,
		EmpCode:   p.EmpCode,
		LogTime:   p.LogTime,
		Status:    p.Status,
		WorkCode:  p.WorkCode,
		RawLine:   p.RawLine,
		Processed: p.Processed,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func toAttendanceRecordResponse(r *model.AttendanceRecord) dto.AttendanceRecordResponse {
	return dto.AttendanceRecordResponse{
		ID:         r.ID,
		RawPunchID: r.RawPunchID,
		ProviderID: r.ProviderID,
		CompanyID:  r.CompanyID,
		BranchID:   r.BranchID,
		DeviceID:   r.DeviceID,
		EmployeeID: r.EmployeeID,
		LogTime:    r.LogTime,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		Address:    r.Address,
		Exported:   r.Exported,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}
