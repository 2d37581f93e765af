package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendance-sync/internal/model"
)

// RawPunchRepository 原始打卡数据访问接口
type RawPunchRepository interface {
	// BatchCreate 纯追加批量写入，不去重
	BatchCreate(ctx context.Context, punches []model.RawPunch, batchSize int) error
	// PickUnprocessed 按 id 升序选取未处理记录；lock=true 时在 PostgreSQL 上加
	// FOR UPDATE SKIP LOCKED，必须在事务内调用。maxAttempts>0 时排除已搁置的记录
	PickUnprocessed(ctx context.Context, limit, maxAttempts int, lock bool) ([]model.RawPunch, error)
	// MarkProcessed 仅将 processed=false 的记录置为 true，返回实际影响行数
	MarkProcessed(ctx context.Context, ids []int64) (int64, error)
	// CountParked 统计因超过重试上限被搁置的未处理记录
	CountParked(ctx context.Context, maxAttempts int) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]model.RawPunch, int64, error)
}

type rawPunchRepo struct {
	db *gorm.DB
}

// NewRawPunchRepo 创建 RawPunchRepository 实例
func NewRawPunchRepo(db *gorm.DB) RawPunchRepository {
	return &rawPunchRepo{db: db}
}

func (r *rawPunchRepo) BatchCreate(ctx context.Context, punches []model.RawPunch, batchSize int) error {
	if len(punches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&punches, batchSize).Error
}

const parkedCondition = "EXISTS (SELECT 1 FROM raw_punch_skips s WHERE s.raw_punch_id = raw_punches.id AND s.attempts >= ?)"

func (r *rawPunchRepo) PickUnprocessed(ctx context.Context, limit, maxAttempts int, lock bool) ([]model.RawPunch, error) {
	var punches []model.RawPunch

	db := r.db.WithContext(ctx).
		Where("raw_punches.processed = ?", false)
	if maxAttempts > 0 {
		db = db.Where("NOT "+parkedCondition, maxAttempts)
	}
	if lock && lockingEnabled(r.db) {
		db = db.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}

	err := db.Order("raw_punches.id ASC").
		Limit(limit).
		Find(&punches).Error
	return punches, err
}

func (r *rawPunchRepo) MarkProcessed(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.RawPunch{}).
		Where("id IN ? AND processed = ?", ids, false).
		Update("processed", true)
	return result.RowsAffected, result.Error
}

func (r *rawPunchRepo) CountParked(ctx context.Context, maxAttempts int) (int64, error) {
	if maxAttempts <= 0 {
		return 0, nil
	}
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.RawPunch{}).
		Where("raw_punches.processed = ?", false).
		Where(parkedCondition, maxAttempts).
		Count(&total).Error
	return total, err
}

func (r *rawPunchRepo) List(ctx context.Context, filter ListFilter) ([]model.RawPunch, int64, error) {
	var punches []model.RawPunch
	var total int64

	db := filter.apply(r.db.WithContext(ctx).Model(&model.RawPunch{}), "raw_punches")

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Select("raw_punches.*").
		Offset(filter.Offset).Limit(filter.Limit).
		Order("raw_punches.id DESC").
		Find(&punches).Error
	return punches, total, err
}
