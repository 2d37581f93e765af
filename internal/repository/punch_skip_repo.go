package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendance-sync/internal/model"
)

// PunchSkipRepository 对账跳过记录数据访问接口
type PunchSkipRepository interface {
	// Record 记录本轮跳过：首次插入 attempts=1，已存在则 attempts+1 并刷新原因
	Record(ctx context.Context, skips []model.RawPunchSkip) error
	// DeleteByRawPunchIDs 对账成功后清除跳过记录
	DeleteByRawPunchIDs(ctx context.Context, ids []int64) error
	// ResetParked 清除 attempts >= maxAttempts 的记录，使其重新参与对账
	ResetParked(ctx context.Context, maxAttempts int) (int64, error)
}

type punchSkipRepo struct {
	db *gorm.DB
}

// NewPunchSkipRepo 创建 PunchSkipRepository 实例
func NewPunchSkipRepo(db *gorm.DB) PunchSkipRepository {
	return &punchSkipRepo{db: db}
}

func (r *punchSkipRepo) Record(ctx context.Context, skips []model.RawPunchSkip) error {
	if len(skips) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "raw_punch_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"attempts":        gorm.Expr("raw_punch_skips.attempts + 1"),
				"reason":          gorm.Expr("excluded.reason"),
				"last_attempt_at": gorm.Expr("excluded.last_attempt_at"),
			}),
		}).
		CreateInBatches(&skips, recordInsertBatch).Error
}

func (r *punchSkipRepo) DeleteByRawPunchIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("raw_punch_id IN ?", ids).
		Delete(&model.RawPunchSkip{}).Error
}

func (r *punchSkipRepo) ResetParked(ctx context.Context, maxAttempts int) (int64, error) {
	if maxAttempts <= 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("attempts >= ?", maxAttempts).
		Delete(&model.RawPunchSkip{})
	return result.RowsAffected, result.Error
}
