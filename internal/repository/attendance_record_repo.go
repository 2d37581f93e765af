package repository

import (
	"context"

	"gorm.io/gorm"

	"attendance-sync/internal/model"
)

// AttendanceRecordRepository 标准考勤记录数据访问接口
type AttendanceRecordRepository interface {
	BatchCreate(ctx context.Context, records []model.AttendanceRecord) error
	List(ctx context.Context, filter ListFilter) ([]model.AttendanceRecord, int64, error)
}

type attendanceRecordRepo struct {
	db *gorm.DB
}

// NewAttendanceRecordRepo 创建 AttendanceRecordRepository 实例
func NewAttendanceRecordRepo(db *gorm.DB) AttendanceRecordRepository {
	return &attendanceRecordRepo{db: db}
}

const recordInsertBatch = 500

func (r *attendanceRecordRepo) BatchCreate(ctx context.Context, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&records, recordInsertBatch).Error
}

func (r *attendanceRecordRepo) List(ctx context.Context, filter ListFilter) ([]model.AttendanceRecord, int64, error) {
	var records []model.AttendanceRecord
	var total int64

	db := filter.apply(r.db.WithContext(ctx).Model(&model.AttendanceRecord{}), "attendance_records")

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Select("attendance_records.*").
		Offset(filter.Offset).Limit(filter.Limit).
		Order("attendance_records.id DESC").
		Find(&records).Error
	return records, total, err
}
