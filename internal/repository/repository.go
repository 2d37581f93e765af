package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"attendance-sync/internal/model"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Device           DeviceRepository
	EmployeeMapping  EmployeeMappingRepository
	RawPunch         RawPunchRepository
	AttendanceRecord AttendanceRecordRepository
	PunchSkip        PunchSkipRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:               db,
		Device:           NewDeviceRepo(db),
		EmployeeMapping:  NewEmployeeMappingRepo(db),
		RawPunch:         NewRawPunchRepo(db),
		AttendanceRecord: NewAttendanceRecordRepo(db),
		PunchSkip:        NewPunchSkipRepo(db),
	}
}

// BeginTx 开启事务
// 单元测试中 Repository 由 mock 组装、没有底层连接，此时返回 nil 事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository 副本
// tx 为 nil 时返回自身（mock 场景）
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Ping 检查数据库连通性（就绪探针）
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ListFilter 列表查询通用条件
type ListFilter struct {
	Offset     int
	Limit      int
	ActiveOnly bool       // 仅返回启用设备的数据
	From       *time.Time // created_at >= From
	To         *time.Time // created_at <= To
}

// apply 为指定表追加时间范围与启用设备过滤
func (f ListFilter) apply(db *gorm.DB, table string) *gorm.DB {
	if f.ActiveOnly {
		db = db.Joins("JOIN devices ON devices.id = "+table+".device_id AND devices.status = ?", model.DeviceStatusActive)
	}
	if f.From != nil {
		db = db.Where(table+".created_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where(table+".created_at <= ?", *f.To)
	}
	return db
}

// lockingEnabled 仅 PostgreSQL 支持行级锁；SQLite 开发模式依赖单写者与单飞锁
func lockingEnabled(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "postgres"
}
