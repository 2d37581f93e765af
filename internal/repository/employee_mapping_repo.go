package repository

import (
	"context"

	"gorm.io/gorm"

	"attendance-sync/internal/model"
)

// EmployeeMappingRepository 设备工号映射只读访问接口
type EmployeeMappingRepository interface {
	GetByDeviceAndCode(ctx context.Context, deviceID int64, empCode string) (*model.EmployeeCodeMapping, error)
}

type employeeMappingRepo struct {
	db *gorm.DB
}

// NewEmployeeMappingRepo 创建 EmployeeMappingRepository 实例
func NewEmployeeMappingRepo(db *gorm.DB) EmployeeMappingRepository {
	return &employeeMappingRepo{db: db}
}

func (r *employeeMappingRepo) GetByDeviceAndCode(ctx context.Context, deviceID int64, empCode string) (*model.EmployeeCodeMapping, error) {
	var mapping model.EmployeeCodeMapping
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND emp_code = ?", deviceID, empCode).
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}
