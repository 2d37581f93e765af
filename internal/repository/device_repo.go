package repository

import (
	"context"

	"gorm.io/gorm"

	"attendance-sync/internal/model"
)

// DeviceRepository 设备目录只读访问接口
type DeviceRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Device, error)
	// GetActiveBySerial 按序列号查询启用状态的设备
	GetActiveBySerial(ctx context.Context, serialNumber string) (*model.Device, error)
}

type deviceRepo struct {
	db *gorm.DB
}

// NewDeviceRepo 创建 DeviceRepository 实例
func NewDeviceRepo(db *gorm.DB) DeviceRepository {
	return &deviceRepo{db: db}
}

func (r *deviceRepo) GetByID(ctx context.Context, id int64) (*model.Device, error) {
	var device model.Device
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *deviceRepo) GetActiveBySerial(ctx context.Context, serialNumber string) (*model.Device, error) {
	var device model.Device
	err := r.db.WithContext(ctx).
		Where("serial_number = ? AND status = ?", serialNumber, model.DeviceStatusActive).
		First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}
