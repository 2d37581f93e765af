package model

// 设备状态
const (
	DeviceStatusActive   = "Active"
	DeviceStatusInactive = "Inactive"
)

// Device 考勤终端表 — 对应 devices
// 设备目录由外部系统维护，本服务只读
type Device struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"             json:"id"`
	SerialNumber string `gorm:"type:varchar(64);not null;uniqueIndex" json:"serial_number"`
	Status       string `gorm:"type:varchar(16);not null;index"       json:"status"`
	ProviderID   *int64 `gorm:"index"                                 json:"provider_id,omitempty"`
	CompanyID    *int64 `gorm:"index"                                 json:"company_id,omitempty"`
	BranchID     *int64 `gorm:"index"                                 json:"branch_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Device) TableName() string { return "devices" }

// IsActive 设备是否处于启用状态
func (d *Device) IsActive() bool { return d.Status == DeviceStatusActive }
