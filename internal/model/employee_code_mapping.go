package model

// EmployeeCodeMapping 设备工号映射表 — 对应 employee_code_mappings
// (device_id, emp_code) → employee_id，由外部人事系统维护，本服务只读
type EmployeeCodeMapping struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"                                         json:"id"`
	DeviceID   int64  `gorm:"not null;uniqueIndex:uk_employee_code_mappings_device_code,priority:1" json:"device_id"`
	EmpCode    string `gorm:"type:varchar(64);not null;uniqueIndex:uk_employee_code_mappings_device_code,priority:2" json:"emp_code"`
	EmployeeID int64  `gorm:"not null;index"                                                   json:"employee_id"`
	BaseModel
}

// TableName 指定表名
func (EmployeeCodeMapping) TableName() string { return "employee_code_mappings" }
