package model

import "time"

// AttendanceRecord 标准考勤记录表 — 对应 attendance_records
// 每条对账成功的 RawPunch 恰好对应一条记录（raw_punch_id 唯一）
type AttendanceRecord struct {
	ID         int64    `gorm:"primaryKey;autoIncrement"  json:"id"`
	RawPunchID int64    `gorm:"not null;uniqueIndex"      json:"raw_punch_id"`
	ProviderID *int64   `gorm:"index"                     json:"provider_id,omitempty"`
	CompanyID  *int64   `gorm:"index"                     json:"company_id,omitempty"`
	BranchID   *int64   `gorm:"index"                     json:"branch_id,omitempty"`
	DeviceID   int64    `gorm:"not null;index"            json:"device_id"`
	EmployeeID int64    `gorm:"not null;index"            json:"employee_id"`
	LogTime    string   `gorm:"type:varchar(64);not null" json:"log_time"`
	// 定位字段仅由移动端签到路径填写，设备对账生成的记录始终为空
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Address    *string  `gorm:"type:varchar(255)" json:"address"`
	Exported  bool      `gorm:"not null;default:false" json:"exported"`
	CreatedAt time.Time `gorm:"not null;index"         json:"created_at"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }
