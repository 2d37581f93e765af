package model

import "time"

// RawPunch 设备原始打卡表 — 对应 raw_punches
//
// 只由设备上报写入；对账成功后 processed 由 false 置为 true，除此之外不做任何修改。
// 设备可能重复推送，表上不设唯一约束。
type RawPunch struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"                   json:"id"`
	DeviceID  int64     `gorm:"not null;index"                             json:"device_id"`
	DeviceSN  string    `gorm:"column:device_sn;type:varchar(64);not null" json:"device_sn"`
	EmpCode   string    `gorm:"type:varchar(64);not null"                  json:"emp_code"`
	LogTime   string    `gorm:"type:varchar(64);not null"                  json:"log_time"`
	Status    string    `gorm:"type:varchar(16);not null;default:'0'"      json:"status"`
	WorkCode  string    `gorm:"type:varchar(16);not null;default:'0'"      json:"work_code"`
	RawLine   string    `gorm:"type:text;not null"                         json:"raw_line"`
	Processed bool      `gorm:"not null;default:false;index"               json:"processed"`
	CreatedAt time.Time `gorm:"not null;index"                             json:"created_at"`
}

// TableName 指定表名
func (RawPunch) TableName() string { return "raw_punches" }
