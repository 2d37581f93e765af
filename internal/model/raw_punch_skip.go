package model

import "time"

// 对账跳过原因
const (
	SkipReasonDeviceNotFound  = "device_not_found"
	SkipReasonDeviceInactive  = "device_inactive"
	SkipReasonMappingNotFound = "emp_mapping_not_found"
)

// RawPunchSkip 对账跳过记录表 — 对应 raw_punch_skips
// 记录无法解析的原始打卡累计尝试次数，不修改 raw_punches 本身
type RawPunchSkip struct {
	RawPunchID    int64     `gorm:"primaryKey;autoIncrement:false"  json:"raw_punch_id"`
	Reason        string    `gorm:"type:varchar(32);not null"       json:"reason"`
	Attempts      int       `gorm:"not null;default:0;index"        json:"attempts"`
	LastAttemptAt time.Time `gorm:"not null"                        json:"last_attempt_at"`
}

// TableName 指定表名
func (RawPunchSkip) TableName() string { return "raw_punch_skips" }
