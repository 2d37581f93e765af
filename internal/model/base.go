package model

import "time"

// BaseModel 通用时间戳字段（外部目录表嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AllModels 返回本服务涉及的全部表模型（AutoMigrate / 测试建表使用）
func AllModels() []interface{} {
	return []interface{}{
		&Device{},
		&EmployeeCodeMapping{},
		&RawPunch{},
		&AttendanceRecord{},
		&RawPunchSkip{},
	}
}
