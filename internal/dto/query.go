package dto

// ── 列表查询模块 DTO ──

// ListQuery 原始打卡 / 考勤记录列表查询参数
// activeOnly 接受 "1"/"true"，由 handler 解析
type ListQuery struct {
	Take       *int   `form:"take"`
	Skip       int    `form:"skip"`
	ActiveOnly bool   `form:"-"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// RawPunchResponse 原始打卡条目
type RawPunchResponse struct {
	ID        int64  `json:"id"`
	DeviceID  int64  `json:"deviceId"`
	DeviceSN  string `json:"deviceSn"`
	EmpCode   string `json:"empCode"`
	LogTime   string `json:"logTime"`
	Status    string `json:"status"`
	WorkCode  string `json:"workCode"`
	RawLine   string `json:"rawLine"`
	Processed bool   `json:"processed"`
	CreatedAt string `json:"createdAt"`
}

// AttendanceRecordResponse 标准考勤记录条目
type AttendanceRecordResponse struct {
	ID         int64    `json:"id"`
	RawPunchID int64    `json:"rawPunchId"`
	ProviderID *int64   `json:"providerId"`
	CompanyID  *int64   `json:"companyId"`
	BranchID   *int64   `json:"branchId"`
	DeviceID   int64    `json:"deviceId"`
	EmployeeID int64    `json:"employeeId"`
	LogTime    string   `json:"logTime"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Address    *string  `json:"address"`
	Exported   bool     `json:"exported"`
	CreatedAt  string   `json:"createdAt"`
}
