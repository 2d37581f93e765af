package dto

// ── 对账模块 DTO ──

// ReconcileRequest 对账触发参数
type ReconcileRequest struct {
	Limit  int  `form:"limit"`
	DryRun bool `form:"-"`
}

// ReconcileDetail 单条原始打卡的对账结果
type ReconcileDetail struct {
	RawPunchID int64  `json:"rawPunchId"`
	Result     string `json:"result"` // ok | device_not_found | device_inactive | emp_mapping_not_found
	DeviceID   int64  `json:"deviceId"`
	DeviceSN   string `json:"deviceSn"`
	EmpCode    string `json:"empCode"`
	EmployeeID *int64 `json:"employeeId,omitempty"`
}

// ReconcileResponse 对账结果
type ReconcileResponse struct {
	OK                    bool              `json:"ok"`
	DryRun                bool              `json:"dryRun"`
	Picked                int               `json:"picked"`
	Resolved              int               `json:"resolved"` // 可对账条数（dry run 时即预计写入条数）
	PreMarkedProcessed    int               `json:"preMarkedProcessed"`
	Inserted              int               `json:"inserted"`
	SkippedNoDevice       int               `json:"skippedNoDevice"`
	SkippedInactiveDevice int               `json:"skippedInactiveDevice"`
	SkippedNoMapping      int               `json:"skippedNoMapping"`
	SkippedParked         int64             `json:"skippedParked"` // 超过重试上限、本轮未参与选取的积压
	Details               []ReconcileDetail `json:"details"`
}

// RequeueResponse 重新排队搁置记录的结果
type RequeueResponse struct {
	OK       bool  `json:"ok"`
	Requeued int64 `json:"requeued"`
}
