package dto

// ── 设备上报模块 DTO ──

// BatchIngestItem 批量上报中的单台设备推送
type BatchIngestItem struct {
	SN    string `json:"SN"`
	Table string `json:"table"`
	Body  string `json:"body"`
}

// BatchIngestRequest 批量上报请求
type BatchIngestRequest struct {
	Items []BatchIngestItem `json:"items"`
}

// BatchIngestResult 单条推送的处理结果
type BatchIngestResult struct {
	SN       string `json:"SN"`
	Table    string `json:"table"`
	Inserted int    `json:"inserted"`
}

// BatchIngestResponse 批量上报响应
type BatchIngestResponse struct {
	OK      bool                `json:"ok"`
	Results []BatchIngestResult `json:"results"`
}
