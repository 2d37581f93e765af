package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"attendance-sync/internal/dto"
	"attendance-sync/internal/model"
)

// ── 测试辅助 ──

type recordingAudit struct {
	calls []string
	err   error
}

func (a *recordingAudit) Append(serialNumber, table, body string) error {
	a.calls = append(a.calls, serialNumber+"|"+table)
	return a.err
}

func setupTestIngestService() (IngestService, *mockRepos, *recordingAudit) {
	repo, mocks := newMockRepository()
	mocks.devices.add(1, "SN-1", model.DeviceStatusActive)
	mocks.devices.add(2, "SN-OFF", model.DeviceStatusInactive)
	audit := &recordingAudit{}
	svc := NewIngestService(repo, audit, 100, zap.NewNop())
	return svc, mocks, audit
}

// ── Ingest 测试 ──

func TestIngestService_Ingest_KnownDevice(t *testing.T) {
	svc, mocks, audit := setupTestIngestService()

	body := "1001\t2024-01-05 08:01:00\t0\t1\n1002\t2024-01-05 08:02:00\n"
	n, err := svc.Ingest(context.Background(), "SN-1", "ATTLOG", body)
	if err != nil {
		t.Fatalf("Ingest 应成功: %v", err)
	}
	if n != 2 {
		t.Fatalf("期望写入 2 条，实际 %d", n)
	}
	if len(mocks.punches.punches) != 2 {
		t.Fatalf("期望仓储中 2 条，实际 %d", len(mocks.punches.punches))
	}
	p := mocks.punches.punches[0]
	if p.DeviceID != 1 || p.DeviceSN != "SN-1" || p.EmpCode != "1001" || p.Processed {
		t.Errorf("原始打卡字段错误: %+v", p)
	}
	if p.RawLine != "1001\t2024-01-05 08:01:00\t0\t1" {
		t.Errorf("原始行错误: %q", p.RawLine)
	}
	if len(audit.calls) != 1 {
		t.Errorf("期望写 1 次审计，实际 %d", len(audit.calls))
	}
}

func TestIngestService_Ingest_UnknownDevice(t *testing.T) {
	svc, mocks, _ := setupTestIngestService()

	n, err := svc.Ingest(context.Background(), "SN-X", "ATTLOG", "1 2024-01-05 08:00:00\n")
	if err != nil {
		t.Fatalf("未知设备不应报错: %v", err)
	}
	if n != 0 || len(mocks.punches.punches) != 0 {
		t.Errorf("未知设备不应写入，实际 n=%d rows=%d", n, len(mocks.punches.punches))
	}
}

func TestIngestService_Ingest_InactiveDevice(t *testing.T) {
	svc, mocks, _ := setupTestIngestService()

	n, _ := svc.Ingest(context.Background(), "SN-OFF", "ATTLOG", "1 2024-01-05 08:00:00\n")
	if n != 0 || len(mocks.punches.punches) != 0 {
		t.Errorf("停用设备不应写入，实际 n=%d", n)
	}
}

func TestIngestService_Ingest_NonAttlogTable(t *testing.T) {
	svc, mocks, audit := setupTestIngestService()

	n, err := svc.Ingest(context.Background(), "SN-1", "OPERLOG", "OPLOG 1 2 3 4\n")
	if err != nil || n != 0 {
		t.Fatalf("非 ATTLOG 应返回 0，实际 n=%d err=%v", n, err)
	}
	if mocks.devices.calls != 0 {
		t.Error("非 ATTLOG 不应查询设备")
	}
	if len(audit.calls) != 1 {
		t.Error("非 ATTLOG 推送仍应写审计")
	}
}

func TestIngestService_Ingest_AuditFailureIgnored(t *testing.T) {
	svc, mocks, audit := setupTestIngestService()
	audit.err = errors.New("disk full")

	n, err := svc.Ingest(context.Background(), "SN-1", "ATTLOG", "1 2024-01-05 08:00:00\n")
	if err != nil || n != 1 {
		t.Fatalf("审计失败不应影响写入，实际 n=%d err=%v", n, err)
	}
	if len(mocks.punches.punches) != 1 {
		t.Error("原始打卡应已写入")
	}
}

func TestIngestService_Ingest_DBError(t *testing.T) {
	svc, mocks, _ := setupTestIngestService()
	mocks.punches.createErr = errMockDB

	n, err := svc.Ingest(context.Background(), "SN-1", "ATTLOG", "1 2024-01-05 08:00:00\n")
	if !errors.Is(err, errMockDB) {
		t.Errorf("期望返回数据库错误，实际 %v", err)
	}
	if n != 0 {
		t.Errorf("失败时写入数应为 0，实际 %d", n)
	}
}

func TestIngestService_Ingest_DuplicatesAppended(t *testing.T) {
	svc, mocks, _ := setupTestIngestService()
	body := "1 2024-01-05 08:00:00\n"

	_, _ = svc.Ingest(context.Background(), "SN-1", "ATTLOG", body)
	_, _ = svc.Ingest(context.Background(), "SN-1", "ATTLOG", body)

	if len(mocks.punches.punches) != 2 {
		t.Errorf("重复推送应追加写入，期望 2 条，实际 %d", len(mocks.punches.punches))
	}
}

// ── IngestBatch 测试 ──

func TestIngestService_IngestBatch_PerItemResults(t *testing.T) {
	svc, _, _ := setupTestIngestService()

	items := []dto.BatchIngestItem{
		{SN: "SN-1", Table: "ATTLOG", Body: "1 2024-01-05 08:00:00\n2 2024-01-05 08:01:00\n"},
		{SN: "SN-X", Table: "ATTLOG", Body: "1 2024-01-05 08:00:00\n"},
		{SN: "SN-1", Table: "OPERLOG", Body: "anything"},
	}
	resp := svc.IngestBatch(context.Background(), items)

	if !resp.OK {
		t.Error("批量上报应返回 ok=true")
	}
	want := []int{2, 0, 0}
	if len(resp.Results) != len(want) {
		t.Fatalf("期望 %d 个结果，实际 %d", len(want), len(resp.Results))
	}
	for i, w := range want {
		if resp.Results[i].Inserted != w {
			t.Errorf("第 %d 项期望 inserted=%d，实际 %d", i, w, resp.Results[i].Inserted)
		}
		if resp.Results[i].SN != items[i].SN || resp.Results[i].Table != items[i].Table {
			t.Errorf("第 %d 项应回显 SN/table", i)
		}
	}
}

func TestIngestService_IngestBatch_FailureIsolated(t *testing.T) {
	svc, mocks, _ := setupTestIngestService()
	mocks.devices.err = errMockDB

	resp := svc.IngestBatch(context.Background(), []dto.BatchIngestItem{
		{SN: "SN-1", Table: "ATTLOG", Body: "1 2024-01-05 08:00:00\n"},
		{SN: "SN-1", Table: "ATTLOG", Body: "2 2024-01-05 08:00:00\n"},
	})
	if len(resp.Results) != 2 {
		t.Fatalf("失败条目也应有结果，实际 %d", len(resp.Results))
	}
	for _, r := range resp.Results {
		if r.Inserted != 0 {
			t.Errorf("失败条目 inserted 应为 0，实际 %d", r.Inserted)
		}
	}
}
